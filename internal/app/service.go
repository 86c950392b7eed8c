// Package service orchestrates a full analysis batch: streaming games out
// of PGN files, driving the engine through the evaluation cache, and
// deriving every downstream statistic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/arbiterhq/arbiter/internal/adapters/engine"
	"github.com/arbiterhq/arbiter/internal/adapters/pgn"
	"github.com/arbiterhq/arbiter/internal/adapters/repository"
	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/domain/clock"
	"github.com/arbiterhq/arbiter/internal/domain/dynamics"
	"github.com/arbiterhq/arbiter/internal/domain/model"
	"github.com/arbiterhq/arbiter/internal/domain/performance"
	"github.com/arbiterhq/arbiter/internal/domain/quality"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/internal/domain/timeusage"
	"github.com/arbiterhq/arbiter/pkg/logger"
	"github.com/arbiterhq/arbiter/pkg/metrics"
)

// ErrNoGames means the input files held no game matching the filters.
var ErrNoGames = errors.New("no games matched")

// GameDynamics carries one side's dominance and resilience for a game.
type GameDynamics struct {
	GameID     string
	Player     string
	Side       score.Side
	Dominance  float64
	Resilience float64
}

// GameTimeUsage pairs both players' clock profiles for a game.
type GameTimeUsage struct {
	GameID string
	White  timeusage.SideUsage
	Black  timeusage.SideUsage
}

// Result is the complete outcome of one batch run.
type Result struct {
	RunID string

	Games      []*quality.GameEvaluation
	Comebacks  []performance.ComebackRecord
	BlownLeads []performance.BlownLeadRecord
	Dynamics   []GameDynamics
	TimeUsage  []GameTimeUsage
	Players    []*performance.PlayerStats

	CacheSize int
}

// SearcherFactory builds one engine-backed searcher per worker; the second
// return value closes it.
type SearcherFactory func(ctx context.Context) (engine.Searcher, func() error, error)

// Service runs analysis batches.
type Service struct {
	cfg         *config.Config
	roundFilter string
	newSearcher SearcherFactory
	log         logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRoundFilter restricts the batch to games of one round.
func WithRoundFilter(round string) Option {
	return func(s *Service) {
		s.roundFilter = round
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSearcherFactory substitutes the engine constructor. Tests inject
// scripted searchers; embedders can wire alternative engines.
func WithSearcherFactory(f SearcherFactory) Option {
	return func(s *Service) {
		s.newSearcher = f
	}
}

// New constructs a Service over a validated configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("service")
	}
	if s.newSearcher == nil {
		s.newSearcher = func(ctx context.Context) (engine.Searcher, func() error, error) {
			eng, err := engine.New(ctx, cfg.Engine)
			if err != nil {
				return nil, nil, err
			}
			return eng, eng.Close, nil
		}
	}
	return s
}

// AnalyzeFiles runs the whole pipeline over the given PGN files. The
// evaluation cache is flushed on every exit path: engine work is the
// expensive part of a batch and must survive a late failure.
func (s *Service) AnalyzeFiles(ctx context.Context, paths []string) (result *Result, err error) {
	runID := uuid.NewString()
	log := s.log.Named(runID[:8])

	control, err := s.cfg.ActiveControl()
	if err != nil {
		return nil, fmt.Errorf("resolving time control %q: %w", s.cfg.ActiveTimeControl, err)
	}

	cache, err := repository.New(ctx, s.cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening evaluation cache: %w", err)
	}
	defer func() {
		if saveErr := cache.Save(ctx); saveErr != nil && err == nil {
			err = saveErr
		}
	}()

	games, err := s.loadGames(ctx, paths, clockControl(control))
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: %d files, round filter %q", ErrNoGames, len(paths), s.roundFilter)
	}

	log.Info(ctx, "batch starting",
		logger.Int("games", len(games)),
		logger.Int("workers", s.cfg.Workers),
		logger.Int("cache_entries", cache.Size()))

	evaluated, err := s.evaluate(ctx, games, cache)
	if err != nil {
		return nil, err
	}

	result = &Result{RunID: runID, Games: evaluated, CacheSize: cache.Size()}
	s.derive(result, games)

	log.Info(ctx, "batch finished",
		logger.Int("games", len(result.Games)),
		logger.Int("comebacks", len(result.Comebacks)),
		logger.Int("blown_leads", len(result.BlownLeads)),
		logger.Int("cache_entries", result.CacheSize))
	return result, nil
}

// loadGames streams every matching game out of the input files.
func (s *Service) loadGames(ctx context.Context, paths []string, control clock.TimeControl) ([]*model.Game, error) {
	var games []*model.Game
	for _, path := range paths {
		r, err := pgn.Open(path, control)
		if err != nil {
			return nil, err
		}
		for {
			g, err := r.Next(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("reading %s: %w", path, err)
			}
			if s.roundFilter != "" && g.Metadata.Round != s.roundFilter {
				continue
			}
			games = append(games, g)
		}
		if err := r.Close(); err != nil {
			return nil, err
		}
	}
	return games, nil
}

// evaluate runs the engine over every game, sequentially or with a worker
// pool. Each worker owns its engine process; the shared cache carries its
// own locking. Any evaluation error aborts the batch.
func (s *Service) evaluate(ctx context.Context, games []*model.Game, cache *repository.EvalCache) ([]*quality.GameEvaluation, error) {
	workers := s.cfg.Workers
	if workers > len(games) {
		workers = len(games)
	}
	if workers < 1 {
		workers = 1
	}
	metrics.UpdateWorkerCount(workers)

	if workers == 1 {
		return s.evaluateSequential(ctx, games, cache)
	}
	return s.evaluatePool(ctx, games, cache, workers)
}

func (s *Service) evaluateSequential(ctx context.Context, games []*model.Game, cache *repository.EvalCache) ([]*quality.GameEvaluation, error) {
	searcher, closeSearcher, err := s.newSearcher(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSearcher() //nolint:errcheck

	analyzer := s.analyzer(searcher, cache)
	out := make([]*quality.GameEvaluation, 0, len(games))
	for _, g := range games {
		ge, err := analyzer.Analyze(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("analyzing %s: %w", g.ID(), err)
		}
		metrics.RecordGameAnalyzed()
		out = append(out, ge)
	}
	return out, nil
}

func (s *Service) evaluatePool(ctx context.Context, games []*model.Game, cache *repository.EvalCache, workers int) ([]*quality.GameEvaluation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	out := make([]*quality.GameEvaluation, len(games))
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			searcher, closeSearcher, err := s.newSearcher(ctx)
			if err != nil {
				errs <- err
				cancel()
				return
			}
			defer closeSearcher() //nolint:errcheck

			analyzer := s.analyzer(searcher, cache)
			for i := range jobs {
				ge, err := analyzer.Analyze(ctx, games[i])
				if err != nil {
					errs <- fmt.Errorf("analyzing %s: %w", games[i].ID(), err)
					cancel()
					return
				}
				metrics.RecordGameAnalyzed()
				out[i] = ge
			}
		}()
	}

dispatch:
	for i := range games {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) analyzer(searcher engine.Searcher, cache *repository.EvalCache) *quality.Analyzer {
	evaluator := engine.NewEvaluator(searcher, cache, s.cfg.Engine.Depth)
	return quality.NewAnalyzer(&scoreAdapter{evaluator}, s.cfg.Thresholds.SkipOpeningMoves)
}

// derive computes every post-engine statistic from the evaluated games.
func (s *Service) derive(result *Result, games []*model.Game) {
	th := s.cfg.Thresholds
	usageCfg := timeusage.Config{
		OpeningMoves:        th.OpeningMoves,
		LongThinkSeconds:    th.LongThinkSeconds,
		TimePressureSeconds: th.TimePressureSeconds,
	}

	agg := performance.NewAggregator()
	for i, ge := range result.Games {
		result.Comebacks = append(result.Comebacks, performance.Comebacks(ge, th.ComebackCP)...)
		result.BlownLeads = append(result.BlownLeads, performance.BlownLeads(ge, th.BlownLeadCP)...)

		for _, side := range []score.Side{score.White, score.Black} {
			result.Dynamics = append(result.Dynamics, GameDynamics{
				GameID:     ge.GameID,
				Player:     ge.Summary(side).Player,
				Side:       side,
				Dominance:  dynamics.Dominance(ge, side, th.AdvantageCP),
				Resilience: dynamics.Resilience(ge, side, th.PressureCP, th.CollapseCPL),
			})
		}

		white, black := timeusage.Analyze(games[i], usageCfg)
		result.TimeUsage = append(result.TimeUsage, GameTimeUsage{
			GameID: ge.GameID,
			White:  white,
			Black:  black,
		})

		agg.Add(ge)
	}
	result.Players = agg.Players()
}

// scoreAdapter narrows the engine evaluator to the analyzer's contract.
type scoreAdapter struct {
	evaluator *engine.Evaluator
}

func (a *scoreAdapter) Evaluate(ctx context.Context, fen string) (score.Score, error) {
	ev, err := a.evaluator.Evaluate(ctx, fen)
	if err != nil {
		return score.Score{}, err
	}
	return ev.Score, nil
}

// clockControl maps the configured time control onto the clock model's.
func clockControl(tc config.TimeControl) clock.TimeControl {
	return clock.TimeControl{
		BaseTime:                tc.BaseTime,
		IncrementType:           clock.IncrementType(tc.IncrementType),
		IncrementStartMove:      tc.IncrementStartMove,
		IncrementSeconds:        tc.IncrementSeconds,
		BonusTime:               tc.BonusTime,
		HasIncrementBeforeBonus: tc.HasIncrementBeforeBonus,
	}
}

// Package engine wraps an external UCI engine and layers the evaluation
// cache in front of it. Scores leave this package white-perspective; the
// engine's own side-to-move convention never escapes.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"

	"github.com/arbiterhq/arbiter/internal/adapters/repository"
	"github.com/arbiterhq/arbiter/internal/config"
	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/pkg/logger"
	"github.com/arbiterhq/arbiter/pkg/metrics"
)

// Engine drives one UCI engine process. It is not safe for concurrent use;
// parallel analysis runs one Engine per worker.
type Engine struct {
	eng     *uci.Engine
	depth   int
	timeout time.Duration
	broken  bool
	log     logger.Logger
}

// New spawns the engine binary and completes the UCI handshake, applying
// the configured thread and hash limits.
func New(ctx context.Context, cfg config.Engine, opts ...Option) (*Engine, error) {
	e := &Engine{
		depth:   cfg.Depth,
		timeout: cfg.MoveTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Named("engine")
	}

	eng, err := uci.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrEngineUnavailable, cfg.Path, err)
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	if cfg.Threads > 0 {
		cmds = append(cmds, uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(cfg.Threads)})
	}
	if cfg.HashMB > 0 {
		cmds = append(cmds, uci.CmdSetOption{Name: "Hash", Value: strconv.Itoa(cfg.HashMB)})
	}
	cmds = append(cmds, uci.CmdUCINewGame)

	if err := eng.Run(cmds...); err != nil {
		eng.Close()
		return nil, fmt.Errorf("%w: handshake: %v", ErrEngineUnavailable, err)
	}

	e.eng = eng
	e.log.Info(ctx, "engine ready",
		logger.String("path", cfg.Path),
		logger.Int("depth", cfg.Depth),
		logger.Int("threads", cfg.Threads),
		logger.Int("hash_mb", cfg.HashMB))
	return e, nil
}

// Evaluate searches the position to the configured depth and returns a
// white-perspective evaluation. Terminal positions short-circuit without a
// search: a checkmated side to move is a delivered mate, stalemate is a
// dead draw. A search that outlives the move timeout kills the engine
// process and surfaces ErrEvaluationTimeout.
func (e *Engine) Evaluate(ctx context.Context, fen string) (repository.Evaluation, error) {
	if e.broken {
		return repository.Evaluation{}, ErrEngineUnavailable
	}

	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return repository.Evaluation{}, fmt.Errorf("%w: %q: %v", ErrInvalidPosition, fen, err)
	}
	game := chess.NewGame(fenOpt)
	pos := game.Position()

	if ev, ok := terminalEvaluation(pos, e.depth); ok {
		return ev, nil
	}

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- e.eng.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{Depth: e.depth})
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case err = <-done:
	case <-timer.C:
		e.kill(ctx)
		metrics.RecordEngineFailure()
		return repository.Evaluation{}, fmt.Errorf("%w after %s: %s", ErrEvaluationTimeout, e.timeout, fen)
	case <-ctx.Done():
		e.kill(ctx)
		return repository.Evaluation{}, ctx.Err()
	}
	if err != nil {
		e.kill(ctx)
		metrics.RecordEngineFailure()
		return repository.Evaluation{}, fmt.Errorf("%w: search: %v", ErrEngineUnavailable, err)
	}

	results := e.eng.SearchResults()

	var s score.Score
	if results.Info.Score.Mate != 0 {
		s = score.MateIn(povFactor(pos) * results.Info.Score.Mate)
	} else {
		s = score.Centipawns(povFactor(pos) * results.Info.Score.CP)
	}

	best := ""
	if results.BestMove != nil {
		best = results.BestMove.String()
	}

	metrics.RecordEngineEvaluation()
	metrics.ObserveEvaluationLatency(time.Since(start).Seconds())

	return repository.Evaluation{Score: s, BestMove: best, Depth: e.depth}, nil
}

// terminalEvaluation resolves positions the engine will not search.
func terminalEvaluation(pos *chess.Position, depth int) (repository.Evaluation, bool) {
	switch pos.Status() {
	case chess.Checkmate:
		// Mate already delivered: the full MateValue, against the side to
		// move. No plies remain, so the flattened value is exact.
		cp := -score.MateValue
		if pos.Turn() == chess.Black {
			cp = score.MateValue
		}
		return repository.Evaluation{Score: score.Centipawns(cp), Depth: depth}, true
	case chess.Stalemate:
		return repository.Evaluation{Score: score.Centipawns(0), Depth: depth}, true
	}
	return repository.Evaluation{}, false
}

// povFactor converts the engine's side-to-move scores to white perspective.
func povFactor(pos *chess.Position) int {
	if pos.Turn() == chess.Black {
		return -1
	}
	return 1
}

func (e *Engine) kill(ctx context.Context) {
	e.broken = true
	if e.eng != nil {
		e.eng.Close()
	}
	e.log.Error(ctx, "engine process terminated")
}

// Close shuts the engine process down.
func (e *Engine) Close() error {
	if e.eng == nil || e.broken {
		return nil
	}
	return e.eng.Close()
}

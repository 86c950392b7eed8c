// Package repository provides the persistent evaluation cache: a write-
// behind JSON store keyed by normalized position and search depth. Engine
// search dominates the cost of the whole system, so two games transposing
// into the same position must share one entry.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/arbiterhq/arbiter/internal/domain/score"
	"github.com/arbiterhq/arbiter/pkg/logger"
	"github.com/arbiterhq/arbiter/pkg/metrics"
)

// Evaluation is a cached engine verdict for one position at one depth.
type Evaluation struct {
	Score    score.Score
	BestMove string
	Depth    int
}

// record is the persisted form of an Evaluation. ScoreCP carries the
// flattened encoding; the tagged score is reconstructed on load.
type record struct {
	ScoreCP  int    `json:"score_cp"`
	BestMove string `json:"best_move"`
	Depth    int    `json:"depth"`
	IsMate   bool   `json:"is_mate"`
	MateIn   *int   `json:"mate_in,omitempty"`
}

func toRecord(ev Evaluation) record {
	r := record{
		ScoreCP:  ev.Score.Cp(),
		BestMove: ev.BestMove,
		Depth:    ev.Depth,
		IsMate:   ev.Score.IsMate(),
	}
	if r.IsMate {
		plies := ev.Score.MatePlies()
		r.MateIn = &plies
	}
	return r
}

func fromRecord(r record) Evaluation {
	s := score.Centipawns(r.ScoreCP)
	if r.IsMate && r.MateIn != nil {
		s = score.MateIn(*r.MateIn)
	}
	return Evaluation{Score: s, BestMove: r.BestMove, Depth: r.Depth}
}

// NormalizeFEN reduces a FEN to the four fields that define position
// identity: piece placement, side to move, castling rights and en-passant
// target. Halfmove and fullmove counters are stripped so transpositions
// from different games share a cache entry.
func NormalizeFEN(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// Key renders the cache key for a position at a depth.
func Key(fen string, depth int) string {
	return fmt.Sprintf("%s|d%d", NormalizeFEN(fen), depth)
}

// EvalCache is the in-memory map with an explicit persistence lifecycle:
// load everything at construction, mutate freely, flush once via Save.
// A mutex guards mutation so pooled evaluators may share one cache.
type EvalCache struct {
	mu      sync.Mutex
	path    string
	entries map[string]record
	dirty   bool
	log     logger.Logger
}

// New opens the cache backed by the given JSON file. A missing or corrupt
// file is not an error: the cache starts empty and the corrupt state is
// overwritten on the next Save.
func New(ctx context.Context, path string, opts ...Option) (*EvalCache, error) {
	c := &EvalCache{
		path:    path,
		entries: make(map[string]record),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("evalcache")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	c.load(ctx)
	metrics.UpdateCacheSize(len(c.entries))
	return c, nil
}

func (c *EvalCache) load(ctx context.Context) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.log.Warn(ctx, "unreadable cache file, starting empty",
				logger.String("path", c.path), logger.Error(err))
		}
		return
	}
	var entries map[string]record
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Warn(ctx, "corrupt cache file, starting empty",
			logger.String("path", c.path), logger.Error(err))
		return
	}
	c.entries = entries
	c.log.Info(ctx, "evaluation cache loaded",
		logger.String("path", c.path), logger.Int("entries", len(entries)))
}

// Get returns the cached evaluation for a position at a depth. Differing
// halfmove/fullmove counters in the queried FEN do not affect the lookup.
func (c *EvalCache) Get(fen string, depth int) (Evaluation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.entries[Key(fen, depth)]
	if !ok {
		metrics.RecordCacheMiss()
		return Evaluation{}, false
	}
	metrics.RecordCacheHit()
	return fromRecord(r), true
}

// Put stores an evaluation under the position's normalized key.
func (c *EvalCache) Put(fen string, ev Evaluation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(fen, ev.Depth)] = toRecord(ev)
	c.dirty = true
	metrics.UpdateCacheSize(len(c.entries))
}

// Save flushes the cache to disk when it has been modified. The write goes
// through a temp file so a crash mid-flush never corrupts the previous
// state on disk.
func (c *EvalCache) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.dirty = false
	c.log.Info(ctx, "evaluation cache saved",
		logger.String("path", c.path), logger.Int("entries", len(c.entries)))
	return nil
}

// Size returns the number of cached positions.
func (c *EvalCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries; the next Save persists the empty map.
func (c *EvalCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]record)
	c.dirty = true
	metrics.UpdateCacheSize(0)
}

package engine

import (
	"context"

	"github.com/arbiterhq/arbiter/internal/adapters/repository"
)

// Searcher is the engine-facing half of an Evaluator. *Engine implements
// it; tests substitute scripted searchers.
type Searcher interface {
	Evaluate(ctx context.Context, fen string) (repository.Evaluation, error)
}

// Cache is the persistence-facing half of an Evaluator, satisfied by
// *repository.EvalCache. The cache may be shared between evaluators; its
// own locking covers concurrent access.
type Cache interface {
	Get(fen string, depth int) (repository.Evaluation, bool)
	Put(fen string, ev repository.Evaluation)
}

// Evaluator serves evaluations cache-first, searching only on a miss.
type Evaluator struct {
	searcher Searcher
	cache    Cache
	depth    int
}

// NewEvaluator wires a searcher to a cache at a fixed depth.
func NewEvaluator(searcher Searcher, cache Cache, depth int) *Evaluator {
	return &Evaluator{searcher: searcher, cache: cache, depth: depth}
}

// Evaluate returns the position's evaluation, consulting the cache before
// the engine and storing fresh results for the next lookup.
func (ev *Evaluator) Evaluate(ctx context.Context, fen string) (repository.Evaluation, error) {
	if cached, ok := ev.cache.Get(fen, ev.depth); ok {
		return cached, nil
	}

	fresh, err := ev.searcher.Evaluate(ctx, fen)
	if err != nil {
		return repository.Evaluation{}, err
	}

	ev.cache.Put(fen, fresh)
	return fresh, nil
}

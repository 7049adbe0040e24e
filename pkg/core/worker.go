/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Bounded worker pool for candidate evaluation. Independent candidates are
checked on separate goroutines, results land in index-addressed slots so the output never
depends on scheduling, and per-entry checks short-circuit on the first failing document.
*/

package core

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var errEntryFailed = errors.New("entry failed predicate")

// EvaluatorStats tracks evaluation counters
// Uses atomic operations for thread-safe updates
type EvaluatorStats struct {
	Evaluations int64 `json:"evaluations"`  // Candidates evaluated
	EntryChecks int64 `json:"entry_checks"` // Per-entry predicate calls
	ShortCuts   int64 `json:"short_cuts"`   // Entry checks skipped after a failure
}

// Evaluator runs candidate predicates over a corpus on a bounded pool
type Evaluator struct {
	workers       int
	entryParallel bool
	logger        logrus.FieldLogger
	stats         EvaluatorStats
}

// NewEvaluator creates an evaluator with the given pool size
// workers <= 0 selects runtime.NumCPU()
func NewEvaluator(workers int, entryParallel bool, logger logrus.FieldLogger) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = DiscardLogger()
	}
	return &Evaluator{
		workers:       workers,
		entryParallel: entryParallel,
		logger:        logger,
	}
}

// Workers returns the pool size
func (e *Evaluator) Workers() int {
	return e.workers
}

// Run calls fn for every index in [0, n) on the pool and returns the results by index
// If ctx ends early the partial results are returned together with ctx.Err()
func (e *Evaluator) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) bool) ([]bool, error) {
	out := make([]bool, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			atomic.AddInt64(&e.stats.Evaluations, 1)
			out[i] = fn(gctx, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

// AllEntries reports whether pred holds for every entry of the corpus
// Entries are checked in corpus order and checking stops at the first failure. In
// entry-parallel mode all entries start together and the first failure cancels the rest.
func (e *Evaluator) AllEntries(ctx context.Context, corpus *Corpus, pred func(Entry) bool) bool {
	if !e.entryParallel {
		for i, entry := range corpus.entries {
			if ctx.Err() != nil {
				return false
			}
			atomic.AddInt64(&e.stats.EntryChecks, 1)
			if !pred(entry) {
				atomic.AddInt64(&e.stats.ShortCuts, int64(len(corpus.entries)-i-1))
				return false
			}
		}
		return true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range corpus.entries {
		entry := entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				atomic.AddInt64(&e.stats.ShortCuts, 1)
				return err
			}
			atomic.AddInt64(&e.stats.EntryChecks, 1)
			if !pred(entry) {
				return errEntryFailed
			}
			return nil
		})
	}
	return g.Wait() == nil
}

// Stats returns a snapshot of the evaluation counters
func (e *Evaluator) Stats() EvaluatorStats {
	return EvaluatorStats{
		Evaluations: atomic.LoadInt64(&e.stats.Evaluations),
		EntryChecks: atomic.LoadInt64(&e.stats.EntryChecks),
		ShortCuts:   atomic.LoadInt64(&e.stats.ShortCuts),
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproducibility.go
Description: Reproducibility harness for marker inference. Reruns the pipeline on the same
corpus under different worker counts and evaluation strategies and checks that every run
yields the same words, exact words and patterns.
*/

package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/assembler"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/sirupsen/logrus"
)

// ReproductionAttempt is one pipeline run of the harness
type ReproductionAttempt struct {
	Workers       int           `json:"workers"`
	EntryParallel bool          `json:"entry_parallel"`
	Fingerprint   string        `json:"fingerprint"`
	Words         int           `json:"words"`
	Exact         int           `json:"exact"`
	Patterns      int           `json:"patterns"`
	Elapsed       time.Duration `json:"elapsed"`
}

// ReproducibilityResult collects every attempt
type ReproducibilityResult struct {
	Attempts         []ReproductionAttempt `json:"attempts"`
	Reproducible     bool                  `json:"reproducible"`      // All fingerprints agree
	Mismatches       int                   `json:"mismatches"`        // Attempts differing from the first
	ReproductionRate float64               `json:"reproduction_rate"` // Share of attempts matching the first
	Fingerprint      string                `json:"fingerprint"`       // Fingerprint of the first attempt
}

// ReproducibilityHarness reruns the pipeline with varying parallelism
type ReproducibilityHarness struct {
	config *core.Config
	logger logrus.FieldLogger
}

// NewReproducibilityHarness creates a harness over a copy of config
// Budgets are cleared because a run cut short by the clock is not repeatable.
func NewReproducibilityHarness(config *core.Config, logger logrus.FieldLogger) *ReproducibilityHarness {
	if config == nil {
		config = core.DefaultConfig()
	}
	if logger == nil {
		logger = core.DiscardLogger()
	}
	cfg := *config
	cfg.Miner.Budget = 0
	cfg.Assembler.Budget = 0
	return &ReproducibilityHarness{config: &cfg, logger: logger}
}

// Run performs attempts pipeline runs, cycling through sequential, parallel and
// entry-parallel evaluation
func (h *ReproducibilityHarness) Run(ctx context.Context, corpus *core.Corpus, attempts int, assemble bool) (*ReproducibilityResult, error) {
	if attempts < 2 {
		return nil, fmt.Errorf("%w: reproducibility needs at least 2 attempts, got %d", core.ErrConfiguration, attempts)
	}

	workers := h.config.Miner.Workers
	if workers < 2 {
		workers = runtime.NumCPU()
	}
	settings := []struct {
		workers       int
		entryParallel bool
	}{
		{1, false},
		{workers, false},
		{workers, true},
	}

	result := &ReproducibilityResult{}
	matches := 0
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s := settings[i%len(settings)]

		cfg := *h.config
		cfg.Miner.Workers = s.workers
		cfg.Miner.EntryParallel = s.entryParallel
		cfg.Assembler.Workers = s.workers
		cfg.Assembler.EntryParallel = s.entryParallel

		attempt, err := h.attempt(ctx, &cfg, corpus, assemble)
		if err != nil {
			return result, err
		}
		if i == 0 {
			result.Fingerprint = attempt.Fingerprint
		}
		if attempt.Fingerprint == result.Fingerprint {
			matches++
		} else {
			h.logger.WithFields(logrus.Fields{
				"attempt":        i,
				"workers":        s.workers,
				"entry_parallel": s.entryParallel,
				"fingerprint":    attempt.Fingerprint,
				"expected":       result.Fingerprint,
			}).Error("Run is not reproducible")
		}
		result.Attempts = append(result.Attempts, attempt)
	}

	result.ReproductionRate = float64(matches) / float64(attempts)
	result.Mismatches = attempts - matches
	result.Reproducible = result.Mismatches == 0
	return result, nil
}

func (h *ReproducibilityHarness) attempt(ctx context.Context, cfg *core.Config, corpus *core.Corpus, assemble bool) (ReproductionAttempt, error) {
	attempt := ReproductionAttempt{Workers: cfg.Miner.Workers, EntryParallel: cfg.Miner.EntryParallel}

	pipeline, err := inference.NewPipeline(cfg, inference.WithPipelineLogger(h.logger))
	if err != nil {
		return attempt, err
	}
	res, err := pipeline.Run(ctx, corpus, assemble)
	if err != nil {
		return attempt, err
	}

	attempt.Fingerprint = fingerprint(res)
	attempt.Elapsed = res.Elapsed
	if res.Mine != nil {
		attempt.Words = len(res.Mine.Words)
		attempt.Exact = len(res.Mine.Exact)
	}
	if res.Assembly != nil {
		attempt.Patterns = len(res.Assembly.Good) + len(res.Assembly.Part)
	}
	return attempt, nil
}

// fingerprint hashes everything a deterministic run must reproduce
func fingerprint(res *inference.Result) string {
	hash := sha256.New()
	fmt.Fprintf(hash, "no_marker=%t\n", res.NoMarker)
	if m := res.Mine; m != nil {
		for _, list := range [][][]byte{m.Words, m.Exact, m.LastExact} {
			fmt.Fprintf(hash, "%d:", len(list))
			for _, w := range list {
				fmt.Fprintf(hash, "%x,", w)
			}
			hash.Write([]byte{'\n'})
		}
	}
	if a := res.Assembly; a != nil {
		for _, list := range [][]assembler.Match{a.Good, a.Part} {
			fmt.Fprintf(hash, "%d:", len(list))
			for _, m := range list {
				fmt.Fprintf(hash, "%s %v,", m.Pattern, m.Counts)
			}
			hash.Write([]byte{'\n'})
		}
	}
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

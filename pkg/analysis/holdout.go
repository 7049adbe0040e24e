/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: holdout.go
Description: Leave-k-out robustness analysis. Reruns mining with every combination of one
or two documents left out, which exposes documents whose metadata or content disagrees
with the rest of the corpus, and reports the exact words that survive every run.
*/

package analysis

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/sirupsen/logrus"
)

// HoldoutRun is one mining run with some entries left out
type HoldoutRun struct {
	Excluded  []int         `json:"excluded"` // Indices into the full corpus in check order
	Labels    []string      `json:"labels"`
	Words     [][]byte      `json:"-"`
	Exact     [][]byte      `json:"-"`
	WordLen   int           `json:"word_len"`
	Converged bool          `json:"converged"`
	NoMarker  bool          `json:"no_marker"`
	Changed   bool          `json:"changed"` // Exact words differ from the baseline
	Err       string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// HoldoutResult collects the baseline and every leave-k-out run
type HoldoutResult struct {
	K        int          `json:"k"`
	Baseline HoldoutRun   `json:"baseline"`
	Runs     []HoldoutRun `json:"runs"`
	Stable   [][]byte     `json:"-"` // Exact words found by the baseline and every run
}

// Outliers returns the runs whose exact words differ from the baseline
func (r *HoldoutResult) Outliers() []HoldoutRun {
	var out []HoldoutRun
	for _, run := range r.Runs {
		if run.Changed {
			out = append(out, run)
		}
	}
	return out
}

// HoldoutAnalyzer runs leave-k-out evaluation over a pipeline
type HoldoutAnalyzer struct {
	pipeline *inference.Pipeline
	logger   logrus.FieldLogger
}

// NewHoldoutAnalyzer creates an analyzer; a nil logger discards output
func NewHoldoutAnalyzer(pipeline *inference.Pipeline, logger logrus.FieldLogger) *HoldoutAnalyzer {
	if logger == nil {
		logger = core.DiscardLogger()
	}
	return &HoldoutAnalyzer{pipeline: pipeline, logger: logger}
}

// Run mines the full corpus and then every subset with k entries left out
// k must be 1 or 2 and smaller than the corpus.
func (h *HoldoutAnalyzer) Run(ctx context.Context, corpus *core.Corpus, k int) (*HoldoutResult, error) {
	if k < 1 || k > 2 {
		return nil, fmt.Errorf("%w: holdout k must be 1 or 2, got %d", core.ErrConfiguration, k)
	}
	if corpus.Len() <= k {
		return nil, fmt.Errorf("%w: holdout of %d needs more than %d entries", core.ErrConfiguration, k, corpus.Len())
	}

	result := &HoldoutResult{K: k}
	baseline, err := h.mine(ctx, corpus, nil)
	if err != nil {
		return nil, err
	}
	result.Baseline = baseline
	stable := baseline.Exact

	for _, excluded := range combinations(corpus.Len(), k) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sub, err := corpus.Without(excluded...)
		if err != nil {
			return nil, err
		}
		run, err := h.mine(ctx, sub, excluded)
		if err != nil {
			return result, err
		}
		for _, i := range excluded {
			run.Labels = append(run.Labels, corpus.Entry(i).Label)
		}
		run.Changed = !sameWords(run.Exact, baseline.Exact)
		stable = intersect(stable, run.Exact)
		result.Runs = append(result.Runs, run)

		h.logger.WithFields(logrus.Fields{
			"excluded": run.Labels,
			"words":    len(run.Words),
			"exact":    len(run.Exact),
			"word_len": run.WordLen,
			"changed":  run.Changed,
		}).Info("Holdout run finished")
	}

	result.Stable = stable
	return result, nil
}

func (h *HoldoutAnalyzer) mine(ctx context.Context, corpus *core.Corpus, excluded []int) (HoldoutRun, error) {
	run := HoldoutRun{Excluded: excluded}
	res, err := h.pipeline.Run(ctx, corpus, false)
	if err != nil {
		return run, err
	}
	run.Elapsed = res.Elapsed
	run.NoMarker = res.NoMarker
	if res.Mine != nil {
		run.Words = res.Mine.Words
		run.Exact = res.Mine.Exact
		run.WordLen = res.Mine.WordLen()
		run.Converged = res.Mine.Converged
		if res.Mine.Exhausted {
			run.Err = "budget exhausted"
		}
	}
	return run, nil
}

// combinations lists every k-subset of [0, n) in lexicographic order, for k of 1 or 2
func combinations(n, k int) [][]int {
	var out [][]int
	for i := 0; i < n; i++ {
		if k == 1 {
			out = append(out, []int{i})
			continue
		}
		for j := i + 1; j < n; j++ {
			out = append(out, []int{i, j})
		}
	}
	return out
}

func sameWords(a, b [][]byte) bool {
	return slices.EqualFunc(a, b, bytes.Equal)
}

func intersect(a, b [][]byte) [][]byte {
	var out [][]byte
	for _, w := range a {
		if slices.ContainsFunc(b, func(x []byte) bool { return bytes.Equal(x, w) }) {
			out = append(out, w)
		}
	}
	return out
}

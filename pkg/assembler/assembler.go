/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: assembler.go
Description: Gapped sequence assembler. Combines up to three vocabulary literals with
fixed gaps into composite patterns, evaluates them best first against the corpus on the
shared worker pool and keeps the patterns whose counts agree with the multiplicities on
all but fuzz entries.
*/

package assembler

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/sirupsen/logrus"
)

// Class is the outcome of classifying a pattern
type Class int

const (
	ClassNone Class = iota // Too few entries reach their multiplicity
	ClassPart              // Count >= multiplicity on all but fuzz entries
	ClassGood              // Also count == multiplicity on all but fuzz entries
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case ClassPart:
		return "part"
	case ClassGood:
		return "good"
	default:
		return "none"
	}
}

// chunkPerWorker is the number of candidates handed to each worker per batch
const chunkPerWorker = 256

// Match is a retained pattern with its observed count per corpus entry
type Match struct {
	Pattern Pattern `json:"pattern"`
	Counts  []int   `json:"counts"`
	Class   Class   `json:"class"`
}

// Result holds the ranked patterns of an assembly run
type Result struct {
	Good      []Match       `json:"good"`       // Best first
	Part      []Match       `json:"part"`       // Best first, includes the good patterns
	SpaceSize int64         `json:"space_size"` // Size of the untruncated space
	Total     int           `json:"total"`      // Candidates after fitting the space
	Evaluated int           `json:"evaluated"`  // Candidates actually classified
	Truncated bool          `json:"truncated"`  // The space was shrunk to the bound
	Exhausted bool          `json:"exhausted"`  // Budget or evaluation cap ended the search
	MinGap    int           `json:"min_gap"`    // Effective gap range
	MaxGap    int           `json:"max_gap"`
	VocabSize int           `json:"vocab_size"` // Effective vocabulary size
	Fuzz      int           `json:"fuzz"`       // Effective fuzz
	Elapsed   time.Duration `json:"elapsed"`
}

// Assembler searches gapped patterns over a corpus
type Assembler struct {
	corpus   *core.Corpus
	config   core.AssemblerConfig
	eval     *core.Evaluator
	reporter core.Reporter
	logger   logrus.FieldLogger
}

// Option customises an Assembler
type Option func(*Assembler)

// WithReporter sets the progress reporter
func WithReporter(r core.Reporter) Option {
	return func(a *Assembler) { a.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Assembler) { a.logger = l }
}

// New creates an assembler for the corpus
func New(corpus *core.Corpus, config core.AssemblerConfig, opts ...Option) (*Assembler, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, fmt.Errorf("%w: assembler needs a non-empty corpus", core.ErrConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	a := &Assembler{
		corpus:   corpus,
		config:   config,
		reporter: core.NopReporter{},
		logger:   core.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.eval = core.NewEvaluator(config.Workers, config.EntryParallel, a.logger)
	return a, nil
}

// Assemble searches the patterns built from vocab. An oversized space is shrunk and the
// search continues with Truncated set. A budget or evaluation cap returns the patterns
// found so far with Exhausted set. In verify mode every retained pattern is reclassified
// by the reference counter and a disagreement is returned as core.ErrInvariantViolation.
func (a *Assembler) Assemble(ctx context.Context, vocab [][]byte) (*Result, error) {
	start := time.Now()
	if a.config.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Budget)
		defer cancel()
	}

	fuzz := a.config.Fuzz
	if fuzz >= a.corpus.Len() {
		fuzz = a.corpus.Len() - 1
		a.logger.WithFields(logrus.Fields{
			"fuzz":    a.config.Fuzz,
			"entries": a.corpus.Len(),
		}).Warn("Fuzz covers the whole corpus, clamping")
	}

	space := NewSpace(vocab, a.config.MinGap, a.config.MaxGap)
	result := &Result{SpaceSize: space.Size(), Fuzz: fuzz}
	defer func() { result.Elapsed = time.Since(start) }()

	fitted, truncated := space.Fit(a.config.MaxCandidates)
	result.Truncated = truncated
	result.MinGap, result.MaxGap = fitted.Gaps()
	result.VocabSize = len(fitted.Vocabulary())
	if truncated {
		a.logger.WithError(core.ErrPatternExplosion).WithFields(logrus.Fields{
			"space":      result.SpaceSize,
			"bound":      a.config.MaxCandidates,
			"max_gap":    result.MaxGap,
			"vocabulary": result.VocabSize,
		}).Warn("Candidate space truncated")
	}

	cands := fitted.enumerate()
	result.Total = len(cands)
	total := len(cands)
	if a.config.MaxEvaluations > 0 && int64(total) > a.config.MaxEvaluations {
		total = int(a.config.MaxEvaluations)
	}

	chunk := a.eval.Workers() * chunkPerWorker
	for lo := 0; lo < total; lo += chunk {
		if a.full(result) {
			break
		}
		hi := min(lo+chunk, total)
		classes := make([]Class, hi-lo)
		_, err := a.eval.Run(ctx, hi-lo, func(ctx context.Context, i int) bool {
			classes[i] = a.classify(ctx, fitted.pattern(cands[lo+i]), fuzz)
			return classes[i] != ClassNone
		})
		if err != nil {
			result.Exhausted = true
			a.logger.WithError(err).Warn("Assembly budget exhausted, returning partial rankings")
			break
		}

		for i, class := range classes {
			if class == ClassNone {
				continue
			}
			p := fitted.pattern(cands[lo+i])
			m := Match{Pattern: p, Counts: a.counts(p), Class: class}
			if class == ClassGood && a.room(len(result.Good)) {
				result.Good = append(result.Good, m)
			}
			if a.room(len(result.Part)) {
				result.Part = append(result.Part, m)
			}
		}
		result.Evaluated = hi

		a.reporter.OnAssembly(core.AssemblyStats{
			Total:     result.Total,
			Evaluated: result.Evaluated,
			Good:      len(result.Good),
			Part:      len(result.Part),
			Elapsed:   time.Since(start),
		})
	}
	if !result.Exhausted && result.Evaluated < result.Total && !a.full(result) {
		result.Exhausted = true
	}

	if a.config.Verify {
		if err := a.verify(result, fuzz); err != nil {
			return result, err
		}
	}
	return result, nil
}

// classify applies the fast classifier, giving up once more than fuzz entries miss
func (a *Assembler) classify(ctx context.Context, p Pattern, fuzz int) Class {
	var misses, inexact atomic.Int64
	ok := a.eval.AllEntries(ctx, a.corpus, func(e core.Entry) bool {
		n := p.CountUpTo(e.Data, e.Multiplicity+1)
		if n != e.Multiplicity {
			inexact.Add(1)
		}
		return n >= e.Multiplicity || misses.Add(1) <= int64(fuzz)
	})
	if !ok {
		return ClassNone
	}
	if inexact.Load() <= int64(fuzz) {
		return ClassGood
	}
	return ClassPart
}

func (a *Assembler) counts(p Pattern) []int {
	out := make([]int, a.corpus.Len())
	for i := range out {
		out[i] = p.Count(a.corpus.Entry(i).Data)
	}
	return out
}

func (a *Assembler) room(n int) bool {
	return a.config.Limit == 0 || n < a.config.Limit
}

func (a *Assembler) full(r *Result) bool {
	return a.config.Limit > 0 && len(r.Good) >= a.config.Limit && len(r.Part) >= a.config.Limit
}

// verify reclassifies every retained pattern. Good patterns are checked even when the
// part list filled up before they were reached.
func (a *Assembler) verify(r *Result, fuzz int) error {
	checked := make([]Pattern, 0, len(r.Good)+len(r.Part))
	for _, list := range [][]Match{r.Good, r.Part} {
		for _, m := range list {
			if slices.ContainsFunc(checked, func(q Pattern) bool { return q.Compare(m.Pattern) == 0 }) {
				continue
			}
			checked = append(checked, m.Pattern)
			if got := ReferenceClassify(a.corpus, m.Pattern, fuzz); got != m.Class {
				return fmt.Errorf("%w: %s classified %s, reference says %s",
					core.ErrInvariantViolation, m.Pattern, m.Class, got)
			}
		}
	}
	return nil
}

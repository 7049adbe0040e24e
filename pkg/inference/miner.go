/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: miner.go
Description: Word growth miner. Starts from the single bytes that occur often enough in
every document and grows them one byte per round, keeping only candidates whose prefix and
suffix survived the previous round and whose counts still reach every document's
multiplicity. Every surviving word is archived; the last non-empty round is the result.
*/

package inference

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/sirupsen/logrus"
)

// MineResult is the outcome of a mining run
type MineResult struct {
	Words     [][]byte          `json:"-"`         // Final word set in byte order
	Exact     [][]byte          `json:"-"`         // Final words whose counts match exactly
	LastExact [][]byte          `json:"-"`         // Exact words of the longest round that had any
	Archive   *core.Archive     `json:"-"`         // Every word that was ever valid
	Rounds    []core.RoundStats `json:"rounds"`    // Per-round statistics
	Converged bool              `json:"converged"` // A round produced no candidates
	Exhausted bool              `json:"exhausted"` // The budget ended mining early
	Elapsed   time.Duration     `json:"elapsed"`   // Total mining time
}

// WordLen returns the length of the final words, or 0 when nothing was found
func (r *MineResult) WordLen() int {
	if len(r.Words) == 0 {
		return 0
	}
	return len(r.Words[0])
}

// Miner grows candidate markers over a corpus
type Miner struct {
	corpus   *core.Corpus
	config   core.MinerConfig
	denylist *Denylist
	eval     *core.Evaluator
	reporter core.Reporter
	logger   logrus.FieldLogger
}

// MinerOption customises a Miner
type MinerOption func(*Miner)

// WithDenylist sets the noise denylist
func WithDenylist(d *Denylist) MinerOption {
	return func(m *Miner) { m.denylist = d }
}

// WithReporter sets the progress reporter
func WithReporter(r core.Reporter) MinerOption {
	return func(m *Miner) { m.reporter = r }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) MinerOption {
	return func(m *Miner) { m.logger = l }
}

// NewMiner creates a miner for the corpus
func NewMiner(corpus *core.Corpus, config core.MinerConfig, opts ...MinerOption) (*Miner, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, fmt.Errorf("%w: miner needs a non-empty corpus", core.ErrConfiguration)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &Miner{
		corpus:   corpus,
		config:   config,
		reporter: core.NopReporter{},
		logger:   core.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.eval = core.NewEvaluator(config.Workers, config.EntryParallel, m.logger)
	return m, nil
}

// Mine runs growth rounds until no candidate survives, MaxWordLen is reached or the
// budget runs out. When no single byte qualifies the returned result is empty and the
// error wraps core.ErrNoMarker; the result is still usable for reporting.
func (m *Miner) Mine(ctx context.Context) (*MineResult, error) {
	start := time.Now()
	if m.config.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Budget)
		defer cancel()
	}

	result := &MineResult{Archive: core.NewArchive()}
	defer func() { result.Elapsed = time.Since(start) }()

	seeds := make([][]byte, 0, 256)
	for b := 0; b < 256; b++ {
		w := []byte{byte(b)}
		if !m.denylist.Contains(w) {
			seeds = append(seeds, w)
		}
	}

	words, err := m.survivors(ctx, seeds)
	if err != nil {
		result.Exhausted = true
		m.round(result, start, 0, 1, len(seeds), 0, true)
		m.logger.WithError(err).Warn("Mining budget exhausted before the seed round finished")
		return result, nil
	}
	result.Archive.Add(words...)
	m.round(result, start, 0, 1, len(seeds), len(words), false)

	if len(words) == 0 {
		result.Converged = true
		return result, fmt.Errorf("%w: no byte reaches every multiplicity", core.ErrNoMarker)
	}

	current := core.NewWordSet(words)
	exact := m.exact(ctx, words)
	result.LastExact = exact

	for length := 2; ; length++ {
		if length > m.config.MaxWordLen {
			m.logger.WithField("max_word_len", m.config.MaxWordLen).Warn("Word length bound reached before convergence")
			break
		}

		candidates := m.extend(current)
		grown, err := m.survivors(ctx, candidates)
		if err != nil {
			result.Exhausted = true
			m.round(result, start, length-1, length, len(candidates), 0, true)
			m.logger.WithError(err).Warn("Mining budget exhausted, keeping the previous round")
			break
		}
		if len(grown) == 0 {
			result.Converged = true
			m.round(result, start, length-1, length, len(candidates), 0, false)
			break
		}

		result.Archive.Add(grown...)
		current = core.NewWordSet(grown)
		m.round(result, start, length-1, length, len(candidates), len(grown), false)

		exact = m.exact(ctx, grown)
		if len(exact) > 0 {
			result.LastExact = exact
		}
	}

	result.Words = current.Words()
	result.Exact = exact
	return result, nil
}

// extend joins every word with the words that start with its tail. This yields exactly
// the words formed by adding one byte on either end whose length-1 prefix and suffix
// both belong to the current set, without materialising the rejected extensions.
// Candidates containing denylisted substrings are dropped.
func (m *Miner) extend(current *core.WordSet) [][]byte {
	words := current.Words()
	if len(words) == 0 {
		return nil
	}

	next := make(map[string][]byte, len(words))
	for _, w := range words {
		head := string(w[:len(w)-1])
		next[head] = append(next[head], w[len(w)-1])
	}

	var candidates [][]byte
	for _, w := range words {
		for _, c := range next[string(w[1:])] {
			cand := make([]byte, len(w)+1)
			copy(cand, w)
			cand[len(w)] = c
			if m.denylist.Contains(cand) {
				continue
			}
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// survivors keeps the candidates that occur at least multiplicity times in every entry
func (m *Miner) survivors(ctx context.Context, candidates [][]byte) ([][]byte, error) {
	keep, err := m.eval.Run(ctx, len(candidates), func(ctx context.Context, i int) bool {
		word := candidates[i]
		return m.eval.AllEntries(ctx, m.corpus, func(e core.Entry) bool {
			return core.CountUpTo(e.Data, word, e.Multiplicity) >= e.Multiplicity
		})
	})
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(candidates))
	for i, ok := range keep {
		if ok {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

// exact applies the exact match filter on the pool. The filter runs to completion even
// when the budget has run out so the surviving words keep their exact subset.
func (m *Miner) exact(ctx context.Context, words [][]byte) [][]byte {
	exact, err := FilterExact(context.WithoutCancel(ctx), m.eval, m.corpus, words)
	if err != nil {
		m.logger.WithError(err).Warn("Exact filter failed")
		return nil
	}
	slices.SortFunc(exact, bytes.Compare)
	return exact
}

func (m *Miner) round(result *MineResult, start time.Time, round, wordLen, candidates, survivors int, exhausted bool) {
	stats := core.RoundStats{
		Round:      round,
		WordLen:    wordLen,
		Candidates: candidates,
		Survivors:  survivors,
		Archived:   result.Archive.Len(),
		Elapsed:    time.Since(start),
		ShortCuts:  m.eval.Stats().ShortCuts,
		Exhausted:  exhausted,
	}
	result.Rounds = append(result.Rounds, stats)
	m.reporter.OnRound(stats)
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Marker inference pipeline. Runs the miner, narrows its words with the exact
match filter, picks the anchors, derives the subword vocabulary and optionally hands it to
the gapped sequence assembler. Each run carries a unique ID for its reports.
*/

package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/assembler"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one pipeline run
type Result struct {
	RunID      uuid.UUID         `json:"run_id"`
	Corpus     *core.Corpus      `json:"-"`
	Mine       *MineResult       `json:"mine,omitempty"`
	Anchors    [][]byte          `json:"-"`
	Vocabulary [][]byte          `json:"-"`
	Assembly   *assembler.Result `json:"assembly,omitempty"`
	Ambiguous  bool              `json:"ambiguous"`
	NoMarker   bool              `json:"no_marker"`
	Elapsed    time.Duration     `json:"elapsed"`
}

// Pipeline wires the inference stages together
type Pipeline struct {
	config   *core.Config
	denylist *Denylist
	reporter core.Reporter
	logger   logrus.FieldLogger
}

// PipelineOption customises a Pipeline
type PipelineOption func(*Pipeline)

// WithPipelineReporter sets the progress reporter for every stage
func WithPipelineReporter(r core.Reporter) PipelineOption {
	return func(p *Pipeline) { p.reporter = r }
}

// WithPipelineLogger sets the logger for every stage
func WithPipelineLogger(l logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline validates the configuration and compiles the denylist
func NewPipeline(config *core.Config, opts ...PipelineOption) (*Pipeline, error) {
	if config == nil {
		config = core.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	denylist, err := ParseDenylist(config.Miner.Denylist)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:   config,
		denylist: denylist,
		reporter: core.NopReporter{},
		logger:   core.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() *core.Config {
	return p.config
}

// Run mines the corpus and, when assemble is set, searches gapped patterns built from
// the anchors. A corpus without any qualifying byte is not an error: the result comes
// back with NoMarker set and no vocabulary. A budget that ends inside the seed round
// returns the empty mining result with Exhausted set and skips the assembler.
func (p *Pipeline) Run(ctx context.Context, corpus *core.Corpus, assemble bool) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.New(), Corpus: corpus}
	defer func() { result.Elapsed = time.Since(start) }()
	logger := p.logger.WithField("run_id", result.RunID)

	miner, err := NewMiner(corpus, p.config.Miner,
		WithDenylist(p.denylist),
		WithReporter(p.reporter),
		WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	mined, err := miner.Mine(ctx)
	result.Mine = mined
	if err != nil {
		if !errors.Is(err, core.ErrNoMarker) {
			return nil, err
		}
		result.NoMarker = true
		logger.WithError(err).Warn("Mining found no candidate marker")
		return result, nil
	}

	if mined.Exhausted && len(mined.Words) == 0 {
		logger.WithField("elapsed", mined.Elapsed).
			Warn("Mining stopped by its budget before any word survived, skipping anchors")
		return result, nil
	}

	logger.WithFields(logrus.Fields{
		"words":     len(mined.Words),
		"word_len":  mined.WordLen(),
		"exact":     len(mined.Exact),
		"archived":  mined.Archive.Len(),
		"converged": mined.Converged,
		"exhausted": mined.Exhausted,
	}).Info("Mining finished")

	if len(mined.Exact) > 1 {
		result.Ambiguous = true
		logger.WithError(core.ErrAmbiguous).WithField("anchors", len(mined.Exact)).
			Warn("More than one maximal exact anchor")
	}

	result.Anchors = p.anchors(mined)
	result.Vocabulary = Subwords(result.Anchors, p.config.Assembler.MinLiteral)
	if !assemble {
		return result, nil
	}

	result.Assembly, err = p.Assemble(ctx, corpus, result.Vocabulary, logger)
	if err != nil {
		return result, err
	}
	return result, nil
}

// Assemble runs the gapped sequence assembler over a prepared vocabulary
func (p *Pipeline) Assemble(ctx context.Context, corpus *core.Corpus, vocab [][]byte, logger logrus.FieldLogger) (*assembler.Result, error) {
	if logger == nil {
		logger = p.logger
	}
	asm, err := assembler.New(corpus, p.config.Assembler,
		assembler.WithReporter(p.reporter),
		assembler.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	res, err := asm.Assemble(ctx, vocab)
	if err != nil {
		return res, fmt.Errorf("assembly failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"space":     res.SpaceSize,
		"evaluated": res.Evaluated,
		"good":      len(res.Good),
		"part":      len(res.Part),
		"truncated": res.Truncated,
		"exhausted": res.Exhausted,
	}).Info("Assembly finished")
	return res, nil
}

// anchors selects the words that seed the vocabulary
func (p *Pipeline) anchors(m *MineResult) [][]byte {
	switch p.config.Anchors {
	case core.AnchorsExact:
		return m.Exact
	case core.AnchorsFinal:
		return m.Words
	default:
		if len(m.Exact) > 0 {
			return m.Exact
		}
		return m.Words
	}
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproducibility_test.go
Description: Tests for the reproducibility harness.
*/

package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReproducibilityHarness(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Miner.Workers = 4
	cfg.Miner.Budget = time.Hour
	cfg.Assembler.MaxGap = 5

	h := NewReproducibilityHarness(cfg, nil)
	assert.Zero(t, h.config.Miner.Budget)
	assert.Equal(t, time.Hour, cfg.Miner.Budget, "caller config is not modified")

	corpus, err := mislabelledCorpus(t).Without(3)
	require.NoError(t, err)
	res, err := h.Run(context.Background(), corpus, 4, true)
	require.NoError(t, err)
	require.Len(t, res.Attempts, 4)
	assert.True(t, res.Reproducible)
	assert.Equal(t, 1.0, res.ReproductionRate)

	assert.Equal(t, 1, res.Attempts[0].Workers)
	assert.Equal(t, 4, res.Attempts[1].Workers)
	assert.True(t, res.Attempts[2].EntryParallel)
	for _, a := range res.Attempts {
		assert.Equal(t, res.Fingerprint, a.Fingerprint)
		assert.Equal(t, 1, a.Exact)
		assert.Positive(t, a.Patterns)
	}
}

func TestReproducibilityRejectsSingleAttempt(t *testing.T) {
	_, err := NewReproducibilityHarness(nil, nil).Run(context.Background(), mislabelledCorpus(t), 1, false)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestFingerprintDistinguishesResults(t *testing.T) {
	p, err := inference.NewPipeline(nil)
	require.NoError(t, err)

	full, err := p.Run(context.Background(), mislabelledCorpus(t), false)
	require.NoError(t, err)
	consistent, err := mislabelledCorpus(t).Without(3)
	require.NoError(t, err)
	sub, err := p.Run(context.Background(), consistent, false)
	require.NoError(t, err)

	assert.Equal(t, fingerprint(full), fingerprint(full))
	assert.NotEqual(t, fingerprint(full), fingerprint(sub))
	assert.Len(t, fingerprint(full), 16)
}

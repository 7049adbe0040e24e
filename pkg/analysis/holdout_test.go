/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: holdout_test.go
Description: Tests for leave-k-out robustness analysis.
*/

package analysis

import (
	"bytes"
	"context"
	"testing"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markerDoc(n int) []byte {
	var doc []byte
	for i := 0; i < n; i++ {
		doc = append(doc, byte(0x80+i))
		doc = append(doc, "MARK"...)
	}
	return append(doc, byte(0x80+n))
}

// mislabelledCorpus has three consistent documents and one whose name claims three
// markers while it holds two
func mislabelledCorpus(t *testing.T) *core.Corpus {
	t.Helper()
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 2, Data: markerDoc(2), Label: "a"},
		{Multiplicity: 3, Data: markerDoc(3), Label: "b"},
		{Multiplicity: 4, Data: markerDoc(4), Label: "c"},
		{Multiplicity: 3, Data: markerDoc(2), Label: "bad"},
	})
	require.NoError(t, err)
	return corpus
}

func newAnalyzer(t *testing.T) *HoldoutAnalyzer {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Miner.Workers = 2
	p, err := inference.NewPipeline(cfg)
	require.NoError(t, err)
	return NewHoldoutAnalyzer(p, nil)
}

func TestHoldoutLeaveOneOut(t *testing.T) {
	h, err := newAnalyzer(t).Run(context.Background(), mislabelledCorpus(t), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, h.K)
	assert.True(t, h.Baseline.NoMarker)
	assert.Empty(t, h.Baseline.Exact)
	require.Len(t, h.Runs, 4)

	outliers := h.Outliers()
	require.Len(t, outliers, 1)
	assert.Equal(t, []string{"bad"}, outliers[0].Labels)
	assert.Equal(t, [][]byte{[]byte("MARK")}, outliers[0].Exact)
	assert.Equal(t, 4, outliers[0].WordLen)
	assert.True(t, outliers[0].Converged)
	assert.Empty(t, h.Stable)

	for _, run := range h.Runs {
		require.Len(t, run.Excluded, 1)
		if run.Labels[0] != "bad" {
			assert.True(t, run.NoMarker, "without %s", run.Labels[0])
			assert.False(t, run.Changed)
		}
	}
}

func TestHoldoutLeaveTwoOut(t *testing.T) {
	h, err := newAnalyzer(t).Run(context.Background(), mislabelledCorpus(t), 2)
	require.NoError(t, err)

	require.Len(t, h.Runs, 6)
	assert.Len(t, h.Outliers(), 3)
	for _, run := range h.Outliers() {
		assert.Contains(t, run.Labels, "bad")
	}
}

func TestHoldoutStable(t *testing.T) {
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 2, Data: markerDoc(2), Label: "a"},
		{Multiplicity: 3, Data: markerDoc(3), Label: "b"},
		{Multiplicity: 4, Data: markerDoc(4), Label: "c"},
	})
	require.NoError(t, err)

	h, err := newAnalyzer(t).Run(context.Background(), corpus, 1)
	require.NoError(t, err)
	assert.Empty(t, h.Outliers())
	assert.Equal(t, [][]byte{[]byte("MARK")}, h.Stable)
}

func TestHoldoutRejectsBadK(t *testing.T) {
	a := newAnalyzer(t)
	corpus := mislabelledCorpus(t)

	_, err := a.Run(context.Background(), corpus, 0)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = a.Run(context.Background(), corpus, 3)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	small, err := corpus.Without(0, 1, 2)
	require.NoError(t, err)
	_, err = a.Run(context.Background(), small, 1)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestCombinations(t *testing.T) {
	assert.Equal(t, [][]int{{0}, {1}, {2}}, combinations(3, 1))
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, combinations(4, 2))
}

func TestIntersect(t *testing.T) {
	a := [][]byte{[]byte("AB"), []byte("CD"), []byte("EF")}
	b := [][]byte{[]byte("EF"), []byte("AB")}
	got := intersect(a, b)
	require.Len(t, got, 2)
	assert.True(t, bytes.Equal(got[0], []byte("AB")))
	assert.True(t, sameWords(got[1:], [][]byte{[]byte("EF")}))
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: miner_test.go
Description: Tests for the word growth miner, the exact match filter, the subword
extractor and the denylist.
*/

package inference_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mine(t *testing.T, corpus *core.Corpus, cfg core.MinerConfig, opts ...inference.MinerOption) *inference.MineResult {
	t.Helper()
	m, err := inference.NewMiner(corpus, cfg, opts...)
	require.NoError(t, err)
	res, err := m.Mine(context.Background())
	require.NoError(t, err)
	return res
}

func TestMineSingleMarker(t *testing.T) {
	corpus := markerCorpus(t, []byte("MARK"), 2, 3, 5)
	res := mine(t, corpus, core.DefaultMinerConfig())

	assert.Equal(t, [][]byte{[]byte("MARK")}, res.Words)
	assert.Equal(t, [][]byte{[]byte("MARK")}, res.Exact)
	assert.Equal(t, [][]byte{[]byte("MARK")}, res.LastExact)
	assert.True(t, res.Converged)
	assert.False(t, res.Exhausted)
	assert.Equal(t, 4, res.WordLen())
	assert.Equal(t, 10, res.Archive.Len(), "every substring of MARK was valid once")
	require.Len(t, res.Rounds, 5)
	assert.Equal(t, 0, res.Rounds[4].Survivors)
}

func TestMineDenylist(t *testing.T) {
	marker := []byte("AB\x00\x00\x00CD")
	corpus := markerCorpus(t, marker, 2, 3)

	plain := mine(t, corpus, core.DefaultMinerConfig())
	assert.Equal(t, [][]byte{marker}, plain.Exact)

	deny, err := inference.ParseDenylist([]string{`\x00\x00\x00`})
	require.NoError(t, err)
	res := mine(t, corpus, core.DefaultMinerConfig(), inference.WithDenylist(deny))

	require.NotEmpty(t, res.Words)
	run := []byte{0, 0, 0}
	for _, set := range [][][]byte{res.Words, res.Exact, res.LastExact, res.Archive.Words()} {
		for _, w := range set {
			assert.False(t, bytes.Contains(w, run), "%q contains the denylisted run", w)
		}
	}
	assert.Equal(t, [][]byte{[]byte("\x00\x00CD"), []byte("AB\x00\x00")}, res.Words)
}

func TestMineMultiplicityOne(t *testing.T) {
	doc := []byte("the quick brown fox jumps over the lazy dog, again and again")
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 1, Data: doc},
		{Multiplicity: 1, Data: bytes.Clone(doc)},
	})
	require.NoError(t, err)

	cfg := core.DefaultMinerConfig()
	cfg.MaxWordLen = 8
	res := mine(t, corpus, cfg)

	assert.False(t, res.Converged, "identical documents only stop at the length bound")
	assert.Equal(t, 8, res.WordLen())
	for _, w := range res.Words {
		assert.True(t, corpus.AtLeast(w))
	}

	// A denylisted space keeps every word inside a single token
	deny, err := inference.ParseDenylist([]string{" "})
	require.NoError(t, err)
	res = mine(t, corpus, core.DefaultMinerConfig(), inference.WithDenylist(deny))
	assert.True(t, res.Converged)
	assert.Equal(t, [][]byte{[]byte("again"), []byte("brown"), []byte("jumps"), []byte("quick")}, res.Words)
}

func TestMineNoMarker(t *testing.T) {
	corpus, err := core.NewCorpus([]core.Entry{{Multiplicity: 2, Data: []byte("abcdef")}})
	require.NoError(t, err)

	m, err := inference.NewMiner(corpus, core.DefaultMinerConfig())
	require.NoError(t, err)
	res, err := m.Mine(context.Background())
	assert.ErrorIs(t, err, core.ErrNoMarker)
	require.NotNil(t, res)
	assert.Empty(t, res.Words)
	assert.True(t, res.Converged)
	assert.Equal(t, 0, res.Archive.Len())
}

func TestMineCancelled(t *testing.T) {
	corpus := markerCorpus(t, []byte("MARK"), 2, 3)
	m, err := inference.NewMiner(corpus, core.DefaultMinerConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := m.Mine(ctx)
	require.NoError(t, err, "an exhausted budget is not an error")
	assert.True(t, res.Exhausted)
	assert.Empty(t, res.Words)
}

func TestMineArchiveMonotonic(t *testing.T) {
	corpus := noisyCorpus(t, []byte("<<record>>"), 3, 4, 6)
	rep := &recordingReporter{}
	res := mine(t, corpus, core.DefaultMinerConfig(), inference.WithReporter(rep))

	require.NotEmpty(t, rep.rounds)
	for i := 1; i < len(rep.rounds); i++ {
		assert.GreaterOrEqual(t, rep.rounds[i].Archived, rep.rounds[i-1].Archived)
		assert.Equal(t, rep.rounds[i-1].WordLen+1, rep.rounds[i].WordLen)
	}
	for _, w := range res.Words {
		assert.True(t, res.Archive.Contains(w), "final word %q missing from archive", w)
	}
}

func TestMineSoundAndExact(t *testing.T) {
	corpus := noisyCorpus(t, []byte("<<record>>"), 3, 4, 6)
	res := mine(t, corpus, core.DefaultMinerConfig())

	require.NotEmpty(t, res.Words)
	for _, w := range res.Words {
		assert.True(t, corpus.AtLeast(w), "%q below a multiplicity", w)
	}
	for _, w := range res.Archive.Words() {
		assert.True(t, corpus.AtLeast(w), "archived %q below a multiplicity", w)
	}
	for _, w := range res.Exact {
		assert.True(t, corpus.Exactly(w), "%q is not exact", w)
	}
	for _, w := range res.LastExact {
		assert.True(t, corpus.Exactly(w), "%q is not exact", w)
	}
	assert.True(t, slicesContain(res.Archive.Words(), []byte("<<record>>")))
}

func TestMineDeterministic(t *testing.T) {
	corpus := noisyCorpus(t, []byte("<<record>>"), 3, 4, 6)

	serial := core.DefaultMinerConfig()
	serial.Workers = 1
	parallel := core.DefaultMinerConfig()
	parallel.Workers = 8
	parallel.EntryParallel = true

	a := mine(t, corpus, serial)
	b := mine(t, corpus, parallel)
	assert.Equal(t, a.Words, b.Words)
	assert.Equal(t, a.Exact, b.Exact)
	assert.Equal(t, a.LastExact, b.LastExact)
	assert.Equal(t, a.Archive.Words(), b.Archive.Words())
}

func TestFilterExact(t *testing.T) {
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 2, Data: []byte("MARK.MARK.XX")},
		{Multiplicity: 1, Data: []byte("MARK.XX")},
	})
	require.NoError(t, err)

	pool := [][]byte{[]byte("XX"), []byte("MARK"), []byte("."), []byte("RK")}
	exact, err := inference.FilterExact(context.Background(), nil, corpus, pool)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("MARK"), []byte("."), []byte("RK")}, exact)
}

func TestSubwords(t *testing.T) {
	got := inference.Subwords([][]byte{[]byte("ABC"), []byte("BCD")}, 1)
	want := [][]byte{
		[]byte("ABC"), []byte("BCD"),
		[]byte("AB"), []byte("BC"), []byte("CD"),
		[]byte("A"), []byte("B"), []byte("C"), []byte("D"),
	}
	assert.Equal(t, want, got)

	assert.Equal(t, [][]byte{[]byte("ABC"), []byte("AB"), []byte("BC")},
		inference.Subwords([][]byte{[]byte("ABC")}, 2))
	assert.Empty(t, inference.Subwords(nil, 1))
}

func TestDenylist(t *testing.T) {
	d, err := inference.ParseDenylist([]string{"hex:0000", `\xff\xff`, "pad", "hex:0000"})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.Contains([]byte("a\x00\x00b")))
	assert.True(t, d.Contains([]byte("\xff\xff")))
	assert.True(t, d.Contains([]byte("padding")))
	assert.False(t, d.Contains([]byte("\x00a\x00")))

	var none *inference.Denylist
	assert.False(t, none.Contains([]byte("anything")))

	_, err = inference.ParseDenylist([]string{"hex:zz"})
	assert.ErrorIs(t, err, core.ErrConfiguration)
	_, err = inference.NewDenylist([][]byte{{}})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func slicesContain(words [][]byte, w []byte) bool {
	for _, x := range words {
		if bytes.Equal(x, w) {
			return true
		}
	}
	return false
}

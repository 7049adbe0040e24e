/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: helpers_test.go
Description: Synthetic corpora for the inference tests.
*/

package inference_test

import (
	"math/rand"
	"testing"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/stretchr/testify/require"
)

// markerDoc places marker n times, separated by bytes from 0x80 up that occur once each
func markerDoc(marker []byte, n int) []byte {
	var doc []byte
	for i := 0; i < n; i++ {
		doc = append(doc, byte(0x80+i))
		doc = append(doc, marker...)
	}
	return append(doc, byte(0x80+n))
}

func markerCorpus(t *testing.T, marker []byte, multiplicities ...int) *core.Corpus {
	t.Helper()
	entries := make([]core.Entry, 0, len(multiplicities))
	for i, n := range multiplicities {
		entries = append(entries, core.Entry{Multiplicity: n, Data: markerDoc(marker, n), Label: string(rune('a' + i))})
	}
	corpus, err := core.NewCorpus(entries)
	require.NoError(t, err)
	return corpus
}

// noisyCorpus hides marker in filler drawn from a small alphabet so many words qualify
func noisyCorpus(t *testing.T, marker []byte, multiplicities ...int) *core.Corpus {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	entries := make([]core.Entry, 0, len(multiplicities))
	for i, n := range multiplicities {
		var doc []byte
		for j := 0; j < n; j++ {
			for k := 0; k < 20+rng.Intn(20); k++ {
				doc = append(doc, "xyz"[rng.Intn(3)])
			}
			doc = append(doc, marker...)
		}
		entries = append(entries, core.Entry{Multiplicity: n, Data: doc, Label: string(rune('a' + i))})
	}
	corpus, err := core.NewCorpus(entries)
	require.NoError(t, err)
	return corpus
}

// gappedDoc places "AB", three varying bytes and "CD" n times
func gappedDoc(n int) []byte {
	var doc []byte
	next := byte(0x80)
	unique := func() byte {
		next++
		return next
	}
	for i := 0; i < n; i++ {
		doc = append(doc, unique(), 'A', 'B', unique(), unique(), unique(), 'C', 'D')
	}
	return append(doc, unique())
}

type recordingReporter struct {
	rounds []core.RoundStats
}

func (r *recordingReporter) OnRound(s core.RoundStats)     { r.rounds = append(r.rounds, s) }
func (r *recordingReporter) OnAssembly(core.AssemblyStats) {}

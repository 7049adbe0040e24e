/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: extend_internal_test.go
Description: Checks that joining words on their shared tail yields the same candidates
as extending every word on both ends and keeping those whose prefix and suffix survived.
*/

package inference

import (
	"bytes"
	"math/rand"
	"slices"
	"testing"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/stretchr/testify/assert"
)

func bruteForceExtend(current *core.WordSet) [][]byte {
	seen := make(map[string]bool)
	var out [][]byte
	for _, w := range current.Words() {
		for b := 0; b < 256; b++ {
			for _, cand := range [][]byte{append([]byte{byte(b)}, w...), append(slices.Clone(w), byte(b))} {
				if seen[string(cand)] {
					continue
				}
				if current.Has(cand[:len(cand)-1]) && current.Has(cand[1:]) {
					seen[string(cand)] = true
					out = append(out, cand)
				}
			}
		}
	}
	slices.SortFunc(out, bytes.Compare)
	return out
}

func TestExtendMatchesBothEndExtension(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := &Miner{}

	for length := 1; length <= 4; length++ {
		var words [][]byte
		for i := 0; i < 40; i++ {
			w := make([]byte, length)
			for j := range w {
				w[j] = "abcd"[rng.Intn(4)]
			}
			words = append(words, w)
		}
		current := core.NewWordSet(words)

		got := m.extend(current)
		slices.SortFunc(got, bytes.Compare)
		got = slices.CompactFunc(got, bytes.Equal)
		assert.Equal(t, bruteForceExtend(current), got, "length %d", length)
	}
}

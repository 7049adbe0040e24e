/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: archive.go
Description: Cumulative archive of every word that was ever valid during a mining run.
The archive only grows; it is threaded through the growth loop as an explicit value and
handed back to the caller when mining ends.
*/

package core

import (
	"bytes"
	"slices"
	"sync"
)

// Archive accumulates valid words across all growth rounds
type Archive struct {
	seen  map[string]struct{}
	order [][]byte
	mu    sync.RWMutex
}

// NewArchive creates an empty archive
func NewArchive() *Archive {
	return &Archive{seen: make(map[string]struct{})}
}

// Add inserts words that are not yet present and returns how many were new
func (a *Archive) Add(words ...[]byte) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	added := 0
	for _, w := range words {
		if _, ok := a.seen[string(w)]; ok {
			continue
		}
		a.seen[string(w)] = struct{}{}
		a.order = append(a.order, slices.Clone(w))
		added++
	}
	return added
}

// Contains reports whether w was ever archived
func (a *Archive) Contains(w []byte) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.seen[string(w)]
	return ok
}

// Len returns the number of archived words
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

// Words returns the archived words, longest first, ties in byte order
func (a *Archive) Words() [][]byte {
	a.mu.RLock()
	out := make([][]byte, len(a.order))
	copy(out, a.order)
	a.mu.RUnlock()

	slices.SortFunc(out, CompareWords)
	return out
}

// Longest returns the archived words of maximal length in byte order
func (a *Archive) Longest() [][]byte {
	words := a.Words()
	if len(words) == 0 {
		return nil
	}
	n := len(words[0])
	end := 0
	for end < len(words) && len(words[end]) == n {
		end++
	}
	return words[:end]
}

// CompareWords orders words by descending length, then by byte value
func CompareWords(a, b []byte) int {
	if len(a) != len(b) {
		return len(b) - len(a)
	}
	return bytes.Compare(a, b)
}

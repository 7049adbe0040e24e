/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the Akaylee Repeats marker inference engine. Defines the word
sets grown by the miner, the cumulative archive of valid words, and the statistics that
flow through reporters while a corpus is being mined.
*/

package core

import (
	"bytes"
	"slices"
	"time"
)

// WordSet holds the candidate words of one length class
// It is replaced wholesale at the end of every growth round
type WordSet struct {
	words  map[string]struct{}
	length int
}

// NewWordSet builds a word set from the given words
// Duplicate words are collapsed
func NewWordSet(words [][]byte) *WordSet {
	s := &WordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.words[string(w)] = struct{}{}
		if len(w) > s.length {
			s.length = len(w)
		}
	}
	return s
}

// Has reports whether w is a member of the set
func (s *WordSet) Has(w []byte) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[string(w)]
	return ok
}

// Len returns the number of words in the set
func (s *WordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// WordLen returns the length of the longest word in the set
func (s *WordSet) WordLen() int {
	if s == nil {
		return 0
	}
	return s.length
}

// Words returns the members in lexicographic byte order
func (s *WordSet) Words() [][]byte {
	if s == nil {
		return nil
	}
	out := make([][]byte, 0, len(s.words))
	for w := range s.words {
		out = append(out, []byte(w))
	}
	slices.SortFunc(out, bytes.Compare)
	return out
}

// RoundStats describes one growth round of the miner
type RoundStats struct {
	Round      int           `json:"round"`      // Round number (0 = single-byte seed)
	WordLen    int           `json:"word_len"`   // Length of the words produced this round
	Candidates int           `json:"candidates"` // Candidates that passed extension and denylist checks
	Survivors  int           `json:"survivors"`  // Candidates that passed the count predicate
	Archived   int           `json:"archived"`   // Archive size after the round
	Elapsed    time.Duration `json:"elapsed"`    // Time since mining started
	ShortCuts  int64         `json:"short_cuts"` // Entry checks skipped by fail-fast evaluation
	Exhausted  bool          `json:"exhausted"`  // Round was cut short by the budget
}

// AssemblyStats describes the progress of the gapped sequence assembler
type AssemblyStats struct {
	Total     int           `json:"total"`     // Candidate patterns in the (possibly truncated) space
	Evaluated int           `json:"evaluated"` // Patterns evaluated so far
	Good      int           `json:"good"`      // Patterns classified good so far
	Part      int           `json:"part"`      // Patterns classified part so far
	Elapsed   time.Duration `json:"elapsed"`   // Time since assembly started
}

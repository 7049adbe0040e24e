/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corpus.go
Description: Immutable document corpus for marker inference. Each entry pairs a document
buffer with the number of times the unknown marker is expected to occur in it. Entries are
ordered so that the least forgiving documents are checked first.
*/

package core

import (
	"bytes"
	"fmt"
	"slices"
)

// Entry is one document of the corpus
type Entry struct {
	Multiplicity int    `json:"multiplicity"` // Expected marker occurrences
	Data         []byte `json:"-"`            // Document contents, never mutated after load
	Label        string `json:"label"`        // Human readable name, usually the file path
}

// Size returns the document size in bytes
func (e Entry) Size() int {
	return len(e.Data)
}

// RepeatSize returns the average number of bytes per expected marker
func (e Entry) RepeatSize() float64 {
	return float64(len(e.Data)) / float64(e.Multiplicity)
}

// Corpus is the ordered, read-only set of documents being analysed
// Safe for concurrent use since nothing mutates after NewCorpus returns
type Corpus struct {
	entries []Entry
}

// NewCorpus validates the entries and orders them by descending repeat size
// Returns ErrConfiguration if the corpus is empty or an entry is malformed
func NewCorpus(entries []Entry) (*Corpus, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: corpus has no entries", ErrConfiguration)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	for i, e := range sorted {
		if e.Multiplicity < 1 {
			return nil, fmt.Errorf("%w: entry %d (%s) has multiplicity %d", ErrConfiguration, i, e.Label, e.Multiplicity)
		}
	}

	slices.SortStableFunc(sorted, func(a, b Entry) int {
		ra, rb := a.RepeatSize(), b.RepeatSize()
		switch {
		case ra > rb:
			return -1
		case ra < rb:
			return 1
		}
		return 0
	})

	return &Corpus{entries: sorted}, nil
}

// Len returns the number of entries
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Entry returns the i-th entry in check order
func (c *Corpus) Entry(i int) Entry {
	return c.entries[i]
}

// Entries returns the entries in check order
// The returned slice is a copy; the buffers are shared and must not be modified
func (c *Corpus) Entries() []Entry {
	return slices.Clone(c.entries)
}

// TotalSize returns the combined size of all documents
func (c *Corpus) TotalSize() int {
	total := 0
	for _, e := range c.entries {
		total += len(e.Data)
	}
	return total
}

// Without returns a corpus with the entries at the given indices removed
// Used by leave-k-out evaluation
func (c *Corpus) Without(indices ...int) (*Corpus, error) {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(c.entries) {
			return nil, fmt.Errorf("%w: entry index %d out of range", ErrConfiguration, i)
		}
		drop[i] = true
	}

	kept := make([]Entry, 0, len(c.entries))
	for i, e := range c.entries {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	return NewCorpus(kept)
}

// AtLeast reports whether word occurs at least n times in every entry's document,
// where n is that entry's multiplicity. Stops at the first failing entry.
func (c *Corpus) AtLeast(word []byte) bool {
	for _, e := range c.entries {
		if CountUpTo(e.Data, word, e.Multiplicity) < e.Multiplicity {
			return false
		}
	}
	return true
}

// Exactly reports whether word occurs exactly multiplicity times in every document
func (c *Corpus) Exactly(word []byte) bool {
	for _, e := range c.entries {
		if CountUpTo(e.Data, word, e.Multiplicity+1) != e.Multiplicity {
			return false
		}
	}
	return true
}

// Counts returns the non-overlapping occurrence count of word in every document
func (c *Corpus) Counts(word []byte) []int {
	counts := make([]int, len(c.entries))
	for i, e := range c.entries {
		counts[i] = Count(e.Data, word)
	}
	return counts
}

// Count returns the number of non-overlapping occurrences of word in data
func Count(data, word []byte) int {
	if len(word) == 0 {
		return 0
	}
	return bytes.Count(data, word)
}

// CountUpTo counts non-overlapping occurrences of word in data, stopping once limit is reached
// Matches bytes.Count for every result below limit
func CountUpTo(data, word []byte, limit int) int {
	if len(word) == 0 {
		return 0
	}
	count := 0
	for count < limit {
		i := bytes.Index(data, word)
		if i < 0 {
			break
		}
		count++
		data = data[i+len(word):]
	}
	return count
}

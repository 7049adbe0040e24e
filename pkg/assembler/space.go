/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: space.go
Description: Candidate space of the assembler. Sizes the cross product of vocabulary and
gap range from a histogram of word lengths before anything is enumerated, shrinks it to a
bound when needed, and enumerates compact candidate descriptors in best-first order.
*/

package assembler

import (
	"bytes"
	"cmp"
	"math"
	"slices"

	"github.com/kleascm/akaylee-repeats/pkg/core"
)

// none marks an absent third literal in a candidate
const none = -1

// candidate indexes into the vocabulary of its space
type candidate struct {
	a, b, c int32
	g2, g3  int32
}

// Space is the set of patterns built from a vocabulary and a gap range
type Space struct {
	vocab   [][]byte
	minGap  int
	maxGap  int
	longest int
}

// NewSpace creates the space over a vocabulary, which is deduplicated and sorted
func NewSpace(vocab [][]byte, minGap, maxGap int) *Space {
	seen := make(map[string]struct{}, len(vocab))
	words := make([][]byte, 0, len(vocab))
	for _, w := range vocab {
		if len(w) == 0 {
			continue
		}
		if _, ok := seen[string(w)]; ok {
			continue
		}
		seen[string(w)] = struct{}{}
		words = append(words, slices.Clone(w))
	}
	slices.SortFunc(words, core.CompareWords)

	s := &Space{vocab: words, minGap: minGap, maxGap: maxGap}
	if len(words) > 0 {
		s.longest = len(words[0])
	}
	return s
}

// Vocabulary returns the words of the space, longest first
func (s *Space) Vocabulary() [][]byte { return s.vocab }

// Longest returns the length of the longest vocabulary word
func (s *Space) Longest() int { return s.longest }

// Gaps returns the gap range
func (s *Space) Gaps() (int, int) { return s.minGap, s.maxGap }

func (s *Space) gapCount() int64 {
	if s.maxGap < s.minGap {
		return 0
	}
	return int64(s.maxGap - s.minGap + 1)
}

// Size returns the number of candidate patterns, saturating at math.MaxInt64
// Only patterns whose literals together are longer than the longest word are counted.
func (s *Space) Size() int64 {
	if len(s.vocab) == 0 || s.gapCount() == 0 {
		return 0
	}

	// above[l] is the number of words of length l or more
	hist := make([]int64, s.longest+1)
	for _, w := range s.vocab {
		hist[len(w)]++
	}
	above := make([]int64, s.longest+2)
	for l := s.longest; l >= 0; l-- {
		above[l] = above[l+1] + hist[l]
	}
	longer := func(l int) int64 {
		if l < 0 {
			return above[0]
		}
		if l >= s.longest {
			return 0
		}
		return above[l+1]
	}

	var pairs, triples int64
	for la := 1; la <= s.longest; la++ {
		if hist[la] == 0 {
			continue
		}
		pairs = addSat(pairs, mulSat(hist[la], longer(s.longest-la)))
		for lb := 1; lb <= s.longest; lb++ {
			if hist[lb] == 0 {
				continue
			}
			triples = addSat(triples, mulSat(mulSat(hist[la], hist[lb]), longer(s.longest-la-lb)))
		}
	}

	g := s.gapCount()
	return addSat(mulSat(pairs, g), mulSat(triples, mulSat(g, g)))
}

// Fit shrinks the space until its size is at most limit. The gap range is halved first,
// then the shortest words are dropped roughly a tenth of the vocabulary at a time.
// The returned flag reports whether anything was cut.
func (s *Space) Fit(limit int64) (*Space, bool) {
	cur := s
	truncated := false
	for cur.Size() > limit {
		truncated = true
		if g := cur.gapCount(); g > 1 {
			cur = &Space{vocab: cur.vocab, minGap: cur.minGap, maxGap: cur.minGap + int(g/2) - 1, longest: cur.longest}
			continue
		}
		drop := max(1, len(cur.vocab)/10)
		vocab := cur.vocab[:len(cur.vocab)-drop]
		cur = &Space{vocab: vocab, minGap: cur.minGap, maxGap: cur.maxGap, longest: cur.longest}
		if len(vocab) == 0 {
			cur.longest = 0
		}
	}
	return cur, truncated
}

// enumerate lists every candidate in best-first order
func (s *Space) enumerate() []candidate {
	size := s.Size()
	if size == 0 {
		return nil
	}
	out := make([]candidate, 0, min(size, 1<<24))

	n := int32(len(s.vocab))
	for a := int32(0); a < n; a++ {
		la := len(s.vocab[a])
		for b := int32(0); b < n; b++ {
			lb := len(s.vocab[b])
			for g2 := s.minGap; g2 <= s.maxGap; g2++ {
				if la+lb > s.longest {
					out = append(out, candidate{a: a, b: b, c: none, g2: int32(g2)})
				}
				for c := int32(0); c < n; c++ {
					// Words are sorted longest first, so the rest are too short
					if la+lb+len(s.vocab[c]) <= s.longest {
						break
					}
					for g3 := s.minGap; g3 <= s.maxGap; g3++ {
						out = append(out, candidate{a: a, b: b, c: c, g2: int32(g2), g3: int32(g3)})
					}
				}
			}
		}
	}

	slices.SortFunc(out, s.compare)
	return out
}

func (s *Space) litLen(c candidate) int {
	n := len(s.vocab[c.a]) + len(s.vocab[c.b])
	if c.c != none {
		n += len(s.vocab[c.c])
	}
	return n
}

func (s *Space) gapLen(c candidate) int {
	if c.c == none {
		return int(c.g2)
	}
	return int(c.g2 + c.g3)
}

// compare matches Pattern.Compare without building patterns
func (s *Space) compare(x, y candidate) int {
	if c := cmp.Compare(s.litLen(y), s.litLen(x)); c != 0 {
		return c
	}
	if c := cmp.Compare(s.gapLen(x), s.gapLen(y)); c != 0 {
		return c
	}
	if c := cmp.Compare(len(s.vocab[x.a]), len(s.vocab[y.a])); c != 0 {
		return c
	}
	if c := bytes.Compare(s.vocab[x.a], s.vocab[y.a]); c != 0 {
		return c
	}
	if c := cmp.Compare(x.g2, y.g2); c != 0 {
		return c
	}
	if c := bytes.Compare(s.vocab[x.b], s.vocab[y.b]); c != 0 {
		return c
	}
	if c := cmp.Compare(s.gap3(x), s.gap3(y)); c != 0 {
		return c
	}
	return bytes.Compare(s.lit3(x), s.lit3(y))
}

func (s *Space) gap3(c candidate) int32 {
	if c.c == none {
		return 0
	}
	return c.g3
}

func (s *Space) lit3(c candidate) []byte {
	if c.c == none {
		return nil
	}
	return s.vocab[c.c]
}

// pattern materialises a candidate
func (s *Space) pattern(c candidate) Pattern {
	p := Pattern{Lit1: s.vocab[c.a], Gap2: int(c.g2), Lit2: s.vocab[c.b]}
	if c.c != none {
		p.Gap3 = int(c.g3)
		p.Lit3 = s.vocab[c.c]
	}
	return p
}

// Patterns enumerates the whole space as patterns in best-first order
func (s *Space) Patterns() []Pattern {
	cands := s.enumerate()
	out := make([]Pattern, len(cands))
	for i, c := range cands {
		out[i] = s.pattern(c)
	}
	return out
}

func addSat(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pattern.go
Description: Gapped segment patterns. A pattern is up to three literals separated by
fixed-length spans of arbitrary bytes, matched greedily and without overlap.
*/

package assembler

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
)

// Pattern is literal1 [gap2 literal2 [gap3 literal3]]
type Pattern struct {
	Lit1 []byte `json:"-"`
	Gap2 int    `json:"gap2"`
	Lit2 []byte `json:"-"`
	Gap3 int    `json:"gap3"`
	Lit3 []byte `json:"-"`
}

// LiteralLen returns the total literal length
func (p Pattern) LiteralLen() int {
	return len(p.Lit1) + len(p.Lit2) + len(p.Lit3)
}

// GapLen returns the total gap length
func (p Pattern) GapLen() int {
	n := 0
	if len(p.Lit2) > 0 {
		n += p.Gap2
	}
	if len(p.Lit3) > 0 {
		n += p.Gap3
	}
	return n
}

// Span returns the number of bytes one match covers
func (p Pattern) Span() int {
	return p.LiteralLen() + p.GapLen()
}

// Valid reports whether the pattern is well formed
func (p Pattern) Valid() bool {
	if len(p.Lit1) == 0 || p.Gap2 < 0 || p.Gap3 < 0 {
		return false
	}
	if len(p.Lit3) > 0 && len(p.Lit2) == 0 {
		return false
	}
	return true
}

// String renders the pattern as quoted literals and bracketed gap widths
func (p Pattern) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%q", p.Lit1)
	if len(p.Lit2) > 0 {
		fmt.Fprintf(&sb, " [%d] %q", p.Gap2, p.Lit2)
	}
	if len(p.Lit3) > 0 {
		fmt.Fprintf(&sb, " [%d] %q", p.Gap3, p.Lit3)
	}
	return sb.String()
}

// matchesAt reports whether the whole pattern matches data starting at i
func (p Pattern) matchesAt(data []byte, i int) bool {
	if i+p.Span() > len(data) {
		return false
	}
	if !bytes.HasPrefix(data[i:], p.Lit1) {
		return false
	}
	if len(p.Lit2) == 0 {
		return true
	}
	j := i + len(p.Lit1) + p.Gap2
	if !bytes.HasPrefix(data[j:], p.Lit2) {
		return false
	}
	if len(p.Lit3) == 0 {
		return true
	}
	k := j + len(p.Lit2) + p.Gap3
	return bytes.HasPrefix(data[k:], p.Lit3)
}

// CountUpTo counts non-overlapping matches in data, stopping once limit is reached
// A limit <= 0 counts every match.
func (p Pattern) CountUpTo(data []byte, limit int) int {
	if !p.Valid() {
		return 0
	}
	span := p.Span()
	n := 0
	for i := 0; i+span <= len(data); {
		off := bytes.Index(data[i:], p.Lit1)
		if off < 0 {
			break
		}
		i += off
		if !p.matchesAt(data, i) {
			i++
			continue
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
		i += span
	}
	return n
}

// Count counts every non-overlapping match in data
func (p Pattern) Count(data []byte) int {
	return p.CountUpTo(data, 0)
}

// Compare orders patterns best first: longer literals, then tighter gaps, then a shorter
// first literal, then the literals and gaps in byte order
func (p Pattern) Compare(o Pattern) int {
	if c := cmp.Compare(o.LiteralLen(), p.LiteralLen()); c != 0 {
		return c
	}
	if c := cmp.Compare(p.GapLen(), o.GapLen()); c != 0 {
		return c
	}
	if c := cmp.Compare(len(p.Lit1), len(o.Lit1)); c != 0 {
		return c
	}
	if c := bytes.Compare(p.Lit1, o.Lit1); c != 0 {
		return c
	}
	if c := cmp.Compare(p.Gap2, o.Gap2); c != 0 {
		return c
	}
	if c := bytes.Compare(p.Lit2, o.Lit2); c != 0 {
		return c
	}
	if c := cmp.Compare(p.Gap3, o.Gap3); c != 0 {
		return c
	}
	return bytes.Compare(p.Lit3, o.Lit3)
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify.go
Description: Reference counter and classifier. A plain position-by-position scan used to
recheck the fast path in tests and in the optional verify mode.
*/

package assembler

import "github.com/kleascm/akaylee-repeats/pkg/core"

// ReferenceCount counts non-overlapping matches by trying every start position
func ReferenceCount(p Pattern, data []byte) int {
	if !p.Valid() {
		return 0
	}
	span := p.Span()
	n := 0
	for i := 0; i+span <= len(data); i++ {
		if p.matchesAt(data, i) {
			n++
			i += span - 1
		}
	}
	return n
}

// ReferenceClassify classifies p from full counts on every entry
func ReferenceClassify(corpus *core.Corpus, p Pattern, fuzz int) Class {
	atLeast, exact := 0, 0
	for _, e := range corpus.Entries() {
		n := ReferenceCount(p, e.Data)
		if n >= e.Multiplicity {
			atLeast++
		}
		if n == e.Multiplicity {
			exact++
		}
	}
	need := corpus.Len() - fuzz
	switch {
	case atLeast >= need && exact >= need:
		return ClassGood
	case atLeast >= need:
		return ClassPart
	default:
		return ClassNone
	}
}

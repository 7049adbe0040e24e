/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: subwords.go
Description: Subword extractor. Derives every contiguous substring of the anchor words so
the assembler can rebuild markers that are interrupted by a variable field.
*/

package inference

import (
	"slices"

	"github.com/kleascm/akaylee-repeats/pkg/core"
)

// Subwords returns every distinct contiguous substring of the anchors with at least
// minLen bytes, longest first and then in byte order
func Subwords(anchors [][]byte, minLen int) [][]byte {
	if minLen < 1 {
		minLen = 1
	}

	seen := make(map[string]struct{})
	var out [][]byte
	for _, a := range anchors {
		for i := 0; i < len(a); i++ {
			for j := i + minLen; j <= len(a); j++ {
				key := string(a[i:j])
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, slices.Clone(a[i:j]))
			}
		}
	}

	slices.SortFunc(out, core.CompareWords)
	return out
}

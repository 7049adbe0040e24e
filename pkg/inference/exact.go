/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: exact.go
Description: Exact match filter. Narrows a word pool to the words whose non-overlapping
count equals the multiplicity of every corpus entry; these are the most likely true markers.
*/

package inference

import (
	"context"

	"github.com/kleascm/akaylee-repeats/pkg/core"
)

// FilterExact returns the words of pool whose count equals every entry's multiplicity
// The pool order is preserved. A nil evaluator checks the words sequentially.
func FilterExact(ctx context.Context, eval *core.Evaluator, corpus *core.Corpus, pool [][]byte) ([][]byte, error) {
	if eval == nil {
		eval = core.NewEvaluator(1, false, nil)
	}

	keep, err := eval.Run(ctx, len(pool), func(ctx context.Context, i int) bool {
		word := pool[i]
		return eval.AllEntries(ctx, corpus, func(e core.Entry) bool {
			// One extra occurrence is enough to rule the word out
			return core.CountUpTo(e.Data, word, e.Multiplicity+1) == e.Multiplicity
		})
	})
	if err != nil {
		return nil, err
	}

	var out [][]byte
	for i, ok := range keep {
		if ok {
			out = append(out, pool[i])
		}
	}
	return out, nil
}

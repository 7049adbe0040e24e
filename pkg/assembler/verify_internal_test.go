/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: verify_internal_test.go
Description: Checks that verify mode rechecks both ranked lists.
*/

package assembler

import (
	"testing"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCoversGoodAndPart(t *testing.T) {
	corpus, err := core.NewCorpus([]core.Entry{
		{Multiplicity: 2, Data: []byte("\x81AB\x82\x83\x84CD\x85AB\x86\x87\x88CD\x89")},
		{Multiplicity: 1, Data: []byte("\x81AB\x82\x83\x84CD\x85")},
	})
	require.NoError(t, err)
	a, err := New(corpus, core.DefaultAssemblerConfig())
	require.NoError(t, err)

	good := Pattern{Lit1: []byte("AB"), Gap2: 3, Lit2: []byte("CD")}
	require.Equal(t, ClassGood, ReferenceClassify(corpus, good, 0))

	t.Run("agreeing lists", func(t *testing.T) {
		m := Match{Pattern: good, Class: ClassGood}
		assert.NoError(t, a.verify(&Result{Good: []Match{m}, Part: []Match{m}}, 0))
	})

	t.Run("misclassified good pattern missing from part", func(t *testing.T) {
		other := Pattern{Lit1: []byte("AB"), Gap2: 4, Lit2: []byte("D")}
		r := &Result{
			Good: []Match{{Pattern: good, Class: ClassPart}},
			Part: []Match{{Pattern: other, Class: ReferenceClassify(corpus, other, 0)}},
		}
		assert.ErrorIs(t, a.verify(r, 0), core.ErrInvariantViolation)
	})

	t.Run("misclassified part pattern", func(t *testing.T) {
		r := &Result{Part: []Match{{Pattern: good, Class: ClassNone}}}
		assert.ErrorIs(t, a.verify(r, 0), core.ErrInvariantViolation)
	})
}

package tracegrad

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDefLinearBilinear exercises DefLinear against pairScalePrim, a
// bilinear primitive (spec.md §4.4): re-invoking it with one argument
// replaced by its tangent and the other left at its actual value must
// reproduce that argument's own partial, with no explicit sign table.
func TestDefLinearBilinear(t *testing.T) {
	wrtS := func(s any) (any, error) { return PairScale(s, Pair{A: 3, B: 4}) }
	y, jvp, err := MakeJVP(wrtS, 2.0)
	require.NoError(t, err)
	require.Equal(t, Pair{A: 6, B: 8}, y)

	dyds, err := jvp(1.0)
	require.NoError(t, err)
	require.Equal(t, Pair{A: 3, B: 4}, dyds)

	wrtP := func(p any) (any, error) { return PairScale(2.0, p) }
	y2, jvp2, err := MakeJVP(wrtP, Pair{A: 3, B: 4})
	require.NoError(t, err)
	require.Equal(t, Pair{A: 6, B: 8}, y2)

	dydp, err := jvp2(Pair{A: 1, B: 0})
	require.NoError(t, err)
	require.Equal(t, Pair{A: 2, B: 0}, dydp)
}

// TestSparseOutgradDiamond forces addOutgrad's first-contribution and
// subsequent-contribution-on-a-mutable-base sparse paths: both
// branches of the diamond return a *SparseObject touching only
// Pair.A, and they must combine rather than the second overwriting
// the first.
func TestSparseOutgradDiamond(t *testing.T) {
	f := func(p any) (any, error) {
		a, err := PairFirst(p)
		if err != nil {
			return nil, err
		}
		b, err := PairFirst(p)
		if err != nil {
			return nil, err
		}
		return Add(a, b)
	}

	y, vjp, err := MakeVJP(f, Pair{A: 3, B: 5})
	require.NoError(t, err)
	require.Equal(t, 6.0, y)

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.Equal(t, Pair{A: 2, B: 0}, ingrad)
}

// TestSparseOutgradMixedWithDense forces addOutgrad's
// subsequent-contribution-on-a-borrowed-(non-mutable)-base sparse
// path: the node first accumulates a dense Pair contribution (from
// pairSumPrim), then a sparse one (from pairFirstPrim) touching only
// .A, and the two must still combine correctly.
func TestSparseOutgradMixedWithDense(t *testing.T) {
	f := func(p any) (any, error) {
		a, err := PairFirst(p)
		if err != nil {
			return nil, err
		}
		b, err := PairSum(p)
		if err != nil {
			return nil, err
		}
		return Add(a, b)
	}

	y, vjp, err := MakeVJP(f, Pair{A: 3, B: 5})
	require.NoError(t, err)
	require.Equal(t, 11.0, y) // p.A + (p.A+p.B) = 3 + 8

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.Equal(t, Pair{A: 2, B: 1}, ingrad)
}

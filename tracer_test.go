package tracegrad

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// shouldPop asserts that running a traced computation leaves the
// current goroutine's trace stack exactly as it found it, the same
// invariant the teacher's tape tests check for tape frame counts.
func shouldPop(t *testing.T, f func() (any, error)) {
	before := len(*currentStack())
	_, err := f()
	require.NoError(t, err)
	require.Equal(t, before, len(*currentStack()))
}

func TestPushPopBalanced(t *testing.T) {
	shouldPop(t, func() (any, error) {
		_, vjp, err := MakeVJP(cube, 2.0)
		if err != nil {
			return nil, err
		}
		return vjp, nil
	})
	shouldPop(t, func() (any, error) {
		_, jvp, err := MakeJVP(cube, 2.0)
		if err != nil {
			return nil, err
		}
		return jvp(1.0)
	})
}

func TestPopTracePanicsOnUnbalancedStack(t *testing.T) {
	frame := pushTrace(modeVJP)
	other := pushTrace(modeVJP)
	defer popTrace(other)

	defer func() {
		r := recover()
		require.NotNil(t, r)
	}()
	popTrace(frame)
}

func TestTopBoxedArgsPicksMostRecentTrace(t *testing.T) {
	outer := &Box{value: 1.0, node: newRootVJPNode(), trace: 1, m: modeVJP}
	inner := &Box{value: 2.0, node: newRootVJPNode(), trace: 2, m: modeVJP}

	argnums, top := topBoxedArgs([]any{outer, inner, 3.0})
	require.Equal(t, []int{1}, argnums)
	require.Equal(t, int64(2), top.id)
}

// TestStaleBoxRejected covers spec.md §7's differentiation-invalid
// error class: a *Box stashed outside the function MakeVJP traced,
// then reused after MakeVJP has returned and its trace has closed,
// must be rejected rather than silently retraced.
func TestStaleBoxRejected(t *testing.T) {
	var leaked any
	f := func(x any) (any, error) {
		v, err := Mul(x, x)
		if err != nil {
			return nil, err
		}
		leaked = v
		return v, nil
	}

	_, vjp, err := MakeVJP(f, 3.0)
	require.NoError(t, err)
	_, err = vjp(1.0)
	require.NoError(t, err)

	_, err = Add(leaked, 1.0)
	require.Error(t, err)
	var diffErr *DifferentiationInvalidError
	require.ErrorAs(t, err, &diffErr)
}

func TestMTSafeOnIsolatesGoroutineStacks(t *testing.T) {
	MTSafeOn()
	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := float64(i + 1)
			_, vjp, err := MakeVJP(cube, x)
			require.NoError(t, err)
			g, err := vjp(1.0)
			require.NoError(t, err)
			results[i] = g.(float64)
		}(i)
	}
	wg.Wait()
	for i, g := range results {
		x := float64(i + 1)
		require.InDelta(t, 3*x*x+2, g, 1e-9)
	}
}

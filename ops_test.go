package tracegrad

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// cube computes x**3 + 2*x entirely through traced primitives, the
// polynomial used by spec.md §8's end-to-end VJP/JVP scenario.
func cube(x any) (any, error) {
	x2, err := Mul(x, x)
	if err != nil {
		return nil, err
	}
	x3, err := Mul(x2, x)
	if err != nil {
		return nil, err
	}
	twoX, err := Mul(2.0, x)
	if err != nil {
		return nil, err
	}
	return Add(x3, twoX)
}

func TestMakeVJPPolynomial(t *testing.T) {
	y, vjp, err := MakeVJP(cube, 2.0)
	require.NoError(t, err)
	require.Equal(t, 12.0, y) // 2**3 + 2*2

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.InDelta(t, 14.0, ingrad.(float64), 1e-9) // 3*2**2 + 2
}

func TestMakeJVPPolynomial(t *testing.T) {
	y, jvp, err := MakeJVP(cube, 2.0)
	require.NoError(t, err)
	require.Equal(t, 12.0, y)

	tangent, err := jvp(1.0)
	require.NoError(t, err)
	require.InDelta(t, 14.0, tangent.(float64), 1e-9)
}

func TestMakeVJPTwoArgumentPrimitive(t *testing.T) {
	// f(x, y) = x*y + y, differentiated with respect to one argument
	// at a time by holding the other fixed in the closure: MakeVJP
	// traces a single-input function, so a multi-argument primitive
	// is differentiated one slot at a time, the same way Grad(f, argnum)
	// does in the system this core is modeled on.
	f := func(xv, yv float64) (float64, error) {
		xy, err := Mul(xv, yv)
		if err != nil {
			return 0, err
		}
		out, err := Add(xy, yv)
		if err != nil {
			return 0, err
		}
		return out.(float64), nil
	}

	wrtX := func(x any) (any, error) {
		xy, err := Mul(x, 4.0)
		if err != nil {
			return nil, err
		}
		return Add(xy, 4.0)
	}
	_, vjpX, err := MakeVJP(wrtX, 2.0)
	require.NoError(t, err)
	dfdx, err := vjpX(1.0)
	require.NoError(t, err)
	require.InDelta(t, 4.0, dfdx.(float64), 1e-9) // d/dx(x*y+y) = y = 4

	wrtY := func(y any) (any, error) {
		xy, err := Mul(2.0, y)
		if err != nil {
			return nil, err
		}
		return Add(xy, y)
	}
	_, vjpY, err := MakeVJP(wrtY, 4.0)
	require.NoError(t, err)
	dfdy, err := vjpY(1.0)
	require.NoError(t, err)
	require.InDelta(t, 3.0, dfdy.(float64), 1e-9) // d/dy(x*y+y) = x+1 = 3

	out, err := f(2.0, 4.0)
	require.NoError(t, err)
	require.Equal(t, 12.0, out)
}

func TestMakeVJPLog(t *testing.T) {
	f := func(x any) (any, error) { return Log(x) }
	y, vjp, err := MakeVJP(f, math.E)
	require.NoError(t, err)
	require.InDelta(t, 1.0, y.(float64), 1e-9)

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.InDelta(t, 1.0/math.E, ingrad.(float64), 1e-9)
}

// TestBackwardDiamondSingleInvocation exercises spec.md §8's diamond
// graph: one value feeds two branches that reconverge, and the
// backward pass must both sum the two branches' contributions and
// invoke the shared node's vjp only once.
func TestBackwardDiamondSingleInvocation(t *testing.T) {
	calls := 0
	square := NewPrimitive("testSquare", func(args ...any) any {
		x := args[0].(float64)
		return x * x
	})
	DefVJP(square, func(ans any, args []any) func(g any) any {
		x := args[0]
		return func(g any) any {
			calls++
			return mul2(mul2(2.0, x), g)
		}
	})

	f := func(x any) (any, error) {
		sq, err := square.Call(x)
		if err != nil {
			return nil, err
		}
		return Add(sq, sq)
	}

	y, vjp, err := MakeVJP(f, 3.0)
	require.NoError(t, err)
	require.Equal(t, 18.0, y) // 2*3**2

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.InDelta(t, 12.0, ingrad.(float64), 1e-9) // d/dx(2x**2) = 4x = 12
	require.Equal(t, 1, calls)
}

// TestMakeVJPIndependentOutput covers spec.md §8's independence
// scenario: a traced function that never uses its input must not
// error, and must return a zero gradient shaped like the input.
func TestMakeVJPIndependentOutput(t *testing.T) {
	f := func(x any) (any, error) { return 5.0, nil }
	y, vjp, err := MakeVJP(f, 3.0)
	require.NoError(t, err)
	require.Equal(t, 5.0, y)

	ingrad, err := vjp(1.0)
	require.NoError(t, err)
	require.Equal(t, 0.0, ingrad)
}

// TestNestedGradOfGrad covers spec.md §8's second-derivative
// scenario (Box of Box): differentiating the gradient of f(x)=x**3
// again must recover f''(x) = 6x, exercising topBoxedArgs' selection
// of the most recently opened trace among boxed arguments.
func TestNestedGradOfGrad(t *testing.T) {
	cubeOnly := func(x any) (any, error) {
		x2, err := Mul(x, x)
		if err != nil {
			return nil, err
		}
		return Mul(x2, x)
	}

	firstDeriv := func(x any) (any, error) {
		_, vjp, err := MakeVJP(cubeOnly, x)
		if err != nil {
			return nil, err
		}
		return vjp(1.0)
	}

	firstAt2, err := firstDeriv(2.0)
	require.NoError(t, err)
	require.InDelta(t, 12.0, firstAt2.(float64), 1e-9) // 3*2**2

	_, vjp2, err := MakeVJP(firstDeriv, 2.0)
	require.NoError(t, err)
	secondDeriv, err := vjp2(1.0)
	require.NoError(t, err)
	require.InDelta(t, 12.0, secondDeriv.(float64), 1e-9) // f''(x) = 6x = 12
}

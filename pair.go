package tracegrad

// Pair is a two-float container used to exercise the sparse outgrad
// fast path (sparse.go) and the bilinear case of DefLinear: a single
// concrete registered VSpace beyond float64VSpace, standing in for
// the general "container/array type" spec.md §4.1 and the Known
// scope boundary note in DESIGN.md describe as the intended extension
// point for Register.
type Pair struct {
	A, B float64
}

type pairVSpace struct{}

func (pairVSpace) Zeros(x any) any { return Pair{} }

func (pairVSpace) Add(a, b any) any {
	ap, bp := a.(Pair), b.(Pair)
	return Pair{A: ap.A + bp.A, B: ap.B + bp.B}
}

func (pairVSpace) MutAdd(a, b any) any {
	return pairVSpace{}.Add(a, b)
}

func (pairVSpace) ScalarMul(x any, s float64) any {
	p := x.(Pair)
	return Pair{A: p.A * s, B: p.B * s}
}

func (pairVSpace) InnerProd(a, b any) float64 {
	ap, bp := a.(Pair), b.(Pair)
	return ap.A*bp.A + ap.B*bp.B
}

func (pairVSpace) Covector(x any) any { return x }

func (pairVSpace) IsComplex() bool { return false }

// pairScalePrim scales a Pair by a float64 scalar, elementwise: it is
// bilinear, not linear in its combined arguments, since neither
// argument alone determines the output without the other. Its JVP is
// registered via DefLinear, re-invoking pairScalePrim with one
// argument replaced by its tangent and the other left at its actual
// value to obtain each argument's own partial contribution, the same
// way original_source/autograd/core.py's
// scalar_mul/inner_prod use def_linear rather than a hand-written
// product rule.
var pairScalePrim = NewPrimitive("pairScale", func(args ...any) any {
	s := args[0].(float64)
	p := args[1].(Pair)
	return Pair{A: s * p.A, B: s * p.B}
})

// pairFirstPrim and pairSecondPrim each project one field out of a
// Pair. Their vjp rules only ever touch the projected field, so they
// return a *SparseObject instead of materializing a full Pair zero
// and adding a single nonzero entry into it — the fast path
// sparse.go exists for.
var pairFirstPrim = NewPrimitive("pairFirst", func(args ...any) any {
	return args[0].(Pair).A
})

var pairSecondPrim = NewPrimitive("pairSecond", func(args ...any) any {
	return args[0].(Pair).B
})

// pairSumPrim collapses a Pair to the sum of its fields; its vjp
// returns a full (dense) Pair, used alongside pairFirstPrim/
// pairSecondPrim in tests to force a node to accumulate a dense
// contribution and a sparse one against the same accumulator entry.
var pairSumPrim = NewPrimitive("pairSum", func(args ...any) any {
	p := args[0].(Pair)
	return p.A + p.B
})

func init() {
	Register(Pair{}, pairVSpace{})

	DefVJP(pairScalePrim,
		func(ans any, args []any) func(g any) any {
			p := args[1].(Pair)
			return func(g any) any {
				gf := g.(float64)
				return Pair{A: gf * p.A, B: gf * p.B}
			}
		},
		func(ans any, args []any) func(g any) any {
			s := args[0].(float64)
			return func(g any) any {
				gp := g.(Pair)
				return Pair{A: s * gp.A, B: s * gp.B}
			}
		},
	)
	DefLinear(pairScalePrim, 2)

	DefVJP(pairFirstPrim, func(ans any, args []any) func(g any) any {
		sample := args[0]
		return func(g any) any {
			gf := g.(float64)
			return NewSparseObject(pairVSpace{}, sample, func(vs VSpace, base any) any {
				b := base.(Pair)
				return Pair{A: b.A + gf, B: b.B}
			})
		}
	})

	DefVJP(pairSecondPrim, func(ans any, args []any) func(g any) any {
		sample := args[0]
		return func(g any) any {
			gf := g.(float64)
			return NewSparseObject(pairVSpace{}, sample, func(vs VSpace, base any) any {
				b := base.(Pair)
				return Pair{A: b.A, B: b.B + gf}
			})
		}
	})

	DefVJP(pairSumPrim, func(ans any, args []any) func(g any) any {
		return func(g any) any {
			gf := g.(float64)
			return Pair{A: gf, B: gf}
		}
	})
}

// PairScale returns s*p, differentiable in both arguments.
func PairScale(s, p any) (any, error) { return pairScalePrim.Call(s, p) }

// PairFirst returns p's first field.
func PairFirst(p any) (any, error) { return pairFirstPrim.Call(p) }

// PairSecond returns p's second field.
func PairSecond(p any) (any, error) { return pairSecondPrim.Call(p) }

// PairSum returns the sum of p's fields.
func PairSum(p any) (any, error) { return pairSumPrim.Call(p) }

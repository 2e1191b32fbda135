package tracegrad

import "math"

// Scalar float64 primitives and their derivative rules, grounded
// one-for-one in the teacher's tape.go Arithmetic opcodes (Add, Sub,
// Mul, Div, Neg) and elementals.go's RegisterElemental calls (Log,
// Exp, Sqrt, Sin, Cos).
//
// Every rule below computes its result through the traced helpers
// (mul2, add2, ...) instead of Go's own +, -, *, /: ans and the
// arguments a rule receives are only guaranteed to be float64 when
// no other trace is open around the current one. When differentiation
// is nested (spec.md §4.3, grad of grad), they arrive still boxed on
// that outer trace, and only routing the rule's own arithmetic back
// through the traced primitives lets the outer trace observe it and
// build the second-order graph. Using the raw float64 operators here
// would silently truncate nesting to first order.

var addPrim = NewPrimitive("add", func(args ...any) any {
	return args[0].(float64) + args[1].(float64)
})

var subPrim = NewPrimitive("sub", func(args ...any) any {
	return args[0].(float64) - args[1].(float64)
})

var mulPrim = NewPrimitive("mul", func(args ...any) any {
	return args[0].(float64) * args[1].(float64)
})

var divPrim = NewPrimitive("div", func(args ...any) any {
	return args[0].(float64) / args[1].(float64)
})

var negPrim = NewPrimitive("neg", func(args ...any) any {
	return -args[0].(float64)
})

var logPrim = NewPrimitive("log", func(args ...any) any {
	return math.Log(args[0].(float64))
})

var expPrim = NewPrimitive("exp", func(args ...any) any {
	return math.Exp(args[0].(float64))
})

var sqrtPrim = NewPrimitive("sqrt", func(args ...any) any {
	return math.Sqrt(args[0].(float64))
})

var sinPrim = NewPrimitive("sin", func(args ...any) any {
	return math.Sin(args[0].(float64))
})

var cosPrim = NewPrimitive("cos", func(args ...any) any {
	return math.Cos(args[0].(float64))
})

func add2(a, b any) any { v, _ := addPrim.Call(a, b); return v }
func sub2(a, b any) any { v, _ := subPrim.Call(a, b); return v }
func mul2(a, b any) any { v, _ := mulPrim.Call(a, b); return v }
func div2(a, b any) any { v, _ := divPrim.Call(a, b); return v }
func neg1(a any) any     { v, _ := negPrim.Call(a); return v }
func log1(a any) any     { v, _ := logPrim.Call(a); return v }
func exp1(a any) any     { v, _ := expPrim.Call(a); return v }
func sqrt1(a any) any    { v, _ := sqrtPrim.Call(a); return v }
func sin1(a any) any     { v, _ := sinPrim.Call(a); return v }
func cos1(a any) any     { v, _ := cosPrim.Call(a); return v }

func init() {
	DefVJP(addPrim,
		func(ans any, args []any) func(g any) any { return func(g any) any { return g } },
		func(ans any, args []any) func(g any) any { return func(g any) any { return g } },
	)
	DefJVP(addPrim,
		func(g any, ans any, args []any) any { return g },
		func(g any, ans any, args []any) any { return g },
	)

	DefVJP(subPrim,
		func(ans any, args []any) func(g any) any { return func(g any) any { return g } },
		func(ans any, args []any) func(g any) any { return func(g any) any { return neg1(g) } },
	)
	DefJVP(subPrim,
		func(g any, ans any, args []any) any { return g },
		func(g any, ans any, args []any) any { return neg1(g) },
	)

	DefVJP(negPrim, func(ans any, args []any) func(g any) any {
		return func(g any) any { return neg1(g) }
	})
	DefJVP(negPrim, func(g any, ans any, args []any) any { return neg1(g) })

	DefVJP(mulPrim,
		func(ans any, args []any) func(g any) any {
			y := args[1]
			return func(g any) any { return mul2(g, y) }
		},
		func(ans any, args []any) func(g any) any {
			x := args[0]
			return func(g any) any { return mul2(g, x) }
		},
	)
	DefJVP(mulPrim,
		func(g any, ans any, args []any) any { return mul2(g, args[1]) },
		func(g any, ans any, args []any) any { return mul2(args[0], g) },
	)

	DefVJP(divPrim,
		func(ans any, args []any) func(g any) any {
			y := args[1]
			return func(g any) any { return div2(g, y) }
		},
		func(ans any, args []any) func(g any) any {
			x, y := args[0], args[1]
			return func(g any) any {
				return neg1(div2(mul2(g, x), mul2(y, y)))
			}
		},
	)
	DefJVP(divPrim,
		func(g any, ans any, args []any) any { return div2(g, args[1]) },
		func(g any, ans any, args []any) any {
			x, y := args[0], args[1]
			return neg1(div2(mul2(x, g), mul2(y, y)))
		},
	)

	DefVJP(logPrim, func(ans any, args []any) func(g any) any {
		x := args[0]
		return func(g any) any { return div2(g, x) }
	})
	DefJVP(logPrim, func(g any, ans any, args []any) any {
		return div2(g, args[0])
	})

	DefVJP(expPrim, func(ans any, args []any) func(g any) any {
		return func(g any) any { return mul2(g, ans) }
	})
	DefJVP(expPrim, func(g any, ans any, args []any) any {
		return mul2(g, ans)
	})

	DefVJP(sqrtPrim, func(ans any, args []any) func(g any) any {
		return func(g any) any { return div2(g, mul2(2.0, ans)) }
	})
	DefJVP(sqrtPrim, func(g any, ans any, args []any) any {
		return div2(g, mul2(2.0, ans))
	})

	DefVJP(sinPrim, func(ans any, args []any) func(g any) any {
		x := args[0]
		return func(g any) any { return mul2(g, cos1(x)) }
	})
	DefJVP(sinPrim, func(g any, ans any, args []any) any {
		return mul2(g, cos1(args[0]))
	})

	DefVJP(cosPrim, func(ans any, args []any) func(g any) any {
		x := args[0]
		return func(g any) any { return neg1(mul2(g, sin1(x))) }
	})
	DefJVP(cosPrim, func(g any, ans any, args []any) any {
		return neg1(mul2(g, sin1(args[0])))
	})
}

// Add returns a + b, differentiable in both arguments.
func Add(a, b any) (any, error) { return addPrim.Call(a, b) }

// Sub returns a - b, differentiable in both arguments.
func Sub(a, b any) (any, error) { return subPrim.Call(a, b) }

// Mul returns a * b, differentiable in both arguments.
func Mul(a, b any) (any, error) { return mulPrim.Call(a, b) }

// Div returns a / b, differentiable in both arguments.
func Div(a, b any) (any, error) { return divPrim.Call(a, b) }

// Neg returns -a.
func Neg(a any) (any, error) { return negPrim.Call(a) }

// Log returns the natural logarithm of a.
func Log(a any) (any, error) { return logPrim.Call(a) }

// Exp returns e**a.
func Exp(a any) (any, error) { return expPrim.Call(a) }

// Sqrt returns the square root of a.
func Sqrt(a any) (any, error) { return sqrtPrim.Call(a) }

// Sin returns the sine of a.
func Sin(a any) (any, error) { return sinPrim.Call(a) }

// Cos returns the cosine of a.
func Cos(a any) (any, error) { return cosPrim.Call(a) }

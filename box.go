package tracegrad

// Box wraps a raw value with the Node recording its provenance and
// the trace it was produced on. A value may be boxed more than once
// when differentiation is nested: the outer layer is always the Box
// belonging to the most recently opened trace, and its value field
// may itself be a Box belonging to an enclosing trace.
//
// There is a single Box type for every value type, unlike a
// language with operator overloading where a concrete Box subtype
// is registered per value type (spec design note): since primitives
// here are explicit function calls rather than overloaded
// operators, one Box suffices and IsBox is a plain type assertion.
type Box struct {
	value any
	node  *Node
	trace int64
	m     mode
}

// IsBox reports whether x is boxed on some trace.
func IsBox(x any) bool {
	_, ok := x.(*Box)
	return ok
}

// GetVal strips one layer of boxing from x. If x is not boxed, it
// is returned unchanged. Use unboxAll to strip every layer.
func GetVal(x any) any {
	if b, ok := x.(*Box); ok {
		return b.value
	}
	return x
}

// unboxAll strips every layer of boxing from x, regardless of which
// traces produced them. Used by notrace primitives, which must
// never see a Box.
func unboxAll(x any) any {
	for {
		b, ok := x.(*Box)
		if !ok {
			return x
		}
		x = b.value
	}
}

func unboxAllArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = unboxAll(a)
	}
	return out
}

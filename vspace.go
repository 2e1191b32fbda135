package tracegrad

import "reflect"

// VSpace gives a Go type the vector-space operations the reverse and
// forward engines need to accumulate and scale outgrads/tangents,
// without this package knowing anything about the concrete type.
// Modeled on the teacher's single-elemental-table approach, but
// keyed on reflect.Type rather than on a function pointer, since
// what varies per value here is the type of the value itself, not a
// function being differentiated.
type VSpace interface {
	// Zeros returns the additive identity shaped like x.
	Zeros(x any) any
	// Add returns a + b without mutating either.
	Add(a, b any) any
	// MutAdd returns a + b and may reuse a's storage for the result,
	// so it is only called when a is safe to mutate (its owner has
	// said so via the accumulator); callers that are not sure a is
	// owned must use Add instead. The float64 and Pair VSpaces return
	// a new value and never mutate a.
	MutAdd(a, b any) any
	// ScalarMul returns x scaled by s.
	ScalarMul(x any, s float64) any
	// InnerProd returns the scalar inner product of a and b, used by
	// directional-derivative checks.
	InnerProd(a, b any) float64
	// Covector adapts a cotangent produced with respect to x's
	// vector-space structure to x's own representation; the identity
	// for every real type, non-trivial only for complex-valued
	// spaces (see IsComplex).
	Covector(x any) any
	// IsComplex reports whether this VSpace needs the conjugate
	// adjustment Covector applies.
	IsComplex() bool
}

var vspaces = map[reflect.Type]VSpace{}

// Register associates vs with every value of the given type.
// Primitives' raw Fn implementations call Register from an init
// func for every concrete type they expect to operate on.
func Register(sample any, vs VSpace) {
	vspaces[reflect.TypeOf(sample)] = vs
}

// Lookup returns the VSpace registered for x's type. x may be boxed
// (possibly more than once, for a nested trace): Lookup unwraps
// every layer before inspecting the type, since what VSpace a value
// needs depends only on the innermost concrete value, never on how
// many traces currently have it boxed. x may also be a *SparseObject
// (an outgrad contribution that defers materializing its full shape,
// sparse.go): SparseObject carries its own VSpace, so Lookup returns
// that directly rather than reflecting on the sparse wrapper itself.
func Lookup(x any) (VSpace, error) {
	if sparse, ok := x.(*SparseObject); ok {
		return sparse.vs, nil
	}
	t := reflect.TypeOf(unboxAll(x))
	vs, ok := vspaces[t]
	if !ok {
		name := "<nil>"
		if t != nil {
			name = t.String()
		}
		return nil, &TypeUnsupportedError{TypeName: name}
	}
	return vs, nil
}

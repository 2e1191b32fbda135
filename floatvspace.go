package tracegrad

// float64VSpace is the VSpace for plain float64 scalars: the
// elemental rule set this package ships (ops.go) operates entirely
// on float64, so it is the only VSpace registered by default.
//
// Add/MutAdd/ScalarMul go through the traced add/mul primitives
// rather than Go's own + and *: outgrad accumulation (outgrad.go)
// happens while an outer trace may still be open around the whole
// backward pass (nested differentiation, spec.md §4.3's "Box of
// Box"), and only a traced operation lets that outer trace see the
// accumulation and fold it into a second-order graph. A plain +
// here would silently break grad-of-grad.
type float64VSpace struct{}

func (float64VSpace) Zeros(x any) any { return 0.0 }

func (float64VSpace) Add(a, b any) any {
	v, _ := addPrim.Call(a, b)
	return v
}

func (float64VSpace) MutAdd(a, b any) any {
	v, _ := addPrim.Call(a, b)
	return v
}

func (float64VSpace) ScalarMul(x any, s float64) any {
	v, _ := mulPrim.Call(x, s)
	return v
}

// InnerProd is used only for diagnostics (directional-derivative
// checks), never recorded onto any trace, so it unboxes fully.
func (float64VSpace) InnerProd(a, b any) float64 {
	return unboxAll(a).(float64) * unboxAll(b).(float64)
}

func (float64VSpace) Covector(x any) any { return x }

func (float64VSpace) IsComplex() bool { return false }

func init() {
	Register(float64(0), float64VSpace{})
}

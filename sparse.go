package tracegrad

// SparseObject defers a sparse update (for example, "add this value
// at this one field") until it is actually combined with a base
// value, instead of first materializing a zero of the full shape and
// adding into it. A vjp rule that only ever touches a small part of
// a larger structure returns a *SparseObject instead of a full value,
// and addOutgrad (outgrad.go) applies it only once it knows what base
// it is being combined into.
//
// SparseObject carries its own VSpace (spec.md §4.7's "Sparse is a
// typed object carrying (vs, mut_add_closure)") so that Lookup can
// resolve a type for it without inspecting full, which may itself be
// sparse-of-sparse while chained through several rules.
//
// Grounded on the outgrad accumulation discipline in
// original_source/autograd/core.py (sparse_add/SparseObject).
type SparseObject struct {
	vs      VSpace
	full    any
	combine func(vs VSpace, base any) any
}

// NewSparseObject builds a sparse outgrad update. vs is the VSpace of
// the eventual base value; full is a sample of its shape (used only
// to build a zero when this is the first contribution a node
// receives); combine folds this update into whatever base it is
// eventually added to.
func NewSparseObject(vs VSpace, full any, combine func(vs VSpace, base any) any) *SparseObject {
	return &SparseObject{vs: vs, full: full, combine: combine}
}

func (s *SparseObject) apply(base any) any {
	return s.combine(s.vs, base)
}

// sparseAdd folds sparse update s into base, using s's own VSpace.
// base may be nil, in which case s is applied to a freshly built
// zero of s's shape.
func sparseAdd(base any, s *SparseObject) any {
	if base == nil {
		base = s.vs.Zeros(s.full)
	}
	return s.apply(base)
}

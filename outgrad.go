package tracegrad

// Outgrad accumulation: the backward pass visits nodes in reverse
// topological order, and each time a node receives a contribution
// from a child it must be combined with whatever it has already
// accumulated. The first contribution a node receives can be kept
// as-is (mutable=false: it might be a caller-owned value nobody else
// references yet); any later contribution must go through Add rather
// than MutAdd until the node owns a value it is safe to mutate in
// place.
//
// Grounded on the teacher's tape.go adjoint accumulation (adj[place]
// += ...), generalized from float64 += to VSpace.Add/MutAdd so it
// works for any registered type.
type outgrad struct {
	value   any
	mutable bool
}

// addOutgrad folds g into prev (nil if this is the first
// contribution seen for a node), using vs for the combination, and
// returns the updated accumulator entry. g may be a *SparseObject
// (outgrad.go's caller resolves vs via Lookup, which recurses through
// one for exactly this purpose); a sparse contribution is applied
// in place once a mutable base exists, and forces one otherwise.
func addOutgrad(vs VSpace, prev *outgrad, g any) *outgrad {
	sparse, isSparse := g.(*SparseObject)

	if prev == nil {
		if isSparse {
			return &outgrad{value: sparseAdd(nil, sparse), mutable: true}
		}
		return &outgrad{value: g, mutable: false}
	}

	if prev.mutable {
		if isSparse {
			return &outgrad{value: sparseAdd(prev.value, sparse), mutable: true}
		}
		return &outgrad{value: vs.MutAdd(prev.value, g), mutable: true}
	}

	if isSparse {
		// prev.value is borrowed: clone it before applying the sparse
		// update in place, the same way the dense path below goes
		// through Add instead of MutAdd here.
		owned := vs.Add(prev.value, vs.Zeros(prev.value))
		return &outgrad{value: sparseAdd(owned, sparse), mutable: true}
	}
	return &outgrad{value: vs.Add(prev.value, g), mutable: true}
}

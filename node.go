package tracegrad

// mode distinguishes the engine a Node was recorded for. A single
// primitive call is never recorded for both modes at once: the
// active trace fixes the mode for every Node it produces.
type mode int

const (
	modeVJP mode = iota
	modeJVP
)

// VJPFunc maps an outgoing cotangent to one ingrad per parent, in
// parent order. A rule-missing VJPFunc returns an error instead of
// panicking, so that a node on a branch the backward pass never
// reaches never surfaces the error.
type VJPFunc func(g any) ([]any, error)

// Node is the per-primitive-call record built while tracing. parents
// holds one entry per argument that was boxed on the active trace,
// in argument order; everything else about the call (the primitive,
// the other arguments, the result) is folded into the payload at
// construction time and not retained separately.
type Node struct {
	parents []*Node
	m       mode

	// Reverse-mode payload.
	vjpFn VJPFunc

	// Forward-mode payload: the tangent, computed eagerly when the
	// Node is constructed.
	tangent any
}

// newRootVJPNode returns the root of a reverse-mode trace: no
// parents, and a vjp that returns nothing for a node with no
// parents to feed.
func newRootVJPNode() *Node {
	return &Node{m: modeVJP, vjpFn: func(any) ([]any, error) { return nil, nil }}
}

// newRootJVPNode returns the root of a forward-mode trace, seeded
// with the user-supplied tangent g.
func newRootJVPNode(g any) *Node {
	return &Node{m: modeJVP, tangent: g}
}

package tracegrad

import (
	"fmt"
	"log"
)

// VJP maps an outgoing cotangent g (shaped like the traced
// function's output) to the ingrad (shaped like its input).
type VJP func(g any) (any, error)

// MakeVJP opens a new reverse-mode trace, boxes x on it, calls fn,
// and closes the trace. fn must be built entirely out of Primitive
// calls (or calls to other functions built that way) for its result
// to carry the provenance the backward pass needs. A fn whose result
// is not boxed on the trace MakeVJP opened (its output does not
// depend on x) is not an error: MakeVJP logs a warning and returns a
// vjp that always yields the zero of x's VSpace.
func MakeVJP(fn func(any) (any, error), x any) (y any, vjp VJP, err error) {
	frame := pushTrace(modeVJP)
	defer popTrace(frame)

	start := &Box{value: x, node: newRootVJPNode(), trace: frame.id, m: modeVJP}

	out, err := fn(start)
	if err != nil {
		return nil, nil, err
	}

	end, ok := out.(*Box)
	if !ok || end.trace != frame.id {
		log.Printf("tracegrad: output independent of input; returning zero gradient")
		vs, verr := Lookup(x)
		if verr != nil {
			return GetVal(out), nil, verr
		}
		zero := vs.Zeros(x)
		return GetVal(out), func(any) (any, error) { return zero, nil }, nil
	}

	endNode := end.node
	return end.value, func(g any) (any, error) {
		return backwardPass(endNode, start.node, g)
	}, nil
}

// backwardPass walks the graph rooted at end back to start in
// reverse topological order, accumulating the outgrad at every node
// reached, and returns the outgrad that landed on start. A node
// reachable from end but not on any path back to start still gets
// visited (and its vjp invoked) if the topological order puts it
// between end and start; a node's vjp is invoked exactly once,
// matching spec.md's "single invocation per node" property.
func backwardPass(end, start *Node, g any) (any, error) {
	order := toposort(end)

	outgrads := map[*Node]*outgrad{end: {value: g, mutable: false}}

	for _, node := range order {
		acc, ok := outgrads[node]
		if !ok {
			continue
		}
		ins, err := node.vjpFn(acc.value)
		if err != nil {
			if len(node.parents) == 0 {
				continue
			}
			return nil, err
		}
		for i, parent := range node.parents {
			if parent == nil {
				continue
			}
			contribution := ins[i]
			vs, verr := Lookup(contribution)
			if verr != nil {
				return nil, verr
			}
			outgrads[parent] = addOutgrad(vs, outgrads[parent], contribution)
		}
	}

	result, ok := outgrads[start]
	if !ok {
		vs, err := Lookup(g)
		if err != nil {
			return nil, err
		}
		return vs.Zeros(g), nil
	}
	return result.value, nil
}

// toposort returns the nodes reachable from root (root included) in
// an order where every node's parents appear after it. A plain
// post-order DFS visits a node's parents before the node itself, so
// the post-order list is reversed to put root first and the deepest
// ancestors last. Grey/black coloring guards against the
// interposition discipline ever producing a cycle, which would be a
// bug in this package rather than in client code.
func toposort(root *Node) []*Node {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := map[*Node]int{}
	var order []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		switch color[n] {
		case black:
			return
		case grey:
			panic(fmt.Sprintf("tracegrad: cycle detected in graph at node %p", n))
		}
		color[n] = grey
		for _, p := range n.parents {
			if p != nil {
				visit(p)
			}
		}
		color[n] = black
		order = append(order, n)
	}
	visit(root)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

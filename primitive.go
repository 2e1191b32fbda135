package tracegrad

import "fmt"

// Fn is the signature a primitive's underlying implementation must
// have: it operates on raw (unboxed) values only.
type Fn func(args ...any) any

// Primitive wraps a raw Fn so that calls made through Call are
// observed by whichever trace is active, recording a Node and
// returning a Box when an argument is boxed on that trace, and
// passing values straight through otherwise.
//
// Primitives are compared by identity (the *Primitive pointer), so
// the rule registry in rules.go keys on it directly; there is no
// notion of two distinct Primitives sharing a registration.
type Primitive struct {
	Name    string
	fn      Fn
	notrace bool
}

// NewPrimitive registers fn as a differentiable primitive under
// name, used only for diagnostics (error messages identify
// primitives by name, not by Go identifier).
func NewPrimitive(name string, fn Fn) *Primitive {
	return &Primitive{Name: name, fn: fn}
}

// NotracePrimitive wraps fn so that calls through it always run on
// fully unboxed arguments and are never recorded onto any trace,
// regardless of which trace is active.
func NotracePrimitive(name string, fn Fn) *Primitive {
	return &Primitive{Name: name, fn: fn, notrace: true}
}

// Call invokes the primitive. If none of args is boxed on the
// active trace, it runs fn directly and returns a raw value with a
// nil error (fn itself cannot fail; only tracing can). Otherwise it
// unboxes the arguments boxed on the active trace, recurses so that
// boxes belonging to an outer, still-open trace are in turn
// observed by that trace, and records a Node for the call.
func (p *Primitive) Call(args ...any) (any, error) {
	if p.notrace {
		return p.fn(unboxAllArgs(args)...), nil
	}

	argnums, top := topBoxedArgs(args)
	if top == nil {
		return p.fn(args...), nil
	}
	if isTraceClosed(top.id) {
		return nil, &DifferentiationInvalidError{
			Reason: fmt.Sprintf("%s called with a value boxed on a trace that has already closed (a Box leaked out of its MakeVJP/MakeJVP call)", p.Name),
		}
	}

	unboxed := append([]any(nil), args...)
	parents := make([]*Node, len(argnums))
	for i, an := range argnums {
		b := args[an].(*Box)
		unboxed[an] = b.value
		parents[i] = b.node
	}

	raw, err := p.Call(unboxed...)
	if err != nil {
		return nil, err
	}
	if raw == NotSupported {
		return raw, nil
	}

	node, err := newNode(top, p, raw, unboxed, argnums, parents)
	if err != nil {
		return nil, err
	}
	return &Box{value: raw, node: node, trace: top.id, m: top.m}, nil
}

// newNode builds the Node for one primitive call, dispatching to
// the VJP or JVP rule registry depending on the active trace's
// mode. A VJP rule-missing failure is deferred into the returned
// vjpFn (spec: "raised from the backward ... engine, not at trace
// time"); a JVP rule-missing failure surfaces immediately, because
// forward mode has no separate pass in which to defer it to.
func newNode(
	top *traceFrame,
	p *Primitive,
	raw any,
	args []any,
	argnums []int,
	parents []*Node,
) (*Node, error) {
	switch top.m {
	case modeVJP:
		maker, ok := vjpMakers[p]
		var vjpFn VJPFunc
		if !ok {
			vjpFn = func(any) ([]any, error) {
				return nil, &RuleMissingError{Primitive: p.Name, Mode: "vjp", Argnum: argnums[0]}
			}
		} else {
			vjpFn = maker(argnums, raw, args)
		}
		return &Node{m: modeVJP, parents: parents, vjpFn: vjpFn}, nil
	case modeJVP:
		maker, ok := jvpMakers[p]
		if !ok {
			return nil, &RuleMissingError{Primitive: p.Name, Mode: "jvp", Argnum: argnums[0]}
		}
		parentGs := make([]any, len(parents))
		for i, parent := range parents {
			parentGs[i] = parent.tangent
		}
		tangent, err := maker(argnums, parentGs, raw, args)
		if err != nil {
			return nil, err
		}
		return &Node{m: modeJVP, parents: parents, tangent: tangent}, nil
	default:
		panic("tracegrad: unknown trace mode")
	}
}

package tracegrad

import "log"

// JVP maps an incoming tangent g (shaped like the traced function's
// input) to the tangent on its output.
type JVP func(g any) (any, error)

// MakeJVP traces fn once to obtain its primal result y, and returns
// a closure that, given any tangent g on x, retraces fn with that
// tangent seeded and returns the resulting output tangent. Unlike
// MakeVJP there is no separate backward phase: each Node's tangent
// is computed eagerly as the trace runs (primitive.go's newNode, JVP
// branch), so a distinct call is needed per g, one full retrace
// each time.
func MakeJVP(fn func(any) (any, error), x any) (y any, jvp JVP, err error) {
	vs, verr := Lookup(x)
	zero := x
	if verr == nil {
		zero = vs.Zeros(x)
	}

	y, _, err = runJVPTrace(fn, x, zero)
	if err != nil {
		return nil, nil, err
	}

	jvp = func(g any) (any, error) {
		_, tangent, err := runJVPTrace(fn, x, g)
		return tangent, err
	}
	return y, jvp, nil
}

func runJVPTrace(fn func(any) (any, error), x, g any) (ans, tangent any, err error) {
	frame := pushTrace(modeJVP)
	defer popTrace(frame)

	start := &Box{value: x, node: newRootJVPNode(g), trace: frame.id, m: modeJVP}

	out, err := fn(start)
	if err != nil {
		return nil, nil, err
	}

	end, ok := out.(*Box)
	if !ok || end.trace != frame.id {
		log.Printf("tracegrad: output independent of input; returning zero tangent")
		vs, verr := Lookup(g)
		if verr != nil {
			return GetVal(out), nil, verr
		}
		return GetVal(out), vs.Zeros(g), nil
	}

	return end.value, end.node.tangent, nil
}

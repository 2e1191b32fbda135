package tracegrad

import "fmt"

// RuleMissingError is returned when the backward (or forward) engine
// needs a derivative rule that was never registered for a primitive,
// for the mode and argument position actually required. A primitive
// with no vjp for an argument that a backward pass never visits
// never produces this error: in reverse mode it is only raised from
// inside the VJPFunc that would have needed it. In forward mode it is
// raised while the call's tangent is computed, either by the JVPMaker
// or, for a primitive with no JVP rule at all, by newNode.
type RuleMissingError struct {
	Primitive string
	Mode      string // "vjp" or "jvp"
	Argnum    int
}

func (e *RuleMissingError) Error() string {
	return fmt.Sprintf("tracegrad: no %s rule registered for %s, argument %d", e.Mode, e.Primitive, e.Argnum)
}

// TypeUnsupportedError is returned when a value has no VSpace
// registered for its Go type.
type TypeUnsupportedError struct {
	TypeName string
}

func (e *TypeUnsupportedError) Error() string {
	return fmt.Sprintf("tracegrad: no VSpace registered for type %s", e.TypeName)
}

// DifferentiationInvalidError is returned when a *Box leaks outside
// the function passed to MakeVJP/MakeJVP (stashed somewhere other
// than the return value) and is then reused in a Primitive call after
// its trace has already closed. An output that is simply independent
// of its input is not this error: MakeVJP/MakeJVP treat that as a
// valid zero-gradient result (see reverse.go, forward.go).
type DifferentiationInvalidError struct {
	Reason string
}

func (e *DifferentiationInvalidError) Error() string {
	return "tracegrad: differentiation invalid: " + e.Reason
}

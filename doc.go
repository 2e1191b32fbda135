// Package tracegrad implements the core of an automatic
// differentiation runtime: a tracer that records elementary
// numerical operations into a computation graph as they execute,
// and two engines that traverse the graph to compute derivatives.
//
// A user-supplied function f is built out of primitives registered
// with NewPrimitive. MakeVJP(f, x) traces one call to f and returns
// a closure computing the vector-Jacobian product — one forward
// pass and one reverse (backward) pass, independent of the
// dimension of f's input. MakeJVP(f, x) returns a closure computing
// the Jacobian-vector product — one forward pass per call, no
// backward pass, independent of the dimension of f's output.
//
// Values flowing through a traced function are plain Go values
// (any). A value's vector-space operations — zero, add, scalar
// multiply, inner product — are looked up through the VSpace
// registry by Go type; a type must be registered with Register
// before it can flow through a traced function.
//
// Concrete derivative rules for numeric primitives beyond a small
// float64 rule set (ops.go), a full numeric array type, and
// higher-order combinators such as Grad or Jacobian are outside
// this package's scope; it provides only the mechanism by which
// such rules are registered (DefVJP, DefJVP) and invoked.
package tracegrad

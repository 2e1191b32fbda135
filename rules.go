package tracegrad

// Rule registries: differentiation rules are attached to a
// *Primitive after the fact, in ops.go's init, rather than being
// part of the Primitive literal itself. This mirrors the teacher's
// elementals registry (a map keyed by function identity) but keys on
// the Primitive pointer directly instead of a reflect-obtained
// function pointer, since primitives are already identified that way
// throughout this package.

// VJPMaker builds the VJPFunc for one primitive call, given the
// argnums that need an ingrad, the call's result (ans) and its
// (unboxed) arguments.
type VJPMaker func(argnums []int, ans any, args []any) VJPFunc

// JVPMaker computes the tangent for one primitive call, given the
// argnums that are active, the parent tangent for each (in argnums
// order), the call's result, and its (unboxed) arguments.
type JVPMaker func(argnums []int, parentGs []any, ans any, args []any) (any, error)

var vjpMakers = map[*Primitive]VJPMaker{}
var jvpMakers = map[*Primitive]JVPMaker{}

// argVJP builds the single-argument cotangent map used by DefVJP:
// given the primitive's result and arguments, return the function
// that turns an outgoing cotangent into the ingrad for one specific
// argument.
type argVJP func(ans any, args []any) func(g any) any

// argJVP computes the tangent contribution of one argument, given
// its own tangent g, the call's result, and the call's arguments.
type argJVP func(g any, ans any, args []any) any

var vjpArgRules = map[*Primitive]map[int]argVJP{}
var jvpArgRules = map[*Primitive]map[int]argJVP{}

// DefVJPArgnums registers a full VJPMaker for p, replacing whatever
// DefVJP/DefVJPArgnum registered previously.
func DefVJPArgnums(p *Primitive, maker VJPMaker) {
	vjpMakers[p] = maker
}

// DefVJPArgnum registers the cotangent rule for a single argument
// position of p, leaving any other position's rule (if already
// registered) untouched.
func DefVJPArgnum(p *Primitive, argnum int, rule argVJP) {
	rules, ok := vjpArgRules[p]
	if !ok {
		rules = map[int]argVJP{}
		vjpArgRules[p] = rules
	}
	rules[argnum] = rule
	vjpMakers[p] = dispatchVJP(p, rules)
}

// DefVJP registers p's cotangent rule one argument at a time: vjps[i]
// is the rule for argument i, or nil if that argument is not
// differentiable (attempting to use it raises RuleMissingError only
// if the backward pass actually asks for its ingrad).
func DefVJP(p *Primitive, vjps ...argVJP) {
	for i, rule := range vjps {
		if rule == nil {
			continue
		}
		DefVJPArgnum(p, i, rule)
	}
}

func dispatchVJP(p *Primitive, rules map[int]argVJP) VJPMaker {
	return func(argnums []int, ans any, args []any) VJPFunc {
		fns := make([]func(g any) any, len(argnums))
		for i, an := range argnums {
			if rule, ok := rules[an]; ok {
				fns[i] = rule(ans, args)
			}
		}
		return func(g any) ([]any, error) {
			out := make([]any, len(argnums))
			for i, an := range argnums {
				if fns[i] == nil {
					return nil, &RuleMissingError{Primitive: p.Name, Mode: "vjp", Argnum: an}
				}
				out[i] = fns[i](g)
			}
			return out, nil
		}
	}
}

// DefJVPArgnums registers a full JVPMaker for p.
func DefJVPArgnums(p *Primitive, maker JVPMaker) {
	jvpMakers[p] = maker
}

// DefJVPArgnum registers the tangent rule for a single argument
// position of p. When more than one argument is active for a given
// call, the contributions are summed via that value type's VSpace,
// matching the linearity of the differential.
func DefJVPArgnum(p *Primitive, argnum int, rule argJVP) {
	rules, ok := jvpArgRules[p]
	if !ok {
		rules = map[int]argJVP{}
		jvpArgRules[p] = rules
	}
	rules[argnum] = rule
	jvpMakers[p] = dispatchJVP(p, rules)
}

// DefJVP registers p's tangent rule one argument at a time, same
// convention as DefVJP.
func DefJVP(p *Primitive, jvps ...argJVP) {
	for i, rule := range jvps {
		if rule == nil {
			continue
		}
		DefJVPArgnum(p, i, rule)
	}
}

func dispatchJVP(p *Primitive, rules map[int]argJVP) JVPMaker {
	return func(argnums []int, parentGs []any, ans any, args []any) (any, error) {
		var total any
		vs, err := Lookup(ans)
		if err != nil {
			return nil, err
		}
		for i, an := range argnums {
			rule, ok := rules[an]
			if !ok {
				return nil, &RuleMissingError{Primitive: p.Name, Mode: "jvp", Argnum: an}
			}
			contribution := rule(parentGs[i], ans, args)
			if total == nil {
				total = contribution
			} else {
				total = vs.Add(total, contribution)
			}
		}
		return total, nil
	}
}

// DefLinear registers p's JVP rule, for a p that is linear in every
// argument individually when the others are held at their given real
// values (multilinear: p(x1, ..., 0, ..., xn) == 0 in each slot) —
// for example a scalar multiply, or an inner product. The tangent
// contribution of argument i is p re-invoked with the tangent
// substituted at position i and every other argument left at its
// actual value (spec.md §4.4, "JVP is a re-invocation with the
// argument replaced by the tangent"): because p is linear in slot i
// alone, p(..., g, ...) with the other slots real is exactly
// (∂p/∂x_i)·g, with no separate derivative formula to write out.
// This is the 'same' handling original_source/autograd/core.py:263-265
// relies on for scalar_mul/inner_prod — distinct from a jointly
// additive primitive like Add, whose per-argument contribution instead
// requires the *other* argument to be zeroed (Add has a nonzero value
// at x=0, so it is only linear, not multilinear, and is given its own
// explicit rule in ops.go rather than going through DefLinear).
func DefLinear(p *Primitive, nargs int) {
	for argnum := 0; argnum < nargs; argnum++ {
		an := argnum
		DefJVPArgnum(p, an, func(g any, ans any, args []any) any {
			callArgs := make([]any, nargs)
			copy(callArgs, args)
			callArgs[an] = g
			v, _ := p.Call(callArgs...)
			return v
		})
	}
}

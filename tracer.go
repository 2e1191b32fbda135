package tracegrad

// Primitive-call interposition: given a primitive and its
// arguments, decide whether any argument is boxed on the trace that
// is currently active, and if so, record a Node for the call and
// return a boxed result instead of a raw one.

import (
	"sync"
	"sync/atomic"
)

// traceFrame is one entry in a goroutine's stack of open traces.
// Traces are totally ordered by creation; id is the order.
type traceFrame struct {
	id int64
	m  mode
}

var nextTraceID int64

func newTraceID() int64 {
	return atomic.AddInt64(&nextTraceID, 1)
}

// mtSafe switches the trace stack from a single global slice (fast,
// correct only for single-goroutine tracing) to one slice per
// goroutine (MTSafeOn). There is no corresponding "off": once safe,
// traces must stay safe.
var mtSafe int32

var globalStack []*traceFrame
var goroutineStacks = newStackStore()

// MTSafeOn makes tracing safe to drive concurrently from multiple
// goroutines, at the cost of a goroutine-id lookup each time a trace
// is opened or closed.
func MTSafeOn() {
	goroutineStacks = newStackStore()
	atomic.StoreInt32(&mtSafe, 1)
}

func currentStack() *[]*traceFrame {
	if atomic.LoadInt32(&mtSafe) == 0 {
		return &globalStack
	}
	return goroutineStacks.get(goroutineID())
}

// pushTrace opens a new trace of the given mode on the calling
// goroutine's stack and returns its frame.
func pushTrace(m mode) *traceFrame {
	f := &traceFrame{id: newTraceID(), m: m}
	stack := currentStack()
	*stack = append(*stack, f)
	return f
}

// closedTraces records every trace id that has been popped, so that
// a *Box leaked out of a MakeVJP/MakeJVP call (stashed in a variable
// outside the function being traced, instead of only ever passed
// along or returned) is recognized as stale the next time it reaches
// Primitive.Call, rather than silently being retraced as if its
// trace were still open.
var closedTraces sync.Map

func isTraceClosed(id int64) bool {
	_, closed := closedTraces.Load(id)
	return closed
}

// popTrace closes a trace opened by pushTrace. Traces must close in
// LIFO order; anything else means a vjp/jvp closure escaped its
// MakeVJP/MakeJVP call and is being invoked out of order, which is
// a programming error in this package, not in client code.
func popTrace(f *traceFrame) {
	stack := currentStack()
	s := *stack
	if len(s) == 0 || s[len(s)-1] != f {
		panic("tracegrad: unbalanced trace stack")
	}
	*stack = s[:len(s)-1]
	closedTraces.Store(f.id, struct{}{})
}

// topBoxedArgs scans args for Boxes and returns the indices boxed
// on the most recently opened (highest id) trace among them, along
// with that trace's frame. A value boxed on an older, still-open
// outer trace is left boxed for the recursive call in
// Primitive.Call to observe in turn.
func topBoxedArgs(args []any) (argnums []int, top *traceFrame) {
	topID := int64(-1)
	var topMode mode
	for i, a := range args {
		b, ok := a.(*Box)
		if !ok {
			continue
		}
		switch {
		case b.trace > topID:
			topID = b.trace
			topMode = b.m
			argnums = []int{i}
		case b.trace == topID:
			argnums = append(argnums, i)
		}
	}
	if topID < 0 {
		return nil, nil
	}
	return argnums, &traceFrame{id: topID, m: topMode}
}

// notSupportedSentinel is the type of NotSupported, which a
// primitive's raw implementation returns to signal the operation could not be carried out for these
// arguments; it propagates through tracing unboxed and unrecorded.
type notSupportedSentinel struct{}

// NotSupported is the sentinel value a primitive's Fn returns to
// decline an operation instead of producing a result.
var NotSupported any = &notSupportedSentinel{}

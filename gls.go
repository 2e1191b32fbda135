package tracegrad

// Goroutine-local store of open-trace stacks, for running
// differentiation from multiple goroutines at once. Adapted from
// the teacher's multi-threaded tape store: instead of one tape per
// goroutine, we keep one stack of open trace frames per goroutine.

import (
	"sync"

	"github.com/modern-go/gls"
)

type stackStore struct {
	sync.Mutex
	byGoroutine map[int64]*[]*traceFrame
}

func newStackStore() *stackStore {
	return &stackStore{byGoroutine: map[int64]*[]*traceFrame{}}
}

// get returns the stack for the calling goroutine, creating an
// empty one on first use.
func (s *stackStore) get(id int64) *[]*traceFrame {
	s.Lock()
	defer s.Unlock()
	stack, ok := s.byGoroutine[id]
	if !ok {
		stack = &[]*traceFrame{}
		s.byGoroutine[id] = stack
	}
	return stack
}

// drop discards the calling goroutine's stack. Only useful once
// MTSafeOn has been called; a goroutine that exits without
// finishing its traces leaks nothing but the empty slice header.
func (s *stackStore) drop(id int64) {
	s.Lock()
	defer s.Unlock()
	delete(s.byGoroutine, id)
}

// goroutineID identifies the calling goroutine for stackStore
// lookups. MTSafeOn is the only caller that pays for this.
func goroutineID() int64 {
	return gls.GoID()
}

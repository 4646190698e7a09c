package messenger

import (
	"sync/atomic"
	"weak"
)

// handle is a type-erased, weakly-owned reference to a recipient.
type handle interface {
	// target returns the live recipient, or nil once it has been reclaimed.
	target() any
	alive() bool
	invalidate()
}

// weakHandle never keeps its recipient reachable.
type weakHandle[R any] struct {
	ptr  weak.Pointer[R]
	dead atomic.Bool
}

func newWeakHandle[R any](recipient *R) *weakHandle[R] {
	return &weakHandle[R]{ptr: weak.Make(recipient)}
}

func (h *weakHandle[R]) target() any {
	if h.dead.Load() {
		return nil
	}
	// A nil *R must not leak out as a non-nil interface.
	if p := h.ptr.Value(); p != nil {
		return p
	}
	return nil
}

func (h *weakHandle[R]) alive() bool {
	return h.target() != nil
}

// invalidate marks the handle dead regardless of the recipient's reachability.
func (h *weakHandle[R]) invalidate() {
	h.dead.Store(true)
}

package messenger

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/dmitrymomot/messenger/core/logger"
)

// Executor runs delivery work on a chosen execution context.
// A subscription registered with an executor has its handler submitted to it
// instead of being called on the dispatcher goroutine.
type Executor interface {
	Submit(fn func()) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func()) error

// Submit calls f(fn).
func (f ExecutorFunc) Submit(fn func()) error {
	return f(fn)
}

// Inline runs submitted work immediately on the calling goroutine.
var Inline Executor = ExecutorFunc(func(fn func()) error {
	fn()
	return nil
})

// LoopExecutor runs submitted work one at a time, in submission order,
// on a single goroutine it owns. Use it to pin handlers to one goroutine,
// the way a UI toolkit pins work to its main thread.
//
// Example:
//
//	loop := messenger.NewLoopExecutor()
//	defer loop.Close()
//
//	messenger.Register(m, view, (*View).OnUpdate, messenger.OnExecutor(loop))
type LoopExecutor struct {
	queue   *queue[func()]
	done    chan struct{}
	closed  atomic.Bool
	logger  *slog.Logger
	onPanic func(value any, stack []byte)
}

type loopOptions struct {
	logger  *slog.Logger
	onPanic func(value any, stack []byte)
}

// LoopOption configures a LoopExecutor.
type LoopOption func(*loopOptions)

// WithLoopLogger logs panics raised by submitted work.
// Logging is disabled by default.
func WithLoopLogger(l *slog.Logger) LoopOption {
	return func(o *loopOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPanicHandler is called on the loop goroutine with the value and stack of
// every panic raised by submitted work. The loop keeps running afterwards.
func WithPanicHandler(fn func(value any, stack []byte)) LoopOption {
	return func(o *loopOptions) {
		o.onPanic = fn
	}
}

// NewLoopExecutor starts a LoopExecutor.
func NewLoopExecutor(opts ...LoopOption) *LoopExecutor {
	o := &loopOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	e := &LoopExecutor{
		queue:   newQueue[func()](),
		done:    make(chan struct{}),
		logger:  o.logger,
		onPanic: o.onPanic,
	}
	go e.loop()
	return e
}

// Submit enqueues fn without waiting for it to run.
// Returns ErrExecutorClosed after Close.
func (e *LoopExecutor) Submit(fn func()) error {
	if fn == nil {
		return invalidArgument("nil func submitted")
	}
	if err := e.queue.push(fn); err != nil {
		return ErrExecutorClosed
	}
	return nil
}

// Close stops accepting work and waits until already submitted work has run.
func (e *LoopExecutor) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrExecutorClosed
	}
	e.queue.close()
	<-e.done
	return nil
}

func (e *LoopExecutor) loop() {
	defer close(e.done)
	ctx := context.Background()
	for {
		fn, ok := e.queue.pop(ctx)
		if !ok {
			return
		}
		e.run(fn)
	}
}

// run executes fn, recovering a panic so one task cannot stop the loop.
// Work submitted by the dispatcher never panics here; it recovers into a DeliveryError first.
func (e *LoopExecutor) run(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		stack := debug.Stack()
		e.logger.Error("executor task panicked",
			logger.Component("executor"),
			logger.Panic(r))
		if e.onPanic != nil {
			e.notifyPanic(r, stack)
		}
	}()
	fn()
}

func (e *LoopExecutor) notifyPanic(value any, stack []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("executor panic handler panicked",
				logger.Component("executor"),
				logger.Panic(r))
		}
	}()
	e.onPanic(value, stack)
}

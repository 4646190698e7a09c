package messenger

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/messenger/core/logger"
)

// Conditional lets a message opt out of specific recipients.
// The messenger asks every matched candidate before invoking its handler.
type Conditional interface {
	ShouldDeliver(recipient any) bool
}

// dispatcher is the single consumer of the envelope queue.
type dispatcher struct {
	queue    *queue[*envelope]
	registry *registry
	report   func(context.Context, *DeliveryError)
	logger   *slog.Logger
	done     chan struct{}

	delivered      atomic.Int64
	lastActivityAt atomic.Int64
}

func newDispatcher(q *queue[*envelope], r *registry, report func(context.Context, *DeliveryError), log *slog.Logger) *dispatcher {
	return &dispatcher{
		queue:    q,
		registry: r,
		report:   report,
		logger:   log,
		done:     make(chan struct{}),
	}
}

// run drains the queue in order until ctx is cancelled or the queue is closed and empty.
func (d *dispatcher) run(ctx context.Context) {
	defer close(d.done)

	for {
		env, ok := d.queue.pop(ctx)
		if !ok {
			return
		}
		d.dispatch(ctx, env)
		d.lastActivityAt.Store(time.Now().Unix())
	}
}

func (d *dispatcher) dispatch(ctx context.Context, env *envelope) {
	candidates := d.registry.candidates(env)
	if len(candidates) == 0 {
		d.logger.DebugContext(ctx, "no recipients for message",
			logger.EnvelopeID(env.ID),
			logger.MessageType(env.ActualType))
		return
	}

	ctx = withEnvelopeMeta(ctx, env)
	cond, conditional := env.Content.(Conditional)

	for _, sub := range candidates {
		target, ok := sub.matches(env)
		if !ok {
			continue
		}

		if conditional {
			allowed, err := shouldDeliver(cond, target)
			if err != nil {
				d.fail(ctx, env, target, err)
			}
			if !allowed {
				continue
			}
		}

		deliver := func() {
			if err := protect(func() error {
				return sub.invoke(ctx, target, env.Content)
			}); err != nil {
				d.fail(ctx, env, target, err)
				return
			}
			d.delivered.Add(1)
		}

		if sub.executor == nil {
			deliver()
			continue
		}
		if err := sub.executor.Submit(deliver); err != nil {
			d.fail(ctx, env, target, err)
		}
	}
}

func (d *dispatcher) fail(ctx context.Context, env *envelope, target any, err error) {
	d.report(ctx, &DeliveryError{
		EnvelopeID: env.ID,
		Recipient:  target,
		Message:    env.Content,
		Err:        err,
	})
}

func shouldDeliver(cond Conditional, target any) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return cond.ShouldDeliver(target), nil
}

// protect runs fn, converting a panic into a *PanicError.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

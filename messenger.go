package messenger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/messenger/core/logger"
)

// ErrorHandler observes delivery failures. It runs on the goroutine where the
// failure happened and must not block for long.
type ErrorHandler func(ctx context.Context, err *DeliveryError)

// Messenger is an in-process publish/subscribe bus.
//
// Recipients are held weakly: registering never keeps a recipient alive, and a
// recipient that has been garbage collected silently stops receiving messages.
// Send only enqueues; a single dispatcher goroutine delivers envelopes in the
// order they were enqueued.
//
// Example:
//
//	m := messenger.New(messenger.WithLogger(log))
//	defer m.Close()
//
//	messenger.Register(m, view, (*View).OnOrderShipped)
//	messenger.Send(m, OrderShipped{ID: "42"})
type Messenger struct {
	registry   *registry
	queue      *queue[*envelope]
	dispatcher *dispatcher
	cleaner    *cleaner
	logger     *slog.Logger

	shutdownTimeout time.Duration
	cancel          context.CancelFunc
	closed          atomic.Bool

	obsMu     sync.RWMutex
	observers []observer
	nextObsID uint64

	sent   atomic.Int64
	failed atomic.Int64
}

type observer struct {
	id uint64
	fn ErrorHandler
}

// Stats provides observability metrics for monitoring and debugging.
type Stats struct {
	Subscriptions  int       // Registered subscriptions, dead ones included until swept
	StrictTypes    int       // Message types with exact-type subscriptions
	DerivedTypes   int       // Message types with derived subscriptions
	QueueDepth     int       // Envelopes waiting for the dispatcher
	Sent           int64     // Envelopes accepted by Send
	Delivered      int64     // Successful handler invocations
	Failed         int64     // Failures reported to error handlers
	Sweeps         int64     // Cleanup sweeps run
	Swept          int64     // Dead subscriptions removed by sweeps
	IsRunning      bool      // Whether the messenger accepts calls
	LastActivityAt time.Time // When the dispatcher last finished an envelope
}

// New creates a Messenger and starts its dispatcher and cleanup goroutines.
// Call Close to stop them.
func New(opts ...Option) *Messenger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Messenger{
		registry:        newRegistry(o.typeCacheSize),
		queue:           newQueue[*envelope](),
		logger:          o.logger,
		shutdownTimeout: o.shutdownTimeout,
	}
	m.dispatcher = newDispatcher(m.queue, m.registry, m.report, o.logger)
	m.cleaner = newCleaner(m.registry, o.clock, o.cleanupInterval, o.cleanupThreshold, o.logger)

	for _, fn := range o.errorHandlers {
		m.OnError(fn)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	go m.dispatcher.run(ctx)
	go m.cleaner.run(ctx)

	m.logger.Info("messenger started",
		logger.Component("messenger"),
		slog.Duration("cleanup_interval", o.cleanupInterval),
		logger.Count("cleanup_threshold", o.cleanupThreshold))

	return m
}

// OnError subscribes fn to delivery failures and returns a function that removes it.
// Handler errors, handler panics, executor rejections and rejected enqueues are
// all reported here; none of them ever reach the sender.
func (m *Messenger) OnError(fn ErrorHandler) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	m.obsMu.Lock()
	m.nextObsID++
	id := m.nextObsID
	m.observers = append(m.observers, observer{id: id, fn: fn})
	m.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obsMu.Lock()
			defer m.obsMu.Unlock()
			m.observers = slices.DeleteFunc(m.observers, func(o observer) bool {
				return o.id == id
			})
		})
	}
}

func (m *Messenger) report(ctx context.Context, derr *DeliveryError) {
	m.failed.Add(1)

	m.logger.ErrorContext(ctx, "message delivery failed",
		logger.Component("messenger"),
		logger.EnvelopeID(derr.EnvelopeID),
		logger.MessageType(reflect.TypeOf(derr.Message)),
		logger.Recipient(derr.Recipient),
		logger.Error(derr.Err))

	m.obsMu.RLock()
	observers := slices.Clone(m.observers)
	m.obsMu.RUnlock()

	for _, o := range observers {
		m.notify(ctx, o.fn, derr)
	}
}

func (m *Messenger) notify(ctx context.Context, fn ErrorHandler, derr *DeliveryError) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.ErrorContext(ctx, "error handler panicked",
				logger.Component("messenger"),
				logger.EnvelopeID(derr.EnvelopeID),
				logger.Panic(r))
		}
	}()
	fn(ctx, derr)
}

// Sweep synchronously removes subscriptions whose recipient is gone and returns
// how many were removed. The background scheduler calls the same routine.
// Returns ErrClosed after Close.
func (m *Messenger) Sweep() (int, error) {
	if err := m.usable(); err != nil {
		return 0, err
	}
	return m.cleaner.sweep(context.Background()), nil
}

// Close stops accepting calls, waits up to the shutdown timeout for queued
// envelopes to be delivered, then stops the dispatcher and drops every subscription.
// Returns ErrShutdownTimeout if the queue did not drain in time and ErrClosed
// if the messenger was already closed.
//
// The dispatcher cannot finish while one of its own handlers is blocked in Close,
// so Close called from a handler always waits the full shutdown timeout and
// returns ErrShutdownTimeout. Handlers that dispose the bus should call
// go m.Close() instead.
func (m *Messenger) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	m.queue.close()

	m.logger.Info("messenger stopping, draining queued messages",
		logger.Component("messenger"),
		logger.Count("queued", m.queue.len()),
		slog.Duration("timeout", m.shutdownTimeout))

	timer := time.NewTimer(m.shutdownTimeout)
	defer timer.Stop()

	var err error
	select {
	case <-m.dispatcher.done:
	case <-timer.C:
		err = fmt.Errorf("%w after %s", ErrShutdownTimeout, m.shutdownTimeout)
		m.logger.Warn("messenger shutdown timeout exceeded, undelivered messages dropped",
			logger.Component("messenger"),
			logger.Count("dropped", m.queue.len()),
			slog.Duration("timeout", m.shutdownTimeout))
	}

	m.cancel()
	<-m.cleaner.done
	m.registry.clear()

	m.logger.Info("messenger closed", logger.Component("messenger"))
	return err
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// The returned function blocks until ctx is cancelled, then closes the messenger.
//
// Example:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(m.Run(ctx))
func (m *Messenger) Run(ctx context.Context) func() error {
	return func() error {
		<-ctx.Done()
		if err := m.Close(); err != nil && !errors.Is(err, ErrClosed) {
			return err
		}
		return nil
	}
}

// Stats returns current messenger statistics for observability and monitoring.
func (m *Messenger) Stats() Stats {
	rs := m.registry.stats()

	var lastActivity time.Time
	if ts := m.dispatcher.lastActivityAt.Load(); ts > 0 {
		lastActivity = time.Unix(ts, 0)
	}

	return Stats{
		Subscriptions:  rs.subscriptions,
		StrictTypes:    rs.strictTypes,
		DerivedTypes:   rs.derivedTypes,
		QueueDepth:     m.queue.len(),
		Sent:           m.sent.Load(),
		Delivered:      m.dispatcher.delivered.Load(),
		Failed:         m.failed.Load(),
		Sweeps:         m.cleaner.sweeps.Load(),
		Swept:          m.cleaner.swept.Load(),
		IsRunning:      !m.closed.Load(),
		LastActivityAt: lastActivity,
	}
}

// Healthcheck validates that the messenger is operational.
// Returns nil if healthy, or an error describing the health issue.
func (m *Messenger) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	if m.closed.Load() {
		return errors.Join(ErrHealthcheckFailed, ErrClosed)
	}
	return nil
}

func (m *Messenger) usable() error {
	if m == nil {
		return invalidArgument("messenger must not be nil")
	}
	if m.closed.Load() {
		return ErrClosed
	}
	return nil
}

package messenger

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/messenger/core/logger"
)

const (
	// DefaultCleanupInterval is how often dead subscriptions are swept.
	DefaultCleanupInterval = 60 * time.Second

	// DefaultCleanupThreshold is the number of registry mutations that triggers an early sweep.
	DefaultCleanupThreshold = 20

	// DefaultShutdownTimeout bounds how long Close waits for queued messages to drain.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultTypeCacheSize is the number of message types whose derived matches are cached.
	DefaultTypeCacheSize = 256
)

type options struct {
	logger           *slog.Logger
	clock            clock.Clock
	cleanupInterval  time.Duration
	cleanupThreshold int
	shutdownTimeout  time.Duration
	typeCacheSize    int
	errorHandlers    []ErrorHandler
}

func defaultOptions() *options {
	return &options{
		logger:           logger.Discard(),
		clock:            clock.New(),
		cleanupInterval:  DefaultCleanupInterval,
		cleanupThreshold: DefaultCleanupThreshold,
		shutdownTimeout:  DefaultShutdownTimeout,
		typeCacheSize:    DefaultTypeCacheSize,
	}
}

// Option configures a Messenger.
type Option func(*options)

// WithLogger configures structured logging for the messenger.
// Logging is disabled by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock sets the clock driving the periodic cleanup sweep.
// Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithCleanupInterval sets how often dead subscriptions are swept.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanupInterval = d
		}
	}
}

// WithCleanupThreshold sets how many Register/Unregister calls trigger an early sweep.
func WithCleanupThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cleanupThreshold = n
		}
	}
}

// WithShutdownTimeout bounds how long Close waits for queued messages to be delivered.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithTypeCacheSize sets how many message types keep their derived-subscription matches cached.
func WithTypeCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.typeCacheSize = n
		}
	}
}

// WithErrorHandler subscribes fn to delivery failures from the start.
// Equivalent to calling OnError right after New.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(o *options) {
		if fn != nil {
			o.errorHandlers = append(o.errorHandlers, fn)
		}
	}
}

type registerOptions struct {
	derived  bool
	token    any
	executor Executor
}

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

// Derived makes the registration also receive messages whose runtime type
// is assignable to the registered type, such as implementations of an interface.
func Derived() RegisterOption {
	return func(o *registerOptions) {
		o.derived = true
	}
}

// WithToken restricts the registration to sends carrying an equal token.
// The token must be comparable with ==.
func WithToken(token any) RegisterOption {
	return func(o *registerOptions) {
		o.token = token
	}
}

// OnExecutor marshals every invocation of the handler onto e instead of
// running it on the dispatcher goroutine.
func OnExecutor(e Executor) RegisterOption {
	return func(o *registerOptions) {
		if e != nil {
			o.executor = e
		}
	}
}

type filter struct {
	token     any
	handlerID uintptr
}

func (f filter) match(s *subscription) bool {
	if f.token != nil && f.token != s.token {
		return false
	}
	if f.handlerID != 0 && f.handlerID != s.handlerID {
		return false
	}
	return true
}

// Filter narrows which subscriptions Unregister removes.
type Filter func(*filter)

// ByToken keeps only subscriptions registered with token. A nil token matches any.
func ByToken(token any) Filter {
	return func(f *filter) {
		f.token = token
	}
}

// ByHandler keeps only subscriptions registered with h.
func ByHandler[R, T any](h Handler[R, T]) Filter {
	return func(f *filter) {
		f.handlerID = funcID(h)
	}
}

// ByFunc keeps only subscriptions registered with fn through RegisterFunc.
func ByFunc[T any](fn func(context.Context, T) error) Filter {
	return func(f *filter) {
		f.handlerID = funcID(fn)
	}
}

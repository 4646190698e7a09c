package messenger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a recipient, handler, message or token is unusable.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrClosed is returned by any call made after the messenger has been closed.
	ErrClosed = errors.New("messenger is closed")

	// ErrQueueClosed is returned when pushing into a closed envelope queue.
	ErrQueueClosed = errors.New("envelope queue is closed")

	// ErrExecutorClosed is returned by an executor that no longer accepts work.
	ErrExecutorClosed = errors.New("executor is closed")

	// ErrHealthcheckFailed is returned when the messenger health check fails.
	ErrHealthcheckFailed = errors.New("healthcheck failed")

	// ErrShutdownTimeout is returned when the dispatcher did not drain within the shutdown timeout.
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")
)

// DeliveryError describes a failure observed while delivering one envelope to one recipient.
// Recipient is nil for failures that happened before any recipient was involved,
// such as a rejected enqueue.
type DeliveryError struct {
	EnvelopeID string
	Recipient  any
	Message    any
	Err        error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	if e.Recipient == nil {
		return fmt.Sprintf("messenger: delivery of %T failed: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("messenger: delivery of %T to %T failed: %v", e.Message, e.Recipient, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

package messenger

import (
	"context"
	"fmt"
	"reflect"
)

// Send enqueues msg for every recipient registered for T, or for a type msg is
// assignable to when registered with Derived(). It returns as soon as the
// envelope is queued; handlers run later on the dispatcher goroutine.
func Send[T any](m *Messenger, msg T) error {
	return send(m, msg, nil, nil)
}

// SendWithToken is Send restricted to recipients registered with an equal token.
func SendWithToken[T any](m *Messenger, msg T, token any) error {
	return send(m, msg, nil, token)
}

// SendTo is Send restricted to recipients that are instances of Target,
// either *R assignable to Target or R identical to Target.
//
// Example:
//
//	messenger.SendTo[*View](m, Refresh{})
func SendTo[Target, T any](m *Messenger, msg T) error {
	return send(m, msg, reflect.TypeFor[Target](), nil)
}

// SendToWithToken combines SendTo and SendWithToken.
func SendToWithToken[Target, T any](m *Messenger, msg T, token any) error {
	return send(m, msg, reflect.TypeFor[Target](), token)
}

func send[T any](m *Messenger, msg T, target reflect.Type, token any) error {
	if err := m.usable(); err != nil {
		return err
	}

	env, err := newEnvelope(msg, target, token)
	if err != nil {
		return err
	}

	if err := m.queue.push(env); err != nil {
		// Lost a race with Close.
		m.report(context.Background(), &DeliveryError{
			EnvelopeID: env.ID,
			Message:    env.Content,
			Err:        err,
		})
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	m.sent.Add(1)
	return nil
}

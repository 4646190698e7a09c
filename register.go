package messenger

import (
	"context"
	"reflect"
)

// Register subscribes recipient to messages of type T.
//
// By default only sends whose declared type is exactly T are delivered; pass
// Derived() to also receive any message whose runtime type is assignable to T.
// Registering the same recipient and handler twice creates two subscriptions,
// and the handler fires twice per message.
//
// The messenger holds recipient weakly. Once it is garbage collected the
// subscription stops matching and is removed by the next cleanup sweep.
//
// Example:
//
//	type View struct{ title string }
//
//	func (v *View) OnOrderShipped(ctx context.Context, msg OrderShipped) error {
//	    v.title = "shipped " + msg.ID
//	    return nil
//	}
//
//	err := messenger.Register(m, view, (*View).OnOrderShipped)
func Register[T, R any](m *Messenger, recipient *R, h Handler[R, T], opts ...RegisterOption) error {
	if h == nil {
		return invalidArgument("handler must not be nil")
	}
	return register[T](m, recipient, bindHandler(h), funcID(h), opts)
}

// RegisterFunc subscribes recipient to messages of type T with a plain function.
// fn must not capture recipient, or the recipient can never be collected;
// use Register when the handler needs the recipient.
func RegisterFunc[T, R any](m *Messenger, recipient *R, fn func(context.Context, T) error, opts ...RegisterOption) error {
	if fn == nil {
		return invalidArgument("handler must not be nil")
	}
	h := func(_ *R, ctx context.Context, msg T) error {
		return fn(ctx, msg)
	}
	return register[T](m, recipient, bindHandler[R, T](h), funcID(fn), opts)
}

func register[T, R any](m *Messenger, recipient *R, inv invoker, handlerID uintptr, opts []RegisterOption) error {
	if err := m.usable(); err != nil {
		return err
	}
	if recipient == nil {
		return invalidArgument("recipient must not be nil")
	}
	if reflect.TypeFor[R]().Size() == 0 {
		// Zero-sized values share one address, so they have no identity to track.
		return invalidArgument("recipient type %v is zero-sized", reflect.TypeFor[R]())
	}

	o := &registerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if !validToken(o.token) {
		return invalidArgument("token of type %T is not comparable", o.token)
	}

	m.registry.add(&subscription{
		messageType: reflect.TypeFor[T](),
		derived:     o.derived,
		handle:      newWeakHandle(recipient),
		token:       o.token,
		handlerID:   handlerID,
		invoke:      inv,
		executor:    o.executor,
	})
	m.cleaner.touch()

	return nil
}

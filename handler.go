package messenger

import (
	"context"
	"fmt"
	"reflect"
)

// Handler processes messages of type T on behalf of a recipient.
// Its shape matches a method expression, so (*View).OnOrder can be registered directly.
// The recipient is passed in so the handler does not need to capture it:
// a closure holding the recipient would keep it reachable forever.
type Handler[R, T any] func(recipient *R, ctx context.Context, msg T) error

// invoker is the type-erased form of a Handler bound at registration.
type invoker func(ctx context.Context, target, msg any) error

func bindHandler[R, T any](h Handler[R, T]) invoker {
	return func(ctx context.Context, target, msg any) error {
		recipient, ok := target.(*R)
		if !ok {
			return fmt.Errorf("messenger: expected recipient %v, got %T", reflect.TypeFor[*R](), target)
		}
		typed, ok := msg.(T)
		if !ok {
			return fmt.Errorf("messenger: expected message %v, got %T", reflect.TypeFor[T](), msg)
		}
		return h(recipient, ctx, typed)
	}
}

// funcID identifies a handler by its code pointer.
// Two closures created from the same function literal share an ID.
func funcID(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

// isNil reports whether v is nil or a typed nil of a nillable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// validToken reports whether token can be compared with == without panicking.
func validToken(token any) bool {
	if token == nil {
		return true
	}
	return reflect.ValueOf(token).Comparable()
}

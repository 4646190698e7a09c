package messenger

import (
	"reflect"
)

// subscription pairs a weak recipient handle with its handler and routing token.
type subscription struct {
	id          uint64
	messageType reflect.Type
	derived     bool
	handle      handle
	token       any
	handlerID   uintptr
	invoke      invoker
	executor    Executor
}

// matches reports whether the subscription should receive env, returning the live
// recipient when it does. A nil token matches only sends without a token.
func (s *subscription) matches(env *envelope) (any, bool) {
	if s.token != env.Token {
		return nil, false
	}

	target := s.handle.target()
	if target == nil {
		return nil, false
	}

	if env.TargetType != nil && !instanceOf(target, env.TargetType) {
		return nil, false
	}

	return target, true
}

// instanceOf reports whether target (always a *R) is an instance of typ,
// accepting both the pointer type and the pointed-to type.
func instanceOf(target any, typ reflect.Type) bool {
	t := reflect.TypeOf(target)
	if t.AssignableTo(typ) {
		return true
	}
	return t.Kind() == reflect.Pointer && t.Elem() == typ
}

func (s *subscription) belongsTo(recipient any) bool {
	target := s.handle.target()
	return target != nil && target == recipient
}

package messenger

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// envelope is a message plus the routing metadata it was sent with.
type envelope struct {
	ID           string
	Content      any
	ActualType   reflect.Type
	DeclaredType reflect.Type
	TargetType   reflect.Type // nil when the send is not restricted to a recipient type
	Token        any
	SentAt       time.Time
}

func newEnvelope[T any](msg T, target reflect.Type, token any) (*envelope, error) {
	content := any(msg)
	if isNil(content) {
		return nil, invalidArgument("message must not be nil")
	}
	if !validToken(token) {
		return nil, invalidArgument("token of type %T is not comparable", token)
	}

	return &envelope{
		ID:           uuid.NewString(),
		Content:      content,
		ActualType:   reflect.TypeOf(content),
		DeclaredType: reflect.TypeFor[T](),
		TargetType:   target,
		Token:        token,
		SentAt:       time.Now(),
	}, nil
}

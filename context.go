package messenger

import (
	"context"
	"time"
)

type envelopeIDCtx struct{}

type tokenCtx struct{}

type sentAtCtx struct{}

// withEnvelopeMeta attaches the envelope ID, token and send time to the context.
func withEnvelopeMeta(ctx context.Context, env *envelope) context.Context {
	ctx = context.WithValue(ctx, envelopeIDCtx{}, env.ID)
	ctx = context.WithValue(ctx, tokenCtx{}, env.Token)
	ctx = context.WithValue(ctx, sentAtCtx{}, env.SentAt)
	return ctx
}

// EnvelopeID extracts the ID of the envelope being delivered.
// Returns empty string if not present.
func EnvelopeID(ctx context.Context) string {
	if id, ok := ctx.Value(envelopeIDCtx{}).(string); ok {
		return id
	}
	return ""
}

// MessageToken extracts the routing token the message was sent with.
// Returns nil for sends without a token.
func MessageToken(ctx context.Context) any {
	return ctx.Value(tokenCtx{})
}

// SentAt extracts the time the message was sent.
// Returns zero time if not present.
func SentAt(ctx context.Context) time.Time {
	if t, ok := ctx.Value(sentAtCtx{}).(time.Time); ok {
		return t
	}
	return time.Time{}
}

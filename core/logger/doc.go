// Package logger provides structured logging utilities built on Go's standard slog package.
//
// New builds a *slog.Logger from options; the attribute helpers give every component
// the same keys for the same facts.
//
//	import "github.com/dmitrymomot/messenger/core/logger"
//
//	log := logger.New(
//		logger.WithProduction("billing"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Error("delivery failed",
//		logger.Error(err),
//		logger.Component("messenger"),
//		logger.EnvelopeID(id),
//		logger.MessageType(reflect.TypeOf(msg)),
//		logger.Recipient(recipient),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty input, and slog drops
// empty attributes, so callers never need nil checks:
//
//	log.Info("sweep finished", logger.Error(nil), logger.Count("removed", n))
//
// Capture logs during testing:
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//	log.Info("Test message", logger.Component("test"))
//	assert.Contains(t, buf.String(), `"component":"test"`)
//
// Use Discard for components that must stay silent by default.
package logger

// Package messenger provides a decoupled, in-process publish/subscribe bus.
// Components exchange typed messages without holding references to each other;
// the bus never keeps a recipient alive and never blocks a sender on handler work.
//
// # Package Organization
//
//	github.com/dmitrymomot/messenger                        - Messenger bus, registration, sending, executors
//	github.com/dmitrymomot/messenger/core/config            - Type-safe environment variable loading
//	github.com/dmitrymomot/messenger/core/health            - HTTP liveness and readiness probes
//	github.com/dmitrymomot/messenger/core/logger            - Structured logging built on slog
//	github.com/dmitrymomot/messenger/integration/prometheus - Prometheus collector for messenger stats
//
// # Basic Usage
//
//	type OrderShipped struct{ ID string }
//
//	type Dashboard struct{ shipped int }
//
//	func (d *Dashboard) OnOrderShipped(ctx context.Context, msg OrderShipped) error {
//		d.shipped++
//		return nil
//	}
//
//	m := messenger.New()
//	defer m.Close()
//
//	dash := &Dashboard{}
//	if err := messenger.Register(m, dash, (*Dashboard).OnOrderShipped); err != nil {
//		return err
//	}
//
//	_ = messenger.Send(m, OrderShipped{ID: "42"})
//
// Handlers take the recipient as their first argument, so a method expression
// registers directly. A closure that captures the recipient would keep it reachable
// and defeat the weak reference.
//
// # Delivery Semantics
//
// Delivery is at-most-once, best-effort, ordered and in-process:
//
//   - Send only enqueues. A single dispatcher goroutine drains the queue in FIFO
//     order across all producers.
//   - Each envelope is matched against one snapshot of the registry; the registry
//     lock is never held while a handler runs.
//   - The order in which distinct subscriptions receive the same envelope is unspecified.
//   - Handler errors and panics are reported through OnError and never reach the sender.
//     One failing handler does not stop delivery to the others.
//
// # Matching
//
// A registration for T receives a send when:
//
//   - the send's declared type is exactly T, or the registration is Derived() and the
//     message's runtime type is assignable to T (interface implementations);
//   - the tokens are equal, where no token only matches no token;
//   - for SendTo[Target], the recipient is an instance of Target;
//   - the message does not implement Conditional, or its ShouldDeliver accepts the recipient.
//
//	messenger.Register(m, audit, (*Audit).OnOrderEvent, messenger.Derived())
//	messenger.Send[OrderEvent](m, OrderShipped{ID: "42"})
//
//	messenger.Register(m, tab, (*Tab).OnRefresh, messenger.WithToken("tab-1"))
//	messenger.SendWithToken(m, Refresh{}, "tab-1")
//
// # Executors
//
// By default handlers run on the dispatcher goroutine. OnExecutor marshals a
// subscription's invocations onto an Executor, for example a LoopExecutor that
// owns a single goroutine:
//
//	ui := messenger.NewLoopExecutor()
//	defer ui.Close()
//	messenger.Register(m, view, (*View).OnUpdate, messenger.OnExecutor(ui))
//
// Work posted to an executor runs asynchronously relative to the dispatcher, so
// there is no ordering between subscriptions that use different executors.
//
// # Lifetime and Cleanup
//
// Dead subscriptions stop matching immediately and are removed by a sweep that
// runs every cleanup interval (60s) or after a number of Register/Unregister calls
// (20), whichever comes first. Sweep runs one on demand.
//
// # Errors
//
//	m.OnError(func(ctx context.Context, err *messenger.DeliveryError) {
//		log.Error("delivery failed", logger.Error(err))
//	})
//
// Invalid input fails synchronously with ErrInvalidArgument; any call after Close
// fails with ErrClosed.
//
// # Default Instance
//
// Default returns a lazily created process-wide Messenger. OverrideDefault and
// ResetDefault replace it, closing the previous instance, which keeps tests isolated.
// New code should pass a *Messenger explicitly.
//
// # Configuration
//
//	var cfg messenger.Config
//	config.MustLoad(&cfg)
//	m := messenger.NewFromConfig(cfg, messenger.WithLogger(log))
package messenger

package messenger_test

import (
	"context"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/messenger"
)

type OrderMessage interface {
	OrderID() string
}

type ShipOrder struct{ ID string }

func (m ShipOrder) OrderID() string { return m.ID }

type CancelOrder struct {
	ID     string
	Reason string
}

func (m CancelOrder) OrderID() string { return m.ID }

type Ping struct{ N int }

type Seq struct {
	Producer int
	N        int
}

// again tags values recorded by the second Ping handler.
type again struct{ Ping }

// recorder stores every message its handlers receive, in order.
type recorder struct {
	name string
	mu   sync.Mutex
	got  []any
}

func newRecorder(name string) *recorder {
	return &recorder{name: name}
}

func (r *recorder) add(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder) received() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.got)
}

func (r *recorder) OnPing(_ context.Context, msg Ping) error {
	r.add(msg)
	return nil
}

func (r *recorder) OnPingAgain(_ context.Context, msg Ping) error {
	r.add(again{msg})
	return nil
}

func (r *recorder) OnString(_ context.Context, msg string) error {
	r.add(msg)
	return nil
}

func (r *recorder) OnOrder(_ context.Context, msg OrderMessage) error {
	r.add(msg)
	return nil
}

func (r *recorder) OnShip(_ context.Context, msg ShipOrder) error {
	r.add(msg)
	return nil
}

func (r *recorder) OnSeq(_ context.Context, msg Seq) error {
	r.add(msg)
	return nil
}

// counter does not retain anything it receives.
type counter struct {
	hits *atomic.Int32
}

func (c *counter) OnPing(context.Context, Ping) error {
	c.hits.Add(1)
	return nil
}

type flushMsg struct{ done chan struct{} }

type flusher struct{ id int }

func (f *flusher) OnFlush(_ context.Context, msg flushMsg) error {
	close(msg.done)
	return nil
}

// flush waits until every envelope sent before it has been dispatched.
// Handlers running on their own executor are not covered.
func flush(t *testing.T, m *messenger.Messenger) {
	t.Helper()

	f := &flusher{id: 1}
	require.NoError(t, messenger.Register(m, f, (*flusher).OnFlush))

	done := make(chan struct{})
	require.NoError(t, messenger.Send(m, flushMsg{done: done}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the dispatcher")
	}

	require.NoError(t, m.Unregister(f))
	runtime.KeepAlive(f)
}

func newMessenger(t *testing.T, opts ...messenger.Option) *messenger.Messenger {
	t.Helper()

	m := messenger.New(opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// errorLog collects delivery failures reported by a messenger.
type errorLog struct {
	mu     sync.Mutex
	events []*messenger.DeliveryError
}

func (l *errorLog) handle(_ context.Context, err *messenger.DeliveryError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, err)
}

func (l *errorLog) all() []*messenger.DeliveryError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

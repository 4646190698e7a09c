package messenger

import "sync"

var (
	defaultMu       sync.Mutex
	defaultInstance *Messenger
)

// Default returns the process-wide Messenger, creating it on first use and
// again whenever the current instance has been closed.
// Prefer passing a *Messenger explicitly; Default exists for code that cannot.
func Default() *Messenger {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultInstance == nil || defaultInstance.closed.Load() {
		defaultInstance = New()
	}
	return defaultInstance
}

// OverrideDefault replaces the process-wide Messenger with m and closes the previous one.
func OverrideDefault(m *Messenger) {
	defaultMu.Lock()
	prev := defaultInstance
	defaultInstance = m
	defaultMu.Unlock()

	if prev != nil && prev != m {
		_ = prev.Close()
	}
}

// ResetDefault closes the process-wide Messenger; the next Default call creates a fresh one.
func ResetDefault() {
	OverrideDefault(nil)
}

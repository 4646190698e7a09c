package messenger

import "reflect"

// InvalidateRecipient marks every subscription of recipient dead, as if the
// recipient had been garbage collected. Returns the number of subscriptions affected.
func InvalidateRecipient(m *Messenger, recipient any) int {
	m.registry.mu.RLock()
	defer m.registry.mu.RUnlock()

	n := 0
	for _, buckets := range []map[reflect.Type][]*subscription{m.registry.strict, m.registry.derived} {
		for _, subs := range buckets {
			for _, s := range subs {
				if s.belongsTo(recipient) {
					s.handle.invalidate()
					n++
				}
			}
		}
	}
	return n
}

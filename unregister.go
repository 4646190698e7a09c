package messenger

import "reflect"

// Unregister removes every subscription of recipient, for all message types.
// A nil recipient is a no-op.
func (m *Messenger) Unregister(recipient any) error {
	if err := m.usable(); err != nil {
		return err
	}
	if isNil(recipient) {
		return nil
	}

	m.registry.removeWhere(func(s *subscription) bool {
		return s.belongsTo(recipient)
	})
	m.cleaner.touch()

	return nil
}

// Unregister removes the subscriptions of recipient for message type T,
// narrowed further by filters. A nil recipient is a no-op.
//
// Example:
//
//	// Drop only one of two handlers registered for OrderShipped.
//	messenger.Unregister[OrderShipped](m, view, messenger.ByHandler((*View).OnOrderShipped))
func Unregister[T any](m *Messenger, recipient any, filters ...Filter) error {
	if err := m.usable(); err != nil {
		return err
	}
	if isNil(recipient) {
		return nil
	}

	f := filter{}
	for _, fn := range filters {
		fn(&f)
	}
	typ := reflect.TypeFor[T]()

	m.registry.removeWhere(func(s *subscription) bool {
		return s.messageType == typ && s.belongsTo(recipient) && f.match(s)
	})
	m.cleaner.touch()

	return nil
}

package messenger

import (
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// registry holds subscriptions keyed by the message type they were registered for.
// strict buckets match the declared type of a send exactly; derived buckets match
// any message whose actual type is assignable to the key.
type registry struct {
	mu      sync.RWMutex
	strict  map[reflect.Type][]*subscription
	derived map[reflect.Type][]*subscription
	nextID  uint64

	// assignable caches actual type -> derived keys it is assignable to.
	// Purged whenever the set of derived keys changes.
	assignable *lru.Cache[reflect.Type, []reflect.Type]
}

func newRegistry(cacheSize int) *registry {
	r := &registry{
		strict:  make(map[reflect.Type][]*subscription),
		derived: make(map[reflect.Type][]*subscription),
	}
	if cacheSize > 0 {
		if c, err := lru.New[reflect.Type, []reflect.Type](cacheSize); err == nil {
			r.assignable = c
		}
	}
	return r
}

func (r *registry) add(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub.id = r.nextID

	if !sub.derived {
		r.strict[sub.messageType] = append(r.strict[sub.messageType], sub)
		return
	}

	if _, ok := r.derived[sub.messageType]; !ok {
		r.purgeCache()
	}
	r.derived[sub.messageType] = append(r.derived[sub.messageType], sub)
}

// candidates returns a snapshot of every subscription that may receive env.
// A subscription registered twice appears twice; the same subscription never does.
func (r *registry) candidates(env *envelope) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strict := r.strict[env.DeclaredType]
	keys := r.derivedKeys(env.ActualType)

	out := make([]*subscription, 0, len(strict))
	seen := make(map[*subscription]struct{}, len(strict))
	add := func(subs []*subscription) {
		for _, s := range subs {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}

	add(strict)
	for _, k := range keys {
		add(r.derived[k])
	}
	return out
}

// derivedKeys must be called with r.mu held.
func (r *registry) derivedKeys(actual reflect.Type) []reflect.Type {
	if r.assignable != nil {
		if keys, ok := r.assignable.Get(actual); ok {
			return keys
		}
	}

	var keys []reflect.Type
	for k := range r.derived {
		if actual.AssignableTo(k) {
			keys = append(keys, k)
		}
	}

	if r.assignable != nil {
		r.assignable.Add(actual, keys)
	}
	return keys
}

// removeWhere drops every subscription matching pred and prunes empty buckets.
// It returns the number of subscriptions removed.
func (r *registry) removeWhere(pred func(*subscription) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := prune(r.strict, pred)

	before := len(r.derived)
	removed += prune(r.derived, pred)
	if len(r.derived) != before {
		r.purgeCache()
	}

	return removed
}

func prune(m map[reflect.Type][]*subscription, pred func(*subscription) bool) int {
	removed := 0
	for typ, subs := range m {
		kept := subs[:0]
		for _, s := range subs {
			if pred(s) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(m, typ)
			continue
		}
		// Clear the tail so removed subscriptions can be collected.
		clear(subs[len(kept):])
		m[typ] = kept
	}
	return removed
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.strict = make(map[reflect.Type][]*subscription)
	r.derived = make(map[reflect.Type][]*subscription)
	r.purgeCache()
}

func (r *registry) purgeCache() {
	if r.assignable != nil {
		r.assignable.Purge()
	}
}

type registryStats struct {
	subscriptions int
	strictTypes   int
	derivedTypes  int
}

func (r *registry) stats() registryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := registryStats{
		strictTypes:  len(r.strict),
		derivedTypes: len(r.derived),
	}
	for _, subs := range r.strict {
		st.subscriptions += len(subs)
	}
	for _, subs := range r.derived {
		st.subscriptions += len(subs)
	}
	return st
}

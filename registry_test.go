package messenger

import (
	"context"
	"reflect"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shape interface{ Area() float64 }

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

type named interface{ Name() string }

func (s square) Name() string { return "square" }

type probe struct{ id *int }

func newProbe(id int) *probe { return &probe{id: &id} }

func testSub[T any](p *probe, derived bool, token any) *subscription {
	return &subscription{
		messageType: reflect.TypeFor[T](),
		derived:     derived,
		handle:      newWeakHandle(p),
		token:       token,
		invoke:      func(context.Context, any, any) error { return nil },
	}
}

func testEnvelope[T any](t *testing.T, msg T) *envelope {
	t.Helper()
	env, err := newEnvelope(msg, nil, nil)
	require.NoError(t, err)
	return env
}

func TestRegistry_Candidates(t *testing.T) {
	t.Parallel()

	t.Run("strict matches declared type only", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		p := newProbe(1)
		sub := testSub[shape](p, false, nil)
		r.add(sub)

		assert.Empty(t, r.candidates(testEnvelope(t, square{side: 2})))
		assert.Equal(t, []*subscription{sub}, r.candidates(testEnvelope[shape](t, square{side: 2})))
	})

	t.Run("derived matches assignable actual type", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		p := newProbe(1)
		sub := testSub[shape](p, true, nil)
		r.add(sub)

		assert.Equal(t, []*subscription{sub}, r.candidates(testEnvelope(t, square{side: 2})))
		assert.Empty(t, r.candidates(testEnvelope(t, "not a shape")))
	})

	t.Run("duplicate registrations are both returned", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		p := newProbe(1)
		first := testSub[string](p, false, nil)
		second := testSub[string](p, false, nil)
		r.add(first)
		r.add(second)

		got := r.candidates(testEnvelope(t, "hello"))
		require.Len(t, got, 2)
		assert.ElementsMatch(t, []*subscription{first, second}, got)
		assert.NotEqual(t, first.id, second.id)
	})

	t.Run("cache is purged when a derived key is added", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		p := newProbe(1)
		shapes := testSub[shape](p, true, nil)
		r.add(shapes)

		// Prime the cache for square.
		require.Len(t, r.candidates(testEnvelope(t, square{})), 1)

		names := testSub[named](p, true, nil)
		r.add(names)

		assert.ElementsMatch(t, []*subscription{shapes, names}, r.candidates(testEnvelope(t, square{})))
	})

	t.Run("works without a type cache", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(0)
		p := newProbe(1)
		r.add(testSub[shape](p, true, nil))

		assert.Len(t, r.candidates(testEnvelope(t, square{})), 1)
		assert.Nil(t, r.assignable)
	})
}

func TestRegistry_RemoveWhere(t *testing.T) {
	t.Parallel()

	t.Run("prunes empty buckets", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		a, b := newProbe(1), newProbe(2)
		r.add(testSub[string](a, false, nil))
		r.add(testSub[int](b, false, nil))
		r.add(testSub[shape](a, true, nil))

		removed := r.removeWhere(func(s *subscription) bool { return s.belongsTo(a) })
		assert.Equal(t, 2, removed)

		st := r.stats()
		assert.Equal(t, 1, st.subscriptions)
		assert.Equal(t, 1, st.strictTypes)
		assert.Equal(t, 0, st.derivedTypes)
	})

	t.Run("removed derived key no longer matches", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		p := newProbe(1)
		r.add(testSub[shape](p, true, nil))
		require.Len(t, r.candidates(testEnvelope(t, square{})), 1)

		r.removeWhere(func(*subscription) bool { return true })
		assert.Empty(t, r.candidates(testEnvelope(t, square{})))
	})

	t.Run("keeps bucket order for survivors", func(t *testing.T) {
		t.Parallel()

		r := newRegistry(DefaultTypeCacheSize)
		a, b, c := newProbe(1), newProbe(2), newProbe(3)
		sa, sb, sc := testSub[string](a, false, nil), testSub[string](b, false, nil), testSub[string](c, false, nil)
		r.add(sa)
		r.add(sb)
		r.add(sc)

		r.removeWhere(func(s *subscription) bool { return s == sb })
		assert.Equal(t, []*subscription{sa, sc}, r.candidates(testEnvelope(t, "x")))
	})
}

func TestRegistry_Clear(t *testing.T) {
	t.Parallel()

	r := newRegistry(DefaultTypeCacheSize)
	p := newProbe(1)
	r.add(testSub[string](p, false, nil))
	r.add(testSub[shape](p, true, nil))

	r.clear()

	assert.Equal(t, registryStats{}, r.stats())
	assert.Empty(t, r.candidates(testEnvelope(t, square{})))
}

func TestSubscription_Matches(t *testing.T) {
	t.Parallel()

	p := newProbe(1)

	t.Run("token equality", func(t *testing.T) {
		t.Parallel()

		sub := testSub[string](p, false, "t1")

		_, ok := sub.matches(&envelope{Token: "t1"})
		assert.True(t, ok)
		_, ok = sub.matches(&envelope{Token: "t2"})
		assert.False(t, ok)
		_, ok = sub.matches(&envelope{})
		assert.False(t, ok)

		untokened := testSub[string](p, false, nil)
		_, ok = untokened.matches(&envelope{Token: "t1"})
		assert.False(t, ok)
		_, ok = untokened.matches(&envelope{})
		assert.True(t, ok)

		runtime.KeepAlive(p)
	})

	t.Run("target type filter", func(t *testing.T) {
		t.Parallel()

		sub := testSub[string](p, false, nil)

		target, ok := sub.matches(&envelope{TargetType: reflect.TypeFor[*probe]()})
		assert.True(t, ok)
		assert.Same(t, p, target)

		_, ok = sub.matches(&envelope{TargetType: reflect.TypeFor[probe]()})
		assert.True(t, ok)

		_, ok = sub.matches(&envelope{TargetType: reflect.TypeFor[*square]()})
		assert.False(t, ok)
	})

	t.Run("dead handle never matches", func(t *testing.T) {
		t.Parallel()

		sub := testSub[string](newProbe(2), false, nil)
		sub.handle.invalidate()

		_, ok := sub.matches(&envelope{})
		assert.False(t, ok)
		assert.False(t, sub.belongsTo(p))
	})
}

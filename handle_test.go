package messenger

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeakHandle(t *testing.T) {
	t.Parallel()

	t.Run("returns live recipient", func(t *testing.T) {
		t.Parallel()

		p := newProbe(1)
		h := newWeakHandle(p)

		assert.True(t, h.alive())
		assert.Same(t, p, h.target())
	})

	t.Run("invalidate", func(t *testing.T) {
		t.Parallel()

		p := newProbe(1)
		h := newWeakHandle(p)
		h.invalidate()

		assert.False(t, h.alive())
		assert.Nil(t, h.target())
		runtime.KeepAlive(p)
	})

	t.Run("does not keep recipient alive", func(t *testing.T) {
		t.Parallel()

		h := func() handle {
			return newWeakHandle(newProbe(42))
		}()

		require.Eventually(t, func() bool {
			runtime.GC()
			return !h.alive()
		}, 2*time.Second, 10*time.Millisecond)

		// A reclaimed recipient must come back as an untyped nil.
		assert.True(t, h.target() == nil)
	})
}

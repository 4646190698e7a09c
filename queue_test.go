package messenger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("fifo", func(t *testing.T) {
		t.Parallel()

		q := newQueue[int]()
		for i := range 5 {
			require.NoError(t, q.push(i))
		}
		assert.Equal(t, 5, q.len())

		for i := range 5 {
			v, ok := q.pop(context.Background())
			require.True(t, ok)
			assert.Equal(t, i, v)
		}
		assert.Equal(t, 0, q.len())
	})

	t.Run("pop waits for push", func(t *testing.T) {
		t.Parallel()

		q := newQueue[string]()
		got := make(chan string, 1)
		go func() {
			v, _ := q.pop(context.Background())
			got <- v
		}()

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, q.push("hello"))

		select {
		case v := <-got:
			assert.Equal(t, "hello", v)
		case <-time.After(time.Second):
			t.Fatal("pop did not return after push")
		}
	})

	t.Run("close drains then stops", func(t *testing.T) {
		t.Parallel()

		q := newQueue[int]()
		require.NoError(t, q.push(1))
		require.NoError(t, q.push(2))
		q.close()

		assert.ErrorIs(t, q.push(3), ErrQueueClosed)

		v, ok := q.pop(context.Background())
		require.True(t, ok)
		assert.Equal(t, 1, v)
		v, ok = q.pop(context.Background())
		require.True(t, ok)
		assert.Equal(t, 2, v)

		_, ok = q.pop(context.Background())
		assert.False(t, ok)
	})

	t.Run("close wakes a blocked consumer", func(t *testing.T) {
		t.Parallel()

		q := newQueue[int]()
		done := make(chan bool, 1)
		go func() {
			_, ok := q.pop(context.Background())
			done <- ok
		}()

		time.Sleep(10 * time.Millisecond)
		q.close()

		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("pop did not return after close")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()

		q := newQueue[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, ok := q.pop(ctx)
		assert.False(t, ok)
	})

	t.Run("concurrent producers", func(t *testing.T) {
		t.Parallel()

		const producers, perProducer = 8, 250
		q := newQueue[int]()

		var g errgroup.Group
		for p := range producers {
			g.Go(func() error {
				for i := range perProducer {
					if err := q.push(p*perProducer + i); err != nil {
						return err
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		q.close()

		seen := make(map[int]struct{}, producers*perProducer)
		for {
			v, ok := q.pop(context.Background())
			if !ok {
				break
			}
			seen[v] = struct{}{}
		}
		assert.Len(t, seen, producers*perProducer)
	})
}

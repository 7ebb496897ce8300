package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsTask(t *testing.T) {
	q := NewQueue(2, 8)
	defer q.Stop()

	done := make(chan struct{})
	err := q.Enqueue("test", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestEnqueueRefusesWhenFull(t *testing.T) {
	q := NewQueue(1, 1)
	defer q.Stop()

	block := make(chan struct{})
	var mu sync.Mutex
	started := false

	require.NoError(t, q.Enqueue("blocker", func(ctx context.Context) error {
		mu.Lock()
		started = true
		mu.Unlock()
		<-block
		return nil
	}))

	// Wait for the worker to pick up the blocker so the next enqueue fills
	// the buffer deterministically.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return started
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, q.Enqueue("queued", func(ctx context.Context) error { return nil }))

	err := q.Enqueue("overflow", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
}

func TestTaskErrorsDoNotPropagate(t *testing.T) {
	q := NewQueue(1, 4)

	ran := make(chan struct{})
	require.NoError(t, q.Enqueue("failing", func(ctx context.Context) error {
		return errors.New("boom")
	}))
	require.NoError(t, q.Enqueue("after", func(ctx context.Context) error {
		close(ran)
		return nil
	}))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stopped after a failing task")
	}
	q.Stop()
}

func TestTaskPanicIsRecovered(t *testing.T) {
	q := NewQueue(1, 4)

	ran := make(chan struct{})
	require.NoError(t, q.Enqueue("panicking", func(ctx context.Context) error {
		panic("boom")
	}))
	require.NoError(t, q.Enqueue("after", func(ctx context.Context) error {
		close(ran)
		return nil
	}))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died on panic")
	}
	q.Stop()
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_Memory(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "old", []byte("a"), time.Minute))
	require.NoError(t, m.Set(ctx, "new", []byte("b"), time.Hour))
	now = now.Add(2 * time.Minute)

	removed, ok, err := New(m, "memory").Sweep(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1), removed)

	_, found, err := m.Get(ctx, "new")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSweep_BackendWithoutSweeper(t *testing.T) {
	removed, ok, err := New(&failingBackend{}, "redis").Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, removed)
}

func TestRunJanitor_ReturnsForNonSweeper(t *testing.T) {
	done := make(chan struct{})
	go func() {
		RunJanitor(context.Background(), New(&failingBackend{}, "redis"), time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor should return immediately")
	}
}

func TestRunJanitor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, New(NewMemory(), "memory"), time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

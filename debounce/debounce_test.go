package debounce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSleep lets tests drive the debounce loop without real wall-clock
// waits, while still exercising the real drain logic.
func fakeSleep(calls *int) func(time.Duration) {
	return func(time.Duration) { *calls++ }
}

func TestCollectCoalescesBurst(t *testing.T) {
	q := NewQueue(10)
	d := New(q, time.Millisecond)
	var calls int
	d.sleepFn = fakeSleep(&calls)

	q.Push([]string{"a"})
	q.Push([]string{"b", "c"})

	acc, ok := d.Collect(context.Background())
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, acc)
	assert.Equal(t, 1, calls, "exactly one sleep+drain cycle finds the queue empty and returns")
}

func TestCollectKeepsDrainingWhileBatchesArrive(t *testing.T) {
	q := NewQueue(10)
	d := New(q, time.Millisecond)

	fed := 0
	d.sleepFn = func(time.Duration) {
		fed++
		if fed == 1 {
			q.Push([]string{"late"})
		}
	}

	q.Push([]string{"first"})

	acc, ok := d.Collect(context.Background())
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"first", "late"}, acc)
	assert.Equal(t, 2, fed, "one extra sleep cycle happens because the first drain found new work")
}

func TestCollectPermitsDuplicates(t *testing.T) {
	q := NewQueue(10)
	d := New(q, time.Millisecond)
	var calls int
	d.sleepFn = fakeSleep(&calls)

	q.Push([]string{"a", "a"})

	acc, ok := d.Collect(context.Background())
	require.True(t, ok)
	assert.Equal(t, []string{"a", "a"}, acc)
}

func TestCollectReturnsOnCancel(t *testing.T) {
	q := NewQueue(10)
	d := New(q, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc, ok := d.Collect(ctx)
	assert.False(t, ok)
	assert.Nil(t, acc)
}

package observation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushQueueDrainsSynchronously(t *testing.T) {
	q := NewFlushQueue(nil)
	f := &flushCounter{}

	q.Add(f)

	assert.Equal(t, 1, f.flushes)
	assert.Zero(t, q.Count())
	assert.False(t, q.Flushing())
	assert.Zero(t, q.Epoch())
}

func TestFlushQueueBatchDeduplicates(t *testing.T) {
	q := NewFlushQueue(nil)
	var log []string
	a := &flushCounter{name: "a", log: &log}
	b := &flushCounter{name: "b", log: &log}

	q.Batch(func() {
		q.Add(a)
		q.Add(b)
		q.Add(a)
		assert.Equal(t, 2, q.Count())
		assert.Empty(t, log, "nothing flushes inside a batch")
	})

	assert.Equal(t, []string{"a", "b"}, log)
	assert.Equal(t, 1, a.flushes)
}

func TestFlushQueueNestedBatch(t *testing.T) {
	q := NewFlushQueue(nil)
	f := &flushCounter{}

	q.Batch(func() {
		q.Batch(func() {
			q.Add(f)
		})
		assert.Zero(t, f.flushes, "inner batch does not drain")
	})
	assert.Equal(t, 1, f.flushes)
}

func TestFlushQueueAddDuringDrain(t *testing.T) {
	q := NewFlushQueue(nil)
	var log []string
	c := &flushCounter{name: "c", log: &log}
	b := &flushCounter{name: "b", log: &log}
	a := &flushCounter{name: "a", log: &log}
	a.onFlush = func() {
		q.Add(c)
		assert.True(t, q.Flushing())
		assert.NotZero(t, q.Epoch())
	}

	q.Batch(func() {
		q.Add(a)
		q.Add(b)
	})

	assert.Equal(t, []string{"a", "b", "c"}, log, "items added while draining are serviced in FIFO order")
}

func TestFlushQueueSelfReAdd(t *testing.T) {
	q := NewFlushQueue(nil)
	f := &flushCounter{}
	f.onFlush = func() {
		if f.flushes < 3 {
			q.Add(f)
		}
	}

	q.Add(f)

	assert.Equal(t, 3, f.flushes, "an item removed before its flush may re-add itself")
}

func TestFlushQueueEpochAdvances(t *testing.T) {
	q := NewFlushQueue(nil)
	var epochs []uint64
	f := &flushCounter{}
	f.onFlush = func() { epochs = append(epochs, q.Epoch()) }

	q.Add(f)
	q.Add(f)

	require.Len(t, epochs, 2)
	assert.Less(t, epochs[0], epochs[1])
}

func TestFlushQueueClear(t *testing.T) {
	q := NewFlushQueue(nil)
	f := &flushCounter{}
	q.Batch(func() {
		q.Add(f)
		q.Clear()
	})
	assert.Zero(t, f.flushes)
	assert.Zero(t, q.Count())
}

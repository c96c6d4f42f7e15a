package telemetry

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ev(id int64) Event {
	return Event{ID: id, Identifier: "sim-1", Timestamp: fmt.Sprintf("T+%d", id)}
}

func ids(events []Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestNewBuffer(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"default size", 0, DefaultBufferSize},
		{"negative size", -1, DefaultBufferSize},
		{"custom size", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.size)
			assert.Equal(t, tt.expected, b.Cap())
			assert.Equal(t, 0, b.Len())
			assert.Empty(t, b.Events())
		})
	}
}

func TestBuffer_ApplyIncrementPrepends(t *testing.T) {
	b := NewBuffer(5)
	b.ApplyIncrement(ev(1))
	b.ApplyIncrement(ev(2))
	b.ApplyIncrement(ev(3))

	assert.Equal(t, []int64{3, 2, 1}, ids(b.Events()))
}

func TestBuffer_ApplyIncrementTruncatesTail(t *testing.T) {
	b := NewBuffer(3)
	for i := int64(1); i <= 5; i++ {
		b.ApplyIncrement(ev(i))
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []int64{5, 4, 3}, ids(b.Events()))
}

func TestBuffer_ApplySnapshotReplaces(t *testing.T) {
	b := NewBuffer(5)
	b.ApplyIncrement(ev(99))

	b.ApplySnapshot([]Event{ev(7), ev(6), ev(5)})
	assert.Equal(t, []int64{7, 6, 5}, ids(b.Events()))

	b.ApplySnapshot(nil)
	assert.Equal(t, 0, b.Len())
}

func TestBuffer_ApplySnapshotTruncates(t *testing.T) {
	b := NewBuffer(2)
	b.ApplySnapshot([]Event{ev(9), ev(8), ev(7)})
	assert.Equal(t, []int64{9, 8}, ids(b.Events()))
}

func TestBuffer_SnapshotIsCopied(t *testing.T) {
	b := NewBuffer(5)
	src := []Event{ev(1), ev(2)}
	b.ApplySnapshot(src)

	src[0].ID = 100
	assert.Equal(t, []int64{1, 2}, ids(b.Events()))

	out := b.Events()
	out[0].ID = 200
	assert.Equal(t, []int64{1, 2}, ids(b.Events()))
}

func TestBuffer_TimestampIsNotASortKey(t *testing.T) {
	b := NewBuffer(5)
	b.ApplyIncrement(Event{ID: 1, Timestamp: "T+9"})
	b.ApplyIncrement(Event{ID: 2, Timestamp: "T+1"})

	assert.Equal(t, []int64{2, 1}, ids(b.Events()))
}

func TestBuffer_NoDeduplication(t *testing.T) {
	b := NewBuffer(5)
	b.ApplyIncrement(ev(1))
	b.ApplyIncrement(ev(1))

	assert.Equal(t, []int64{1, 1}, ids(b.Events()))
}

func TestBuffer_Clear(t *testing.T) {
	b := NewBuffer(5)
	b.ApplySnapshot([]Event{ev(1), ev(2)})
	b.Clear()

	assert.Equal(t, 0, b.Len())
	b.ApplyIncrement(ev(3))
	assert.Equal(t, []int64{3}, ids(b.Events()))
}

// Mixed snapshot/increment sequences never exceed the cap, and the buffer
// always equals the reference model: newest increments first, followed by
// the most recent snapshot.
func TestBuffer_RandomizedInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const size = DefaultBufferSize
	b := NewBuffer(size)
	var model []int64
	next := int64(1)

	for step := 0; step < 2000; step++ {
		if rng.Intn(20) == 0 {
			n := rng.Intn(size * 2)
			snap := make([]Event, n)
			for i := range snap {
				snap[i] = ev(next)
				next++
			}
			b.ApplySnapshot(snap)
			model = ids(snap)
			if len(model) > size {
				model = model[:size]
			}
		} else {
			e := ev(next)
			next++
			b.ApplyIncrement(e)
			model = append([]int64{e.ID}, model...)
			if len(model) > size {
				model = model[:size]
			}
		}

		require.LessOrEqual(t, b.Len(), size)
		require.Equal(t, model, ids(b.Events()), "step %d", step)
	}
}

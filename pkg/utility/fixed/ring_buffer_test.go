package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBuffer_NewPanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { NewRingBuffer(0) })
}

func TestRingBuffer_Ordering(t *testing.T) {
	rb := NewRingBuffer(3)
	require.True(t, rb.IsEmpty())

	for i := 1; i <= 5; i++ {
		rb.Add(FromInt(i, 0))
	}

	assert.True(t, rb.IsFull())
	assert.Equal(t, 3, rb.Size())
	assert.Equal(t, "5", rb.Latest().String())
	assert.Equal(t, "3", rb.Oldest().String())
	assert.Equal(t, "4", rb.Get(1).String())

	var seen []string
	rb.ForEachFifo(func(p Point) { seen = append(seen, p.String()) })
	assert.Equal(t, []string{"3", "4", "5"}, seen)
}

func TestRingBuffer_Statistics(t *testing.T) {
	rb := NewRingBuffer(4)
	for _, v := range []int64{2, 4, 4, 6} {
		rb.Add(FromInt64(v, 0))
	}

	assert.Equal(t, "16", rb.Sum().String())
	assert.Equal(t, "4", rb.Mean().String())
	assert.InDelta(t, 1.41421356, rb.StdDev().Float(), 1e-8)
	assert.InDelta(t, 1.63299316, rb.SampleStdDev().Float(), 1e-8)
}

func TestRingBuffer_ClearAndBounds(t *testing.T) {
	rb := NewRingBuffer(2)
	rb.Add(One)
	rb.Clear()

	assert.True(t, rb.IsEmpty())
	assert.Nil(t, rb.ToSliceFifo())
	assert.Panics(t, func() { rb.Latest() })
	assert.Panics(t, func() { rb.Get(0) })
}

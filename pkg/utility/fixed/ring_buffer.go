package fixed

import "fmt"

// RingBuffer keeps the last capacity points. Index 0 is the newest point.
type RingBuffer struct {
	buffer []Point
	size   int
	next   int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		panic("capacity must be positive")
	}
	return &RingBuffer{
		buffer: make([]Point, capacity),
	}
}

func (r *RingBuffer) Size() int     { return r.size }
func (r *RingBuffer) Capacity() int { return len(r.buffer) }
func (r *RingBuffer) IsEmpty() bool { return r.size == 0 }
func (r *RingBuffer) IsFull() bool  { return r.size == len(r.buffer) }

func (r *RingBuffer) Clear() {
	r.size = 0
	r.next = 0
}

func (r *RingBuffer) Add(p Point) {
	r.buffer[r.next] = p
	r.next = (r.next + 1) % len(r.buffer)
	if r.size < len(r.buffer) {
		r.size++
	}
}

func (r *RingBuffer) Get(idx int) Point {
	if idx < 0 || idx >= r.size {
		panic(fmt.Sprintf("index %d out of range [0, %d)", idx, r.size))
	}
	return r.buffer[(r.next-1-idx+2*len(r.buffer))%len(r.buffer)]
}

func (r *RingBuffer) Latest() Point {
	if r.size == 0 {
		panic("buffer is empty")
	}
	return r.Get(0)
}

func (r *RingBuffer) Oldest() Point {
	if r.size == 0 {
		panic("buffer is empty")
	}
	return r.Get(r.size - 1)
}

// ForEachFifo visits points from the oldest to the newest.
func (r *RingBuffer) ForEachFifo(f func(Point)) {
	for i := r.size - 1; i >= 0; i-- {
		f(r.Get(i))
	}
}

func (r *RingBuffer) ToSliceFifo() []Point {
	if r.size == 0 {
		return nil
	}
	result := make([]Point, 0, r.size)
	r.ForEachFifo(func(p Point) {
		result = append(result, p)
	})
	return result
}

func (r *RingBuffer) Sum() Point {
	sum := Zero
	r.ForEachFifo(func(p Point) {
		sum = sum.Add(p)
	})
	return sum
}

func (r *RingBuffer) Mean() Point {
	if r.size == 0 {
		return Zero
	}
	return r.Sum().DivInt(r.size)
}

func (r *RingBuffer) StdDev() Point {
	return StdDev(r.ToSliceFifo(), r.Mean())
}

func (r *RingBuffer) SampleStdDev() Point {
	return SampleStdDev(r.ToSliceFifo(), r.Mean())
}

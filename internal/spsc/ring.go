package spsc

import (
	"sync/atomic"
)

const cacheLineSize = 64

// Ring is a bounded, lock-free queue for exactly one producer and one consumer.
//
// One slot is always left empty so that head == tail means empty and head+1 == tail means
// full; a ring created with capacity N holds at most N-1 items.
type Ring[T any] struct {
	buf  []T
	size uint64

	_    [cacheLineSize]byte
	head atomic.Uint64 // written by the producer only
	_    [cacheLineSize - 8]byte
	tail atomic.Uint64 // written by the consumer only
	_    [cacheLineSize - 8]byte
}

// New allocates a ring with capacity slots. Capacity below 2 is raised to 2.
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &Ring[T]{
		buf:  make([]T, capacity),
		size: uint64(capacity),
	}
}

// Push enqueues v without blocking. It reports false, with no side effects, when the ring is
// full. Producer side only.
func (r *Ring[T]) Push(v T) bool {
	head := r.head.Load()
	next := head + 1
	if next == r.size {
		next = 0
	}
	if next == r.tail.Load() {
		return false
	}
	r.buf[head] = v
	r.head.Store(next)
	return true
}

// Pop dequeues the oldest item without blocking. Consumer side only.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return zero, false
	}
	v := r.buf[tail]
	r.buf[tail] = zero
	tail++
	if tail == r.size {
		tail = 0
	}
	r.tail.Store(tail)
	return v, true
}

// ApproxSize returns a stale snapshot of the number of queued items. Monitoring only.
func (r *Ring[T]) ApproxSize() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		return int(head - tail)
	}
	return int(r.size - tail + head)
}

// Cap returns the number of items the ring can hold.
func (r *Ring[T]) Cap() int {
	return int(r.size - 1)
}

package pool

import (
	"sync/atomic"

	"mdcore/internal/spsc"
)

// Handle addresses one slot of a Pool.
type Handle uint32

// Pool is a fixed arena of reusable slots addressed by Handle.
//
// Allocate belongs to one goroutine (the producer) and Release to one other goroutine (the
// consumer). Released handles travel back to the producer over a dedicated SPSC ring, so the
// free stack itself is only ever touched by the producer. Slot contents are not cleared.
type Pool[T any] struct {
	slots    []T
	free     []Handle
	returned *spsc.Ring[Handle]
	// available counts free slots including handles in transit; readable from any goroutine.
	available atomic.Int64
}

// New preallocates capacity slots. Capacity below 1 is raised to 1.
func New[T any](capacity int) *Pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	p := &Pool[T]{
		slots: make([]T, capacity),
		free:  make([]Handle, capacity),
		// one reserved slot, so every outstanding handle always fits
		returned: spsc.New[Handle](capacity + 1),
	}
	for i := range p.free {
		p.free[i] = Handle(i)
	}
	p.available.Store(int64(capacity))
	return p
}

// Allocate takes a free slot. It reports false when every slot is outstanding. Producer side.
func (p *Pool[T]) Allocate() (Handle, bool) {
	if len(p.free) == 0 {
		p.reclaim()
		if len(p.free) == 0 {
			return 0, false
		}
	}
	n := len(p.free) - 1
	h := p.free[n]
	p.free = p.free[:n]
	p.available.Add(-1)
	return h, true
}

// Release hands a slot back. Releasing a handle twice, or one from another pool, is undefined
// and not detected. Consumer side.
func (p *Pool[T]) Release(h Handle) {
	// counted before the push so the producer can never observe a negative count
	p.available.Add(1)
	p.returned.Push(h)
}

// Recycle puts back a handle that was allocated but never handed to the consumer.
// Producer side.
func (p *Pool[T]) Recycle(h Handle) {
	p.free = append(p.free, h)
	p.available.Add(1)
}

// Get resolves a handle to its slot.
func (p *Pool[T]) Get(h Handle) *T {
	return &p.slots[h]
}

// Cap returns the number of slots.
func (p *Pool[T]) Cap() int {
	return len(p.slots)
}

// ApproxFree returns the number of free slots, including handles still in transit. Safe to
// call from any goroutine; the value may be stale by the time it is read.
func (p *Pool[T]) ApproxFree() int {
	return int(p.available.Load())
}

func (p *Pool[T]) reclaim() {
	for {
		h, ok := p.returned.Pop()
		if !ok {
			return
		}
		p.free = append(p.free, h)
	}
}

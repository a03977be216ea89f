// Package kernel holds the primitives that move data from background goroutines onto
// the single goroutine that owns the scene.
package kernel

import (
	"runtime"
	"sync/atomic"
)

// DefaultMailboxSlots is the capacity used when NewMailbox is given a non-positive size.
const DefaultMailboxSlots = 64

type slot[T any] struct {
	seq atomic.Uint64
	val T
}

// Mailbox is a fixed-size multi-producer, single-consumer queue.
//
// Each slot carries a sequence number so a consumer never observes a slot that a
// producer has reserved but not yet written. Past the ring sits one overflow slot
// used by Offer: the newest value waits there when the ring is full and is received
// after everything in the ring, so for a single producer the last value received is
// always the last value offered.
type Mailbox[T any] struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint64
	tail  atomic.Uint64
	mask  uint64
	slots []slot[T]

	overflow atomic.Pointer[T]
	dropped  atomic.Uint64
}

// NewMailbox returns a mailbox with capacity rounded up to a power of two.
func NewMailbox[T any](size int) *Mailbox[T] {
	if size <= 0 {
		size = DefaultMailboxSlots
	}
	n := 1
	for n < size {
		n <<= 1
	}
	mb := &Mailbox[T]{mask: uint64(n - 1), slots: make([]slot[T], n)}
	for i := range mb.slots {
		mb.slots[i].seq.Store(uint64(i))
	}
	return mb
}

// Cap returns the number of slots.
func (mb *Mailbox[T]) Cap() int { return len(mb.slots) }

// TrySend attempts to enqueue v, returning false if the mailbox is full.
func (mb *Mailbox[T]) TrySend(v T) bool {
	for {
		head := mb.head.Load()
		s := &mb.slots[head&mb.mask]
		seq := s.seq.Load()
		switch {
		case seq == head:
			// Reserve the slot.
			if !mb.head.CompareAndSwap(head, head+1) {
				continue
			}
			s.val = v
			s.seq.Store(head + 1)
			return true
		case seq < head:
			return false
		default:
			// Another producer won this slot; retry with the new head.
			runtime.Gosched()
		}
	}
}

// Offer enqueues v without blocking. When the ring is full, or an earlier value
// is already waiting in the overflow slot, v takes the overflow slot and the value
// it replaces is counted as dropped. Offer reports false when a value was dropped.
func (mb *Mailbox[T]) Offer(v T) bool {
	if mb.overflow.Load() == nil && mb.TrySend(v) {
		return true
	}
	if old := mb.overflow.Swap(&v); old != nil {
		mb.dropped.Add(1)
		return false
	}
	return true
}

// TryRecv attempts to dequeue one value, returning false if empty. The overflow
// slot is only received once the ring is empty.
//
// Only one goroutine may receive.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	tail := mb.tail.Load()
	s := &mb.slots[tail&mb.mask]
	if s.seq.Load() != tail+1 {
		if p := mb.overflow.Swap(nil); p != nil {
			return *p, true
		}
		var zero T
		return zero, false
	}
	v := s.val
	var zero T
	s.val = zero
	s.seq.Store(tail + mb.mask + 1)
	mb.tail.Store(tail + 1)
	return v, true
}

// Drain receives every queued value in order and passes it to fn. It returns the
// number of values handled.
func (mb *Mailbox[T]) Drain(fn func(T)) int {
	n := 0
	for {
		v, ok := mb.TryRecv()
		if !ok {
			return n
		}
		fn(v)
		n++
	}
}

// Dropped returns how many values Offer replaced in the overflow slot.
func (mb *Mailbox[T]) Dropped() uint64 { return mb.dropped.Load() }

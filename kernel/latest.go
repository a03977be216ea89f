package kernel

import "sync/atomic"

// Latest is a single-value slot: writers replace the value, readers see the most
// recent one together with a sequence number that bumps on every write.
type Latest[T any] struct {
	seq atomic.Uint64
	v   atomic.Pointer[T]
}

// Store publishes v and returns its sequence number.
func (l *Latest[T]) Store(v T) uint64 {
	l.v.Store(&v)
	return l.seq.Add(1)
}

// Load returns the last stored value and its sequence number. ok is false until
// the first Store.
func (l *Latest[T]) Load() (v T, seq uint64, ok bool) {
	seq = l.seq.Load()
	p := l.v.Load()
	if p == nil {
		return v, seq, false
	}
	return *p, seq, true
}

// Since returns the current value when it changed after seq.
func (l *Latest[T]) Since(seq uint64) (v T, cur uint64, changed bool) {
	v, cur, ok := l.Load()
	if !ok || cur == seq {
		var zero T
		return zero, cur, false
	}
	return v, cur, true
}

package kernel

import (
	"runtime"
	"sync"
	"testing"
)

func TestMailboxTryRecvEmpty(t *testing.T) {
	mb := NewMailbox[int](4)

	_, ok := mb.TryRecv()
	if ok {
		t.Fatalf("TryRecv() ok = true, want false")
	}
}

func TestMailboxRoundsCapacity(t *testing.T) {
	if got := NewMailbox[int](5).Cap(); got != 8 {
		t.Fatalf("Cap() = %d, want 8", got)
	}
	if got := NewMailbox[int](0).Cap(); got != DefaultMailboxSlots {
		t.Fatalf("Cap() = %d, want %d", got, DefaultMailboxSlots)
	}
}

func TestMailboxTrySendFull(t *testing.T) {
	mb := NewMailbox[int](8)

	for i := 0; i < mb.Cap(); i++ {
		if ok := mb.TrySend(i); !ok {
			t.Fatalf("TrySend() ok = false at slot %d, want true", i)
		}
	}
	if ok := mb.TrySend(99); ok {
		t.Fatalf("TrySend() ok = true when full, want false")
	}

	for i := 0; i < mb.Cap(); i++ {
		v, ok := mb.TryRecv()
		if !ok {
			t.Fatalf("TryRecv() ok = false at slot %d, want true", i)
		}
		if v != i {
			t.Fatalf("TryRecv() = %d, want %d", v, i)
		}
	}
	if _, ok := mb.TryRecv(); ok {
		t.Fatalf("TryRecv() ok = true after drain, want false")
	}
	if ok := mb.TrySend(1); !ok {
		t.Fatalf("TrySend() after drain ok = false, want true")
	}
}

func TestMailboxOfferKeepsNewest(t *testing.T) {
	mb := NewMailbox[int](4)

	for i := 1; i <= 5; i++ {
		if ok := mb.Offer(i); !ok {
			t.Fatalf("Offer(%d) ok = false, want true", i)
		}
	}
	if ok := mb.Offer(6); ok {
		t.Fatalf("Offer(6) ok = true, want false")
	}
	if got := mb.Dropped(); got != 1 {
		t.Fatalf("Dropped() = %d, want 1", got)
	}

	var got []int
	mb.Drain(func(v int) { got = append(got, v) })
	want := []int{1, 2, 3, 4, 6}
	if len(got) != len(want) {
		t.Fatalf("Drain() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain() = %v, want %v", got, want)
		}
	}
}

func TestMailboxOfferAfterOverflowStaysBehindRing(t *testing.T) {
	mb := NewMailbox[int](2)
	mb.Offer(1)
	mb.Offer(2)
	mb.Offer(3) // overflow

	if v, _ := mb.TryRecv(); v != 1 {
		t.Fatalf("TryRecv() = %d, want 1", v)
	}
	// The ring has room again, but 4 is newer than the waiting 3.
	if ok := mb.Offer(4); ok {
		t.Fatalf("Offer(4) ok = true, want false")
	}

	var got []int
	mb.Drain(func(v int) { got = append(got, v) })
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("Drain() = %v, want [2 4]", got)
	}
	if ok := mb.Offer(5); !ok {
		t.Fatalf("Offer(5) ok = false after drain, want true")
	}
	if v, ok := mb.TryRecv(); !ok || v != 5 {
		t.Fatalf("TryRecv() = %d, %v, want 5, true", v, ok)
	}
}

func TestMailboxDrainKeepsOrder(t *testing.T) {
	mb := NewMailbox[[]int](4)
	mb.Offer([]int{1})
	mb.Offer([]int{1, 2})
	mb.Offer([]int{1, 2, 3})

	var lens []int
	n := mb.Drain(func(v []int) { lens = append(lens, len(v)) })
	if n != 3 {
		t.Fatalf("Drain() = %d, want 3", n)
	}
	for i, l := range lens {
		if l != i+1 {
			t.Fatalf("Drain order = %v, want [1 2 3]", lens)
		}
	}
	if n := mb.Drain(func([]int) {}); n != 0 {
		t.Fatalf("second Drain() = %d, want 0", n)
	}
}

func TestMailboxConcurrentProducers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(4)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 10_000
		total     = producers * perProd
	)

	mb := NewMailbox[uint32](16)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for producerID := 0; producerID < producers; producerID++ {
		go func(producerID int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				for !mb.TrySend(uint32(producerID*perProd + i)) {
					runtime.Gosched()
				}
			}
		}(producerID)
	}
	close(start)

	seen := make([]bool, total)
	for i := 0; i < total; {
		id, ok := mb.TryRecv()
		if !ok {
			runtime.Gosched()
			continue
		}
		if int(id) >= total {
			t.Fatalf("TryRecv() id = %d, want < %d", id, total)
		}
		if seen[id] {
			t.Fatalf("TryRecv() duplicate id %d", id)
		}
		seen[id] = true
		i++
	}

	wg.Wait()
}

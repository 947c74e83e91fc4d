package book

import (
	"testing"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

func TestTrackerIDsMonotonic(t *testing.T) {
	tr := NewTracker()
	prev := uint64(0)
	for i := 0; i < 10; i++ {
		id := tr.NextID()
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestTrackerQueueCapacity(t *testing.T) {
	tr := NewTracker()
	var ids []uint64
	for i := 0; i < MaxQueueDepth; i++ {
		id := tr.NextID()
		if !tr.Track(id, enum.SideBuy) {
			t.Fatalf("track %d should succeed below capacity", id)
		}
		ids = append(ids, id)
	}
	overflow := tr.NextID()
	if tr.Track(overflow, enum.SideBuy) {
		t.Fatal("track beyond capacity should be refused")
	}
	if _, ok := tr.SideOf(overflow); ok {
		t.Fatal("refused id must not be attributable")
	}
	if tr.Depth(enum.SideBuy) != MaxQueueDepth {
		t.Fatalf("depth = %d, want %d", tr.Depth(enum.SideBuy), MaxQueueDepth)
	}

	// the other side has its own capacity
	if !tr.Track(tr.NextID(), enum.SideSell) {
		t.Fatal("sell queue should be independent of the buy queue")
	}

	evicted, ok := tr.EvictOldest(enum.SideBuy)
	if !ok || evicted != ids[0] {
		t.Fatalf("evicted %d, want oldest %d", evicted, ids[0])
	}
	// an evicted order still attributes fills until its terminal status
	if side, ok := tr.SideOf(evicted); !ok || side != enum.SideBuy {
		t.Fatal("evicted id should remain attributable")
	}
	tr.Done(evicted)
	if _, ok := tr.SideOf(evicted); ok {
		t.Fatal("done id should be forgotten")
	}
}

func TestTrackerDoneRemovesFromQueue(t *testing.T) {
	tr := NewTracker()
	a := tr.NextID()
	b := tr.NextID()
	tr.Track(a, enum.SideSell)
	tr.Track(b, enum.SideSell)

	tr.Done(a)
	if tr.Depth(enum.SideSell) != 1 {
		t.Fatalf("depth = %d, want 1", tr.Depth(enum.SideSell))
	}
	if id, ok := tr.EvictOldest(enum.SideSell); !ok || id != b {
		t.Fatalf("oldest = %d, want %d", id, b)
	}

	// unknown id is a no-op
	tr.Done(9999)
}

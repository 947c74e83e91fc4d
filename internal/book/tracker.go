package book

import (
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

// MaxQueueDepth caps the number of resting orders per side.
const MaxQueueDepth = 4

// Tracker keeps the outstanding resting orders per side: a FIFO queue
// bounded by MaxQueueDepth, mirrored into a side map for O(1) attribution
// of fills. Ids are allocated monotonically and never reused.
type Tracker struct {
	nextID uint64
	sides  map[uint64]enum.Side
	bidq   []uint64
	askq   []uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sides: make(map[uint64]enum.Side)}
}

// NextID allocates a fresh order id.
func (t *Tracker) NextID() uint64 {
	t.nextID++
	return t.nextID
}

// Track records id as resting on side. It returns false, mutating nothing,
// when that side's queue is already at capacity.
func (t *Tracker) Track(id uint64, side enum.Side) bool {
	q := t.queue(side)
	if q == nil || len(*q) >= MaxQueueDepth {
		return false
	}
	*q = append(*q, id)
	t.sides[id] = side
	return true
}

// EvictOldest pops the oldest queued id on side. The caller owns issuing
// the cancel for it; the id stays attributable until Done.
func (t *Tracker) EvictOldest(side enum.Side) (uint64, bool) {
	q := t.queue(side)
	if q == nil || len(*q) == 0 {
		return 0, false
	}
	id := (*q)[0]
	*q = (*q)[1:]
	return id, true
}

// Done removes id from its side's queue and map. Unknown ids are a no-op.
func (t *Tracker) Done(id uint64) {
	side, ok := t.sides[id]
	if !ok {
		return
	}
	delete(t.sides, id)
	q := t.queue(side)
	if q == nil {
		return
	}
	for i, queued := range *q {
		if queued == id {
			*q = append((*q)[:i], (*q)[i+1:]...)
			return
		}
	}
}

// SideOf attributes an id to the side it was sent on.
func (t *Tracker) SideOf(id uint64) (enum.Side, bool) {
	side, ok := t.sides[id]
	return side, ok
}

// Depth returns the number of queued orders on side.
func (t *Tracker) Depth(side enum.Side) int {
	q := t.queue(side)
	if q == nil {
		return 0
	}
	return len(*q)
}

func (t *Tracker) queue(side enum.Side) *[]uint64 {
	switch side {
	case enum.SideBuy:
		return &t.bidq
	case enum.SideSell:
		return &t.askq
	default:
		return nil
	}
}

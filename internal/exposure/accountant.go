package exposure

import (
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
)

// Accountant converts the current position plus already-queued order volume
// into the remaining allowable size per side. Queued volume counts as lot
// size per queued order; the position limit is enforced here, ahead of the
// venue, so quoting never requests more than it may hold.
type Accountant struct {
	PositionLimit model.Volume
	LotSize       model.Volume
}

// Remaining returns how much more may be bought and sold given the net
// position and the per-side queue depths. Never negative.
func (a Accountant) Remaining(position model.Volume, bidDepth, askDepth int) (long, short model.Volume) {
	queuedLong := model.Volume(bidDepth) * a.LotSize
	queuedShort := model.Volume(askDepth) * a.LotSize
	long = a.PositionLimit - position - queuedLong
	short = a.PositionLimit + position - queuedShort
	if long < 0 {
		long = 0
	}
	if short < 0 {
		short = 0
	}
	return long, short
}

// QuoteVolume caps a quote at lot size or the remaining capacity,
// whichever is smaller.
func (a Accountant) QuoteVolume(remaining model.Volume) model.Volume {
	if remaining < a.LotSize {
		return remaining
	}
	return a.LotSize
}

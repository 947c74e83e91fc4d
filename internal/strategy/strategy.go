package strategy

import (
	"math"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

// Quote is the bid/ask pair produced for one quoting cycle.
type Quote struct {
	Bid model.Price
	Ask model.Price
}

// Model turns top-of-book updates into quotes. OnBookUpdate is called for
// every instrument's book; it returns false when the update is not
// actionable this cycle (warm-up, malformed book, or an instrument the
// model only observes).
type Model interface {
	OnBookUpdate(instrument enum.Instrument, bestBid, bestAsk model.Price, position model.Volume) (Quote, bool)
}

// alignTick floors a computed price onto the tick grid.
func alignTick(price float64, tick model.Price) model.Price {
	if tick <= 0 {
		return model.Price(price)
	}
	return model.Price(math.Floor(price/float64(tick))) * tick
}

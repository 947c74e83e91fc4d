package strategy

import (
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/stats"
)

// RegressionConfig parameterizes the hedge-ratio quoter.
type RegressionConfig struct {
	TickSize model.Price

	// Lookback is the per-instrument mid-price window, 10 by default.
	Lookback int
	// NormalSpread is the symmetric spread fraction.
	NormalSpread float64
	// ConservativeSpread widens the side the signal argues against.
	ConservativeSpread float64
}

func (c RegressionConfig) withDefaults() RegressionConfig {
	if c.Lookback <= 0 {
		c.Lookback = 10
	}
	if c.NormalSpread == 0 {
		c.NormalSpread = 0.001
	}
	if c.ConservativeSpread == 0 {
		c.ConservativeSpread = 0.002
	}
	return c
}

// Regression estimates the hedge ratio between the ETF and the future over
// parallel mid-price windows, then classifies the latest ETF-vs-hedged-
// future residual against its mean and deviation: a rich ETF widens the
// ask, a cheap ETF widens the bid.
type Regression struct {
	cfg RegressionConfig
	etf *stats.Window
	fut *stats.Window
}

// NewRegression creates the hedge-ratio model.
func NewRegression(cfg RegressionConfig) *Regression {
	cfg = cfg.withDefaults()
	return &Regression{
		cfg: cfg,
		etf: stats.NewWindow(cfg.Lookback),
		fut: stats.NewWindow(cfg.Lookback),
	}
}

// OnBookUpdate records mid-prices for both instruments and quotes on
// future updates once both windows are warm.
func (r *Regression) OnBookUpdate(instrument enum.Instrument, bestBid, bestAsk model.Price, position model.Volume) (Quote, bool) {
	if bestBid <= 0 && bestAsk <= 0 {
		return Quote{}, false
	}

	mid := model.Mid(bestBid, bestAsk)
	switch instrument {
	case enum.InstrumentETF:
		r.etf.Push(float64(mid))
	case enum.InstrumentFuture:
		r.fut.Push(float64(mid))
	default:
		return Quote{}, false
	}

	if instrument != enum.InstrumentFuture || !r.etf.Full() || !r.fut.Full() {
		return Quote{}, false
	}
	// ratio is the least-squares slope of ETF mid on future mid, so the
	// spread below is the regression residual of the latest sample.
	ratio, ok := stats.Slope(r.fut, r.etf)
	if !ok {
		return Quote{}, false
	}

	spread := make([]float64, r.etf.Len())
	for i := range spread {
		spread[i] = r.etf.At(i) - ratio*r.fut.At(i)
	}
	latest := spread[len(spread)-1]
	mean := stats.Mean(spread)
	std := stats.StdDev(spread)

	var bidSpread, askSpread float64
	switch {
	case latest > mean+std:
		// ETF rich: reluctant ask, normal bid
		askSpread, bidSpread = r.cfg.ConservativeSpread, r.cfg.NormalSpread
	case latest < mean-std:
		// ETF cheap: normal ask, reluctant bid
		askSpread, bidSpread = r.cfg.NormalSpread, r.cfg.ConservativeSpread
	default:
		askSpread, bidSpread = r.cfg.NormalSpread, r.cfg.NormalSpread
	}

	return Quote{
		Bid: alignTick(float64(mid)*(1-bidSpread), r.cfg.TickSize),
		Ask: alignTick(float64(mid)*(1+askSpread), r.cfg.TickSize),
	}, true
}

package strategy

import (
	"math"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/stats"
)

// VolatilityConfig parameterizes the volatility-adaptive quoter.
type VolatilityConfig struct {
	TickSize      model.Price
	PositionLimit model.Volume
	MakerFee      float64
	TakerFee      float64

	// Window is the mid-price lookback, 50 by default.
	Window int
	// SkewThreshold is the position beyond which the passive side widens.
	SkewThreshold model.Volume
	// MaxPositionFactor caps the skew multiplier.
	MaxPositionFactor float64
	// Sensitivity is the skew exponent; small values saturate the factor
	// quickly even at modest position fractions.
	Sensitivity float64
	// RebalanceThreshold is the position at which one quote is pulled
	// halfway across the spread.
	RebalanceThreshold model.Volume
}

func (c VolatilityConfig) withDefaults() VolatilityConfig {
	if c.Window <= 0 {
		c.Window = 50
	}
	if c.SkewThreshold == 0 {
		c.SkewThreshold = 50
	}
	if c.MaxPositionFactor == 0 {
		c.MaxPositionFactor = 2.0
	}
	if c.Sensitivity == 0 {
		c.Sensitivity = 0.02
	}
	if c.RebalanceThreshold == 0 {
		c.RebalanceThreshold = 80
	}
	return c
}

// Volatility quotes a spread around the future mid-price that widens with
// recent mid-price volatility and skews against further inventory.
type Volatility struct {
	cfg  VolatilityConfig
	mids *stats.Window
}

// NewVolatility creates the volatility-adaptive model.
func NewVolatility(cfg VolatilityConfig) *Volatility {
	cfg = cfg.withDefaults()
	return &Volatility{
		cfg:  cfg,
		mids: stats.NewWindow(cfg.Window),
	}
}

// OnBookUpdate quotes on future book updates with a valid top of book.
func (v *Volatility) OnBookUpdate(instrument enum.Instrument, bestBid, bestAsk model.Price, position model.Volume) (Quote, bool) {
	if instrument != enum.InstrumentFuture || bestBid <= 0 || bestAsk <= 0 {
		return Quote{}, false
	}

	mid := model.Mid(bestBid, bestAsk)
	v.mids.Push(float64(mid))

	volatility := v.mids.StdDev()
	baseSpread := 0.001 + (v.cfg.TakerFee - v.cfg.MakerFee)
	spread := baseSpread + 0.5*volatility/float64(mid)
	factor := v.positionFactor(position)

	var bid, ask model.Price
	switch {
	case position > v.cfg.SkewThreshold:
		bid = alignTick(float64(mid)*(1-spread*factor), v.cfg.TickSize)
		ask = alignTick(float64(mid)*(1+spread), v.cfg.TickSize)
	case position < -v.cfg.SkewThreshold:
		bid = alignTick(float64(mid)*(1-spread), v.cfg.TickSize)
		ask = alignTick(float64(mid)*(1+spread*factor), v.cfg.TickSize)
	default:
		bid = alignTick(float64(mid)*(1-spread), v.cfg.TickSize)
		ask = alignTick(float64(mid)*(1+spread), v.cfg.TickSize)
	}

	if position >= v.cfg.RebalanceThreshold {
		ask = alignTick(float64(ask)-float64(ask-bid)*0.5, v.cfg.TickSize)
	} else if position <= -v.cfg.RebalanceThreshold {
		bid = alignTick(float64(bid)+float64(ask-bid)*0.5, v.cfg.TickSize)
	}

	return Quote{Bid: bid, Ask: ask}, true
}

func (v *Volatility) positionFactor(position model.Volume) float64 {
	fraction := math.Abs(float64(position)) / float64(v.cfg.PositionLimit)
	return 1 + (v.cfg.MaxPositionFactor-1)*math.Pow(fraction, v.cfg.Sensitivity)
}

package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/yanun0323/logs"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

// Callbacks is the slice of the trading core the exchange drives.
// *trader.AutoTrader satisfies it.
type Callbacks interface {
	OnOrderBookUpdate(instrument enum.Instrument, sequence uint64,
		askPrices []model.Price, askVolumes []model.Volume,
		bidPrices []model.Price, bidVolumes []model.Volume)
	OnOrderFilled(id uint64, price model.Price, volume model.Volume)
	OnOrderStatus(id uint64, fillVolume, remainingVolume model.Volume, fees int64)
	OnError(id uint64, message string)
	OnHedgeFilled(id uint64, price model.Price, volume model.Volume)
}

// Poster serializes thunks onto the event loop. *loop.Loop satisfies it.
type Poster interface {
	Post(fn func()) error
}

// Config tunes the synthetic venue.
type Config struct {
	BaseFuture model.Price
	TickSize   model.Price
	// Spread is the full bid/ask spread of the synthetic books.
	Spread model.Price
	// WalkStep bounds the per-tick random move of the future mid.
	WalkStep model.Price
	// HedgeRatio relates the ETF mid to the future mid.
	HedgeRatio float64
	Interval   time.Duration
	Seed       int64
}

func (c Config) withDefaults() Config {
	if c.BaseFuture <= 0 {
		c.BaseFuture = 1000000
	}
	if c.TickSize <= 0 {
		c.TickSize = 100
	}
	if c.Spread <= 0 {
		c.Spread = 2 * c.TickSize
	}
	if c.WalkStep <= 0 {
		c.WalkStep = 3 * c.TickSize
	}
	if c.HedgeRatio == 0 {
		c.HedgeRatio = 1
	}
	if c.Interval <= 0 {
		c.Interval = 250 * time.Millisecond
	}
	return c
}

type restingOrder struct {
	side   enum.Side
	price  model.Price
	volume model.Volume
}

// Exchange is a paper venue: it random-walks a correlated future/ETF pair,
// rests inserted orders, fills them when the synthetic book crosses, and
// fills hedge orders instantly. All callbacks are posted onto the event
// loop so the core keeps its one-event-at-a-time model.
type Exchange struct {
	cfg    Config
	poster Poster
	cb     Callbacks

	rng    *rand.Rand
	seq    uint64
	futMid model.Price

	// loop-owned
	resting map[uint64]restingOrder
}

// NewExchange creates a paper venue driving cb through poster.
func NewExchange(cfg Config, poster Poster, cb Callbacks) *Exchange {
	cfg = cfg.withDefaults()
	return &Exchange{
		cfg:     cfg,
		poster:  poster,
		cb:      cb,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		futMid:  cfg.BaseFuture,
		resting: make(map[uint64]restingOrder),
	}
}

// Run emits market data until the context is done.
func (e *Exchange) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.emitTick()
		}
	}
}

// SendInsertOrder rests the order on the synthetic book.
func (e *Exchange) SendInsertOrder(id uint64, side enum.Side, price model.Price, volume model.Volume, lifespan enum.Lifespan) {
	if price <= 0 || volume <= 0 {
		e.post(func() { e.cb.OnError(id, "invalid order") })
		return
	}
	e.resting[id] = restingOrder{side: side, price: price, volume: volume}
}

// SendCancelOrder removes a resting order; unknown ids report an error,
// which the core treats as harmless cleanup.
func (e *Exchange) SendCancelOrder(id uint64) {
	if _, ok := e.resting[id]; !ok {
		e.post(func() { e.cb.OnError(id, "order not found") })
		return
	}
	delete(e.resting, id)
	e.post(func() { e.cb.OnOrderStatus(id, 0, 0, 0) })
}

// SendHedgeOrder fills aggressively at the requested price.
func (e *Exchange) SendHedgeOrder(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	e.post(func() { e.cb.OnHedgeFilled(id, price, volume) })
}

// emitTick walks the mids and posts one round of book updates plus any
// resulting fills onto the loop.
func (e *Exchange) emitTick() {
	step := model.Price(e.rng.Int63n(int64(2*e.cfg.WalkStep+1))) - e.cfg.WalkStep
	e.futMid = model.AlignTick(e.futMid+step, e.cfg.TickSize)
	if e.futMid < e.cfg.Spread {
		e.futMid = e.cfg.Spread
	}
	etfMid := model.AlignTick(model.Price(float64(e.futMid)*e.cfg.HedgeRatio), e.cfg.TickSize)

	half := e.cfg.Spread / 2
	futBid, futAsk := e.futMid-half, e.futMid+half
	etfBid, etfAsk := etfMid-half, etfMid+half

	e.seq++
	seq := e.seq
	e.post(func() {
		e.cb.OnOrderBookUpdate(enum.InstrumentETF, seq,
			[]model.Price{etfAsk}, []model.Volume{100},
			[]model.Price{etfBid}, []model.Volume{100})
		e.cb.OnOrderBookUpdate(enum.InstrumentFuture, seq,
			[]model.Price{futAsk}, []model.Volume{100},
			[]model.Price{futBid}, []model.Volume{100})
		e.match(futBid, futAsk)
	})
}

// match fills resting orders the synthetic book crossed.
func (e *Exchange) match(bestBid, bestAsk model.Price) {
	for id, o := range e.resting {
		filled := false
		switch o.side {
		case enum.SideBuy:
			filled = bestAsk <= o.price
		case enum.SideSell:
			filled = bestBid >= o.price
		}
		if !filled {
			continue
		}
		delete(e.resting, id)
		e.cb.OnOrderFilled(id, o.price, o.volume)
		e.cb.OnOrderStatus(id, o.volume, 0, 0)
	}
}

func (e *Exchange) post(fn func()) {
	if err := e.poster.Post(fn); err != nil {
		logs.Errorf("paper exchange dropped event, err: %+v", err)
	}
}

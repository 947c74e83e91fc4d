package trader

import (
	"time"

	"github.com/yanun0323/logs"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/book"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/exposure"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/hedge"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/obs"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/strategy"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/throttle"
)

// Gateway is the venue's execution surface. Calls are one-way dispatches;
// their effects arrive later through the trader's callbacks.
type Gateway interface {
	SendInsertOrder(id uint64, side enum.Side, price model.Price, volume model.Volume, lifespan enum.Lifespan)
	SendCancelOrder(id uint64)
	SendHedgeOrder(id uint64, side enum.Side, price model.Price, volume model.Volume)
}

// Timers schedules deferred work on the event loop. Satisfied by
// *loop.Loop.
type Timers interface {
	CallLater(d time.Duration, fn func())
}

// Recorder observes executions for offline analysis.
type Recorder interface {
	RecordSend(id uint64, side enum.Side, price model.Price, volume model.Volume)
	RecordFill(id uint64, side enum.Side, price model.Price, volume model.Volume)
	RecordHedge(id uint64, side enum.Side, price model.Price, volume model.Volume)
}

// Config carries the venue constants and strategy-independent thresholds.
type Config struct {
	LotSize       model.Volume
	PositionLimit model.Volume
	TickSize      model.Price
	MinimumBid    model.Price
	MaximumAsk    model.Price

	HedgeBoundary   model.Volume
	HedgeDelay      time.Duration
	HedgeCheckEvery time.Duration
	HedgeCheckStart time.Duration

	// OrderExpiry > 0 schedules a safety cancel that long after each send.
	OrderExpiry time.Duration
}

func (c Config) withDefaults() Config {
	if c.HedgeBoundary == 0 {
		c.HedgeBoundary = 10
	}
	if c.HedgeDelay == 0 {
		c.HedgeDelay = 58 * time.Second
	}
	if c.HedgeCheckEvery == 0 {
		c.HedgeCheckEvery = time.Second
	}
	if c.HedgeCheckStart == 0 {
		c.HedgeCheckStart = 50 * time.Second
	}
	return c
}

// Deps are the collaborators an AutoTrader drives.
type Deps struct {
	Model    strategy.Model
	Gateway  Gateway
	Timers   Timers
	Metrics  *obs.Metrics
	Recorder Recorder
	// Now overrides the time source under test.
	Now func() time.Time
}

// AutoTrader is the quoting and risk core. All handlers must be invoked
// from a single goroutine (the event loop); no internal locking is done.
type AutoTrader struct {
	cfg  Config
	deps Deps

	tracker    *book.Tracker
	acct       exposure.Accountant
	hedger     *hedge.Controller
	sendGate   *throttle.Limiter
	cancelGate *throttle.Limiter

	position model.Volume
}

// New wires an AutoTrader from its config and collaborators.
func New(cfg Config, deps Deps) *AutoTrader {
	cfg = cfg.withDefaults()
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &AutoTrader{
		cfg:  cfg,
		deps: deps,
		tracker: book.NewTracker(),
		acct: exposure.Accountant{
			PositionLimit: cfg.PositionLimit,
			LotSize:       cfg.LotSize,
		},
		hedger: hedge.NewController(hedge.Config{
			Boundary: cfg.HedgeBoundary,
			Delay:    cfg.HedgeDelay,
			MinBid:   model.MinBidNearestTick(cfg.MinimumBid, cfg.TickSize),
			MaxAsk:   model.MaxAskNearestTick(cfg.MaximumAsk, cfg.TickSize),
		}),
		sendGate:   throttle.NewDefault(),
		cancelGate: throttle.NewDefault(),
	}
}

// Start arms the periodic hedge check.
func (t *AutoTrader) Start() {
	t.deps.Timers.CallLater(t.cfg.HedgeCheckStart, t.checkHedge)
}

// Position returns the net filled volume.
func (t *AutoTrader) Position() model.Volume {
	return t.position
}

// HedgeImbalance returns the unhedged exposure counter.
func (t *AutoTrader) HedgeImbalance() model.Volume {
	return t.hedger.Imbalance()
}

// OnOrderBookUpdate runs one quoting cycle off a top-of-book snapshot.
func (t *AutoTrader) OnOrderBookUpdate(instrument enum.Instrument, sequence uint64,
	askPrices []model.Price, askVolumes []model.Volume,
	bidPrices []model.Price, bidVolumes []model.Volume) {

	if len(askPrices) == 0 || len(bidPrices) == 0 {
		t.deps.Metrics.IncSkippedCycle()
		return
	}
	quote, ok := t.deps.Model.OnBookUpdate(instrument, bidPrices[0], askPrices[0], t.position)
	if !ok {
		t.deps.Metrics.IncSkippedCycle()
		return
	}

	// queued volume counts before eviction, matching the accounting the
	// venue sees until the cancels land
	remLong, remShort := t.acct.Remaining(t.position,
		t.tracker.Depth(enum.SideBuy), t.tracker.Depth(enum.SideSell))

	t.evictIfFull(enum.SideBuy)
	t.evictIfFull(enum.SideSell)

	if quote.Bid != 0 && remLong > 0 {
		t.send(enum.SideBuy, quote.Bid, t.acct.QuoteVolume(remLong))
	}
	if quote.Ask != 0 && remShort > 0 {
		t.send(enum.SideSell, quote.Ask, t.acct.QuoteVolume(remShort))
	}
}

// OnOrderFilled attributes a partial or full fill to a tracked order.
func (t *AutoTrader) OnOrderFilled(id uint64, price model.Price, volume model.Volume) {
	side, ok := t.tracker.SideOf(id)
	if !ok {
		t.deps.Metrics.IncUnknownOrder()
		return
	}
	now := t.deps.Now()
	switch side {
	case enum.SideBuy:
		t.position += volume
		t.hedger.ApplyFill(-volume, now)
	case enum.SideSell:
		t.position -= volume
		t.hedger.ApplyFill(volume, now)
	}
	t.deps.Metrics.IncFill()
	if t.deps.Recorder != nil {
		t.deps.Recorder.RecordFill(id, side, price, volume)
	}
}

// OnOrderStatus handles lifecycle updates; zero remaining volume means the
// order is fully done (filled or cancelled) and leaves the tracker.
func (t *AutoTrader) OnOrderStatus(id uint64, fillVolume, remainingVolume model.Volume, fees int64) {
	if remainingVolume == 0 {
		t.tracker.Done(id)
	}
}

// OnError treats a venue error on a known order as a terminal status.
func (t *AutoTrader) OnError(id uint64, message string) {
	logs.Warnf("order %d rejected: %s", id, message)
	if id == 0 {
		return
	}
	if _, ok := t.tracker.SideOf(id); ok {
		t.OnOrderStatus(id, 0, 0, 0)
	}
}

// OnHedgeFilled is informational; corrections already adjusted the
// imbalance when they were sent.
func (t *AutoTrader) OnHedgeFilled(id uint64, price model.Price, volume model.Volume) {
	logs.Infof("hedge order %d filled at %d for %d", id, price, volume)
}

// OnTradeTicks is informational only.
func (t *AutoTrader) OnTradeTicks(instrument enum.Instrument, sequence uint64,
	askPrices []model.Price, askVolumes []model.Volume,
	bidPrices []model.Price, bidVolumes []model.Volume) {
	logs.Infof("trade ticks for %s seq %d", instrument, sequence)
}

func (t *AutoTrader) evictIfFull(side enum.Side) {
	if t.tracker.Depth(side) < book.MaxQueueDepth {
		return
	}
	id, ok := t.tracker.EvictOldest(side)
	if !ok {
		return
	}
	t.deps.Metrics.IncEviction()
	t.cancel(id)
}

func (t *AutoTrader) send(side enum.Side, price model.Price, volume model.Volume) {
	id := t.tracker.NextID()
	if !t.sendGate.Allow(t.deps.Now()) {
		t.deps.Metrics.IncSendDrop()
		return
	}
	if !t.tracker.Track(id, side) {
		return
	}
	t.deps.Gateway.SendInsertOrder(id, side, price, volume, enum.LifespanGoodForDay)
	t.deps.Metrics.IncQuoteSent()
	if t.deps.Recorder != nil {
		t.deps.Recorder.RecordSend(id, side, price, volume)
	}
	if t.cfg.OrderExpiry > 0 {
		t.deps.Timers.CallLater(t.cfg.OrderExpiry, func() {
			// harmless when the order is already gone: the venue reports
			// an error for the unknown id and cleanup no-ops
			t.cancel(id)
		})
	}
}

func (t *AutoTrader) cancel(id uint64) {
	if !t.cancelGate.Allow(t.deps.Now()) {
		t.deps.Metrics.IncCancelDrop()
		return
	}
	t.deps.Gateway.SendCancelOrder(id)
}

func (t *AutoTrader) checkHedge() {
	if corr, ok := t.hedger.Check(t.deps.Now()); ok {
		id := t.tracker.NextID()
		t.deps.Gateway.SendHedgeOrder(id, corr.Side, corr.Price, corr.Volume)
		t.deps.Metrics.IncHedgeCorrection()
		if t.deps.Recorder != nil {
			t.deps.Recorder.RecordHedge(id, corr.Side, corr.Price, corr.Volume)
		}
		logs.Infof("hedge correction %d: %s %d @ %d", id, corr.Side, corr.Volume, corr.Price)
	}
	t.deps.Timers.CallLater(t.cfg.HedgeCheckEvery, t.checkHedge)
}

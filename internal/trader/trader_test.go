package trader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/book"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/obs"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/strategy"
)

type gwCall struct {
	id     uint64
	side   enum.Side
	price  model.Price
	volume model.Volume
}

type fakeGateway struct {
	inserts []gwCall
	cancels []uint64
	hedges  []gwCall
}

func (g *fakeGateway) SendInsertOrder(id uint64, side enum.Side, price model.Price, volume model.Volume, lifespan enum.Lifespan) {
	g.inserts = append(g.inserts, gwCall{id: id, side: side, price: price, volume: volume})
}

func (g *fakeGateway) SendCancelOrder(id uint64) {
	g.cancels = append(g.cancels, id)
}

func (g *fakeGateway) SendHedgeOrder(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	g.hedges = append(g.hedges, gwCall{id: id, side: side, price: price, volume: volume})
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

type fakeTimers struct {
	scheduled []scheduledCall
}

func (f *fakeTimers) CallLater(d time.Duration, fn func()) {
	f.scheduled = append(f.scheduled, scheduledCall{delay: d, fn: fn})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	trader *AutoTrader
	gw     *fakeGateway
	timers *fakeTimers
	clock  *fakeClock
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	gw := &fakeGateway{}
	timers := &fakeTimers{}
	clock := &fakeClock{now: time.Unix(9000, 0)}
	m := strategy.NewVolatility(strategy.VolatilityConfig{
		TickSize:      cfg.TickSize,
		PositionLimit: cfg.PositionLimit,
		MakerFee:      0.0001,
		TakerFee:      0.0002,
	})
	tr := New(cfg, Deps{
		Model:   m,
		Gateway: gw,
		Timers:  timers,
		Metrics: obs.NewMetrics(),
		Now:     clock.Now,
	})
	return &fixture{trader: tr, gw: gw, timers: timers, clock: clock}
}

func testConfig() Config {
	return Config{
		LotSize:       10,
		PositionLimit: 100,
		TickSize:      100,
		MinimumBid:    1,
		MaximumAsk:    2147483647,
	}
}

func (f *fixture) tick() {
	f.trader.OnOrderBookUpdate(enum.InstrumentFuture, 1,
		[]model.Price{10100}, []model.Volume{50},
		[]model.Price{9900}, []model.Volume{50})
	f.clock.Advance(100 * time.Millisecond)
}

func TestQuotingCycleSendsBothSides(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tick()

	require.Len(t, f.gw.inserts, 2)
	bid, ask := f.gw.inserts[0], f.gw.inserts[1]
	assert.Equal(t, enum.SideBuy, bid.side)
	assert.Equal(t, enum.SideSell, ask.side)
	assert.EqualValues(t, 10, bid.volume, "lot size volume")
	assert.EqualValues(t, 10, ask.volume)
	assert.Zero(t, bid.price%100, "bid tick aligned")
	assert.Zero(t, ask.price%100, "ask tick aligned")
	assert.Less(t, bid.price, ask.price)
}

func TestQuotingSkipsMalformedBook(t *testing.T) {
	f := newFixture(t, testConfig())
	f.trader.OnOrderBookUpdate(enum.InstrumentFuture, 1,
		[]model.Price{0}, []model.Volume{0},
		[]model.Price{9900}, []model.Volume{50})
	f.trader.OnOrderBookUpdate(enum.InstrumentFuture, 2, nil, nil, nil, nil)
	assert.Empty(t, f.gw.inserts)
}

func TestQueueCapacityEvictsOldest(t *testing.T) {
	f := newFixture(t, testConfig())
	for i := 0; i < book.MaxQueueDepth; i++ {
		f.tick()
	}
	require.Len(t, f.gw.inserts, 2*book.MaxQueueDepth)
	oldestBid := f.gw.inserts[0].id
	oldestAsk := f.gw.inserts[1].id

	f.tick()
	require.Len(t, f.gw.cancels, 2, "both full queues evicted")
	assert.Equal(t, oldestBid, f.gw.cancels[0], "oldest bid cancelled first")
	assert.Equal(t, oldestAsk, f.gw.cancels[1])

	// capacity invariant: queue depth never exceeds the cap
	assert.LessOrEqual(t, f.trader.tracker.Depth(enum.SideBuy), book.MaxQueueDepth)
	assert.LessOrEqual(t, f.trader.tracker.Depth(enum.SideSell), book.MaxQueueDepth)
}

func TestFillAttribution(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tick()
	bidID, askID := f.gw.inserts[0].id, f.gw.inserts[1].id

	f.trader.OnOrderFilled(bidID, 9900, 10)
	assert.EqualValues(t, 10, f.trader.Position())
	assert.EqualValues(t, -10, f.trader.HedgeImbalance())

	f.trader.OnOrderFilled(askID, 10000, 4)
	assert.EqualValues(t, 6, f.trader.Position())
	assert.EqualValues(t, -6, f.trader.HedgeImbalance())
}

func TestUnknownOrderIgnored(t *testing.T) {
	f := newFixture(t, testConfig())
	f.trader.OnOrderFilled(4242, 10000, 10)
	assert.Zero(t, f.trader.Position())
	assert.Zero(t, f.trader.HedgeImbalance())
	f.trader.OnOrderStatus(4242, 0, 0, 0)
	f.trader.OnError(0, "no order")
}

func TestStatusCleansUpDoneOrders(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tick()
	bidID := f.gw.inserts[0].id

	f.trader.OnOrderStatus(bidID, 10, 0, 100)
	if _, ok := f.trader.tracker.SideOf(bidID); ok {
		t.Fatal("fully done order should leave the tracker")
	}
	// partial leaves the order tracked
	askID := f.gw.inserts[1].id
	f.trader.OnOrderStatus(askID, 4, 6, 40)
	if _, ok := f.trader.tracker.SideOf(askID); !ok {
		t.Fatal("partially done order must stay tracked")
	}
}

func TestErrorOnKnownOrderCleansUp(t *testing.T) {
	f := newFixture(t, testConfig())
	f.tick()
	bidID := f.gw.inserts[0].id
	f.trader.OnError(bidID, "invalid price")
	if _, ok := f.trader.tracker.SideOf(bidID); ok {
		t.Fatal("errored order should leave the tracker")
	}
}

func TestHedgeCorrectionScenario(t *testing.T) {
	f := newFixture(t, testConfig())
	f.trader.Start()
	require.Len(t, f.timers.scheduled, 1)
	assert.Equal(t, 50*time.Second, f.timers.scheduled[0].delay)

	f.tick()
	askID := f.gw.inserts[1].id

	// sell fill of 15 puts the imbalance at +15, past the boundary of 10
	f.trader.OnOrderFilled(askID, 10000, 15)
	require.EqualValues(t, 15, f.trader.HedgeImbalance())

	// first checks within the delay do nothing
	f.clock.Advance(30 * time.Second)
	f.timers.scheduled[0].fn()
	assert.Empty(t, f.gw.hedges)
	require.Len(t, f.timers.scheduled, 2, "check re-arms itself")
	assert.Equal(t, time.Second, f.timers.scheduled[1].delay)

	// 59s after arming the correction fires: aggressive buy of 15-10=5
	f.clock.Advance(29 * time.Second)
	f.timers.scheduled[1].fn()
	require.Len(t, f.gw.hedges, 1)
	corr := f.gw.hedges[0]
	assert.Equal(t, enum.SideBuy, corr.side)
	assert.EqualValues(t, 5, corr.volume)
	assert.EqualValues(t, model.MaxAskNearestTick(2147483647, 100), corr.price)
	assert.EqualValues(t, 10, f.trader.HedgeImbalance(), "pinned to +boundary")

	// subsequent checks stay quiet at the boundary
	f.clock.Advance(2 * time.Minute)
	f.timers.scheduled[2].fn()
	assert.Len(t, f.gw.hedges, 1)
}

func TestSendRateLimitDropsSilently(t *testing.T) {
	f := newFixture(t, testConfig())
	// exhaust the send budget without advancing the clock
	for i := 0; i < 30; i++ {
		f.trader.OnOrderBookUpdate(enum.InstrumentFuture, uint64(i),
			[]model.Price{10100}, []model.Volume{50},
			[]model.Price{9900}, []model.Volume{50})
	}
	snap := f.trader.deps.Metrics.Snapshot()
	assert.Positive(t, snap.SendDrops, "sends beyond the budget are dropped")
	assert.EqualValues(t, 47, snap.QuotesSent, "exactly the budget goes out")
	assert.Len(t, f.gw.inserts, 47)
}

func TestOrderExpiryScheduled(t *testing.T) {
	cfg := testConfig()
	cfg.OrderExpiry = 10 * time.Second
	f := newFixture(t, cfg)
	f.tick()
	require.Len(t, f.timers.scheduled, 2, "one expiry per sent order")
	assert.Equal(t, 10*time.Second, f.timers.scheduled[0].delay)

	// firing the expiry cancels the order through the gateway
	f.timers.scheduled[0].fn()
	require.Len(t, f.gw.cancels, 1)
	assert.Equal(t, f.gw.inserts[0].id, f.gw.cancels[0])
}

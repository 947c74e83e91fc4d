package obs

import "sync/atomic"

// Metrics collects lightweight counters for quoting and hedging activity.
// All methods are safe on a nil receiver so call sites need no guards.
type Metrics struct {
	quotesSent       uint64
	sendDrops        uint64
	cancelDrops      uint64
	evictions        uint64
	fills            uint64
	unknownOrders    uint64
	skippedCycles    uint64
	hedgeCorrections uint64
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	QuotesSent       uint64
	SendDrops        uint64
	CancelDrops      uint64
	Evictions        uint64
	Fills            uint64
	UnknownOrders    uint64
	SkippedCycles    uint64
	HedgeCorrections uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncQuoteSent() {
	if m != nil {
		atomic.AddUint64(&m.quotesSent, 1)
	}
}

func (m *Metrics) IncSendDrop() {
	if m != nil {
		atomic.AddUint64(&m.sendDrops, 1)
	}
}

func (m *Metrics) IncCancelDrop() {
	if m != nil {
		atomic.AddUint64(&m.cancelDrops, 1)
	}
}

func (m *Metrics) IncEviction() {
	if m != nil {
		atomic.AddUint64(&m.evictions, 1)
	}
}

func (m *Metrics) IncFill() {
	if m != nil {
		atomic.AddUint64(&m.fills, 1)
	}
}

func (m *Metrics) IncUnknownOrder() {
	if m != nil {
		atomic.AddUint64(&m.unknownOrders, 1)
	}
}

func (m *Metrics) IncSkippedCycle() {
	if m != nil {
		atomic.AddUint64(&m.skippedCycles, 1)
	}
}

func (m *Metrics) IncHedgeCorrection() {
	if m != nil {
		atomic.AddUint64(&m.hedgeCorrections, 1)
	}
}

// Snapshot reads the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		QuotesSent:       atomic.LoadUint64(&m.quotesSent),
		SendDrops:        atomic.LoadUint64(&m.sendDrops),
		CancelDrops:      atomic.LoadUint64(&m.cancelDrops),
		Evictions:        atomic.LoadUint64(&m.evictions),
		Fills:            atomic.LoadUint64(&m.fills),
		UnknownOrders:    atomic.LoadUint64(&m.unknownOrders),
		SkippedCycles:    atomic.LoadUint64(&m.skippedCycles),
		HedgeCorrections: atomic.LoadUint64(&m.hedgeCorrections),
	}
}

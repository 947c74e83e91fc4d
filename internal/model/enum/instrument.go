package enum

// Instrument future, etf
type Instrument uint8

const (
	_instrument_beg Instrument = iota
	InstrumentFuture
	InstrumentETF
	_instrument_end
)

func (i Instrument) IsAvailable() bool {
	return i > _instrument_beg && i < _instrument_end
}

func (i Instrument) String() string {
	switch i {
	case InstrumentFuture:
		return "future"
	case InstrumentETF:
		return "etf"
	default:
		return "unknown"
	}
}

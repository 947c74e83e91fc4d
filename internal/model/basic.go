package model

// Price is an integer number of cents.
type Price int64

// Volume is an integer number of contracts.
type Volume int64

// AlignTick floors a price to the nearest multiple of tick.
func AlignTick(p, tick Price) Price {
	if tick <= 0 {
		return p
	}
	return p / tick * tick
}

// Mid returns the mid-price of the best bid and ask.
func Mid(bid, ask Price) Price {
	return (bid + ask) / 2
}

// MinBidNearestTick returns the lowest quotable bid aligned to tick.
func MinBidNearestTick(minBid, tick Price) Price {
	if tick <= 0 {
		return minBid
	}
	return (minBid + tick) / tick * tick
}

// MaxAskNearestTick returns the highest quotable ask aligned to tick.
func MaxAskNearestTick(maxAsk, tick Price) Price {
	if tick <= 0 {
		return maxAsk
	}
	return maxAsk / tick * tick
}

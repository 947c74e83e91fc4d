package throttle

import "time"

const (
	// DefaultMaxCalls is the venue send budget per interval.
	DefaultMaxCalls = 47
	// DefaultInterval is the trailing window the budget applies to.
	DefaultInterval = time.Second
)

// Limiter is a sliding-window call gate. It admits at most maxCalls
// accepted calls within any trailing interval; a call beyond the budget is
// rejected with no side effect. The caller supplies the current time so
// decisions are deterministic under test.
type Limiter struct {
	interval time.Duration
	stamps   []time.Time
	head     int
	count    int
}

// NewLimiter creates a limiter admitting maxCalls per interval.
func NewLimiter(maxCalls int, interval time.Duration) *Limiter {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Limiter{
		interval: interval,
		stamps:   make([]time.Time, maxCalls),
	}
}

// NewDefault creates a limiter with the venue budget.
func NewDefault() *Limiter {
	return NewLimiter(DefaultMaxCalls, DefaultInterval)
}

// Allow records the call at now and returns true, unless the budget is
// exhausted within the trailing interval, in which case it records nothing
// and returns false.
func (l *Limiter) Allow(now time.Time) bool {
	if l.count == len(l.stamps) {
		if now.Sub(l.stamps[l.head]) < l.interval {
			return false
		}
		// oldest accept aged out of the window, take its slot
		l.stamps[l.head] = now
		l.head = (l.head + 1) % len(l.stamps)
		return true
	}
	l.stamps[(l.head+l.count)%len(l.stamps)] = now
	l.count++
	return true
}

package loop

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
)

var (
	ErrQueueFull = errors.New("event loop queue full")
	ErrClosed    = errors.New("event loop closed")
)

// Loop serializes work onto a single goroutine. Posted thunks and timer
// callbacks run one at a time, in order, which is what lets the trading
// core mutate state without locks.
type Loop struct {
	ch     chan func()
	wake   chan struct{}
	closed uint32

	mu     sync.Mutex
	timers timerHeap
}

// New allocates a loop with the given queue capacity.
func New(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 1
	}
	return &Loop{
		ch:   make(chan func(), capacity),
		wake: make(chan struct{}, 1),
	}
}

// Post enqueues a thunk without blocking.
func (l *Loop) Post(fn func()) error {
	if atomic.LoadUint32(&l.closed) != 0 {
		return ErrClosed
	}
	select {
	case l.ch <- fn:
		return nil
	default:
		return ErrQueueFull
	}
}

// CallLater schedules fn to run on the loop goroutine once d has elapsed.
// Safe to call from inside a running callback.
func (l *Loop) CallLater(d time.Duration, fn func()) {
	if atomic.LoadUint32(&l.closed) != 0 {
		return
	}
	l.mu.Lock()
	heap.Push(&l.timers, timerEntry{at: time.Now().Add(d), fn: fn})
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Close stops the loop from accepting new work.
func (l *Loop) Close() {
	if atomic.CompareAndSwapUint32(&l.closed, 0, 1) {
		close(l.ch)
	}
}

// Run drains thunks and due timers until the context is done or the loop
// is closed and empty.
func (l *Loop) Run(ctx context.Context) {
	idle := time.NewTimer(time.Hour)
	defer idle.Stop()

	for {
		wait := l.untilNextTimer()
		if !idle.Stop() {
			select {
			case <-idle.C:
			default:
			}
		}
		idle.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case fn, ok := <-l.ch:
			if !ok {
				l.runDue(time.Now())
				return
			}
			fn()
		case <-l.wake:
		case <-idle.C:
		}
		l.runDue(time.Now())
	}
}

func (l *Loop) untilNextTimer() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 {
		return time.Hour
	}
	d := time.Until(l.timers[0].at)
	if d < 0 {
		return 0
	}
	return d
}

func (l *Loop) runDue(now time.Time) {
	for {
		l.mu.Lock()
		if len(l.timers) == 0 || l.timers[0].at.After(now) {
			l.mu.Unlock()
			return
		}
		entry := heap.Pop(&l.timers).(timerEntry)
		l.mu.Unlock()
		entry.fn()
	}
}

type timerEntry struct {
	at time.Time
	fn func()
}

type timerHeap []timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

package metrics

import (
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// collectTimer calls fn every interval on its own goroutine until cancelled.
// The first call happens one interval after Start.
type collectTimer struct {
	clock    clock.WithTicker
	interval time.Duration
	fn       func()

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

func newCollectTimer(c clock.WithTicker, interval time.Duration, fn func()) *collectTimer {
	return &collectTimer{
		clock:    c,
		interval: interval,
		fn:       fn,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start creates the ticker before returning, so a clock step made after Start
// is observed by the timer.
func (t *collectTimer) Start() {
	t.startOnce.Do(func() {
		ticker := t.clock.NewTicker(t.interval)
		go t.run(ticker)
	})
}

func (t *collectTimer) run(ticker clock.Ticker) {
	defer close(t.done)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
		case <-t.stopCh:
			return
		}
		// a tick and a cancel may be ready together
		select {
		case <-t.stopCh:
			return
		default:
		}
		t.fn()
	}
}

// Cancel prevents future calls. It never waits for a call in progress and
// is safe to call more than once, or on a timer that was never started.
func (t *collectTimer) Cancel() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() { close(t.stopCh) })
}

package core

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// SweepInterval is how often the active list is scanned for records which
// have outlived the auto-dismiss threshold.
const SweepInterval = time.Second

// expiryScheduler owns the auto-dismiss ticker and the snooze timers. Timer
// callbacks never touch the store; they only submit commands to the engine
// queue.
type expiryScheduler struct {
	clock  clock.Clock
	sweep  func()
	expire func(id string, token uint64)

	mtx      sync.Mutex
	ticker   *clock.Ticker
	tickStop chan struct{}
	timers   map[string]*clock.Timer
	stopped  bool
}

func newExpiryScheduler(clk clock.Clock, sweep func(), expire func(id string, token uint64)) *expiryScheduler {
	return &expiryScheduler{
		clock:  clk,
		sweep:  sweep,
		expire: expire,
		timers: make(map[string]*clock.Timer),
	}
}

// setSweeping starts or stops the auto-dismiss ticker. It is idempotent.
func (s *expiryScheduler) setSweeping(enabled bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}
	if enabled == (s.ticker != nil) {
		return
	}
	if !enabled {
		s.stopTicker()
		return
	}

	ticker := s.clock.Ticker(SweepInterval)
	done := make(chan struct{})
	s.ticker, s.tickStop = ticker, done
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-done:
				return
			}
		}
	}()
}

func (s *expiryScheduler) sweeping() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.ticker != nil
}

// stopTicker must be called with the lock held.
func (s *expiryScheduler) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.tickStop)
	s.ticker, s.tickStop = nil, nil
}

// schedule arms a single-shot timer which fires expire(id, token) after d.
// Any timer already armed for the ID is replaced.
func (s *expiryScheduler) schedule(id string, token uint64, d time.Duration) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.stopped {
		return
	}
	if t, ok := s.timers[id]; ok {
		t.Stop()
	}
	var timer *clock.Timer
	timer = s.clock.AfterFunc(d, func() {
		s.mtx.Lock()
		if s.timers[id] == timer {
			delete(s.timers, id)
		}
		s.mtx.Unlock()
		s.expire(id, token)
	})
	s.timers[id] = timer
}

// cancel stops the timer for the ID if one is armed. It is safe to call
// for unknown IDs and after the timer has already fired; a fired timer whose
// command is still queued is rejected by the store's token check.
func (s *expiryScheduler) cancel(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *expiryScheduler) pending() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.timers)
}

// stop halts the ticker and every pending timer.
func (s *expiryScheduler) stop() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.stopped = true
	s.stopTicker()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

package services

import (
	"sync"
	"time"
)

// Scheduler abstracts the 1-second session ticker so engines can run on a
// wall clock in production and on a hand-advanced clock in tests.
type Scheduler interface {
	// Every invokes fn repeatedly at the given cadence until the returned
	// stop function is called. Stop must be idempotent.
	Every(d time.Duration, fn func()) (stop func())
}

// WallScheduler drives callbacks from a time.Ticker goroutine.
type WallScheduler struct{}

// NewWallScheduler returns the production scheduler
func NewWallScheduler() *WallScheduler {
	return &WallScheduler{}
}

func (*WallScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// ManualScheduler fires registered callbacks only when Advance is called,
// synchronously on the caller's goroutine. Tests use it to step session
// time deterministically.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	ticks map[int]func()
}

// NewManualScheduler returns an empty manual scheduler
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{ticks: make(map[int]func())}
}

func (m *ManualScheduler) Every(d time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.ticks[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.ticks, id)
			m.mu.Unlock()
		})
	}
}

// Advance fires every active callback n times
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.ticks))
		for _, fn := range m.ticks {
			fns = append(fns, fn)
		}
		m.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Active reports how many tickers are currently registered
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

package clock

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock
type Func func() time.Time

// Now returns f()
func (f Func) Now() time.Time { return f() }

// System reads the wall clock
var System Clock = Func(time.Now)

// Manual is a clock that only moves when told to
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to t
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// Now returns the current manual instant
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Ticker calls a function once per interval with a single shared instant.
// Every consumer of one tick sees the same value of now.
type Ticker struct {
	clock    Clock
	interval time.Duration
	fn       func(now time.Time)

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewTicker creates a ticker; interval defaults to one second
func NewTicker(c Clock, interval time.Duration, fn func(now time.Time)) *Ticker {
	if c == nil {
		c = System
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{
		clock:    c,
		interval: interval,
		fn:       fn,
	}
}

// Start launches the tick loop. It is a no-op if already running.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return
	}
	t.started = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	go t.loop(ctx, t.stopCh, t.doneCh)
}

func (t *Ticker) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.fn(t.clock.Now())
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop deregisters the ticker and waits for the loop to exit
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return
	}
	t.started = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Done is closed once the current loop has exited
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.doneCh == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return t.doneCh
}

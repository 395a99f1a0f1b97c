package clock

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_Advance(t *testing.T) {
	start := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)

	assert.Equal(t, start, m.Now())
	assert.Equal(t, start.Add(90*time.Second), m.Advance(90*time.Second))

	later := start.Add(48 * time.Hour)
	m.Set(later)
	assert.Equal(t, later, m.Now())
}

func TestTicker_PassesClockInstant(t *testing.T) {
	fixed := time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)
	got := make(chan time.Time, 1)

	tk := NewTicker(Func(func() time.Time { return fixed }), 5*time.Millisecond, func(now time.Time) {
		select {
		case got <- now:
		default:
		}
	})
	tk.Start(context.Background())
	defer tk.Stop()

	select {
	case now := <-got:
		assert.Equal(t, fixed, now)
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never fired")
	}
}

func TestTicker_StopDeregisters(t *testing.T) {
	var calls atomic.Int64
	tk := NewTicker(System, 2*time.Millisecond, func(time.Time) { calls.Add(1) })
	tk.Start(context.Background())

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, time.Millisecond)

	tk.Stop()
	<-tk.Done()
	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "callback ran after Stop")

	// second stop is harmless
	tk.Stop()
}

func TestTicker_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tk := NewTicker(System, time.Millisecond, func(time.Time) {})
	tk.Start(ctx)
	cancel()

	select {
	case <-tk.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker kept running after cancel")
	}
}

func TestNewTicker_DefaultInterval(t *testing.T) {
	tk := NewTicker(nil, 0, func(time.Time) {})
	assert.Equal(t, time.Second, tk.interval)
	assert.NotNil(t, tk.clock)
}

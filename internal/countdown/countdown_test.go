package countdown

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/existflow/deadlines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func deadline(created, due time.Duration) model.Deadline {
	return model.Deadline{
		ID:        "1",
		Name:      "Maria",
		Task:      "Report",
		CreatedAt: now.Add(created),
		DueDate:   now.Add(due),
	}
}

func TestRemaining_Decomposition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		diff := time.Duration(rng.Int63n(int64(400*24*time.Hour))) + time.Millisecond
		left := Remaining(now.Add(diff), now)

		require.False(t, left.Overdue)
		require.GreaterOrEqual(t, left.Days, int64(0))
		require.True(t, left.Hours >= 0 && left.Hours < 24, "hours %d", left.Hours)
		require.True(t, left.Minutes >= 0 && left.Minutes < 60, "minutes %d", left.Minutes)
		require.True(t, left.Seconds >= 0 && left.Seconds < 60, "seconds %d", left.Seconds)

		rebuilt := left.Days*msPerDay + left.Hours*msPerHour + left.Minutes*msPerMinute + left.Seconds*msPerSecond
		truncated := diff.Milliseconds() / msPerSecond * msPerSecond
		require.Equal(t, truncated, rebuilt)
	}
}

func TestRemaining_Exact(t *testing.T) {
	left := Remaining(now.Add(2*24*time.Hour+5*time.Hour+7*time.Minute+9*time.Second+400*time.Millisecond), now)
	assert.Equal(t, TimeLeft{Days: 2, Hours: 5, Minutes: 7, Seconds: 9, Magnitude: left.Magnitude}, left)
	assert.Equal(t, 53*time.Hour+7*time.Minute+9*time.Second+400*time.Millisecond, left.Magnitude)
}

func TestRemaining_OverdueIsZeroed(t *testing.T) {
	for _, past := range []time.Duration{0, time.Millisecond, time.Hour, 30 * 24 * time.Hour} {
		left := Remaining(now.Add(-past), now)
		assert.True(t, left.Overdue, "past %s", past)
		assert.Zero(t, left.Days)
		assert.Zero(t, left.Hours)
		assert.Zero(t, left.Minutes)
		assert.Zero(t, left.Seconds)
		assert.Equal(t, past.Truncate(time.Millisecond), left.Magnitude)
	}
}

func TestRemaining_SubMillisecondIsUpcoming(t *testing.T) {
	for _, ahead := range []time.Duration{time.Microsecond, 500 * time.Microsecond, 999 * time.Microsecond} {
		left := Remaining(now.Add(ahead), now)
		assert.False(t, left.Overdue, "ahead %s", ahead)
		assert.Zero(t, left.Seconds)

		state := Derive(deadline(-time.Hour, ahead), now)
		assert.False(t, state.TimeLeft.Overdue)
		assert.Less(t, state.Fraction, 1.0)
		assert.Greater(t, state.RemainingPercent, 0.0)
	}
}

func TestTierFor_Boundaries(t *testing.T) {
	assert.Equal(t, Safe, TierFor(0, false))
	assert.Equal(t, Safe, TierFor(0.4999, false))
	assert.Equal(t, Warning, TierFor(0.5, false))
	assert.Equal(t, Warning, TierFor(0.8999, false))
	assert.Equal(t, Critical, TierFor(0.9, false))
	assert.Equal(t, Critical, TierFor(1.5, false))
	assert.Equal(t, Critical, TierFor(-1, true))
	assert.Equal(t, Critical, TierFor(0.1, true))
}

func TestPulse(t *testing.T) {
	assert.False(t, Pulse(0.89, false))
	assert.True(t, Pulse(0.9, false))
	assert.True(t, Pulse(0.1, true))
}

func TestRemainingPercent_ClampedAndMonotonic(t *testing.T) {
	d := deadline(-10*time.Hour, 10*time.Hour)
	prev := math.Inf(1)
	for offset := -15 * time.Hour; offset <= 15*time.Hour; offset += 17 * time.Minute {
		s := Derive(d, now.Add(offset))
		require.True(t, s.RemainingPercent >= 0 && s.RemainingPercent <= 100, "percent %f", s.RemainingPercent)
		require.LessOrEqual(t, s.RemainingPercent, prev)
		prev = s.RemainingPercent
	}
}

func TestDerive_EarlyInLifespan(t *testing.T) {
	s := Derive(deadline(-time.Hour, 9*time.Hour), now)
	assert.Equal(t, Safe, s.Tier)
	assert.InDelta(t, 90.0, s.RemainingPercent, 1e-9)
	assert.False(t, s.Pulse)
}

func TestDerive_FiveDaysInTwoDaysLeft(t *testing.T) {
	s := Derive(deadline(-5*24*time.Hour, 2*24*time.Hour), now)

	assert.InDelta(t, 5.0/7.0, s.Fraction, 1e-9)
	assert.Equal(t, Warning, s.Tier)
	assert.InDelta(t, 28.571, s.RemainingPercent, 0.01)
	assert.False(t, s.Pulse)
	assert.Equal(t, int64(2), s.TimeLeft.Days)
}

func TestDerive_TwoDaysInFiveHoursLeft(t *testing.T) {
	s := Derive(deadline(-2*24*time.Hour, 5*time.Hour), now)

	assert.InDelta(t, 48.0/53.0, s.Fraction, 1e-9)
	assert.Equal(t, Critical, s.Tier)
	assert.True(t, s.Pulse)
	assert.InDelta(t, 9.43, s.RemainingPercent, 0.01)
	assert.Equal(t, TimeLeft{Hours: 5, Magnitude: 5 * time.Hour}, s.TimeLeft)
}

func TestDerive_OneHourOverdue(t *testing.T) {
	s := Derive(deadline(-3*24*time.Hour, -time.Hour), now)

	assert.True(t, s.TimeLeft.Overdue)
	assert.Equal(t, Critical, s.Tier)
	assert.Zero(t, s.RemainingPercent)
	assert.True(t, s.Pulse)
	assert.Zero(t, s.TimeLeft.Days+s.TimeLeft.Hours+s.TimeLeft.Minutes+s.TimeLeft.Seconds)
}

func TestDerive_ZeroLifespan(t *testing.T) {
	for _, at := range []time.Duration{-time.Hour, 0, time.Hour} {
		s := Derive(deadline(at, at), now)

		assert.False(t, math.IsNaN(s.Fraction) || math.IsInf(s.Fraction, 0))
		assert.Equal(t, Critical, s.Tier, "at %s", at)
		assert.Zero(t, s.RemainingPercent, "at %s", at)
		assert.True(t, s.Pulse)
	}
}

func TestDerive_DueBeforeCreated(t *testing.T) {
	s := Derive(deadline(time.Hour, 30*time.Minute), now)
	assert.False(t, s.TimeLeft.Overdue)
	assert.Equal(t, Critical, s.Tier)
	assert.Zero(t, s.RemainingPercent)
}

func TestDeriveAll_SharedInstant(t *testing.T) {
	ds := []model.Deadline{
		deadline(-time.Hour, 9*time.Hour),
		deadline(-2*24*time.Hour, 5*time.Hour),
		deadline(-3*24*time.Hour, -time.Hour),
	}
	states := DeriveAll(ds, now)
	require.Len(t, states, 3)
	for i, d := range ds {
		assert.Equal(t, Derive(d, now), states[i])
	}

	counts := CountByTier(states)
	assert.Equal(t, map[Tier]int{Safe: 1, Warning: 0, Critical: 2}, counts)
}

func TestTier_Text(t *testing.T) {
	for _, tier := range []Tier{Safe, Warning, Critical} {
		b, err := tier.MarshalText()
		require.NoError(t, err)
		var back Tier
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, tier, back)
	}
	var bad Tier
	assert.Error(t, bad.UnmarshalText([]byte("urgent")))
}

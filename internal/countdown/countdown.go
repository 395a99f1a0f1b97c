package countdown

import (
	"fmt"
	"math"
	"time"

	"github.com/existflow/deadlines/internal/model"
)

// Tier thresholds on the elapsed fraction
const (
	WarningAt  = 0.5
	CriticalAt = 0.9
)

const (
	msPerDay    = 86400000
	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000
)

// Tier is the urgency class of a deadline
type Tier int

const (
	Safe Tier = iota
	Warning
	Critical
)

// String returns the tier name
func (t Tier) String() string {
	switch t {
	case Safe:
		return "safe"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText encodes the tier by name
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "safe":
		*t = Safe
	case "warning":
		*t = Warning
	case "critical":
		*t = Critical
	default:
		return fmt.Errorf("unknown tier %q", string(b))
	}
	return nil
}

// TimeLeft is the decomposed time until a due instant
type TimeLeft struct {
	Days      int64         `json:"days"`
	Hours     int64         `json:"hours"`
	Minutes   int64         `json:"minutes"`
	Seconds   int64         `json:"seconds"`
	Overdue   bool          `json:"overdue"`
	Magnitude time.Duration `json:"-"`
}

// Remaining decomposes due-now into whole days, hours, minutes and seconds.
// At or past the due instant everything is zero and Overdue is set; a
// sub-millisecond remainder is still upcoming.
func Remaining(due, now time.Time) TimeLeft {
	left := due.Sub(now)
	if left <= 0 {
		return TimeLeft{Overdue: true, Magnitude: (-left).Truncate(time.Millisecond)}
	}

	diff := left.Milliseconds()
	return TimeLeft{
		Days:      diff / msPerDay,
		Hours:     diff % msPerDay / msPerHour,
		Minutes:   diff % msPerHour / msPerMinute,
		Seconds:   diff % msPerMinute / msPerSecond,
		Magnitude: time.Duration(diff) * time.Millisecond,
	}
}

// ElapsedFraction is the share of the created..due lifespan that has passed.
// A lifespan of zero or less counts as fully elapsed.
func ElapsedFraction(createdAt, due, now time.Time) float64 {
	total := due.Sub(createdAt)
	if total <= 0 {
		return 1
	}
	f := float64(now.Sub(createdAt)) / float64(total)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return f
}

// TierFor classifies urgency; boundaries go to the more urgent tier
func TierFor(fraction float64, overdue bool) Tier {
	switch {
	case overdue:
		return Critical
	case fraction < WarningAt:
		return Safe
	case fraction < CriticalAt:
		return Warning
	default:
		return Critical
	}
}

// RemainingPercent is the unelapsed share of the lifespan in [0, 100]
func RemainingPercent(fraction float64, overdue bool) float64 {
	if overdue {
		return 0
	}
	return math.Max(0, math.Min(100, (1-fraction)*100))
}

// Pulse reports whether the deadline needs attention
func Pulse(fraction float64, overdue bool) bool {
	return overdue || fraction >= CriticalAt
}

// State is everything a card needs to render at one instant
type State struct {
	TimeLeft         TimeLeft `json:"timeLeft"`
	Fraction         float64  `json:"elapsedFraction"`
	Tier             Tier     `json:"tier"`
	RemainingPercent float64  `json:"remainingPercent"`
	Pulse            bool     `json:"pulse"`
}

// Derive computes the display state of d at now
func Derive(d model.Deadline, now time.Time) State {
	left := Remaining(d.DueDate, now)
	fraction := ElapsedFraction(d.CreatedAt, d.DueDate, now)
	return State{
		TimeLeft:         left,
		Fraction:         fraction,
		Tier:             TierFor(fraction, left.Overdue),
		RemainingPercent: RemainingPercent(fraction, left.Overdue),
		Pulse:            Pulse(fraction, left.Overdue),
	}
}

// DeriveAll evaluates every deadline against the same instant
func DeriveAll(deadlines []model.Deadline, now time.Time) []State {
	states := make([]State, len(deadlines))
	for i, d := range deadlines {
		states[i] = Derive(d, now)
	}
	return states
}

// CountByTier tallies the tiers of a set of states
func CountByTier(states []State) map[Tier]int {
	counts := map[Tier]int{Safe: 0, Warning: 0, Critical: 0}
	for _, s := range states {
		counts[s.Tier]++
	}
	return counts
}

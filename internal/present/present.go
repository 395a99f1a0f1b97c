package present

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // the display region must resolve on hosts without zoneinfo
	"unicode/utf8"

	"github.com/existflow/deadlines/internal/countdown"
	"github.com/existflow/deadlines/internal/model"
	"github.com/existflow/deadlines/internal/store"
)

// DefaultTimezone is the region due instants are shown and entered in
const DefaultTimezone = "Europe/Madrid"

// DefaultTruncate is the card budget for task text
const DefaultTruncate = 25

// DueLayout is how the form shows and accepts due instants
const DueLayout = "2006-01-02 15:04"

// dueLayouts are accepted on input, the first one is canonical
var dueLayouts = []string{DueLayout, "2006-01-02T15:04"}

// ErrBadDue is returned for due text that matches no accepted layout
var ErrBadDue = errors.New("due date must look like 2006-01-02 15:04")

// LoadLocation resolves the display region, falling back to UTC on failure
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}

// FormatDue renders t in loc at minute precision
func FormatDue(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DueLayout)
}

// ParseDue reads civil time in loc and returns the absolute instant
func ParseDue(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDue
}

// FormatCardDate is the short due line under a card
func FormatCardDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Jan 2 15:04")
}

// Truncate keeps the first n runes of s and marks the cut with "..."
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// SingleLine collapses every run of whitespace, newlines included, to one space
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatCountdown returns the two countdown lines of a card
func FormatCountdown(left countdown.TimeLeft) (string, string) {
	if left.Overdue {
		return "OVERDUE", ""
	}
	return fmt.Sprintf("%dd %dh", left.Days, left.Hours), fmt.Sprintf("%dm %ds", left.Minutes, left.Seconds)
}

// FormatOverdueBy describes how long ago a deadline passed
func FormatOverdueBy(left countdown.TimeLeft) string {
	if !left.Overdue {
		return ""
	}
	return "overdue by " + left.Magnitude.Truncate(time.Second).String()
}

// Draft is the text content of the add/edit form
type Draft struct {
	Name string
	Task string
	Due  string

	// prefilled is the due text shown when editing began
	prefilled string
}

// DraftFrom pre-fills the form with an existing deadline
func DraftFrom(d model.Deadline, loc *time.Location) Draft {
	due := FormatDue(d.DueDate, loc)
	return Draft{Name: d.Name, Task: d.Task, Due: due, prefilled: due}
}

// Valid reports whether the form may be saved
func (f Draft) Valid(loc *time.Location) bool {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Task) == "" {
		return false
	}
	_, err := ParseDue(f.Due, loc)
	return err == nil
}

// DueTime parses the due text
func (f Draft) DueTime(loc *time.Location) (time.Time, error) {
	return ParseDue(f.Due, loc)
}

// Patch turns an edit form into a store patch. When the due text is still
// the pre-filled value the original instant is kept, so seconds survive.
func (f Draft) Patch(original model.Deadline, loc *time.Location) (store.Patch, error) {
	name, task := strings.TrimSpace(f.Name), strings.TrimSpace(f.Task)
	p := store.Patch{Name: &name, Task: &task}

	if f.prefilled != "" && strings.TrimSpace(f.Due) == f.prefilled {
		due := original.DueDate
		p.DueDate = &due
		return p, nil
	}

	due, err := ParseDue(f.Due, loc)
	if err != nil {
		return store.Patch{}, err
	}
	p.DueDate = &due
	return p, nil
}

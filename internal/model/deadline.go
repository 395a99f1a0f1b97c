package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDeadline is returned when a required field is missing
var ErrInvalidDeadline = errors.New("invalid deadline")

// TimeLayout is the ISO-8601 form instants are stored in
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Deadline represents a tracked task with a due instant
type Deadline struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Task      string    `json:"task"`
	CreatedAt time.Time `json:"createdAt"`
	DueDate   time.Time `json:"dueDate"`
}

// Validate checks the fields required at save time
func (d Deadline) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDeadline)
	}
	if strings.TrimSpace(d.Task) == "" {
		return fmt.Errorf("%w: task is required", ErrInvalidDeadline)
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidDeadline)
	}
	return nil
}

// Lifespan returns the total time between creation and the due instant
func (d Deadline) Lifespan() time.Duration {
	return d.DueDate.Sub(d.CreatedAt)
}

// wireDeadline is the persisted shape: every field is a string
type wireDeadline struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Task      string `json:"task"`
	CreatedAt string `json:"createdAt"`
	DueDate   string `json:"dueDate"`
}

// FormatTime renders an instant the way it is persisted
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts the persisted layout or any RFC 3339 instant
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// MarshalJSON encodes instants as ISO-8601 UTC strings
func (d Deadline) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireDeadline{
		ID:        d.ID,
		Name:      d.Name,
		Task:      d.Task,
		CreatedAt: FormatTime(d.CreatedAt),
		DueDate:   FormatTime(d.DueDate),
	})
}

// UnmarshalJSON decodes the persisted shape
func (d *Deadline) UnmarshalJSON(data []byte) error {
	var w wireDeadline
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("deadline %s: bad createdAt: %w", w.ID, err)
	}
	due, err := ParseTime(w.DueDate)
	if err != nil {
		return fmt.Errorf("deadline %s: bad dueDate: %w", w.ID, err)
	}

	*d = Deadline{
		ID:        w.ID,
		Name:      w.Name,
		Task:      w.Task,
		CreatedAt: created,
		DueDate:   due,
	}
	return nil
}

// EncodeCollection serializes the ordered collection
func EncodeCollection(deadlines []Deadline) ([]byte, error) {
	if deadlines == nil {
		deadlines = []Deadline{}
	}
	return json.Marshal(deadlines)
}

// DecodeCollection parses a persisted collection, preserving order
func DecodeCollection(data []byte) ([]Deadline, error) {
	var deadlines []Deadline
	if err := json.Unmarshal(data, &deadlines); err != nil {
		return nil, err
	}
	if deadlines == nil {
		return nil, errors.New("collection is null")
	}
	return deadlines, nil
}

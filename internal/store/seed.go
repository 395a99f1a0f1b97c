package store

import (
	"time"

	"github.com/existflow/deadlines/internal/model"
)

const day = 24 * time.Hour

// ExampleSeed returns four deadlines spread across every urgency tier
func ExampleSeed(now time.Time) []model.Deadline {
	return []model.Deadline{
		{ID: "1", Name: "Maria", Task: "Quarterly report draft", CreatedAt: now.Add(-5 * day), DueDate: now.Add(2 * day)},
		{ID: "2", Name: "Carlos", Task: "Review pull requests", CreatedAt: now.Add(-2 * day), DueDate: now.Add(5 * time.Hour)},
		{ID: "3", Name: "Ana", Task: "Call the supplier", CreatedAt: now.Add(-10 * time.Minute), DueDate: now.Add(30 * time.Minute)},
		{ID: "4", Name: "Pedro", Task: "Submit expense claims", CreatedAt: now.Add(-3 * day), DueDate: now.Add(-time.Hour)},
	}
}

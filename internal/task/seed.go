package task

import (
	"fmt"
	"strings"
	"time"
)

// Seed builds the initial task list used when nothing is persisted yet.
type Seed func(now time.Time, newID func() string) []Task

const (
	SeedNameSample = "sample"
	SeedNameEmpty  = "empty"
)

// SeedEmpty starts with no tasks.
func SeedEmpty(time.Time, func() string) []Task { return nil }

// SeedSample starts with a fixed set of example tasks. Due dates are relative
// to the day the store is first loaded.
func SeedSample(now time.Time, newID func() string) []Task {
	today := DateOf(now)
	ts := normalizeTimestamp(now)
	samples := []struct {
		title, description string
		priority           Priority
		status             Status
		due                Date
	}{
		{"Plan the week", "List the three outcomes that matter most this week.", PriorityHigh, StatusInProgress, today},
		{"Review pull requests", "Go through the open reviews assigned to you.", PriorityMedium, StatusPending, today.AddDays(1)},
		{"Renew library books", "", PriorityLow, StatusPending, today.AddDays(-1)},
		{"Try TaskFlow", "Create, edit, filter and sort a few tasks.", PriorityMedium, StatusCompleted, Date{}},
	}
	tasks := make([]Task, 0, len(samples))
	for _, s := range samples {
		tasks = append(tasks, Task{
			ID:          newID(),
			Title:       s.title,
			Description: s.description,
			Priority:    s.priority,
			Status:      s.status,
			DueDate:     s.due,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	}
	return tasks
}

// SeedByName resolves the seed strategy named in config.
func SeedByName(name string) (Seed, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SeedNameSample:
		return SeedSample, nil
	case SeedNameEmpty:
		return SeedEmpty, nil
	default:
		return nil, fmt.Errorf("unknown seed %q (want %s or %s)", name, SeedNameSample, SeedNameEmpty)
	}
}

package task

import "time"

// Stats aggregates the whole store, independent of any query.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

func ComputeStats(tasks []Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		case StatusPending:
			s.Pending++
		}
		if IsOverdue(t, now) {
			s.Overdue++
		}
	}
	return s
}

// Productivity is the completed share of all tasks as a whole percentage.
func (s Stats) Productivity() int {
	if s.Total == 0 {
		return 0
	}
	return s.Completed * 100 / s.Total
}

package task

import (
	"slices"
	"strings"
	"time"
)

type Filter string

const (
	FilterAll        Filter = "all"
	FilterToday      Filter = "today"
	FilterOverdue    Filter = "overdue"
	FilterPending    Filter = Filter(StatusPending)
	FilterInProgress Filter = Filter(StatusInProgress)
	FilterCompleted  Filter = Filter(StatusCompleted)
)

// Filters returns the filter values in the order the UI cycles through them.
func Filters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterInProgress, FilterCompleted, FilterToday, FilterOverdue}
}

func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All Tasks"
	case FilterPending:
		return "Pending"
	case FilterInProgress:
		return "In Progress"
	case FilterCompleted:
		return "Completed"
	case FilterToday:
		return "Due Today"
	case FilterOverdue:
		return "Overdue"
	default:
		return string(f)
	}
}

// ParseFilter maps user input onto a Filter. Empty input means all.
func ParseFilter(v string) Filter {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return FilterAll
	}
	return Filter(v)
}

type SortKey string

const (
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
	SortCreated  SortKey = "created"
)

func SortKeys() []SortKey {
	return []SortKey{SortDueDate, SortPriority, SortStatus, SortCreated}
}

func (k SortKey) Label() string {
	switch k {
	case SortDueDate:
		return "Due Date"
	case SortPriority:
		return "Priority"
	case SortStatus:
		return "Status"
	default:
		return "Created"
	}
}

// ParseSortKey accepts the key names case-insensitively plus "due" as a
// shorthand. Anything unrecognised sorts by creation time.
func ParseSortKey(v string) SortKey {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "duedate", "due":
		return SortDueDate
	case "priority":
		return SortPriority
	case "status":
		return SortStatus
	default:
		return SortCreated
	}
}

// Query selects and orders the displayed tasks.
type Query struct {
	Filter Filter
	Search string
	SortBy SortKey
}

// IsNarrowed reports whether the query can hide tasks.
func (q Query) IsNarrowed() bool {
	return q.Search != "" || (q.Filter != FilterAll && q.Filter != "")
}

// Apply runs filter, then search, then sort over tasks and returns a new
// slice. The input slice is not modified.
func Apply(tasks []Task, q Query, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	needle := strings.ToLower(q.Search)
	for _, t := range tasks {
		if !matchesFilter(t, q.Filter, now) {
			continue
		}
		if !matchesSearch(t, needle) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, comparator(q.SortBy))
	return out
}

func matchesFilter(t Task, f Filter, now time.Time) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterToday:
		return DueToday(t, now)
	case FilterOverdue:
		return IsOverdue(t, now)
	default:
		return string(t.Status) == string(f)
	}
}

func matchesSearch(t Task, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// DueToday reports whether t is due on now's calendar day.
func DueToday(t Task, now time.Time) bool {
	return !t.DueDate.IsZero() && t.DueDate == DateOf(now)
}

// IsOverdue reports whether t has a due date whose start lies strictly
// before now and t is not completed.
func IsOverdue(t Task, now time.Time) bool {
	if t.DueDate.IsZero() || t.IsCompleted() {
		return false
	}
	return t.DueDate.Start(now.Location()).Before(now)
}

func comparator(key SortKey) func(a, b Task) int {
	switch key {
	case SortDueDate:
		return func(a, b Task) int {
			switch {
			case a.DueDate.IsZero() && b.DueDate.IsZero():
				return 0
			case a.DueDate.IsZero():
				return 1
			case b.DueDate.IsZero():
				return -1
			case a.DueDate.Before(b.DueDate):
				return -1
			case b.DueDate.Before(a.DueDate):
				return 1
			}
			return 0
		}
	case SortPriority:
		return func(a, b Task) int { return b.Priority.Rank() - a.Priority.Rank() }
	case SortStatus:
		return func(a, b Task) int { return a.Status.Rank() - b.Status.Rank() }
	default:
		return func(a, b Task) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// DueLabel renders a due date relative to now: Today, Tomorrow,
// Overdue (Jan 2) or Jan 2, 2006. An unset date renders as "".
func DueLabel(d Date, now time.Time) string {
	if d.IsZero() {
		return ""
	}
	today := DateOf(now)
	start := d.Start(now.Location())
	switch {
	case d == today:
		return "Today"
	case d == today.AddDays(1):
		return "Tomorrow"
	case start.Before(now):
		return "Overdue (" + start.Format("Jan 2") + ")"
	}
	return start.Format("Jan 2, 2006")
}

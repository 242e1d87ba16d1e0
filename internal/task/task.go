// Package task holds the task model, the persisted task store and the
// filter/search/sort pipeline used by both front ends.
package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wire format for createdAt/updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const dateLayout = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", newError(ErrCodeInvalid, fmt.Sprintf("unknown priority %q (want low, medium or high)", v))
	}
	return p, nil
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Rank orders statuses pending=1, in-progress=2, completed=3. Unknown values rank 0.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 0
	}
}

func (s Status) Valid() bool { return s.Rank() > 0 }

func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if s == "" {
		return StatusPending, nil
	}
	if !s.Valid() {
		return "", newError(ErrCodeInvalid, fmt.Sprintf("unknown status %q (want pending, in-progress or completed)", v))
	}
	return s, nil
}

// Date is a calendar day without a time component. The zero Date means unset.
type Date struct {
	year  int
	month time.Month
	day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate accepts "", YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(v string) (Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return Date{}, newError(ErrCodeInvalid, fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", v))
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d.year == 0 }

// Start returns midnight of d in loc.
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
}

func (d Date) Before(o Date) bool {
	if d.year != o.year {
		return d.year < o.year
	}
	if d.month != o.month {
		return d.month < o.month
	}
	return d.day < o.day
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Start(time.UTC).AddDate(0, 0, n))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Start(time.UTC).Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     Date
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// taskJSON is the persisted shape, field names match the taskflow-tasks payload.
type taskJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	DueDate     Date     `json:"dueDate"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
	})
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var raw taskJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// A missing or unreadable timestamp borrows the other one.
	created, cerr := parseTimestamp(raw.CreatedAt)
	updated, uerr := parseTimestamp(raw.UpdatedAt)
	switch {
	case cerr != nil && uerr == nil:
		created = updated
	case uerr != nil && cerr == nil:
		updated = created
	case cerr != nil && uerr != nil:
		created, updated = time.Time{}, time.Time{}
	}
	*t = Task{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		Priority:    raw.Priority,
		Status:      raw.Status,
		DueDate:     raw.DueDate,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return normalizeTimestamp(t), nil
}

// normalizeTimestamp keeps timestamps at the precision they are persisted with.
func normalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Input carries the user-editable fields of a task.
type Input struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     Date
}

// InputFrom prefills an Input from an existing task, the way the edit form does.
func InputFrom(t Task) Input {
	return Input{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
	}
}

// normalize trims the title and applies form defaults. A blank title or an
// unknown priority/status is rejected.
func (in Input) normalize() (Input, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, ErrBlankTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return in, newError(ErrCodeInvalid, fmt.Sprintf("unknown priority %q", in.Priority))
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.Valid() {
		return in, newError(ErrCodeInvalid, fmt.Sprintf("unknown status %q", in.Status))
	}
	return in, nil
}

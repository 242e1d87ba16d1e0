package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var queryNow = time.Date(2024, 12, 19, 15, 0, 0, 0, time.UTC)

func titles(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	yesterday := DateOf(queryNow).AddDays(-1)
	today := DateOf(queryNow)
	tomorrow := DateOf(queryNow).AddDays(1)
	tasks := []Task{
		{ID: "1", Title: "late", Status: StatusInProgress, DueDate: yesterday},
		{ID: "2", Title: "late but done", Status: StatusCompleted, DueDate: yesterday},
		{ID: "3", Title: "today", Status: StatusPending, DueDate: today},
		{ID: "4", Title: "tomorrow", Status: StatusPending, DueDate: tomorrow},
		{ID: "5", Title: "someday", Status: StatusPending},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"late", "late but done", "today", "tomorrow", "someday"}},
		{FilterToday, []string{"today"}},
		{FilterOverdue, []string{"late", "today"}},
		{FilterPending, []string{"today", "tomorrow", "someday"}},
		{FilterInProgress, []string{"late"}},
		{FilterCompleted, []string{"late but done"}},
		{Filter("archived"), []string{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := Apply(tasks, Query{Filter: tt.filter, SortBy: "none"}, queryNow)
			// "none" falls through to createdAt desc; all zero so order is stable.
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestApplySearch(t *testing.T) {
	tasks := []Task{
		{Title: "Buy MILK", Description: ""},
		{Title: "Call mom", Description: "ask about the milkman"},
		{Title: "Write report", Description: "quarterly"},
	}

	assert.Equal(t, []string{"Buy MILK", "Call mom"}, titles(Apply(tasks, Query{Search: "Milk"}, queryNow)))
	assert.Equal(t, []string{"Write report"}, titles(Apply(tasks, Query{Search: "QUARTER"}, queryNow)))
	assert.Len(t, Apply(tasks, Query{Search: ""}, queryNow), 3)
	assert.Empty(t, Apply(tasks, Query{Search: "xyz"}, queryNow))
}

func TestApplySort(t *testing.T) {
	t.Run("priority descending", func(t *testing.T) {
		tasks := []Task{
			{Title: "low", Priority: PriorityLow},
			{Title: "high", Priority: PriorityHigh},
			{Title: "medium", Priority: PriorityMedium},
		}
		got := Apply(tasks, Query{SortBy: SortPriority}, queryNow)
		assert.Equal(t, []string{"high", "medium", "low"}, titles(got))
	})

	t.Run("due date ascending with missing last", func(t *testing.T) {
		tasks := []Task{
			{Title: "20th", DueDate: NewDate(2024, time.December, 20)},
			{Title: "none"},
			{Title: "18th", DueDate: NewDate(2024, time.December, 18)},
		}
		got := Apply(tasks, Query{SortBy: SortDueDate}, queryNow)
		assert.Equal(t, []string{"18th", "20th", "none"}, titles(got))
	})

	t.Run("due date keeps order among undated tasks", func(t *testing.T) {
		tasks := []Task{{Title: "a"}, {Title: "b"}, {Title: "c", DueDate: NewDate(2025, time.January, 1)}, {Title: "d"}}
		got := Apply(tasks, Query{SortBy: SortDueDate}, queryNow)
		assert.Equal(t, []string{"c", "a", "b", "d"}, titles(got))
	})

	t.Run("status ascending", func(t *testing.T) {
		tasks := []Task{
			{Title: "done", Status: StatusCompleted},
			{Title: "todo", Status: StatusPending},
			{Title: "doing", Status: StatusInProgress},
		}
		got := Apply(tasks, Query{SortBy: SortStatus}, queryNow)
		assert.Equal(t, []string{"todo", "doing", "done"}, titles(got))
	})

	t.Run("created descending by default", func(t *testing.T) {
		base := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
		tasks := []Task{
			{Title: "old", CreatedAt: base},
			{Title: "new", CreatedAt: base.Add(2 * time.Hour)},
			{Title: "mid", CreatedAt: base.Add(time.Hour)},
		}
		assert.Equal(t, []string{"new", "mid", "old"}, titles(Apply(tasks, Query{SortBy: SortCreated}, queryNow)))
		assert.Equal(t, []string{"new", "mid", "old"}, titles(Apply(tasks, Query{SortBy: "whatever"}, queryNow)))
	})
}

func TestApplyStagesCompose(t *testing.T) {
	tasks := []Task{
		{Title: "report draft", Priority: PriorityLow, Status: StatusPending},
		{Title: "report final", Priority: PriorityHigh, Status: StatusPending},
		{Title: "report sent", Priority: PriorityHigh, Status: StatusCompleted},
		{Title: "groceries", Priority: PriorityHigh, Status: StatusPending},
	}
	got := Apply(tasks, Query{Filter: FilterPending, Search: "report", SortBy: SortPriority}, queryNow)
	assert.Equal(t, []string{"report final", "report draft"}, titles(got))
	assert.Equal(t, "report draft", tasks[0].Title, "input must not be reordered")
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortDueDate, ParseSortKey("dueDate"))
	assert.Equal(t, SortDueDate, ParseSortKey("due"))
	assert.Equal(t, SortPriority, ParseSortKey(" Priority "))
	assert.Equal(t, SortStatus, ParseSortKey("status"))
	assert.Equal(t, SortCreated, ParseSortKey(""))
}

func TestParseFilter(t *testing.T) {
	assert.Equal(t, FilterAll, ParseFilter(""))
	assert.Equal(t, FilterInProgress, ParseFilter("In-Progress"))
	assert.Equal(t, FilterOverdue, ParseFilter("overdue"))
}

func TestQueryIsNarrowed(t *testing.T) {
	assert.False(t, Query{Filter: FilterAll}.IsNarrowed())
	assert.False(t, Query{}.IsNarrowed())
	assert.True(t, Query{Filter: FilterToday}.IsNarrowed())
	assert.True(t, Query{Filter: FilterAll, Search: "x"}.IsNarrowed())
}

func TestDueLabel(t *testing.T) {
	today := DateOf(queryNow)
	tests := []struct {
		name string
		date Date
		want string
	}{
		{"unset", Date{}, ""},
		{"today", today, "Today"},
		{"tomorrow", today.AddDays(1), "Tomorrow"},
		{"past", NewDate(2024, time.December, 2), "Overdue (Dec 2)"},
		{"future", NewDate(2025, time.March, 14), "Mar 14, 2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueLabel(tt.date, queryNow))
		})
	}
}

func TestDueDatesUseClockLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	// 15:30 on Dec 18 in UTC, already Dec 19 on the clock.
	now := time.Date(2024, 12, 19, 0, 30, 0, 0, tokyo)
	dueYesterday := Task{Title: "yesterday", Status: StatusPending, DueDate: NewDate(2024, time.December, 18)}
	dueToday := Task{Title: "today", Status: StatusPending, DueDate: NewDate(2024, time.December, 19)}
	dueTomorrow := Task{Title: "tomorrow", Status: StatusPending, DueDate: NewDate(2024, time.December, 20)}
	tasks := []Task{dueYesterday, dueToday, dueTomorrow}

	assert.False(t, DueToday(dueYesterday, now))
	assert.True(t, DueToday(dueToday, now))
	assert.True(t, IsOverdue(dueYesterday, now))
	assert.True(t, IsOverdue(dueToday, now))
	assert.False(t, IsOverdue(dueTomorrow, now))

	assert.Equal(t, []string{"today"}, titles(Apply(tasks, Query{Filter: FilterToday}, now)))
	assert.Equal(t, []string{"yesterday", "today"}, titles(Apply(tasks, Query{Filter: FilterOverdue, SortBy: SortDueDate}, now)))

	assert.Equal(t, "Overdue (Dec 18)", DueLabel(dueYesterday.DueDate, now))
	assert.Equal(t, "Today", DueLabel(dueToday.DueDate, now))
	assert.Equal(t, "Tomorrow", DueLabel(dueTomorrow.DueDate, now))

	t.Run("exactly midnight is not overdue", func(t *testing.T) {
		midnight := dueToday.DueDate.Start(tokyo)
		assert.False(t, IsOverdue(dueToday, midnight))
		assert.True(t, DueToday(dueToday, midnight))
		assert.Empty(t, Apply(tasks[1:], Query{Filter: FilterOverdue}, midnight))
		assert.True(t, IsOverdue(dueToday, midnight.Add(time.Nanosecond)))
	})
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-12-18")
	assert.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.December, 18), d)

	d, err = ParseDate("2024-12-18T23:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, "2024-12-18", d.String())

	d, err = ParseDate("")
	assert.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("18/12/2024")
	assert.True(t, IsValidation(err))
}

func TestComputeStats(t *testing.T) {
	yesterday := DateOf(queryNow).AddDays(-1)
	tasks := []Task{
		{Status: StatusCompleted, DueDate: yesterday},
		{Status: StatusCompleted},
		{Status: StatusInProgress, DueDate: yesterday},
		{Status: StatusPending},
	}
	s := ComputeStats(tasks, queryNow)
	assert.Equal(t, Stats{Total: 4, Completed: 2, InProgress: 1, Pending: 1, Overdue: 1}, s)
	assert.Equal(t, 50, s.Productivity())
	assert.Equal(t, 0, ComputeStats(nil, queryNow).Productivity())
}

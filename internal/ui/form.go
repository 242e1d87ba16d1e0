package ui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/task"
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldDue
	fieldCount
)

var (
	formPriorities = []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh}
	formStatuses   = []task.Status{task.StatusPending, task.StatusInProgress, task.StatusCompleted}
)

// formState holds the add/edit form. taskID is empty when creating.
type formState struct {
	taskID      string
	title       string
	description string
	priority    task.Priority
	status      task.Status
	due         string
	field       formField
}

func (f *formState) text(field formField) *string {
	switch field {
	case fieldTitle:
		return &f.title
	case fieldDescription:
		return &f.description
	case fieldDue:
		return &f.due
	}
	return nil
}

func (f *formState) cycle(delta int) {
	switch f.field {
	case fieldPriority:
		f.priority = cycleValue(formPriorities, f.priority, delta)
	case fieldStatus:
		f.status = cycleValue(formStatuses, f.status, delta)
	}
}

func cycleValue[T comparable](values []T, cur T, delta int) T {
	i := slices.Index(values, cur)
	if i < 0 {
		return values[0]
	}
	n := len(values)
	return values[((i+delta)%n+n)%n]
}

func (m Model) startForm(t *task.Task) (tea.Model, tea.Cmd) {
	f := &formState{priority: task.PriorityMedium, status: task.StatusPending}
	if t != nil {
		in := task.InputFrom(*t)
		f.taskID = t.ID
		f.title = in.Title
		f.description = in.Description
		f.priority = in.Priority
		f.status = in.Status
		f.due = in.DueDate.String()
		m.status = "Editing task. tab moves, enter saves, esc cancels"
	} else {
		m.status = "New task. tab moves, enter saves, esc cancels"
	}
	m.form = f
	m.mode = modeForm
	cmd := m.focusField(fieldTitle)
	return m, cmd
}

// focusField stores the text input into the current field and moves to field.
func (m *Model) focusField(field formField) tea.Cmd {
	f := m.form
	if p := f.text(f.field); p != nil && m.input.Focused() {
		*p = m.input.Value()
	}
	f.field = field
	p := f.text(field)
	if p == nil {
		m.input.Blur()
		return nil
	}
	m.input.SetValue(*p)
	m.input.CursorEnd()
	switch field {
	case fieldTitle:
		m.input.Placeholder = "What needs to be done?"
	case fieldDescription:
		m.input.Placeholder = "Add more details (optional)"
	case fieldDue:
		m.input.Placeholder = dateHint
	}
	return m.input.Focus()
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case m.cfg.Keys.Cancel, "esc":
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		return m.submitForm()
	case "tab", "down":
		cmd := m.focusField((f.field + 1) % fieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.focusField((f.field + fieldCount - 1) % fieldCount)
		return m, cmd
	}

	if f.text(f.field) == nil {
		switch key {
		case "left", "h":
			f.cycle(-1)
		case "right", "l", " ":
			f.cycle(1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	*f.text(f.field) = m.input.Value()
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	if p := f.text(f.field); p != nil {
		*p = m.input.Value()
	}
	if strings.TrimSpace(f.title) == "" {
		m.status = "Please enter a task title"
		cmd := m.focusField(fieldTitle)
		return m, cmd
	}
	due, err := task.ParseDate(f.due)
	if err != nil {
		m.status = fmt.Sprintf("Due date must be %s", dateHint)
		cmd := m.focusField(fieldDue)
		return m, cmd
	}
	in := task.Input{
		Title:       f.title,
		Description: f.description,
		Priority:    f.priority,
		Status:      f.status,
		DueDate:     due,
	}

	var saved task.Task
	if f.taskID == "" {
		saved, err = m.store.Create(m.ctx, in)
	} else {
		saved, err = m.store.Update(m.ctx, f.taskID, in)
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}

	editing := f.taskID != ""
	m.leaveInput()
	m.refresh()
	m.selectTask(saved.ID)
	if editing {
		m.status = "Task updated successfully!"
	} else {
		m.status = "Task created successfully!"
	}
	return m, nil
}

func (m Model) renderForm() string {
	f := m.form
	if f == nil {
		return ""
	}
	heading := "Add New Task"
	if f.taskID != "" {
		heading = "Edit Task"
	}
	rows := []struct {
		field formField
		label string
		value string
	}{
		{fieldTitle, "Title", f.title},
		{fieldDescription, "Description", f.description},
		{fieldPriority, "Priority", fmt.Sprintf("< %s >", f.priority)},
		{fieldStatus, "Status", fmt.Sprintf("< %s >", f.status)},
		{fieldDue, "Due date", f.due},
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(heading))
	b.WriteString("\n")
	for _, r := range rows {
		marker := "  "
		value := r.value
		if r.field == f.field {
			marker = "> "
			if f.text(r.field) != nil {
				value = m.input.View()
			}
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", marker, r.label+":", value))
	}
	return m.styles.box.Render(strings.TrimRight(b.String(), "\n"))
}

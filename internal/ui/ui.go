package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
	modeConfirmDelete
)

const dateHint = "YYYY-MM-DD"

type Model struct {
	ctx    context.Context
	store  *task.Store
	kv     storage.Provider
	cfg    config.Config
	logger *zap.Logger

	query  task.Query
	tasks  []task.Task
	stats  task.Stats
	cursor int

	mode       mode
	input      textinput.Model
	status     string
	pendingDel *task.Task
	form       *formState

	dark   bool
	styles styles
}

func Run(ctx context.Context, a *app.App) error {
	m := New(ctx, a)
	program := tea.NewProgram(m, tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// New builds the list model with the configured default filter and sort.
func New(ctx context.Context, a *app.App) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	dark, err := storage.GetBool(ctx, a.KV, storage.DarkModeKey)
	if err != nil {
		a.Logger.Warn("could not read theme setting", zap.Error(err))
	}

	m := Model{
		ctx:    ctx,
		store:  a.Store,
		kv:     a.KV,
		cfg:    a.Config,
		logger: a.Logger,
		query: task.Query{
			Filter: task.ParseFilter(a.Config.DefaultFilter),
			SortBy: task.ParseSortKey(a.Config.DefaultSort),
		},
		input:  ti,
		mode:   modeList,
		status: fmt.Sprintf("Press '%s' to add, '%s' to edit, '%s' to search.", a.Config.Keys.Add, a.Config.Keys.Edit, a.Config.Keys.Search),
		dark:   dark,
		styles: newStyles(dark),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateFormMode(msg.String(), msg)
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-20, 10)
	}
	return m, nil
}

// refresh recomputes the displayed list and the stats from the store.
func (m *Model) refresh() {
	if err := m.store.Sync(m.ctx); err != nil {
		m.logger.Warn("could not reload tasks", zap.Error(err))
	}
	all := m.store.Tasks()
	now := m.store.Now()
	m.tasks = task.Apply(all, m.query, now)
	m.stats = task.ComputeStats(all, now)
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *Model) selectTask(id string) {
	if i := slices.IndexFunc(m.tasks, func(t task.Task) bool { return t.ID == id }); i >= 0 {
		m.cursor = i
	}
}

func (m Model) selected() (task.Task, bool) {
	if len(m.tasks) == 0 {
		return task.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	keys := m.cfg.Keys
	switch key {
	case "ctrl+c", keys.Quit:
		return m, tea.Quit
	case keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case keys.Add:
		return m.startForm(nil)
	case keys.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&t)
	case keys.Toggle, "space":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		updated, err := m.store.ToggleStatus(m.ctx, t.ID)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.selectTask(updated.ID)
		m.status = fmt.Sprintf("Marked \"%s\" %s", updated.Title, updated.Status)
	case keys.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search tasks..."
		m.input.SetValue(m.query.Search)
		m.input.CursorEnd()
		m.status = "Type to search, enter to keep, esc to clear"
		cmd := m.input.Focus()
		return m, cmd
	case keys.Filter:
		m.query.Filter = nextFilter(m.query.Filter)
		m.refresh()
		m.status = "Filter: " + m.query.Filter.Label()
	case keys.Sort:
		m.query.SortBy = nextSortKey(m.query.SortBy)
		m.refresh()
		m.status = "Sort by " + m.query.SortBy.Label()
	case keys.Theme:
		m.dark = !m.dark
		m.styles = newStyles(m.dark)
		if err := storage.SetBool(m.ctx, m.kv, storage.DarkModeKey, m.dark); err != nil {
			m.logger.Warn("could not save theme setting", zap.Error(err))
		}
		m.status = "Dark mode " + onOff(m.dark)
	}
	return m, nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.query.Search = ""
		m.leaveInput()
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.leaveInput()
		if m.query.Search != "" {
			m.status = fmt.Sprintf("%d matching \"%s\"", len(m.tasks), m.query.Search)
		} else {
			m.status = ""
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.query.Search = m.input.Value()
		m.refresh()
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			break
		}
		if err := m.store.Delete(m.ctx, m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
			break
		}
		m.refresh()
		m.status = "Task deleted successfully!"
	case "n", "N", "esc":
		m.status = "Delete cancelled"
	default:
		return m, nil
	}
	m.mode = modeList
	m.pendingDel = nil
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.form = nil
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.title.Render("TaskFlow"))
	b.WriteString(s.subtle.Render("  Smart Task Management"))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(s.subtle.Render(fmt.Sprintf("Filter: %s • Sort: %s", m.query.Filter.Label(), m.query.SortBy.Label())))
	if m.query.Search != "" && m.mode != modeSearch {
		b.WriteString(s.subtle.Render(fmt.Sprintf(" • Search: %q", m.query.Search)))
	}
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(m.renderEmpty())
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")
	switch m.mode {
	case modeForm:
		b.WriteString(m.renderForm())
	case modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(s.subtle.Render(renderHelp(m.cfg.Keys)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s search • %s filter • %s sort • %s theme • %s quit",
		k.Up, k.Down, k.Add, k.Edit, keyLabel(k.Toggle), k.Delete, k.Search, k.Filter, k.Sort, k.Theme, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderStats() string {
	s := m.styles
	st := m.stats
	parts := []string{
		s.stat["total"].Render(fmt.Sprintf("%d", st.Total)) + " Total",
		s.stat["completed"].Render(fmt.Sprintf("%d", st.Completed)) + " Completed",
		s.stat["in-progress"].Render(fmt.Sprintf("%d", st.InProgress)) + " In Progress",
		s.stat["pending"].Render(fmt.Sprintf("%d", st.Pending)) + " Pending",
		s.stat["overdue"].Render(fmt.Sprintf("%d", st.Overdue)) + " Overdue",
		fmt.Sprintf("%d%% Productivity", st.Productivity()),
	}
	return strings.Join(parts, " • ")
}

func (m Model) renderEmpty() string {
	if m.query.IsNarrowed() {
		return "No matching tasks found\n" + m.styles.subtle.Render("Try adjusting your search or filter criteria")
	}
	return "No tasks yet\n" + m.styles.subtle.Render(fmt.Sprintf("Press '%s' to create your first task", m.cfg.Keys.Add))
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	s := m.styles
	now := m.store.Now()
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}
		title := t.Title
		switch {
		case t.IsCompleted():
			title = s.done.Render(title)
		case m.cursor == i:
			title = s.selected.Render(title)
		}
		line := fmt.Sprintf("%s %s %s %s", cursor, checkbox(t.Status), title, s.priority[string(t.Priority)].Render(string(t.Priority)))
		if label := task.DueLabel(t.DueDate, now); label != "" {
			if task.IsOverdue(t, now) {
				label = s.errText.Render(label)
			}
			line += " • " + label
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	t, ok := m.selected()
	if !ok {
		return "No task selected"
	}
	now := m.store.Now()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Status      : %s\n", t.Status))
	b.WriteString(fmt.Sprintf("Priority    : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Due         : %s\n", emptyPlaceholder(task.DueLabel(t.DueDate, now))))
	b.WriteString(fmt.Sprintf("Created     : %s\n", humanize.RelTime(t.CreatedAt, now, "ago", "from now")))
	b.WriteString(fmt.Sprintf("Updated     : %s", humanize.RelTime(t.UpdatedAt, now, "ago", "from now")))
	return m.styles.box.Render(b.String())
}

func checkbox(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return "[x]"
	case task.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func nextFilter(f task.Filter) task.Filter {
	all := task.Filters()
	i := slices.Index(all, f)
	return all[(i+1)%len(all)]
}

func nextSortKey(k task.SortKey) task.SortKey {
	all := task.SortKeys()
	i := slices.Index(all, k)
	return all[(i+1)%len(all)]
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

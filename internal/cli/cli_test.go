package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/storage"
	"taskflow/internal/task"
)

var testNow = time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC)

// harness shares one memory backend across invocations, like a real db file.
type harness struct {
	kv    *storage.Memory
	ids   int
	seed  string
	opens int
}

func newHarness() *harness {
	return &harness{kv: storage.NewMemory(), seed: task.SeedNameEmpty}
}

func (h *harness) nextID() string {
	h.ids++
	return fmt.Sprintf("%08x-0000-4000-8000-000000000000", h.ids)
}

func (h *harness) open(ctx context.Context, _, _ string) (*app.App, error) {
	h.opens++
	cfg := config.Default()
	cfg.Backend = storage.BackendMemory
	cfg.Seed = h.seed
	return app.New(ctx, cfg, h.kv, nil,
		task.WithClock(func() time.Time { return testNow }),
		task.WithIDGenerator(h.nextID))
}

func (h *harness) run(args ...string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr, h.open)
	return stdout.String(), stderr.String(), code
}

func TestAddAndList(t *testing.T) {
	h := newHarness()

	out, errOut, code := h.run("add", "Buy", "milk", "-p", "high", "--due", "2024-12-19", "-d", "2 litres")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "Added 00000001 Buy milk\n", out)

	out, _, code = h.run("list")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "00000001")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "Tomorrow")

	stored := h.tasks(t)
	require.Len(t, stored, 1)
	assert.Equal(t, "2 litres", stored[0].Description)
	assert.Equal(t, task.StatusPending, stored[0].Status)
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank title", []string{"add", "   "}, "title cannot be empty"},
		{"bad priority", []string{"add", "x", "-p", "urgent"}, "unknown priority"},
		{"bad status", []string{"add", "x", "-s", "blocked"}, "unknown status"},
		{"bad due date", []string{"add", "x", "--due", "tomorrow"}, "invalid date"},
		{"missing title", []string{"add"}, "requires at least 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, errOut, code := h.run(tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, errOut, "error: ")
			assert.Contains(t, errOut, tt.want)
			assert.Empty(t, h.tasks(t))
		})
	}
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness()
	_, _, code := h.run("add", "Draft", "post", "-d", "outline first", "--due", "2024-12-20")
	require.Equal(t, exitOK, code)

	out, errOut, code := h.run("edit", "00000001", "-p", "high", "--title", "Publish post")
	require.Equal(t, exitOK, code, errOut)
	assert.Equal(t, "Updated 00000001 Publish post\n", out)

	got := h.tasks(t)[0]
	assert.Equal(t, "Publish post", got.Title)
	assert.Equal(t, "outline first", got.Description)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, task.NewDate(2024, time.December, 20), got.DueDate)

	_, _, code = h.run("edit", "00000001", "--due", "")
	require.Equal(t, exitOK, code)
	assert.True(t, h.tasks(t)[0].DueDate.IsZero())
}

func TestEditUnknownID(t *testing.T) {
	h := newHarness()
	_, errOut, code := h.run("edit", "nope", "-p", "low")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "not found")
}

func TestToggle(t *testing.T) {
	h := newHarness()
	h.run("add", "Stretch")

	out, _, code := h.run("toggle", "00000001")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "00000001 Stretch is now completed\n", out)

	out, _, code = h.run("toggle", "00000001-0000-4000-8000-000000000000")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "00000001 Stretch is now pending\n", out)

	_, errOut, code := h.run("toggle", "ffff")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "not found")
}

func TestRemove(t *testing.T) {
	h := newHarness()
	h.run("add", "Old chore")

	out, _, code := h.run("rm", "nope")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "nothing deleted")
	assert.Len(t, h.tasks(t), 1)

	out, _, code = h.run("rm", "00000001")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "Deleted 00000001 Old chore\n", out)
	assert.Empty(t, h.tasks(t))

	out, _, _ = h.run("list")
	assert.Contains(t, out, "No tasks yet")
}

func TestAmbiguousPrefix(t *testing.T) {
	h := newHarness()
	h.run("add", "one")
	h.run("add", "two")

	_, errOut, code := h.run("toggle", "0000000")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "ambiguous")
}

func TestListFilterSearchSort(t *testing.T) {
	h := newHarness()
	h.run("add", "Low thing", "-p", "low")
	h.run("add", "High thing", "-p", "high")
	h.run("add", "Finished", "-s", "completed")

	out, _, code := h.run("list", "--sort", "priority")
	require.Equal(t, exitOK, code)
	assert.Less(t, bytes.Index([]byte(out), []byte("High thing")), bytes.Index([]byte(out), []byte("Low thing")))

	out, _, _ = h.run("list", "-f", "completed")
	assert.Contains(t, out, "Finished")
	assert.NotContains(t, out, "High thing")

	out, _, _ = h.run("list", "-q", "THING", "-f", "pending")
	assert.Contains(t, out, "High thing")
	assert.Contains(t, out, "Low thing")
	assert.NotContains(t, out, "Finished")

	out, _, _ = h.run("list", "-q", "nothing like this")
	assert.Contains(t, out, "No matching tasks found")
}

func TestStats(t *testing.T) {
	h := newHarness()
	h.run("add", "a", "--due", "2024-12-01")
	h.run("add", "b", "-s", "completed")
	h.run("add", "c", "-s", "in-progress")
	h.run("add", "d", "-s", "completed")

	out, _, code := h.run("stats")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "Productivity: 50%")

	out, _, code = h.run("stats", "--json")
	require.Equal(t, exitOK, code)
	var st task.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, task.Stats{Total: 4, Completed: 2, InProgress: 1, Pending: 1, Overdue: 1}, st)
}

func TestExport(t *testing.T) {
	h := newHarness()
	h.run("add", "Exported")

	out, _, code := h.run("export")
	require.Equal(t, exitOK, code)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Exported", raw[0]["title"])
	assert.Equal(t, "2024-12-18T09:00:00.000Z", raw[0]["createdAt"])
}

func TestSeedPersistsAcrossInvocations(t *testing.T) {
	h := newHarness()
	h.seed = task.SeedNameSample

	first, _, code := h.run("list", "--sort", "created")
	require.Equal(t, exitOK, code)
	second, _, _ := h.run("list", "--sort", "created")
	assert.Equal(t, first, second, "seeded ids are stable")
	assert.Len(t, h.tasks(t), 4)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness()
	_, errOut, code := h.run("frobnicate")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "unknown command")
	assert.Zero(t, h.opens, "storage is not opened for bad invocations")
}

func TestOpenFailure(t *testing.T) {
	open := func(context.Context, string, string) (*app.App, error) {
		return nil, fmt.Errorf("open sqlite storage: disk on fire")
	}
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"list"}, &stdout, &stderr, open)
	assert.Equal(t, exitError, code)
	assert.Equal(t, "error: open sqlite storage: disk on fire\n", stderr.String())
}

func (h *harness) tasks(t *testing.T) []task.Task {
	t.Helper()
	raw, ok, err := h.kv.Get(context.Background(), task.TasksKey)
	require.NoError(t, err)
	if !ok {
		return nil
	}
	var tasks []task.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &tasks))
	return tasks
}

type failingClose struct {
	*storage.Memory
}

func (failingClose) Close() error { return errors.New("flush failed") }

func TestCloseFailureIsReported(t *testing.T) {
	open := func(ctx context.Context, _, _ string) (*app.App, error) {
		cfg := config.Default()
		cfg.Seed = task.SeedNameEmpty
		return app.New(ctx, cfg, failingClose{storage.NewMemory()}, nil,
			task.WithClock(func() time.Time { return testNow }))
	}
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"add", "Written"}, &stdout, &stderr, open)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stdout.String(), "Added")
	assert.Equal(t, "error: close storage: flush failed\n", stderr.String())
}

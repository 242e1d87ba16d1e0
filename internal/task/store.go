package task

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TasksKey is the storage key holding the serialized task list.
	TasksKey = "taskflow-tasks"

	corruptSuffix = ".corrupt"
	maxIDAttempts = 3
)

// KV is the storage the store writes through to.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Clock func() time.Time

type IDGenerator func() string

// NewID returns a random UUID. Random ids keep short prefixes distinct.
func NewID() string {
	return uuid.NewString()
}

type Option func(*Store)

func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.now = c
		}
	}
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.newID = g
		}
	}
}

func WithSeed(seed Seed) Option {
	return func(s *Store) {
		if seed != nil {
			s.seed = seed
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithKey overrides the storage key, mainly so several stores can share one backend.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// Store owns the ordered task list. Every mutation is persisted before it
// becomes visible; a failed write leaves the list untouched.
type Store struct {
	mu      sync.Mutex
	kv      KV
	key     string
	now     Clock
	newID   IDGenerator
	seed    Seed
	logger  *zap.Logger
	tasks   []Task
	version uint64
	// last is the payload most recently read from or written to kv.
	last string
}

func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    TasksKey,
		now:    time.Now,
		newID:  NewID,
		seed:   SeedSample,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted list. A missing or unreadable payload is replaced
// by the seed set, which is written back immediately. Only storage failures
// are returned.
func (s *Store) Load(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, wrapError(ErrCodeInternal, "read tasks", err)
	}
	if ok {
		tasks, err := decodeTasks(raw)
		if err == nil {
			s.tasks = tasks
			s.last = raw
			s.version++
			s.logger.Debug("tasks loaded", zap.Int("count", len(tasks)))
			return slices.Clone(tasks), nil
		}
		s.logger.Warn("stored tasks unreadable, using seed data", zap.String("key", s.key), zap.Error(err))
		if berr := s.kv.Set(ctx, s.key+corruptSuffix, raw); berr != nil {
			s.logger.Warn("could not back up unreadable tasks", zap.Error(berr))
		}
	}

	seeded := s.seed(s.now(), s.newID)
	if err := s.write(ctx, seeded); err != nil {
		return nil, err
	}
	s.tasks = seeded
	s.version++
	s.logger.Info("task store seeded", zap.Int("count", len(seeded)))
	return slices.Clone(seeded), nil
}

func decodeTasks(raw string) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, wrapError(ErrCodeCorrupt, "decode tasks", err)
	}
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, newError(ErrCodeCorrupt, fmt.Sprintf("task at index %d has no id", i))
		}
		if _, dup := seen[t.ID]; dup {
			return nil, newError(ErrCodeCorrupt, fmt.Sprintf("duplicate task id %q", t.ID))
		}
		seen[t.ID] = struct{}{}
	}
	return tasks, nil
}

func encodeTasks(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) write(ctx context.Context, tasks []Task) error {
	payload, err := encodeTasks(tasks)
	if err != nil {
		return wrapError(ErrCodeInternal, "encode tasks", err)
	}
	if err := s.kv.Set(ctx, s.key, payload); err != nil {
		return wrapError(ErrCodeInternal, "persist tasks", err)
	}
	s.last = payload
	return nil
}

// Sync reloads the list if another writer changed the stored payload since
// this store last read or wrote it.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync(ctx)
}

// sync must be called with s.mu held. Mutations call it first so they apply
// on top of the latest stored list instead of overwriting it.
func (s *Store) sync(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return wrapError(ErrCodeInternal, "read tasks", err)
	}
	if !ok || raw == s.last {
		return nil
	}
	tasks, err := decodeTasks(raw)
	if err != nil {
		return wrapError(ErrCodeConflict, "stored tasks were changed by another writer and cannot be read", err)
	}
	s.tasks = tasks
	s.last = raw
	s.version++
	s.logger.Debug("tasks changed in storage, reloaded", zap.Int("count", len(tasks)))
	return nil
}

// Persist writes the current list to storage.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, s.tasks)
}

func (s *Store) commit(ctx context.Context, next []Task, op, id string) error {
	if err := s.write(ctx, next); err != nil {
		s.logger.Error("task mutation not persisted", zap.String("op", op), zap.String("id", id), zap.Error(err))
		return err
	}
	s.tasks = next
	s.version++
	s.logger.Debug("task mutation committed", zap.String("op", op), zap.String("id", id), zap.Int("count", len(next)))
	return nil
}

// touch returns the current time, bumped past prev if the clock has not moved.
func (s *Store) touch(prev time.Time) time.Time {
	now := normalizeTimestamp(s.now())
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) uniqueID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", newError(ErrCodeInternal, "could not generate a unique task id")
}

// Create validates in and appends a new task.
func (s *Store) Create(ctx context.Context, in Input) (Task, error) {
	in, err := in.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx); err != nil {
		return Task{}, err
	}

	id, err := s.uniqueID()
	if err != nil {
		return Task{}, err
	}
	now := normalizeTimestamp(s.now())
	t := Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	next := append(slices.Clone(s.tasks), t)
	if err := s.commit(ctx, next, "create", id); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update replaces the editable fields of task id. The id and createdAt are
// kept and updatedAt is refreshed.
func (s *Store) Update(ctx context.Context, id string, in Input) (Task, error) {
	in, err := in.normalize()
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx); err != nil {
		return Task{}, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	next := slices.Clone(s.tasks)
	t := next[i]
	t.Title = in.Title
	t.Description = in.Description
	t.Priority = in.Priority
	t.Status = in.Status
	t.DueDate = in.DueDate
	t.UpdatedAt = s.touch(t.UpdatedAt)
	next[i] = t
	if err := s.commit(ctx, next, "update", id); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Delete removes task id. Deleting an unknown id does nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx); err != nil {
		return err
	}

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("delete of unknown task ignored", zap.String("id", id))
		return nil
	}
	next := slices.Delete(slices.Clone(s.tasks), i, i+1)
	return s.commit(ctx, next, "delete", id)
}

// ToggleStatus flips a completed task back to pending and any other task to
// completed.
func (s *Store) ToggleStatus(ctx context.Context, id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sync(ctx); err != nil {
		return Task{}, err
	}

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	next := slices.Clone(s.tasks)
	t := next[i]
	if t.IsCompleted() {
		t.Status = StatusPending
	} else {
		t.Status = StatusCompleted
	}
	t.UpdatedAt = s.touch(t.UpdatedAt)
	next[i] = t
	if err := s.commit(ctx, next, "toggle", id); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Tasks returns a copy of the list in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Resolve finds a task by exact id or by a unique id prefix.
func (s *Store) Resolve(ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, newError(ErrCodeInvalid, "task id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(ref); i >= 0 {
		return s.tasks[i], nil
	}
	var matches []Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return Task{}, notFound(ref)
	case 1:
		return matches[0], nil
	default:
		return Task{}, newError(ErrCodeInvalid, fmt.Sprintf("task id %q is ambiguous (%d matches)", ref, len(matches)))
	}
}

// Version increases with every committed load or mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

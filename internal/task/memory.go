package task

import (
	"strings"
	"sync"
	"time"
)

// Option configures a store
type Option func(*options)

type options struct {
	policy IDPolicy
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		policy: PolicySequence,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithIDPolicy sets the id policy (default: sequence)
func WithIDPolicy(p IDPolicy) Option {
	return func(o *options) {
		if p != "" {
			o.policy = p
		}
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// MemoryStore keeps tasks in a slice in insertion order.
type MemoryStore struct {
	mu    sync.Mutex
	opts  options
	seq   int64
	tasks []Task
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{opts: o, tasks: []Task{}}
}

func (s *MemoryStore) Create(title, description string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	id, s.seq = s.opts.policy.nextID(len(s.tasks), s.seq)
	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   s.opts.now(),
	}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *MemoryStore) List(filter Filter) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	return s.tasks[i], nil
}

func (s *MemoryStore) Complete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	s.tasks[i].Completed = true
	return s.tasks[i], nil
}

func (s *MemoryStore) Delete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	removed := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return removed, nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks), nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

// indexOf returns the position of the first task with id, or -1.
func (s *MemoryStore) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

var _ Store = (*MemoryStore)(nil)

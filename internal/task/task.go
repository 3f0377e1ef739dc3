package task

import (
	"errors"
	"fmt"
	"time"
)

// Task is a single to-do entry.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
}

// Filter selects tasks by completion state
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// Filters returns all filters in display order
func Filters() []Filter {
	return []Filter{FilterAll, FilterPending, FilterCompleted}
}

// ParseFilter maps a raw value to a Filter; empty means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCompleted, FilterPending:
		return Filter(s), nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("task not found")
	// ErrTitleRequired is returned by Create for an empty title.
	ErrTitleRequired = errors.New("title required")
)

// NotFoundError reports a lookup by an id that is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no task with id: %s", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Store owns the ordered task sequence.
type Store interface {
	Create(title, description string) (Task, error)
	List(filter Filter) ([]Task, error)
	Get(id string) (Task, error)
	Complete(id string) (Task, error)
	Delete(id string) (Task, error)
	Count() (int, error)
	Close() error
}

// SeedTask describes a task created by Seed.
type SeedTask struct {
	Title       string
	Description string
	Completed   bool
}

// Seed creates the given tasks in order, completing the ones marked done.
func Seed(s Store, seeds []SeedTask) error {
	for _, seed := range seeds {
		t, err := s.Create(seed.Title, seed.Description)
		if err != nil {
			return fmt.Errorf("seed %q: %w", seed.Title, err)
		}
		if !seed.Completed {
			continue
		}
		if _, err := s.Complete(t.ID); err != nil {
			return fmt.Errorf("seed %q: %w", seed.Title, err)
		}
	}
	return nil
}

package task

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/n0roo/todo-mcp/internal/db"
)

const seqMetaKey = "task_seq"

// SQLStore keeps tasks in a db.Database (SQLite or DuckDB).
type SQLStore struct {
	mu   sync.Mutex
	db   db.Database
	opts options
}

// NewSQLStore wraps an initialized database. The store owns it from then on.
func NewSQLStore(database db.Database, opts ...Option) *SQLStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &SQLStore{db: database, opts: o}
}

func (s *SQLStore) Create(title, description string) (Task, error) {
	if strings.TrimSpace(title) == "" {
		return Task{}, ErrTitleRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.count()
	if err != nil {
		return Task{}, err
	}
	seq, err := s.lastSeq()
	if err != nil {
		return Task{}, err
	}

	id, next := s.opts.policy.nextID(count, seq)
	if next != seq {
		if err := db.SetMeta(s.db, seqMetaKey, strconv.FormatInt(next, 10)); err != nil {
			return Task{}, err
		}
	}

	var pos int64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks`).Scan(&pos); err != nil {
		return Task{}, fmt.Errorf("next position: %w", err)
	}

	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   s.opts.now(),
	}
	_, err = s.db.Exec(`
		INSERT INTO tasks (seq, id, title, description, completed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pos, t.ID, t.Title, t.Description, false, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *SQLStore) List(filter Filter) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT seq, id, title, description, completed, created_at FROM tasks`
	var args []interface{}
	switch filter {
	case FilterCompleted, FilterPending:
		query += ` WHERE completed = ?`
		args = append(args, filter == FilterCompleted)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		_, t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, t, err := s.find(id)
	return t, err
}

func (s *SQLStore) Complete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, t, err := s.find(id)
	if err != nil {
		return Task{}, err
	}
	if _, err := s.db.Exec(`UPDATE tasks SET completed = ? WHERE seq = ?`, true, seq); err != nil {
		return Task{}, fmt.Errorf("complete task %s: %w", id, err)
	}
	t.Completed = true
	return t, nil
}

func (s *SQLStore) Delete(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, t, err := s.find(id)
	if err != nil {
		return Task{}, err
	}
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE seq = ?`, seq); err != nil {
		return Task{}, fmt.Errorf("delete task %s: %w", id, err)
	}
	return t, nil
}

func (s *SQLStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count()
}

// Close closes the underlying database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *SQLStore) lastSeq() (int64, error) {
	value, ok, err := db.GetMeta(s.db, seqMetaKey)
	if err != nil || !ok {
		return 0, err
	}
	seq, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", seqMetaKey, value, err)
	}
	return seq, nil
}

// find returns the first task with id in insertion order.
func (s *SQLStore) find(id string) (int64, Task, error) {
	row := s.db.QueryRow(`
		SELECT seq, id, title, description, completed, created_at
		FROM tasks WHERE id = ? ORDER BY seq ASC LIMIT 1
	`, id)
	seq, t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return 0, Task{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return 0, Task{}, fmt.Errorf("find task %s: %w", id, err)
	}
	return seq, t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (int64, Task, error) {
	var (
		seq     int64
		t       Task
		created string
	)
	if err := row.Scan(&seq, &t.ID, &t.Title, &t.Description, &t.Completed, &created); err != nil {
		return 0, Task{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = ts
	}
	return seq, t, nil
}

var _ Store = (*SQLStore)(nil)

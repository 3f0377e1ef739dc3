package task

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// openTestStore opens an empty store for the backend and closes it after the test.
func openTestStore(t *testing.T, backend Backend, opts ...Option) Store {
	t.Helper()

	s, err := Open(backend, opts...)
	if err != nil {
		t.Fatalf("open %s store: %v", backend, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func forEachBackend(t *testing.T, fn func(t *testing.T, backend Backend)) {
	for _, backend := range Backends() {
		t.Run(string(backend), func(t *testing.T) {
			fn(t, backend)
		})
	}
}

func mustCreate(t *testing.T, s Store, title, description string) Task {
	t.Helper()
	created, err := s.Create(title, description)
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return created
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestCreateKeepsInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		titles := []string{"first", "second", "third", "fourth"}
		for _, title := range titles {
			mustCreate(t, s, title, "")
		}

		all, err := s.List(FilterAll)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != len(titles) {
			t.Fatalf("len = %d, want %d", len(all), len(titles))
		}
		seen := map[string]bool{}
		for i, task := range all {
			if task.Title != titles[i] {
				t.Errorf("all[%d].Title = %s, want %s", i, task.Title, titles[i])
			}
			if task.Completed {
				t.Errorf("all[%d] should start pending", i)
			}
			if seen[task.ID] {
				t.Errorf("duplicate id %s", task.ID)
			}
			seen[task.ID] = true
		}
	})
}

func TestCreateRequiresTitle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		if _, err := s.Create("  ", "x"); !errors.Is(err, ErrTitleRequired) {
			t.Fatalf("err = %v, want ErrTitleRequired", err)
		}
		if n, _ := s.Count(); n != 0 {
			t.Errorf("count = %d, want 0", n)
		}
	})
}

func TestCreateCapturesFields(t *testing.T) {
	fixed := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend, WithClock(func() time.Time { return fixed }))

		created := mustCreate(t, s, "Buy milk", "2 litres")
		got, err := s.Get(created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "Buy milk" || got.Description != "2 litres" {
			t.Errorf("unexpected task: %+v", got)
		}
		if !got.CreatedAt.Equal(fixed) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
		}
	})
}

func TestFiltersPartitionAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		for _, title := range []string{"a", "b", "c", "d", "e"} {
			mustCreate(t, s, title, "")
		}
		if _, err := s.Complete("2"); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if _, err := s.Complete("4"); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if _, err := s.Delete("5"); err != nil {
			t.Fatalf("delete: %v", err)
		}

		all, _ := s.List(FilterAll)
		pending, _ := s.List(FilterPending)
		completed, _ := s.List(FilterCompleted)

		union := map[string]int{}
		for _, id := range ids(pending) {
			union[id]++
		}
		for _, id := range ids(completed) {
			union[id]++
		}
		if len(union) != len(all) {
			t.Fatalf("pending ∪ completed has %d ids, all has %d", len(union), len(all))
		}
		for _, id := range ids(all) {
			if union[id] != 1 {
				t.Errorf("id %s appears %d times across filters", id, union[id])
			}
		}
		if got := ids(completed); len(got) != 2 || got[0] != "2" || got[1] != "4" {
			t.Errorf("completed = %v, want [2 4]", got)
		}
	})
}

func TestCompleteIsIdempotentAndIsolated(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		a := mustCreate(t, s, "a", "")
		b := mustCreate(t, s, "b", "")

		for i := 0; i < 2; i++ {
			done, err := s.Complete(a.ID)
			if err != nil {
				t.Fatalf("complete #%d: %v", i+1, err)
			}
			if !done.Completed || done.Title != "a" {
				t.Errorf("complete #%d returned %+v", i+1, done)
			}
		}

		other, _ := s.Get(b.ID)
		if other.Completed {
			t.Error("completing a must not touch b")
		}
	})
}

func TestNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)
		mustCreate(t, s, "a", "")

		_, err := s.Complete("42")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("complete: err = %v, want ErrNotFound", err)
		}
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ID != "42" {
			t.Errorf("expected NotFoundError for 42, got %v", err)
		}
		if err.Error() != "no task with id: 42" {
			t.Errorf("message = %q", err.Error())
		}

		if _, err := s.Delete("42"); !errors.Is(err, ErrNotFound) {
			t.Errorf("delete: err = %v, want ErrNotFound", err)
		}
		if _, err := s.Get("42"); !errors.Is(err, ErrNotFound) {
			t.Errorf("get: err = %v, want ErrNotFound", err)
		}
	})
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		mustCreate(t, s, "a", "")
		b := mustCreate(t, s, "b", "keep me")
		mustCreate(t, s, "c", "")

		removed, err := s.Delete(b.ID)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if removed.Title != "b" || removed.Description != "keep me" {
			t.Errorf("removed snapshot = %+v", removed)
		}
		if _, err := s.Get(b.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("deleted task still found: %v", err)
		}
		all, _ := s.List(FilterAll)
		if got := ids(all); len(got) != 2 || got[0] != "1" || got[1] != "3" {
			t.Errorf("remaining ids = %v, want [1 3]", got)
		}
	})
}

func TestSequencePolicyNeverReuses(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend, WithIDPolicy(PolicySequence))

		a := mustCreate(t, s, "a", "")
		mustCreate(t, s, "b", "")
		if _, err := s.Delete(a.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		c := mustCreate(t, s, "c", "")
		if c.ID != "3" {
			t.Errorf("id after delete = %s, want 3", c.ID)
		}
	})
}

func TestLengthPolicyCollision(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend, WithIDPolicy(PolicyLength))

		a := mustCreate(t, s, "a", "")
		b := mustCreate(t, s, "b", "")
		if _, err := s.Delete(a.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		c := mustCreate(t, s, "c", "")
		if c.ID != b.ID {
			t.Fatalf("length policy should reuse id %s, got %s", b.ID, c.ID)
		}

		// 중복 id는 삽입 순서상 첫 번째 작업에 적용된다
		done, err := s.Complete("2")
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if done.Title != "b" {
			t.Errorf("completed %q, want first match b", done.Title)
		}
		pending, _ := s.List(FilterPending)
		if len(pending) != 1 || pending[0].Title != "c" {
			t.Errorf("pending = %+v, want only c", pending)
		}
	})
}

func TestUUIDPolicy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend, WithIDPolicy(PolicyUUID))

		a := mustCreate(t, s, "a", "")
		b := mustCreate(t, s, "b", "")
		if _, err := uuid.Parse(a.ID); err != nil {
			t.Errorf("id %q is not a uuid: %v", a.ID, err)
		}
		if a.ID == b.ID {
			t.Error("uuid ids must differ")
		}
	})
}

func TestSeed(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend Backend) {
		s := openTestStore(t, backend)

		err := Seed(s, []SeedTask{
			{Title: "learn", Description: "read the docs"},
			{Title: "build", Completed: true},
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		completed, _ := s.List(FilterCompleted)
		if len(completed) != 1 || completed[0].Title != "build" {
			t.Errorf("completed = %+v", completed)
		}
		if n, _ := s.Count(); n != 2 {
			t.Errorf("count = %d, want 2", n)
		}
	})
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

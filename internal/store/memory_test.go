package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/pathrecall/internal/game"
)

func TestSaveGetReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	first := game.NewRound("one", []int{1, 2}, time.Now())
	if err := s.Save(ctx, "alice", first); err != nil {
		t.Fatal(err)
	}
	second := game.NewRound("two", []int{3, 4}, time.Now())
	if err := s.Save(ctx, "alice", second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "two" {
		t.Fatalf("expected newest round, got %s", got.ID)
	}
	if _, err := s.Get(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rounds must be per player, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Update(ctx, "alice", func(r game.Round) (game.Round, error) { return r, nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update on missing round: %v", err)
	}

	_ = s.Save(ctx, "alice", game.NewRound("one", []int{1, 2}, time.Now()))
	next, err := s.Update(ctx, "alice", func(r game.Round) (game.Round, error) { return r.Reveal(), nil })
	if err != nil {
		t.Fatal(err)
	}
	if next.Phase != game.PhaseAwaiting {
		t.Fatalf("expected awaiting_input, got %s", next.Phase)
	}

	boom := errors.New("boom")
	_, err = s.Update(ctx, "alice", func(r game.Round) (game.Round, error) {
		_, failed := r.Submit(9)
		return failed, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := s.Get(ctx, "alice")
	if got.Phase != game.PhaseAwaiting {
		t.Fatalf("failed update must not write, phase is %s", got.Phase)
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	path := make([]int, 200)
	for i := range path {
		path[i] = 7
	}
	_ = s.Save(ctx, "alice", game.NewRound("one", path, time.Now()).Reveal())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, "alice", func(r game.Round) (game.Round, error) {
				_, next := r.Submit(7)
				return next, nil
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, "alice")
	if len(got.Progress) != 100 {
		t.Fatalf("expected 100 progress entries, got %d", len(got.Progress))
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newMemory(func() time.Time { return clock })

	_ = m.Save(ctx, "old", game.NewRound("a", []int{1}, clock))
	clock = clock.Add(time.Hour)
	_ = m.Save(ctx, "new", game.NewRound("b", []int{1}, clock))

	if n := m.Prune(ctx, clock.Add(-time.Minute)); n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	if _, err := m.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatal("old round should be gone")
	}
	if _, err := m.Get(ctx, "new"); err != nil {
		t.Fatalf("new round should remain: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemoryStore()
	if err := s.Save(ctx, "alice", game.Round{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

package memory

import (
	"context"
	"errors"
	"testing"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
)

func seededStore() *Store {
	s := NewStore()
	s.PutRoadmap(domain.Roadmap{
		ID:    "r1",
		Owner: "u1",
		Weeks: []domain.Week{{ID: "w1", Position: 1, Topics: []string{"A", "B", "C"}, Completion: []bool{true}}},
	})
	s.PutRoadmap(domain.Roadmap{ID: "r2", Owner: "u1"})
	s.PutRoadmap(domain.Roadmap{ID: "r3", Owner: "u2"})
	s.PutQuizSet(domain.QuizSet{ID: "q1", Owner: "u1"})
	s.PutFlashcardSet(domain.FlashcardSet{ID: "f1", Owner: "u1"})
	return s
}

func TestStoreUpdateProgressPads(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	if err := s.UpdateProgress(ctx, "r1", "w1", 2, true); err != nil {
		t.Fatalf("update: %v", err)
	}
	r, _ := s.GetRoadmap(ctx, "r1")
	got := r.Weeks[0].Completion
	if len(got) != 3 || !got[0] || got[1] || !got[2] {
		t.Fatalf("unexpected completion %v", got)
	}

	if err := s.UpdateProgress(ctx, "r1", "w1", 3, true); !errors.Is(err, domain.ErrTopicOutOfRange) {
		t.Fatalf("expected ErrTopicOutOfRange, got %v", err)
	}
	if err := s.UpdateProgress(ctx, "r1", "nope", 0, true); !errors.Is(err, domain.ErrWeekNotFound) {
		t.Fatalf("expected ErrWeekNotFound, got %v", err)
	}
	if err := s.UpdateProgress(ctx, "missing", "w1", 0, true); !errors.Is(err, domain.ErrRoadmapNotFound) {
		t.Fatalf("expected ErrRoadmapNotFound, got %v", err)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := seededStore()
	r, _ := s.GetRoadmap(context.Background(), "r1")
	r.Weeks[0].Topics[0] = "mutated"

	again, _ := s.GetRoadmap(context.Background(), "r1")
	if again.Weeks[0].Topics[0] != "A" {
		t.Fatalf("callers must not be able to mutate stored roadmaps")
	}
}

func TestStoreDeleteScopesToOwner(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	if err := s.Delete(ctx, domain.KindRoadmap, "u2", "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetRoadmap(ctx, "r1"); err != nil {
		t.Fatalf("another owner's delete must not remove r1")
	}

	if err := s.DeleteAll(ctx, domain.KindRoadmap, "u1"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	mine, _ := s.ListRoadmaps(ctx, "u1")
	theirs, _ := s.ListRoadmaps(ctx, "u2")
	if len(mine) != 0 || len(theirs) != 1 {
		t.Fatalf("expected only u1 roadmaps removed, got %d/%d", len(mine), len(theirs))
	}

	if err := s.Delete(ctx, "course", "u1", "x"); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestStoreBacksLibrary(t *testing.T) {
	s := seededStore()
	library, err := app.LoadLibrary(context.Background(), "u1", s, s)
	if err != nil {
		t.Fatalf("load library: %v", err)
	}
	if library.Count(domain.KindRoadmap) != 2 || library.Count(domain.KindQuiz) != 1 || library.Count(domain.KindFlashcardSet) != 1 {
		t.Fatalf("unexpected library counts")
	}
}

func TestWorkspaceStoreLifecycle(t *testing.T) {
	store := NewWorkspaceStore()
	w := &app.Workspace{ID: "view-1"}

	store.Put(w)
	if got, ok := store.Get("view-1"); !ok || got != w {
		t.Fatalf("expected workspace present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one workspace")
	}

	store.Delete("view-1")
	if _, ok := store.Get("view-1"); ok {
		t.Fatalf("expected workspace removed")
	}
}

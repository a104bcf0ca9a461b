package app_test

import (
	"context"
	"errors"
	"testing"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/infra/memory"
)

func newTestService(store *fakeStore) (*app.StudyService, *instantGenerator[[]domain.Question]) {
	quizzes := &instantGenerator[[]domain.Question]{result: quizFor}
	return app.NewStudyService(app.Dependencies{
		Roadmaps:   store,
		Sets:       store,
		Deleter:    store,
		Workspaces: memory.NewWorkspaceStore(),
		Quizzes:    quizzes,
		Decks:      &instantGenerator[[]domain.Card]{result: cardsFor},
	}), quizzes
}

func TestOpenAndCloseWorkspace(t *testing.T) {
	service, _ := newTestService(newFakeStore(sampleRoadmap()))

	w, err := service.Open(context.Background(), "u1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if w.ID == "" || w.Study.ID() != w.ID {
		t.Fatalf("workspace and study should share the view id")
	}
	if got, err := service.Get(w.ID); err != nil || got != w {
		t.Fatalf("expected to find workspace, got %v", err)
	}

	service.Close(w.ID)
	if _, err := service.Get(w.ID); !errors.Is(err, domain.ErrViewNotFound) {
		t.Fatalf("expected ErrViewNotFound after close, got %v", err)
	}
}

func TestOpenRoadmapSelectsFirstTopic(t *testing.T) {
	service, quizzes := newTestService(newFakeStore(sampleRoadmap()))
	ctx := context.Background()

	w, _ := service.Open(ctx, "u1")
	w.Study.ShowTab(ctx, app.TabQuiz)

	if _, err := w.OpenRoadmap(ctx, "r1"); err != nil {
		t.Fatalf("open roadmap failed: %v", err)
	}
	w.Study.Wait()

	if got := w.Study.View().Topic; got != "Types" {
		t.Fatalf("expected Types selected, got %q", got)
	}
	if quizzes.Calls() != 0 {
		t.Fatalf("opening a roadmap must not generate before the explanation arrives, got %d", quizzes.Calls())
	}

	w.Study.Select(ctx, domain.Subject{Topic: "Types", Explanation: "Go's built-in types."})
	w.Study.Wait()
	subjects := quizzes.Subjects()
	if len(subjects) != 1 || subjects[0].Explanation != "Go's built-in types." {
		t.Fatalf("expected one quiz call with the explanation, got %+v", subjects)
	}
	if _, ok := w.Tracker(); !ok {
		t.Fatalf("tracker should be attached")
	}
	if _, err := w.OpenRoadmap(ctx, "other"); !errors.Is(err, domain.ErrRoadmapNotFound) {
		t.Fatalf("expected ErrRoadmapNotFound, got %v", err)
	}
}

func TestWorkspaceDeleteFlow(t *testing.T) {
	store := newFakeStore(sampleRoadmap())
	service, _ := newTestService(store)
	ctx := context.Background()

	w, _ := service.Open(ctx, "u1")
	if _, err := w.Deletes.RequestDelete(domain.KindRoadmap, false, "r1", "Go in a month"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := w.Deletes.Confirm(ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if w.Library.Count(domain.KindRoadmap) != 0 {
		t.Fatalf("roadmap should be removed from the library")
	}
	if got := store.Deletes(); len(got) != 1 || got[0] != "roadmap:r1" {
		t.Fatalf("unexpected deletes %v", got)
	}
}

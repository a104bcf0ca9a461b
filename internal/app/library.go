package app

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"studyplan-engine/internal/domain"
)

// LibrarySummary is what list views render for each collection.
type LibrarySummary struct {
	Roadmaps      []RoadmapSummary     `json:"roadmaps"`
	Quizzes       []domain.QuizSet     `json:"quizzes"`
	FlashcardSets []domain.FlashcardSet `json:"flashcardSets"`
}

// Library holds a learner's roadmaps, quizzes and flashcard sets in memory.
// It changes only on the initial load and when a confirmed delete commits.
type Library struct {
	mu       sync.RWMutex
	roadmaps []domain.Roadmap
	quizzes  []domain.QuizSet
	decks    []domain.FlashcardSet
}

func NewLibrary(roadmaps []domain.Roadmap, quizzes []domain.QuizSet, decks []domain.FlashcardSet) *Library {
	return &Library{roadmaps: roadmaps, quizzes: quizzes, decks: decks}
}

// LoadLibrary fetches the three collections for owner concurrently.
func LoadLibrary(ctx context.Context, owner string, roadmaps RoadmapStore, sets LibraryStore) (*Library, error) {
	var (
		rs []domain.Roadmap
		qs []domain.QuizSet
		fs []domain.FlashcardSet
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rs, err = roadmaps.ListRoadmaps(ctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		qs, err = sets.ListQuizSets(ctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		fs, err = sets.ListFlashcardSets(ctx, owner)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewLibrary(rs, qs, fs), nil
}

// Count returns the live size of the collection for kind.
func (l *Library) Count(kind domain.TargetKind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch kind {
	case domain.KindRoadmap:
		return len(l.roadmaps)
	case domain.KindQuiz:
		return len(l.quizzes)
	case domain.KindFlashcardSet:
		return len(l.decks)
	}
	return 0
}

// Remove drops the item with id from the collection for kind.
func (l *Library) Remove(kind domain.TargetKind, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch kind {
	case domain.KindRoadmap:
		var ok bool
		l.roadmaps, ok = removeByID(l.roadmaps, id, func(r domain.Roadmap) string { return r.ID })
		return ok
	case domain.KindQuiz:
		var ok bool
		l.quizzes, ok = removeByID(l.quizzes, id, func(q domain.QuizSet) string { return q.ID })
		return ok
	case domain.KindFlashcardSet:
		var ok bool
		l.decks, ok = removeByID(l.decks, id, func(f domain.FlashcardSet) string { return f.ID })
		return ok
	}
	return false
}

// Clear empties the collection for kind.
func (l *Library) Clear(kind domain.TargetKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch kind {
	case domain.KindRoadmap:
		l.roadmaps = nil
	case domain.KindQuiz:
		l.quizzes = nil
	case domain.KindFlashcardSet:
		l.decks = nil
	}
}

// Roadmap looks up a loaded roadmap by id.
func (l *Library) Roadmap(id string) (domain.Roadmap, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.roadmaps {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Roadmap{}, false
}

func (l *Library) Summary() LibrarySummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	summary := LibrarySummary{
		Roadmaps:      make([]RoadmapSummary, 0, len(l.roadmaps)),
		Quizzes:       append([]domain.QuizSet{}, l.quizzes...),
		FlashcardSets: append([]domain.FlashcardSet{}, l.decks...),
	}
	for _, r := range l.roadmaps {
		summary.Roadmaps = append(summary.Roadmaps, Summarize(r))
	}
	return summary
}

func removeByID[T any](items []T, id string, idOf func(T) string) ([]T, bool) {
	for i, item := range items {
		if idOf(item) == id {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}

package app_test

import (
	"context"
	"errors"
	"sync"

	"studyplan-engine/internal/domain"
)

// blockingGenerator counts calls and holds each one until release is closed.
type blockingGenerator[T any] struct {
	mu      sync.Mutex
	calls   []string
	release chan struct{}
	result  func(domain.Subject) (T, error)
}

func newBlockingGenerator[T any](result func(domain.Subject) (T, error)) *blockingGenerator[T] {
	return &blockingGenerator[T]{release: make(chan struct{}), result: result}
}

func (g *blockingGenerator[T]) Generate(ctx context.Context, subject domain.Subject) (T, error) {
	g.mu.Lock()
	g.calls = append(g.calls, subject.Key())
	release := g.release
	g.mu.Unlock()

	select {
	case <-release:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	return g.result(subject)
}

func (g *blockingGenerator[T]) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *blockingGenerator[T]) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.release)
}

// instantGenerator returns immediately; it never blocks.
type instantGenerator[T any] struct {
	mu       sync.Mutex
	calls    int
	subjects []domain.Subject
	result   func(domain.Subject) (T, error)
}

func (g *instantGenerator[T]) Generate(_ context.Context, subject domain.Subject) (T, error) {
	g.mu.Lock()
	g.calls++
	g.subjects = append(g.subjects, subject)
	g.mu.Unlock()
	return g.result(subject)
}

func (g *instantGenerator[T]) Subjects() []domain.Subject {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Subject(nil), g.subjects...)
}

func (g *instantGenerator[T]) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errStorage = errors.New("storage unavailable")

// fakeStore is an in-process RoadmapStore, LibraryStore and Deleter with
// switchable failures and call recording.
type fakeStore struct {
	mu          sync.Mutex
	roadmaps    map[string]domain.Roadmap
	quizzes     []domain.QuizSet
	decks       []domain.FlashcardSet
	failDelete  bool
	failUpdate  bool
	deletes     []string
	updateGate  chan struct{}
	updateCalls int
	// deleteStarted, when set, receives one value per delete call before it
	// waits on deleteGate.
	deleteStarted chan struct{}
	deleteGate    chan struct{}
}

func newFakeStore(roadmaps ...domain.Roadmap) *fakeStore {
	s := &fakeStore{roadmaps: make(map[string]domain.Roadmap)}
	for _, r := range roadmaps {
		s.roadmaps[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetRoadmap(_ context.Context, id string) (domain.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roadmaps[id]
	if !ok {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	return cloneRoadmap(r), nil
}

func (s *fakeStore) ListRoadmaps(_ context.Context, owner string) ([]domain.Roadmap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Roadmap
	for _, r := range s.roadmaps {
		if r.Owner == owner {
			out = append(out, cloneRoadmap(r))
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateProgress(_ context.Context, roadmapID, weekID string, topicIndex int, value bool) error {
	s.mu.Lock()
	s.updateCalls++
	gate := s.updateGate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate {
		return errStorage
	}
	r, ok := s.roadmaps[roadmapID]
	if !ok {
		return domain.ErrRoadmapNotFound
	}
	for i, w := range r.Weeks {
		if w.ID != weekID {
			continue
		}
		for len(w.Completion) < len(w.Topics) {
			w.Completion = append(w.Completion, false)
		}
		w.Completion[topicIndex] = value
		r.Weeks[i] = w
		s.roadmaps[roadmapID] = r
		return nil
	}
	return domain.ErrWeekNotFound
}

func (s *fakeStore) ListQuizSets(_ context.Context, owner string) ([]domain.QuizSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.QuizSet(nil), s.quizzes...), nil
}

func (s *fakeStore) ListFlashcardSets(_ context.Context, owner string) ([]domain.FlashcardSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FlashcardSet(nil), s.decks...), nil
}

func (s *fakeStore) Delete(_ context.Context, kind domain.TargetKind, owner, id string) error {
	s.waitDelete()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, string(kind)+":"+id)
	if s.failDelete {
		return errStorage
	}
	return nil
}

func (s *fakeStore) DeleteAll(_ context.Context, kind domain.TargetKind, owner string) error {
	s.waitDelete()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, string(kind)+":*")
	if s.failDelete {
		return errStorage
	}
	return nil
}

func (s *fakeStore) waitDelete() {
	s.mu.Lock()
	started, gate := s.deleteStarted, s.deleteGate
	s.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
}

func (s *fakeStore) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

func cloneRoadmap(r domain.Roadmap) domain.Roadmap {
	weeks := make([]domain.Week, len(r.Weeks))
	for i, w := range r.Weeks {
		w.Topics = append([]string(nil), w.Topics...)
		w.Completion = append([]bool(nil), w.Completion...)
		weeks[i] = w
	}
	r.Weeks = weeks
	return r
}

func sampleRoadmap() domain.Roadmap {
	return domain.Roadmap{
		ID:    "r1",
		Owner: "u1",
		Title: "Go in a month",
		Weeks: []domain.Week{
			{ID: "w2", Position: 2, Title: "Concurrency", Topics: []string{"Goroutines", "Channels"}},
			{ID: "w1", Position: 1, Title: "Basics", Topics: []string{"Types", "Slices", "Maps"}, Completion: []bool{true}},
		},
	}
}

package memory

import (
	"context"
	"sort"
	"sync"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/progress"
)

// Store keeps roadmaps, quiz sets and flashcard sets in process. It satisfies
// app.RoadmapStore, app.LibraryStore and app.Deleter.
type Store struct {
	mu       sync.RWMutex
	roadmaps map[string]domain.Roadmap
	quizzes  map[string]domain.QuizSet
	decks    map[string]domain.FlashcardSet
}

func NewStore() *Store {
	return &Store{
		roadmaps: make(map[string]domain.Roadmap),
		quizzes:  make(map[string]domain.QuizSet),
		decks:    make(map[string]domain.FlashcardSet),
	}
}

func (s *Store) PutRoadmap(r domain.Roadmap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roadmaps[r.ID] = cloneRoadmap(r)
}

func (s *Store) PutQuizSet(q domain.QuizSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q
}

func (s *Store) PutFlashcardSet(f domain.FlashcardSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[f.ID] = f
}

func (s *Store) GetRoadmap(_ context.Context, id string) (domain.Roadmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roadmaps[id]
	if !ok {
		return domain.Roadmap{}, domain.ErrRoadmapNotFound
	}
	return cloneRoadmap(r), nil
}

func (s *Store) ListRoadmaps(_ context.Context, owner string) ([]domain.Roadmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Roadmap, 0)
	for _, r := range s.roadmaps {
		if r.Owner == owner {
			out = append(out, cloneRoadmap(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProgress(_ context.Context, roadmapID, weekID string, topicIndex int, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roadmaps[roadmapID]
	if !ok {
		return domain.ErrRoadmapNotFound
	}
	for i, w := range r.Weeks {
		if w.ID != weekID {
			continue
		}
		w = progress.Pad(w)
		if topicIndex < 0 || topicIndex >= len(w.Completion) {
			return domain.ErrTopicOutOfRange
		}
		w.Completion[topicIndex] = value
		r.Weeks[i] = w
		return nil
	}
	return domain.ErrWeekNotFound
}

func (s *Store) ListQuizSets(_ context.Context, owner string) ([]domain.QuizSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizSet, 0)
	for _, q := range s.quizzes {
		if q.Owner == owner {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListFlashcardSets(_ context.Context, owner string) ([]domain.FlashcardSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.FlashcardSet, 0)
	for _, f := range s.decks {
		if f.Owner == owner {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes one item owned by owner. Unknown ids are not an error.
func (s *Store) Delete(_ context.Context, kind domain.TargetKind, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.KindRoadmap:
		if r, ok := s.roadmaps[id]; ok && r.Owner == owner {
			delete(s.roadmaps, id)
		}
	case domain.KindQuiz:
		if q, ok := s.quizzes[id]; ok && q.Owner == owner {
			delete(s.quizzes, id)
		}
	case domain.KindFlashcardSet:
		if f, ok := s.decks[id]; ok && f.Owner == owner {
			delete(s.decks, id)
		}
	default:
		return domain.ErrUnknownKind
	}
	return nil
}

// DeleteAll removes every item of kind owned by owner.
func (s *Store) DeleteAll(_ context.Context, kind domain.TargetKind, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.KindRoadmap:
		for id, r := range s.roadmaps {
			if r.Owner == owner {
				delete(s.roadmaps, id)
			}
		}
	case domain.KindQuiz:
		for id, q := range s.quizzes {
			if q.Owner == owner {
				delete(s.quizzes, id)
			}
		}
	case domain.KindFlashcardSet:
		for id, f := range s.decks {
			if f.Owner == owner {
				delete(s.decks, id)
			}
		}
	default:
		return domain.ErrUnknownKind
	}
	return nil
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

package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
	"studyplan-engine/internal/monitoring"
)

// RoadmapStore reads roadmaps and persists per-topic completion.
type RoadmapStore interface {
	GetRoadmap(ctx context.Context, id string) (domain.Roadmap, error)
	ListRoadmaps(ctx context.Context, owner string) ([]domain.Roadmap, error)
	UpdateProgress(ctx context.Context, roadmapID, weekID string, topicIndex int, value bool) error
}

// LibraryStore lists a learner's saved quizzes and flashcard sets.
type LibraryStore interface {
	ListQuizSets(ctx context.Context, owner string) ([]domain.QuizSet, error)
	ListFlashcardSets(ctx context.Context, owner string) ([]domain.FlashcardSet, error)
}

// Deleter removes persisted items. It is only ever called by Coordinator.Confirm.
type Deleter interface {
	Delete(ctx context.Context, kind domain.TargetKind, owner, id string) error
	DeleteAll(ctx context.Context, kind domain.TargetKind, owner string) error
}

// WorkspaceRepository abstracts where open workspaces live (in-memory, Redis, etc).
type WorkspaceRepository interface {
	Put(w *Workspace)
	Get(id string) (*Workspace, bool)
	Delete(id string)
}

type (
	QuizGenerator = Generator[[]domain.Question]
	DeckGenerator = Generator[[]domain.Card]
)

// Dependencies bundles the ports StudyService needs.
type Dependencies struct {
	Roadmaps   RoadmapStore
	Sets       LibraryStore
	Deleter    Deleter
	Workspaces WorkspaceRepository
	Quizzes    QuizGenerator
	Decks      DeckGenerator
	Logger     *zap.Logger
}

// StudyService opens and closes learner workspaces.
type StudyService struct {
	deps Dependencies
	log  *zap.Logger
}

func NewStudyService(deps Dependencies) *StudyService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &StudyService{deps: deps, log: log}
}

// Open loads owner's library and returns a fresh workspace for one view.
func (s *StudyService) Open(ctx context.Context, owner string) (*Workspace, error) {
	library, err := LoadLibrary(ctx, owner, s.deps.Roadmaps, s.deps.Sets)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := s.log.With(zap.String("owner", owner))
	w := &Workspace{
		ID:      id,
		Owner:   owner,
		Library: library,
		Deletes: NewCoordinator(owner, library, s.deps.Deleter, log),
		Study:   NewStudy(id, s.deps.Quizzes, s.deps.Decks, log),
		store:   s.deps.Roadmaps,
		log:     log,
	}
	s.deps.Workspaces.Put(w)
	monitoring.OpenViews.Inc()
	s.log.Info("workspace opened", zap.String("view", id), zap.String("owner", owner))
	return w, nil
}

// Get returns an open workspace.
func (s *StudyService) Get(id string) (*Workspace, error) {
	w, ok := s.deps.Workspaces.Get(id)
	if !ok {
		return nil, domain.ErrViewNotFound
	}
	return w, nil
}

// Close releases a workspace once its view goes away.
func (s *StudyService) Close(id string) {
	if _, ok := s.deps.Workspaces.Get(id); !ok {
		return
	}
	s.deps.Workspaces.Delete(id)
	monitoring.OpenViews.Dec()
	s.log.Info("workspace closed", zap.String("view", id))
}

// Workspace is everything one open view works with.
type Workspace struct {
	ID      string
	Owner   string
	Library *Library
	Deletes *Coordinator
	Study   *Study

	store RoadmapStore
	log   *zap.Logger

	mu      sync.Mutex
	tracker *Tracker
}

// OpenRoadmap starts tracking roadmap id and selects its first topic for study.
// The topic carries no explanation yet, so nothing is generated until the
// client selects it again with one.
func (w *Workspace) OpenRoadmap(ctx context.Context, id string) (*Tracker, error) {
	if _, ok := w.Library.Roadmap(id); !ok {
		return nil, domain.ErrRoadmapNotFound
	}
	t, err := OpenTracker(ctx, w.store, id, w.log)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.tracker = t
	w.mu.Unlock()

	if topic, ok := t.Topic(); ok {
		w.Study.Select(ctx, domain.Subject{Topic: topic})
	}
	return t, nil
}

// Tracker returns the roadmap tracker opened last, if any.
func (w *Workspace) Tracker() (*Tracker, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tracker, w.tracker != nil
}

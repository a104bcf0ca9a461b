package app

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"studyplan-engine/internal/domain"
)

// Tab is the panel of the study view currently on screen. Generation only
// runs for the visible assessment tab.
type Tab string

const (
	TabContent    Tab = "content"
	TabQuiz       Tab = "quiz"
	TabFlashcards Tab = "flashcards"
)

const noContentNotice = "No content available yet. Try generating again in a moment."

// StudyView is the full view-state snapshot pushed to subscribers.
type StudyView struct {
	ViewID      string   `json:"viewId"`
	Topic       string   `json:"topic,omitempty"`
	Tab         Tab      `json:"tab"`
	Quiz        QuizView `json:"quiz"`
	QuizLoading bool     `json:"quizLoading"`
	Deck        DeckView `json:"deck"`
	DeckLoading bool     `json:"deckLoading"`
	Notice      string   `json:"notice,omitempty"`
}

// Study is one learner view: the selected subject, its quiz and flashcard
// sessions, and the gates that fill them.
type Study struct {
	id   string
	log  *zap.Logger
	quiz *Quiz
	deck *Deck

	quizGate *Gate[[]domain.Question]
	deckGate *Gate[[]domain.Card]

	mu          sync.RWMutex
	subject     domain.Subject
	tab         Tab
	quizLoading bool
	deckLoading bool
	notice      string
	subscribers map[chan StudyView]struct{}
}

func NewStudy(id string, quizzes QuizGenerator, decks DeckGenerator, log *zap.Logger) *Study {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Study{
		id:          id,
		log:         log.With(zap.String("view", id)),
		quiz:        NewQuiz(nil),
		deck:        NewDeck(nil),
		tab:         TabContent,
		subscribers: make(map[chan StudyView]struct{}),
	}
	s.quizGate = NewGate[[]domain.Question]("quiz", quizzes, GateHooks[[]domain.Question]{
		Started: func(domain.Subject) { s.setLoading(TabQuiz, true) },
		Loaded: func(_ domain.Subject, questions []domain.Question) {
			s.quiz.Load(questions)
			s.setLoading(TabQuiz, false)
		},
		Failed: func(_ domain.Subject, err error) { s.fail(TabQuiz, err) },
		// Loading stays on while a call for the previous subject is out.
		Reset: func(domain.Subject) { s.quiz.Reset() },
		Stale: func(ctx context.Context, _ domain.Subject) { s.resume(ctx, TabQuiz) },
	}, s.log)
	s.deckGate = NewGate[[]domain.Card]("flashcards", decks, GateHooks[[]domain.Card]{
		Started: func(domain.Subject) { s.setLoading(TabFlashcards, true) },
		Loaded: func(_ domain.Subject, cards []domain.Card) {
			s.deck.Load(cards)
			s.setLoading(TabFlashcards, false)
		},
		Failed: func(_ domain.Subject, err error) { s.fail(TabFlashcards, err) },
		// Loading stays on while a call for the previous subject is out.
		Reset: func(domain.Subject) { s.deck.Reset() },
		Stale: func(ctx context.Context, _ domain.Subject) { s.resume(ctx, TabFlashcards) },
	}, s.log)
	return s
}

func (s *Study) ID() string { return s.id }

// Select makes subject the one being studied. Switching subjects resets both
// sessions before the visible tab asks for new content.
func (s *Study) Select(ctx context.Context, subject domain.Subject) {
	s.mu.Lock()
	s.subject = subject
	s.notice = ""
	s.mu.Unlock()

	s.quizGate.Change(subject)
	s.deckGate.Change(subject)
	s.activate(ctx)
	s.publish()
}

// ShowTab switches the visible panel and activates its gate.
func (s *Study) ShowTab(ctx context.Context, tab Tab) {
	s.mu.Lock()
	s.tab = tab
	s.mu.Unlock()

	s.activate(ctx)
	s.publish()
}

// Regenerate asks the visible tab for fresh content for the current subject,
// dropping what was generated for it before. After a failure it retries.
func (s *Study) Regenerate(ctx context.Context) {
	s.mu.Lock()
	s.notice = ""
	subject, tab := s.subject, s.tab
	s.mu.Unlock()

	if subject.Ready() {
		switch tab {
		case TabQuiz:
			s.quizGate.Forget(ctx, subject)
		case TabFlashcards:
			s.deckGate.Forget(ctx, subject)
		}
	}
	s.activate(ctx)
	s.publish()
}

// resume runs once a call for an abandoned subject has settled, so the
// subject selected in the meantime gets its content.
func (s *Study) resume(ctx context.Context, tab Tab) {
	s.setLoading(tab, false)
	if ctx.Err() != nil {
		return
	}
	s.activate(ctx)
	s.publish()
}

func (s *Study) activate(ctx context.Context) {
	s.mu.RLock()
	subject, tab := s.subject, s.tab
	s.mu.RUnlock()

	s.quizGate.Activate(ctx, subject, tab == TabQuiz)
	s.deckGate.Activate(ctx, subject, tab == TabFlashcards)
}

func (s *Study) SelectAnswer(questionIndex int, letter string) error {
	if err := s.quiz.SelectAnswer(questionIndex, letter); err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *Study) SubmitQuiz() (Result, error) {
	res, err := s.quiz.Submit()
	if err != nil {
		return Result{}, err
	}
	s.publish()
	return res, nil
}

func (s *Study) RetryQuiz() {
	s.quiz.Retry()
	s.publish()
}

func (s *Study) DismissResults() {
	s.quiz.DismissResults()
	s.publish()
}

func (s *Study) NextCard() {
	s.deck.Next()
	s.publish()
}

func (s *Study) PreviousCard() {
	s.deck.Previous()
	s.publish()
}

func (s *Study) FlipCard() {
	s.deck.ToggleReveal()
	s.publish()
}

func (s *Study) JumpToCard(index int) bool {
	if !s.deck.JumpTo(index) {
		return false
	}
	s.publish()
	return true
}

// Wait blocks until both gates are idle.
func (s *Study) Wait() {
	s.quizGate.Wait()
	s.deckGate.Wait()
}

func (s *Study) View() StudyView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of view snapshots starting with the current one.
// The caller must invoke cancel to release it.
func (s *Study) Subscribe() (<-chan StudyView, func()) {
	ch := make(chan StudyView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Study) setLoading(tab Tab, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tab {
	case TabQuiz:
		s.quizLoading = loading
	case TabFlashcards:
		s.deckLoading = loading
	}
	s.broadcastLocked()
}

func (s *Study) fail(tab Tab, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tab {
	case TabQuiz:
		s.quizLoading = false
	case TabFlashcards:
		s.deckLoading = false
	}
	s.notice = noContentNotice
	if !errors.Is(err, domain.ErrContentNotFound) {
		s.log.Debug("generation error hidden behind notice", zap.String("tab", string(tab)), zap.Error(err))
	}
	s.broadcastLocked()
}

func (s *Study) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastLocked()
}

func (s *Study) broadcastLocked() {
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest snapshot; only the latest view matters.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *Study) snapshotLocked() StudyView {
	return StudyView{
		ViewID:      s.id,
		Topic:       s.subject.Key(),
		Tab:         s.tab,
		Quiz:        s.quiz.View(),
		QuizLoading: s.quizLoading,
		Deck:        s.deck.View(),
		DeckLoading: s.deckLoading,
		Notice:      s.notice,
	}
}

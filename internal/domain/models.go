package domain

import (
	"strings"
	"time"
)

// Roadmap is a learner's multi-week study plan.
type Roadmap struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Goal      string    `json:"goal"`
	Weeks     []Week    `json:"weeks"`
	CreatedAt time.Time `json:"createdAt"`
}

// Week holds the topics of one roadmap week and a completion flag per topic.
// Completion always has the same length as Topics once normalized.
type Week struct {
	ID         string   `json:"id"`
	Position   int      `json:"week"`
	Title      string   `json:"title"`
	Topics     []string `json:"topics"`
	Completion []bool   `json:"progress"`
}

// Subject is the generation key for an assessment: a topic plus its explanation.
type Subject struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

// Key identifies the subject for duplicate suppression. Only the topic text
// participates; a revisited topic with a new explanation maps to the same key.
func (s Subject) Key() string {
	return strings.TrimSpace(s.Topic)
}

// Ready reports whether the subject can be generated for: content is only
// produced once the topic's explanation has arrived.
func (s Subject) Ready() bool {
	return s.Key() != "" && strings.TrimSpace(s.Explanation) != ""
}

// Question models a generated MCQ question. Answer holds the literal text of
// the correct option.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Card is a single flashcard.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizSet is a saved quiz in the learner's library.
type QuizSet struct {
	ID        string     `json:"id"`
	Owner     string     `json:"owner"`
	Title     string     `json:"title"`
	Questions []Question `json:"quiz"`
	CreatedAt time.Time  `json:"createdAt"`
}

// FlashcardSet is a saved deck in the learner's library.
type FlashcardSet struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	Cards     []Card    `json:"flashcards"`
	CreatedAt time.Time `json:"createdAt"`
}

// TargetKind names the collection a delete acts on.
type TargetKind string

const (
	KindRoadmap      TargetKind = "roadmap"
	KindQuiz         TargetKind = "quiz"
	KindFlashcardSet TargetKind = "flashcard-set"
)

// Valid reports whether k is one of the known kinds.
func (k TargetKind) Valid() bool {
	switch k {
	case KindRoadmap, KindQuiz, KindFlashcardSet:
		return true
	}
	return false
}

// Noun returns the display noun for k, pluralized when n != 1.
func (k TargetKind) Noun(n int) string {
	var singular, plural string
	switch k {
	case KindRoadmap:
		singular, plural = "roadmap", "roadmaps"
	case KindQuiz:
		singular, plural = "quiz", "quizzes"
	case KindFlashcardSet:
		singular, plural = "flashcard set", "flashcard sets"
	default:
		singular, plural = "item", "items"
	}
	if n == 1 {
		return singular
	}
	return plural
}

// DeleteRequest is the pending-confirmation value built when a delete
// affordance is activated. It is never persisted.
type DeleteRequest struct {
	Kind         TargetKind `json:"kind"`
	All          bool       `json:"all"`
	TargetID     string     `json:"targetId,omitempty"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	ConfirmLabel string     `json:"confirmLabel"`
}

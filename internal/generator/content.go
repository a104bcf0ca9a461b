package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"studyplan-engine/internal/domain"
)

const quizPrompt = `You are a quiz generator. Create 5 multiple-choice questions about the topic below, based on the explanation.

STRICT REQUIREMENTS:
1. Each question has exactly 4 options.
2. "answer" must repeat the text of the correct option exactly.
3. Do not add knowledge unrelated to the topic.

OUTPUT FORMAT (JSON only, no markdown or extra text):
{
  "quiz": [
    {"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}
  ]
}

topic: %s
explanation: %s`

const deckPrompt = `You are a flashcard generator. Create 3-5 flashcards about the topic below, based on the explanation.

STRICT REQUIREMENTS:
1. Each flashcard has a "front" (the question) and a "back" (the answer).
2. The question must be clear and the answer concise.

OUTPUT FORMAT (JSON only, no markdown or extra text):
{
  "flashcards": [
    {"front": "...", "back": "..."}
  ]
}

topic: %s
explanation: %s`

// QuizGenerator produces multiple-choice questions for a subject.
type QuizGenerator struct {
	client *Client
}

func NewQuizGenerator(client *Client) *QuizGenerator {
	return &QuizGenerator{client: client}
}

func (g *QuizGenerator) Generate(ctx context.Context, subject domain.Subject) ([]domain.Question, error) {
	raw, err := g.client.complete(ctx, fmt.Sprintf(quizPrompt, subject.Key(), subject.Explanation))
	if err != nil {
		return nil, fmt.Errorf("generate quiz for %q: %w", subject.Key(), err)
	}
	return ParseQuiz(raw)
}

// DeckGenerator produces flashcards for a subject.
type DeckGenerator struct {
	client *Client
}

func NewDeckGenerator(client *Client) *DeckGenerator {
	return &DeckGenerator{client: client}
}

func (g *DeckGenerator) Generate(ctx context.Context, subject domain.Subject) ([]domain.Card, error) {
	raw, err := g.client.complete(ctx, fmt.Sprintf(deckPrompt, subject.Key(), subject.Explanation))
	if err != nil {
		return nil, fmt.Errorf("generate flashcards for %q: %w", subject.Key(), err)
	}
	return ParseDeck(raw)
}

// ParseQuiz decodes a {"quiz": [...]} payload. Questions without a prompt or
// options are dropped; an empty result is domain.ErrContentNotFound.
func ParseQuiz(raw string) ([]domain.Question, error) {
	var payload struct {
		Quiz []domain.Question `json:"quiz"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	questions := make([]domain.Question, 0, len(payload.Quiz))
	for _, q := range payload.Quiz {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) == 0 {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, domain.ErrContentNotFound
	}
	return questions, nil
}

// ParseDeck decodes a {"flashcards": [...]} payload, dropping cards with an
// empty front.
func ParseDeck(raw string) ([]domain.Card, error) {
	var payload struct {
		Flashcards []domain.Card `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	cards := make([]domain.Card, 0, len(payload.Flashcards))
	for _, c := range payload.Flashcards {
		if strings.TrimSpace(c.Front) == "" {
			continue
		}
		cards = append(cards, c)
	}
	if len(cards) == 0 {
		return nil, domain.ErrContentNotFound
	}
	return cards, nil
}

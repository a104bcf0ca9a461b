package app

import (
	"fmt"
	"strings"
	"sync"

	"studyplan-engine/internal/domain"
)

// Result is the outcome of a quiz submission.
type Result struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// QuestionView is a question as the presentation layer renders it. Correct is
// filled in only after submission.
type QuestionView struct {
	Prompt   string   `json:"question"`
	Options  []string `json:"options"`
	Selected string   `json:"selected,omitempty"`
	Correct  string   `json:"correct,omitempty"`
}

// QuizView is a snapshot of a quiz session.
type QuizView struct {
	Questions      []QuestionView `json:"questions"`
	Submitted      bool           `json:"submitted"`
	Score          *int           `json:"score,omitempty"`
	Total          int            `json:"total"`
	ResultsVisible bool           `json:"resultsVisible"`
	Summary        string         `json:"summary,omitempty"`
}

// Quiz holds answer state for one generated question set. Answers are keyed
// by question index and hold the positional option letter.
type Quiz struct {
	mu             sync.RWMutex
	questions      []domain.Question
	answers        map[int]string
	submitted      bool
	score          int
	resultsVisible bool
}

func NewQuiz(questions []domain.Question) *Quiz {
	q := &Quiz{}
	q.Load(questions)
	return q
}

// Load replaces the question set and clears all answer state.
func (q *Quiz) Load(questions []domain.Question) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.questions = append([]domain.Question(nil), questions...)
	q.resetLocked()
}

// Reset drops the question set together with the answer state.
func (q *Quiz) Reset() {
	q.Load(nil)
}

// SelectAnswer records letter for the question at index. The last selection
// wins; letters are not range checked and simply never score when invalid.
func (q *Quiz) SelectAnswer(index int, letter string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.submitted {
		return domain.ErrQuizSubmitted
	}
	q.answers[index] = letter
	return nil
}

// Submit scores the quiz and opens the results panel. It succeeds once per
// attempt; Retry starts a new attempt.
func (q *Quiz) Submit() (Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.submitted {
		return Result{}, domain.ErrQuizSubmitted
	}
	q.score = scoreAnswers(q.questions, q.answers)
	q.submitted = true
	q.resultsVisible = true
	return Result{Score: q.score, Total: len(q.questions)}, nil
}

// Retry clears answers and score but keeps the question set.
func (q *Quiz) Retry() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetLocked()
}

// DismissResults hides the results panel; the score stays.
func (q *Quiz) DismissResults() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resultsVisible = false
}

// Len returns the number of loaded questions.
func (q *Quiz) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.questions)
}

func (q *Quiz) View() QuizView {
	q.mu.RLock()
	defer q.mu.RUnlock()

	questions := make([]QuestionView, 0, len(q.questions))
	for i, question := range q.questions {
		qv := QuestionView{
			Prompt:   question.Prompt,
			Options:  append([]string(nil), question.Options...),
			Selected: q.answers[i],
		}
		if q.submitted {
			qv.Correct = correctLetter(question)
		}
		questions = append(questions, qv)
	}

	view := QuizView{
		Questions:      questions,
		Submitted:      q.submitted,
		Total:          len(q.questions),
		ResultsVisible: q.resultsVisible,
	}
	if q.submitted {
		score := q.score
		view.Score = &score
		view.Summary = fmt.Sprintf("You scored %d out of %d", score, len(q.questions))
	}
	return view
}

func (q *Quiz) resetLocked() {
	q.answers = make(map[int]string)
	q.submitted = false
	q.score = 0
	q.resultsVisible = false
}

// OptionLetter returns the letter shown next to the option at index i.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

func letterIndex(letter string) (int, bool) {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, false
	}
	return int(letter[0] - 'A'), true
}

func scoreAnswers(questions []domain.Question, answers map[int]string) int {
	score := 0
	for i, question := range questions {
		if isCorrect(question, answers[i]) {
			score++
		}
	}
	return score
}

// isCorrect maps letter back to option text by position and compares it with
// the stored answer text.
func isCorrect(question domain.Question, letter string) bool {
	idx, ok := letterIndex(letter)
	if !ok || idx >= len(question.Options) {
		return false
	}
	return strings.TrimSpace(question.Options[idx]) == strings.TrimSpace(question.Answer)
}

func correctLetter(question domain.Question) string {
	for i, opt := range question.Options {
		if strings.TrimSpace(opt) == strings.TrimSpace(question.Answer) {
			return OptionLetter(i)
		}
	}
	return ""
}

package app

import (
	"sync"

	"studyplan-engine/internal/domain"
)

// CardView is the card under the cursor. Back is empty until revealed.
type CardView struct {
	Front string `json:"front"`
	Back  string `json:"back,omitempty"`
}

// DeckView is a snapshot of a flashcard session.
type DeckView struct {
	Card     *CardView `json:"card,omitempty"`
	Index    int       `json:"index"`
	Total    int       `json:"total"`
	Revealed bool      `json:"revealed"`
}

// Deck walks a flashcard set. Navigation wraps around and always hides the
// back of the new card.
type Deck struct {
	mu       sync.RWMutex
	cards    []domain.Card
	index    int
	revealed bool
}

func NewDeck(cards []domain.Card) *Deck {
	d := &Deck{}
	d.Load(cards)
	return d
}

// Load replaces the cards and rewinds to the first one.
func (d *Deck) Load(cards []domain.Card) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = append([]domain.Card(nil), cards...)
	d.index = 0
	d.revealed = false
}

// Reset empties the deck.
func (d *Deck) Reset() {
	d.Load(nil)
}

func (d *Deck) Next() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return
	}
	d.index = (d.index + 1) % len(d.cards)
	d.revealed = false
}

func (d *Deck) Previous() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return
	}
	d.index = (d.index - 1 + len(d.cards)) % len(d.cards)
	d.revealed = false
}

// ToggleReveal flips the card.
func (d *Deck) ToggleReveal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revealed = !d.revealed
}

// Reveal shows the back of the current card.
func (d *Deck) Reveal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revealed = true
}

// JumpTo moves straight to index. Out-of-range indexes are ignored.
func (d *Deck) JumpTo(index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.cards) {
		return false
	}
	d.index = index
	d.revealed = false
	return true
}

func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.cards)
}

func (d *Deck) View() DeckView {
	d.mu.RLock()
	defer d.mu.RUnlock()

	view := DeckView{Index: d.index, Total: len(d.cards), Revealed: d.revealed}
	if len(d.cards) > 0 {
		card := d.cards[d.index]
		cv := &CardView{Front: card.Front}
		if d.revealed {
			cv.Back = card.Back
		}
		view.Card = cv
	}
	return view
}

package domain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Board is an ordered collection of cards with its own card ID counter.
//
// CardSequence is the ID the next added card will receive. It only ever
// grows, so IDs of deleted cards are never handed out again.
type Board struct {
	ID           string `json:"id"`
	CardSequence int    `json:"cardSequence"`
	Cards        []Card `json:"cards"`
}

// NewBoard creates an empty board. An empty id is replaced by a random UUID.
func NewBoard(id string) *Board {
	if id == "" {
		id = uuid.NewString()
	}
	return &Board{
		ID:           id,
		CardSequence: 0,
		Cards:        []Card{},
	}
}

// Validate checks the board invariants: a non-empty ID, unique card IDs,
// and every card ID below the sequence.
func (b *Board) Validate() error {
	if b.ID == "" {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if b.CardSequence < 0 {
		return NewValidationError("cardSequence", "cannot be negative", ErrValidation)
	}

	seen := make(map[int]struct{}, len(b.Cards))
	for _, c := range b.Cards {
		if err := c.Validate(); err != nil {
			return err
		}
		if c.ID >= b.CardSequence {
			return NewValidationError(
				"cards",
				fmt.Sprintf("card %d is not below sequence %d", c.ID, b.CardSequence),
				ErrInvalidID,
			)
		}
		if _, dup := seen[c.ID]; dup {
			return NewValidationError("cards", fmt.Sprintf("duplicate card id %d", c.ID), ErrInvalidID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// AddCard mints a card from the current sequence, advances the sequence and
// appends the card.
func (b *Board) AddCard(content string) (Card, error) {
	if err := ValidateContent(content); err != nil {
		return Card{}, err
	}

	card := Card{ID: b.CardSequence, Content: content}
	b.CardSequence++
	b.Cards = append(b.Cards, card)
	return card, nil
}

// UpdateCard replaces the content of the card with the given ID. It reports
// false when no such card exists, leaving the board untouched.
func (b *Board) UpdateCard(id int, content string) (bool, error) {
	if err := ValidateContent(content); err != nil {
		return false, err
	}

	i := b.cardIndex(id)
	if i < 0 {
		return false, nil
	}
	b.Cards[i].Content = content
	return true, nil
}

// DeleteCard removes the first card with the given ID and reports whether
// anything was removed. The sequence is not rewound.
func (b *Board) DeleteCard(id int) bool {
	i := b.cardIndex(id)
	if i < 0 {
		return false
	}
	b.Cards = slices.Delete(b.Cards, i, i+1)
	return true
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cards := make([]Card, len(b.Cards))
	copy(cards, b.Cards)
	return &Board{
		ID:           b.ID,
		CardSequence: b.CardSequence,
		Cards:        cards,
	}
}

func (b *Board) cardIndex(id int) int {
	return slices.IndexFunc(b.Cards, func(c Card) bool { return c.ID == id })
}

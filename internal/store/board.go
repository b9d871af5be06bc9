package store

import (
	"context"

	"github.com/phrazzld/leancoffee-api/internal/domain"
)

// BoardStore defines the interface for board persistence.
//
// Implementations must make AddCard atomic with respect to other mutations of
// the same board: two concurrent calls must never mint the same card ID.
// Boards and cards returned to callers are copies.
type BoardStore interface {
	// Create stores a new empty board. An empty id asks the store to assign a
	// fresh unique identifier.
	// Returns ErrDuplicateBoardID if a board with the id already exists.
	Create(ctx context.Context, id string) (*domain.Board, error)

	// GetAll returns every stored board. Order is unspecified.
	GetAll(ctx context.Context) ([]*domain.Board, error)

	// Get returns the board with the given id. A missing board is reported
	// through the boolean, never as an error.
	Get(ctx context.Context, id string) (*domain.Board, bool, error)

	// AddCard appends a card whose ID is the board's current sequence and
	// advances the sequence.
	// Returns ErrBoardNotFound if the board does not exist.
	AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error)

	// UpdateCard replaces the content of an existing card.
	// Returns ErrBoardNotFound or ErrCardNotFound.
	UpdateCard(ctx context.Context, boardID string, cardID int, content string) error

	// DeleteCard removes a card. Deleting a card that does not exist is a
	// no-op and succeeds.
	// Returns ErrBoardNotFound if the board does not exist.
	DeleteCard(ctx context.Context, boardID string, cardID int) error
}

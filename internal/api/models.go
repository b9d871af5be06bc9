package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/leancoffee-api/internal/domain"
)

// BoardID is a board identifier as accepted in request bodies. Clients may
// send it as a JSON string or a JSON number; numbers keep their literal
// decimal text, so 12345 and "12345" name the same board.
type BoardID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *BoardID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = BoardID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = BoardID(n.String())
		return nil
	}

	return fmt.Errorf("board id must be a string or a number, got %s", data)
}

// NewBoardRequest defines the payload for creating a board.
// Leave ID empty to have one assigned.
type NewBoardRequest struct {
	ID BoardID `json:"id" validate:"max=200"`
}

// NewCardRequest defines the payload for adding a card to a board.
type NewCardRequest struct {
	Content string `json:"content" validate:"required"`
}

// UpdateCardRequest defines the payload for replacing a card's content.
type UpdateCardRequest struct {
	Content string `json:"content" validate:"required"`
}

// CardResponse represents the response data for a card
type CardResponse struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// BoardResponse represents the response data for a board
type BoardResponse struct {
	ID           string         `json:"id"`
	CardSequence int            `json:"cardSequence"`
	Cards        []CardResponse `json:"cards"`
}

func cardToResponse(card domain.Card) CardResponse {
	return CardResponse{ID: card.ID, Content: card.Content}
}

func boardToResponse(board *domain.Board) BoardResponse {
	cards := make([]CardResponse, 0, len(board.Cards))
	for _, c := range board.Cards {
		cards = append(cards, cardToResponse(c))
	}
	return BoardResponse{
		ID:           board.ID,
		CardSequence: board.CardSequence,
		Cards:        cards,
	}
}

package domain

import "strings"

// Card is a piece of text content on a board. Its ID is unique within the
// owning board only and is never reassigned once used.
type Card struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
}

// ValidateContent checks that card content is present and not blank.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return NewValidationError("content", "is missing or empty", ErrEmptyContent)
	}
	return nil
}

// Validate checks if the Card has valid data.
func (c Card) Validate() error {
	if c.ID < 0 {
		return NewValidationError("id", "cannot be negative", ErrInvalidID)
	}
	return ValidateContent(c.Content)
}

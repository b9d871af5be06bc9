package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/leancoffee-api/internal/api/shared"
	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// Error codes returned in the code field of error responses.
const (
	CodeBoardNotFound   = "board.not.found"
	CodeCardNotFound    = "card.not.found"
	CodeContentMissing  = "card.content.missing.or.empty"
	CodeBoardIDConflict = "board.id.conflict"
	CodeInvalidBody     = "request.body.invalid"
	CodeInternal        = "internal.error"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToCode maps internal errors to the machine readable error code.
func MapErrorToCode(err error) string {
	switch {
	case errors.Is(err, store.ErrBoardNotFound):
		return CodeBoardNotFound

	case errors.Is(err, store.ErrCardNotFound):
		return CodeCardNotFound

	case errors.Is(err, store.ErrDuplicateBoardID):
		return CodeBoardIDConflict

	case errors.Is(err, domain.ErrEmptyContent):
		return CodeContentMissing

	case errors.Is(err, domain.ErrValidation):
		return CodeInvalidBody

	default:
		return CodeInternal
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrBoardNotFound):
		return "Board not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrDuplicateBoardID):
		return "A board with this ID already exists"

	case errors.Is(err, domain.ErrEmptyContent):
		return "Card content is missing or empty"

	case errors.Is(err, domain.ErrValidation):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// replaces the generic safe message; codes and status always come from err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" || status == http.StatusInternalServerError {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, MapErrorToCode(err), message, err, opts...)
}

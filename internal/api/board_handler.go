package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/leancoffee-api/internal/api/shared"
	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"github.com/phrazzld/leancoffee-api/internal/redact"
	"github.com/phrazzld/leancoffee-api/internal/service"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

const maxRequestBodyBytes = 1 << 20

// BoardHandler handles board and card HTTP requests
type BoardHandler struct {
	boards service.BoardService
	logger *slog.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boards service.BoardService, logger *slog.Logger) *BoardHandler {
	if boards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("board service cannot be nil for BoardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BoardHandler")
	}

	return &BoardHandler{
		boards: boards,
		logger: logger.With(slog.String("component", "board_handler")),
	}
}

// Routes returns a router with every board endpoint, ready to be mounted
// under a prefix such as /boards.
func (h *BoardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateBoard)
	r.Get("/", h.ListBoards)
	r.Get("/{board_id}", h.GetBoard)
	r.Post("/{board_id}/cards", h.AddCard)
	r.Put("/{board_id}/cards/{card_id}", h.UpdateCard)
	r.Delete("/{board_id}/cards/{card_id}", h.DeleteCard)
	return r
}

// CreateBoard handles POST /boards requests
// The body is optional; {"id": ...} picks the board ID.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req NewBoardRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("invalid board request", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidBody, boardIDMessage(err))
		return
	}

	board, err := h.boards.CreateBoard(r.Context(), string(req.ID))
	if err != nil {
		message := ""
		if errors.Is(err, store.ErrDuplicateBoardID) {
			message = fmt.Sprintf("A board with ID %s already exists", req.ID)
		}
		HandleAPIError(w, r, err, message)
		return
	}

	log.Info("board created", slog.String("board_id", board.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, boardToResponse(board))
}

// ListBoards handles GET /boards requests
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.ListBoards(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	response := make([]BoardResponse, 0, len(boards))
	for _, b := range boards {
		response = append(response, boardToResponse(b))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetBoard handles GET /boards/{board_id} requests
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	boardID := pathParam(r, "board_id")

	board, err := h.boards.GetBoard(r.Context(), boardID)
	if err != nil {
		h.handleError(w, r, err, boardID, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boardToResponse(board))
}

// AddCard handles POST /boards/{board_id}/cards requests
func (h *BoardHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	boardID := pathParam(r, "board_id")

	var req NewCardRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, contentError(), "")
		return
	}

	card, err := h.boards.AddCard(r.Context(), boardID, req.Content)
	if err != nil {
		h.handleError(w, r, err, boardID, "")
		return
	}

	log.Debug("card added",
		slog.String("board_id", boardID),
		slog.Int("card_id", card.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(*card))
}

// UpdateCard handles PUT /boards/{board_id}/cards/{card_id} requests
// A card_id that is not an integer cannot name any card and yields
// card.not.found once the content and the board have been checked.
func (h *BoardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	boardID := pathParam(r, "board_id")
	rawCardID := pathParam(r, "card_id")

	var req UpdateCardRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, contentError(), "")
		return
	}

	cardID, ok := parseCardID(rawCardID)
	var err error
	if ok {
		err = h.boards.UpdateCard(r.Context(), boardID, cardID, req.Content)
	} else {
		err = h.checkUnmatchedCard(r, boardID, req.Content)
		if err == nil {
			err = store.ErrCardNotFound
		}
	}
	if err != nil {
		h.handleError(w, r, err, boardID, rawCardID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCard handles DELETE /boards/{board_id}/cards/{card_id} requests
// Deleting a card that does not exist succeeds.
func (h *BoardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	boardID := pathParam(r, "board_id")
	rawCardID := pathParam(r, "card_id")

	var err error
	if cardID, ok := parseCardID(rawCardID); ok {
		err = h.boards.DeleteCard(r.Context(), boardID, cardID)
	} else {
		_, err = h.boards.GetBoard(r.Context(), boardID)
	}
	if err != nil {
		h.handleError(w, r, err, boardID, rawCardID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkUnmatchedCard runs the checks an update would run before touching a
// card, for a card ID that cannot exist.
func (h *BoardHandler) checkUnmatchedCard(r *http.Request, boardID, content string) error {
	if err := domain.ValidateContent(content); err != nil {
		return err
	}
	_, err := h.boards.GetBoard(r.Context(), boardID)
	return err
}

// decodeBody decodes the JSON body into v and writes a 400 response when it
// is malformed. An empty body leaves v at its zero value.
func (h *BoardHandler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	err := shared.DecodeJSON(r, v)
	if err == nil || errors.Is(err, shared.ErrEmptyBody) {
		return true
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("invalid request body",
		slog.String("error", redact.Error(err)))
	shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidBody, "Request body is not valid JSON")
	return false
}

// handleError writes err with a message naming the missing board or card.
func (h *BoardHandler) handleError(w http.ResponseWriter, r *http.Request, err error, boardID, cardID string) {
	message := ""
	switch {
	case errors.Is(err, store.ErrBoardNotFound):
		message = fmt.Sprintf("Couldn't find board with ID %s", boardID)
	case errors.Is(err, store.ErrCardNotFound):
		message = fmt.Sprintf("Couldn't find card with ID %s", cardID)
	}
	HandleAPIError(w, r, err, message)
}

// pathParam returns the decoded value of a route parameter. chi matches on
// the escaped path whenever one is present (an ID containing "/" arrives as
// %2F), and then hands out parameters still escaped.
func pathParam(r *http.Request, name string) string {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

// boardIDMessage describes which rule a board ID broke.
func boardIDMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if fe := verrs[0]; fe.Tag() == "max" {
			return fmt.Sprintf("Board ID must be at most %s characters long", fe.Param())
		}
	}
	return "Board ID is invalid"
}

func contentError() error {
	return domain.NewValidationError("content", "is missing or empty", domain.ErrEmptyContent)
}

func parseCardID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

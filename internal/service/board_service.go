package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// BoardService provides board and card operations
type BoardService interface {
	// CreateBoard creates an empty board. An empty id asks for a generated one.
	CreateBoard(ctx context.Context, id string) (*domain.Board, error)

	// ListBoards returns every board
	ListBoards(ctx context.Context) ([]*domain.Board, error)

	// GetBoard returns the board with the given ID or store.ErrBoardNotFound
	GetBoard(ctx context.Context, id string) (*domain.Board, error)

	// AddCard appends a new card to a board and returns it
	AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error)

	// UpdateCard replaces the content of an existing card
	UpdateCard(ctx context.Context, boardID string, cardID int, content string) error

	// DeleteCard removes a card; deleting an unknown card is not an error
	DeleteCard(ctx context.Context, boardID string, cardID int) error
}

// boardServiceImpl implements the BoardService interface
type boardServiceImpl struct {
	boards store.BoardStore
	logger *slog.Logger
}

// NewBoardService creates a new BoardService
// It returns an error if the store is nil.
func NewBoardService(boards store.BoardStore, logger *slog.Logger) (BoardService, error) {
	if boards == nil {
		return nil, domain.NewValidationError("boards", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &boardServiceImpl{
		boards: boards,
		logger: logger.With(slog.String("component", "board_service")),
	}, nil
}

// CreateBoard implements BoardService.CreateBoard
func (s *boardServiceImpl) CreateBoard(ctx context.Context, id string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board, err := s.boards.Create(ctx, id)
	if err != nil {
		log.Debug("board creation failed",
			slog.String("board_id", id),
			slog.String("error", err.Error()))
		return nil, wrapError("create_board", "failed to create board", err)
	}

	return board, nil
}

// ListBoards implements BoardService.ListBoards
func (s *boardServiceImpl) ListBoards(ctx context.Context) ([]*domain.Board, error) {
	boards, err := s.boards.GetAll(ctx)
	if err != nil {
		return nil, wrapError("list_boards", "failed to list boards", err)
	}
	return boards, nil
}

// GetBoard implements BoardService.GetBoard
func (s *boardServiceImpl) GetBoard(ctx context.Context, id string) (*domain.Board, error) {
	return s.requireBoard(ctx, "get_board", id)
}

// AddCard implements BoardService.AddCard
func (s *boardServiceImpl) AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error) {
	if err := domain.ValidateContent(content); err != nil {
		return nil, err
	}
	if _, err := s.requireBoard(ctx, "add_card", boardID); err != nil {
		return nil, err
	}

	card, err := s.boards.AddCard(ctx, boardID, content)
	if err != nil {
		return nil, wrapError("add_card", "failed to add card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card added",
		slog.String("board_id", boardID),
		slog.Int("card_id", card.ID))
	return card, nil
}

// UpdateCard implements BoardService.UpdateCard
func (s *boardServiceImpl) UpdateCard(ctx context.Context, boardID string, cardID int, content string) error {
	if err := domain.ValidateContent(content); err != nil {
		return err
	}
	if _, err := s.requireBoard(ctx, "update_card", boardID); err != nil {
		return err
	}

	if err := s.boards.UpdateCard(ctx, boardID, cardID, content); err != nil {
		return wrapError("update_card", "failed to update card", err)
	}
	return nil
}

// DeleteCard implements BoardService.DeleteCard
func (s *boardServiceImpl) DeleteCard(ctx context.Context, boardID string, cardID int) error {
	if _, err := s.requireBoard(ctx, "delete_card", boardID); err != nil {
		return err
	}

	if err := s.boards.DeleteCard(ctx, boardID, cardID); err != nil {
		return wrapError("delete_card", "failed to delete card", err)
	}
	return nil
}

// requireBoard fetches a board and turns absence into store.ErrBoardNotFound.
func (s *boardServiceImpl) requireBoard(ctx context.Context, operation, id string) (*domain.Board, error) {
	board, ok, err := s.boards.Get(ctx, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to look up board",
			slog.String("operation", operation),
			slog.String("board_id", id),
			slog.String("error", err.Error()))
		return nil, NewBoardServiceError(operation, "failed to look up board", err)
	}
	if !ok {
		return nil, store.ErrBoardNotFound
	}
	return board, nil
}

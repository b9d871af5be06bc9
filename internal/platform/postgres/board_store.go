package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

const entityBoard = "board"

// PostgresBoardStore implements the store.BoardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBoardStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBoardStore creates a new PostgreSQL implementation of the BoardStore interface.
// It needs a *sql.DB rather than a transaction because every mutation opens its own.
// If logger is nil, a default logger will be used.
func NewPostgresBoardStore(db *sql.DB, logger *slog.Logger) *PostgresBoardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBoardStore{
		db:     db,
		logger: logger.With(slog.String("component", "board_store")),
	}
}

// Ensure PostgresBoardStore implements store.BoardStore interface
var _ store.BoardStore = (*PostgresBoardStore)(nil)

// Create implements store.BoardStore.Create
// The primary key on boards.id rejects duplicates atomically.
func (s *PostgresBoardStore) Create(ctx context.Context, id string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board := domain.NewBoard(id)
	cards, err := encodeCards(board.Cards)
	if err != nil {
		return nil, store.NewStoreError(entityBoard, "create", "failed to encode cards", err)
	}

	query := `
		INSERT INTO boards (id, card_sequence, cards)
		VALUES ($1, $2, $3)
	`
	_, err = s.db.ExecContext(ctx, query, board.ID, board.CardSequence, cards)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("board id already taken", slog.String("board_id", board.ID))
			return nil, store.ErrDuplicateBoardID
		}
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID))
		return nil, store.NewStoreError(entityBoard, "create", "failed to insert board", MapError(err))
	}

	log.Info("board created", slog.String("board_id", board.ID))
	return board, nil
}

// GetAll implements store.BoardStore.GetAll
// Boards are returned in creation order.
func (s *PostgresBoardStore) GetAll(ctx context.Context) ([]*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, card_sequence, cards
		FROM boards
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query boards", slog.String("error", err.Error()))
		return nil, store.NewStoreError(entityBoard, "get_all", "failed to query boards", err)
	}
	defer func() { _ = rows.Close() }()

	boards := []*domain.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			log.Error("failed to scan board", slog.String("error", err.Error()))
			return nil, store.NewStoreError(entityBoard, "get_all", "failed to read board", err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError(entityBoard, "get_all", "failed to iterate boards", err)
	}

	log.Debug("boards retrieved", slog.Int("count", len(boards)))
	return boards, nil
}

// Get implements store.BoardStore.Get
func (s *PostgresBoardStore) Get(ctx context.Context, id string) (*domain.Board, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, card_sequence, cards
		FROM boards
		WHERE id = $1
	`
	board, err := scanBoard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("board not found", slog.String("board_id", id))
			return nil, false, nil
		}
		log.Error("failed to get board",
			slog.String("error", err.Error()),
			slog.String("board_id", id))
		return nil, false, store.NewStoreError(entityBoard, "get", "failed to read board", err)
	}

	return board, true, nil
}

// AddCard implements store.BoardStore.AddCard
func (s *PostgresBoardStore) AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error) {
	var card domain.Card
	err := s.mutate(ctx, "add_card", boardID, func(b *domain.Board) (bool, error) {
		var err error
		card, err = b.AddCard(content)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("card added",
		slog.String("board_id", boardID),
		slog.Int("card_id", card.ID))
	return &card, nil
}

// UpdateCard implements store.BoardStore.UpdateCard
func (s *PostgresBoardStore) UpdateCard(ctx context.Context, boardID string, cardID int, content string) error {
	return s.mutate(ctx, "update_card", boardID, func(b *domain.Board) (bool, error) {
		updated, err := b.UpdateCard(cardID, content)
		if err != nil {
			return false, err
		}
		if !updated {
			return false, store.ErrCardNotFound
		}
		return true, nil
	})
}

// DeleteCard implements store.BoardStore.DeleteCard
// Nothing is written when the card does not exist.
func (s *PostgresBoardStore) DeleteCard(ctx context.Context, boardID string, cardID int) error {
	return s.mutate(ctx, "delete_card", boardID, func(b *domain.Board) (bool, error) {
		return b.DeleteCard(cardID), nil
	})
}

// mutate loads the board under a row lock, applies fn, and rewrites the
// whole board document when fn reports a change. The lock is held until the
// transaction ends, so concurrent mutations of one board are serialized.
func (s *PostgresBoardStore) mutate(
	ctx context.Context,
	operation string,
	boardID string,
	fn func(b *domain.Board) (bool, error),
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		query := `
			SELECT id, card_sequence, cards
			FROM boards
			WHERE id = $1
			FOR UPDATE
		`
		board, err := scanBoard(tx.QueryRowContext(ctx, query, boardID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrBoardNotFound
			}
			return store.NewStoreError(entityBoard, operation, "failed to lock board", err)
		}

		changed, err := fn(board)
		if err != nil || !changed {
			return err
		}

		return saveBoard(ctx, tx, operation, board)
	})
	if err != nil {
		var storeErr *store.StoreError
		if errors.As(err, &storeErr) {
			log.Error("board mutation failed",
				slog.String("operation", operation),
				slog.String("board_id", boardID),
				slog.String("error", err.Error()))
		}
		return err
	}
	return nil
}

// saveBoard rewrites the full board document.
func saveBoard(ctx context.Context, db store.DBTX, operation string, board *domain.Board) error {
	cards, err := encodeCards(board.Cards)
	if err != nil {
		return store.NewStoreError(entityBoard, operation, "failed to encode cards", err)
	}

	query := `
		UPDATE boards
		SET card_sequence = $2, cards = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := db.ExecContext(ctx, query, board.ID, board.CardSequence, cards)
	if err != nil {
		return store.NewStoreError(entityBoard, operation, "failed to save board", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError(entityBoard, operation, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return store.ErrBoardNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var (
		board domain.Board
		cards []byte
	)
	if err := row.Scan(&board.ID, &board.CardSequence, &cards); err != nil {
		return nil, err
	}

	board.Cards = []domain.Card{}
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &board.Cards); err != nil {
			return nil, fmt.Errorf("failed to decode cards of board %s: %w", board.ID, err)
		}
	}
	if board.Cards == nil {
		board.Cards = []domain.Card{}
	}
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("%w: board %s: %v", store.ErrCorruptBoard, board.ID, err)
	}
	return &board, nil
}

func encodeCards(cards []domain.Card) (string, error) {
	if cards == nil {
		cards = []domain.Card{}
	}
	b, err := json.Marshal(cards)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

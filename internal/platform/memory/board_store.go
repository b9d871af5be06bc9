// Package memory provides a process-local implementation of store.BoardStore.
// Nothing survives a restart; it backs tests and the default development setup.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// BoardStore keeps boards in a map owned by the store value.
// All access goes through a single RWMutex, so read-modify-write
// operations such as AddCard are atomic.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*domain.Board
	logger *slog.Logger
}

// NewBoardStore creates an empty in-memory board store.
// If logger is nil, a default logger will be used.
func NewBoardStore(logger *slog.Logger) *BoardStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &BoardStore{
		boards: make(map[string]*domain.Board),
		logger: logger.With(slog.String("component", "memory_board_store")),
	}
}

// Ensure BoardStore implements store.BoardStore interface
var _ store.BoardStore = (*BoardStore)(nil)

// Create implements store.BoardStore.Create
func (s *BoardStore) Create(ctx context.Context, id string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board := domain.NewBoard(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.boards[board.ID]; exists {
		log.Debug("board id already taken", slog.String("board_id", board.ID))
		return nil, store.ErrDuplicateBoardID
	}
	s.boards[board.ID] = board

	log.Info("board created", slog.String("board_id", board.ID))
	return board.Clone(), nil
}

// GetAll implements store.BoardStore.GetAll
// Boards are returned sorted by ID so listings are stable.
func (s *BoardStore) GetAll(ctx context.Context) ([]*domain.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	boards := make([]*domain.Board, 0, len(s.boards))
	for _, b := range s.boards {
		boards = append(boards, b.Clone())
	}
	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })

	return boards, nil
}

// Get implements store.BoardStore.Get
func (s *BoardStore) Get(ctx context.Context, id string) (*domain.Board, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boards[id]
	if !ok {
		return nil, false, nil
	}
	return b.Clone(), true, nil
}

// AddCard implements store.BoardStore.AddCard
func (s *BoardStore) AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[boardID]
	if !ok {
		return nil, store.ErrBoardNotFound
	}

	card, err := b.AddCard(content)
	if err != nil {
		return nil, err
	}

	log.Debug("card added",
		slog.String("board_id", boardID),
		slog.Int("card_id", card.ID))
	return &card, nil
}

// UpdateCard implements store.BoardStore.UpdateCard
func (s *BoardStore) UpdateCard(ctx context.Context, boardID string, cardID int, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[boardID]
	if !ok {
		return store.ErrBoardNotFound
	}

	updated, err := b.UpdateCard(cardID, content)
	if err != nil {
		return err
	}
	if !updated {
		return store.ErrCardNotFound
	}
	return nil
}

// DeleteCard implements store.BoardStore.DeleteCard
func (s *BoardStore) DeleteCard(ctx context.Context, boardID string, cardID int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[boardID]
	if !ok {
		return store.ErrBoardNotFound
	}

	if !b.DeleteCard(cardID) {
		log.Debug("delete of unknown card ignored",
			slog.String("board_id", boardID),
			slog.Int("card_id", cardID))
	}
	return nil
}

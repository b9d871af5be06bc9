package service

import (
	"context"

	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockBoardStore mocks the store.BoardStore interface
type MockBoardStore struct {
	mock.Mock
}

func (m *MockBoardStore) Create(ctx context.Context, id string) (*domain.Board, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Board), args.Error(1)
}

func (m *MockBoardStore) GetAll(ctx context.Context) ([]*domain.Board, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Board), args.Error(1)
}

func (m *MockBoardStore) Get(ctx context.Context, id string) (*domain.Board, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Board), args.Bool(1), args.Error(2)
}

func (m *MockBoardStore) AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error) {
	args := m.Called(ctx, boardID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *MockBoardStore) UpdateCard(ctx context.Context, boardID string, cardID int, content string) error {
	args := m.Called(ctx, boardID, cardID, content)
	return args.Error(0)
}

func (m *MockBoardStore) DeleteCard(ctx context.Context, boardID string, cardID int) error {
	args := m.Called(ctx, boardID, cardID)
	return args.Error(0)
}

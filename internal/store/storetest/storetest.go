// Package storetest provides a behavioral test suite that every
// store.BoardStore implementation must pass, so the board service behaves the
// same no matter which backend is configured.
package storetest

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a store ready for use. Stores may be shared between
// subtests; the suite only relies on boards it created itself.
type Factory func(t *testing.T) store.BoardStore

// Options tunes the suite for a particular backend.
type Options struct {
	// ConcurrentWriters is the number of goroutines used by the concurrent
	// add-card test. Zero selects a default.
	ConcurrentWriters int
}

// RunBoardStoreSuite runs the full contract suite against the store built by newStore.
func RunBoardStoreSuite(t *testing.T, newStore Factory, opts Options) {
	t.Helper()

	if opts.ConcurrentWriters == 0 {
		opts.ConcurrentWriters = 20
	}

	t.Run("create with explicit id starts empty", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uniqueID()

		created, err := s.Create(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, created.ID)
		assert.Equal(t, 0, created.CardSequence)
		assert.Empty(t, created.Cards)

		fetched, ok, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, id, fetched.ID)
		assert.Equal(t, 0, fetched.CardSequence)
		assert.NotNil(t, fetched.Cards)
		assert.Empty(t, fetched.Cards)
	})

	t.Run("create without id generates unique ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Create(ctx, "")
		require.NoError(t, err)
		second, err := s.Create(ctx, "")
		require.NoError(t, err)

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)

		_, ok, err := s.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("create with duplicate id fails", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uniqueID()

		_, err := s.Create(ctx, id)
		require.NoError(t, err)
		_, err = s.AddCard(ctx, id, "keep me")
		require.NoError(t, err)

		_, err = s.Create(ctx, id)
		assert.ErrorIs(t, err, store.ErrDuplicateBoardID)

		board, ok, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Len(t, board.Cards, 1, "duplicate create must not overwrite the existing board")
	})

	t.Run("get missing board reports absence", func(t *testing.T) {
		s := newStore(t)

		board, ok, err := s.Get(context.Background(), uniqueID())
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, board)
	})

	t.Run("get all includes created boards", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a, b := uniqueID(), uniqueID()

		_, err := s.Create(ctx, a)
		require.NoError(t, err)
		_, err = s.Create(ctx, b)
		require.NoError(t, err)
		_, err = s.AddCard(ctx, b, "on b")
		require.NoError(t, err)

		boards, err := s.GetAll(ctx)
		require.NoError(t, err)

		byID := make(map[string]*domain.Board, len(boards))
		for _, board := range boards {
			byID[board.ID] = board
		}
		require.Contains(t, byID, a)
		require.Contains(t, byID, b)
		assert.Equal(t, 0, byID[a].CardSequence)
		assert.Equal(t, 1, byID[b].CardSequence)
		assert.Equal(t, []domain.Card{{ID: 0, Content: "on b"}}, byID[b].Cards)
	})

	t.Run("card ids are sequential and never reused", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		for want := 0; want < 3; want++ {
			card, err := s.AddCard(ctx, id, "topic")
			require.NoError(t, err)
			assert.Equal(t, want, card.ID)
			assert.Equal(t, "topic", card.Content)
		}

		require.NoError(t, s.DeleteCard(ctx, id, 1))

		card, err := s.AddCard(ctx, id, "late topic")
		require.NoError(t, err)
		assert.Equal(t, 3, card.ID)

		board := mustGet(t, s, id)
		assert.Equal(t, []int{0, 2, 3}, cardIDs(board))
		assert.Equal(t, 4, board.CardSequence)
	})

	t.Run("add card to missing board", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddCard(context.Background(), uniqueID(), "orphan")
		assert.ErrorIs(t, err, store.ErrBoardNotFound)
	})

	t.Run("update card changes only its content", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		_, err := s.AddCard(ctx, id, "first")
		require.NoError(t, err)
		_, err = s.AddCard(ctx, id, "second")
		require.NoError(t, err)

		require.NoError(t, s.UpdateCard(ctx, id, 0, "first, revised"))

		board := mustGet(t, s, id)
		assert.Equal(t, []domain.Card{
			{ID: 0, Content: "first, revised"},
			{ID: 1, Content: "second"},
		}, board.Cards)
		assert.Equal(t, 2, board.CardSequence)
	})

	t.Run("update missing card fails without changes", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		_, err := s.AddCard(ctx, id, "only")
		require.NoError(t, err)

		err = s.UpdateCard(ctx, id, 7, "ghost")
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		board := mustGet(t, s, id)
		assert.Equal(t, []domain.Card{{ID: 0, Content: "only"}}, board.Cards)
		assert.Equal(t, 1, board.CardSequence)
	})

	t.Run("update card on missing board", func(t *testing.T) {
		s := newStore(t)

		err := s.UpdateCard(context.Background(), uniqueID(), 0, "x")
		assert.ErrorIs(t, err, store.ErrBoardNotFound)
	})

	t.Run("delete missing card is a no-op", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		_, err := s.AddCard(ctx, id, "stay")
		require.NoError(t, err)

		assert.NoError(t, s.DeleteCard(ctx, id, 5))

		board := mustGet(t, s, id)
		assert.Equal(t, []domain.Card{{ID: 0, Content: "stay"}}, board.Cards)
		assert.Equal(t, 1, board.CardSequence)
	})

	t.Run("delete card on missing board", func(t *testing.T) {
		s := newStore(t)

		err := s.DeleteCard(context.Background(), uniqueID(), 0)
		assert.ErrorIs(t, err, store.ErrBoardNotFound)
	})

	t.Run("returned boards are copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		_, err := s.AddCard(ctx, id, "original")
		require.NoError(t, err)

		board := mustGet(t, s, id)
		board.Cards[0].Content = "tampered"
		board.CardSequence = 99

		again := mustGet(t, s, id)
		assert.Equal(t, "original", again.Cards[0].Content)
		assert.Equal(t, 1, again.CardSequence)
	})

	t.Run("concurrent add card mints distinct ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := mustCreate(t, s)

		n := opts.ConcurrentWriters
		ids := make([]int, n)
		errs := make([]error, n)

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				card, err := s.AddCard(ctx, id, "parallel topic")
				errs[i] = err
				if card != nil {
					ids[i] = card.ID
				}
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		sort.Ints(ids)
		for want, got := range ids {
			assert.Equal(t, want, got, "card ids must be exactly 0..n-1")
		}

		board := mustGet(t, s, id)
		assert.Equal(t, n, board.CardSequence)
		assert.Len(t, board.Cards, n)
	})
}

func uniqueID() string {
	return "board-" + uuid.NewString()
}

func mustCreate(t *testing.T, s store.BoardStore) string {
	t.Helper()

	board, err := s.Create(context.Background(), uniqueID())
	require.NoError(t, err)
	return board.ID
}

func mustGet(t *testing.T, s store.BoardStore, id string) *domain.Board {
	t.Helper()

	board, ok, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok, "board %s should exist", id)
	return board
}

func cardIDs(b *domain.Board) []int {
	ids := make([]int, 0, len(b.Cards))
	for _, c := range b.Cards {
		ids = append(ids, c.ID)
	}
	return ids
}

package objectstore_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/objectstore"
	"github.com/phrazzld/leancoffee-api/internal/store"
	"github.com/phrazzld/leancoffee-api/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concurrentWriters = 20

func newStore(api objectstore.API, maxRetries int) *objectstore.BoardStore {
	return objectstore.NewBoardStore(api, objectstore.Options{
		Bucket:     "leancoffee-test",
		Prefix:     "boards/",
		MaxRetries: maxRetries,
	}, nil)
}

func TestBoardStoreContract(t *testing.T) {
	t.Parallel()

	storetest.RunBoardStoreSuite(t, func(t *testing.T) store.BoardStore {
		// Every lost write is retried, and at least one writer wins each round.
		return newStore(newFakeS3(), concurrentWriters+1)
	}, storetest.Options{ConcurrentWriters: concurrentWriters})
}

func TestNewBoardStorePanicsWithoutAPI(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { objectstore.NewBoardStore(nil, objectstore.Options{}, nil) })
}

func TestBoardDocumentLayout(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)
	ctx := context.Background()

	_, err := s.Create(ctx, "team/retro")
	require.NoError(t, err)
	_, err = s.AddCard(ctx, "team/retro", "coffee")
	require.NoError(t, err)

	data, ok := fake.rawObject("boards/team%2Fretro.json")
	require.True(t, ok, "ids must be escaped into a single key segment")
	assert.JSONEq(t, `{"id":"team/retro","cardSequence":1,"cards":[{"id":0,"content":"coffee"}]}`, string(data))
}

func TestGetAllSkipsForeignObjects(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)
	ctx := context.Background()

	_, err := s.Create(ctx, "b")
	require.NoError(t, err)
	_, err = s.Create(ctx, "a")
	require.NoError(t, err)
	fake.setRaw("boards/README.txt", []byte("not a board"))
	fake.setRaw("other/x.json", []byte(`{"id":"x"}`))

	boards, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "a", boards[0].ID)
	assert.Equal(t, "b", boards[1].ID)
}

func TestGetToleratesMissingCardsField(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)

	fake.setRaw("boards/legacy.json", []byte(`{"id":"legacy","cardSequence":0}`))

	board, ok, err := s.Get(context.Background(), "legacy")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, board.Cards)
	assert.Empty(t, board.Cards)
}

func TestCorruptDocumentIsStoreError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)

	fake.setRaw("boards/broken.json", []byte(`{"id":`))

	_, _, err := s.Get(context.Background(), "broken")
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Operation)
}

func TestDocumentBreakingInvariantsIsStoreError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)
	ctx := context.Background()

	fake.setRaw("boards/dup.json", []byte(`{"id":"dup","cardSequence":2,"cards":[{"id":1,"content":"a"},{"id":1,"content":"b"}]}`))
	fake.setRaw("boards/ahead.json", []byte(`{"id":"ahead","cardSequence":1,"cards":[{"id":4,"content":"a"}]}`))

	for _, id := range []string{"dup", "ahead"} {
		_, ok, err := s.Get(ctx, id)
		assert.False(t, ok)
		var storeErr *store.StoreError
		require.ErrorAs(t, err, &storeErr, id)
		assert.ErrorIs(t, err, store.ErrCorruptBoard)
		assert.NotErrorIs(t, err, domain.ErrValidation)
	}

	puts := fake.putCount()
	_, err := s.AddCard(ctx, "dup", "x")
	assert.ErrorIs(t, err, store.ErrCorruptBoard)
	assert.Equal(t, puts, fake.putCount(), "a corrupt board must not be rewritten")

	_, err = s.GetAll(ctx)
	assert.ErrorIs(t, err, store.ErrCorruptBoard)
}

func TestReadFailureIsStoreError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	fake.getErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
	s := newStore(fake, 0)

	_, _, err := s.Get(context.Background(), "any")
	assert.Error(t, err)
	assert.False(t, store.IsNotFoundError(err))

	_, err = s.AddCard(context.Background(), "any", "x")
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "add_card", storeErr.Operation)
}

func TestMutationRetriesAfterLostWrite(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 3)
	ctx := context.Background()

	_, err := s.Create(ctx, "retro")
	require.NoError(t, err)

	var conflicts atomic.Int32
	fake.beforePut = func(params *s3.PutObjectInput) error {
		if params.IfMatch != nil && conflicts.Add(1) <= 2 {
			return preconditionFailed()
		}
		return nil
	}

	card, err := s.AddCard(ctx, "retro", "eventually")
	require.NoError(t, err)
	assert.Equal(t, 0, card.ID)
	assert.Equal(t, int32(3), conflicts.Load())
}

func TestMutationGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 2)
	ctx := context.Background()

	_, err := s.Create(ctx, "retro")
	require.NoError(t, err)

	var attempts atomic.Int32
	fake.beforePut = func(params *s3.PutObjectInput) error {
		if params.IfMatch != nil {
			attempts.Add(1)
			return &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}
		}
		return nil
	}

	err = s.UpdateCard(ctx, "retro", 0, "x")
	// The card does not exist, so nothing is written and no conflict can occur.
	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.Equal(t, int32(0), attempts.Load())

	_, err = s.AddCard(ctx, "retro", "contended")
	assert.ErrorIs(t, err, store.ErrConcurrentUpdate)
	assert.Equal(t, int32(3), attempts.Load())

	board, ok, err := s.Get(ctx, "retro")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, board.Cards)
}

func TestDeleteMissingCardWritesNothing(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)
	ctx := context.Background()

	_, err := s.Create(ctx, "retro")
	require.NoError(t, err)
	before := fake.putCount()

	require.NoError(t, s.DeleteCard(ctx, "retro", 42))
	assert.Equal(t, before, fake.putCount())
}

func TestWriteFailureIsStoreError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	s := newStore(fake, 0)
	ctx := context.Background()

	fake.beforePut = func(*s3.PutObjectInput) error { return errors.New("connection reset") }

	_, err := s.Create(ctx, "retro")
	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Operation)
	assert.False(t, store.IsDuplicateError(err))
}

func TestValidationErrorsPassThrough(t *testing.T) {
	t.Parallel()
	s := newStore(newFakeS3(), 0)
	ctx := context.Background()

	_, err := s.Create(ctx, "retro")
	require.NoError(t, err)

	_, err = s.AddCard(ctx, "retro", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyContent)
}

func TestNewS3Client(t *testing.T) {
	t.Parallel()

	t.Run("static credentials and custom endpoint", func(t *testing.T) {
		t.Parallel()
		client, err := objectstore.NewS3Client(context.Background(), objectstore.ClientConfig{
			Region:       "us-east-1",
			Endpoint:     "http://localhost:9000",
			AccessKey:    "minio",
			SecretKey:    "minio123",
			UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("rejects malformed endpoint", func(t *testing.T) {
		t.Parallel()
		_, err := objectstore.NewS3Client(context.Background(), objectstore.ClientConfig{
			Region:   "us-east-1",
			Endpoint: "::not a url",
		})
		assert.Error(t, err)
	})
}

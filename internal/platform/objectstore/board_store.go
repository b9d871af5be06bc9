package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/phrazzld/leancoffee-api/internal/domain"
	"github.com/phrazzld/leancoffee-api/internal/platform/logger"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

const (
	entityBoard       = "board"
	documentSuffix    = ".json"
	defaultMaxRetries = 5
	retryBackoff      = 10 * time.Millisecond
)

// API is the subset of the S3 client used by BoardStore.
// *s3.Client satisfies it.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures where a BoardStore keeps its documents.
type Options struct {
	Bucket string
	Prefix string

	// MaxRetries bounds how often a mutation is retried after losing a
	// conditional write. Zero selects the default of 5.
	MaxRetries int
}

// BoardStore implements store.BoardStore on top of an S3 bucket.
type BoardStore struct {
	api        API
	bucket     string
	prefix     string
	maxRetries int
	logger     *slog.Logger
}

// Ensure BoardStore implements store.BoardStore interface
var _ store.BoardStore = (*BoardStore)(nil)

// NewBoardStore creates a BoardStore that reads and writes through api.
// If logger is nil, a default logger will be used.
func NewBoardStore(api API, opts Options, logger *slog.Logger) *BoardStore {
	if api == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("s3 api cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	return &BoardStore{
		api:        api,
		bucket:     opts.Bucket,
		prefix:     opts.Prefix,
		maxRetries: opts.MaxRetries,
		logger: logger.With(
			slog.String("component", "s3_board_store"),
			slog.String("bucket", opts.Bucket),
		),
	}
}

// Create implements store.BoardStore.Create
// The object is written with If-None-Match: * so an existing board is never
// replaced.
func (s *BoardStore) Create(ctx context.Context, id string) (*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	board := domain.NewBoard(id)
	data, err := json.Marshal(board)
	if err != nil {
		return nil, store.NewStoreError(entityBoard, "create", "failed to encode board", err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(board.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		if isConditionFailed(err) {
			log.Debug("board id already taken", slog.String("board_id", board.ID))
			return nil, store.ErrDuplicateBoardID
		}
		log.Error("failed to create board",
			slog.String("error", err.Error()),
			slog.String("board_id", board.ID))
		return nil, store.NewStoreError(entityBoard, "create", "failed to write board", err)
	}

	log.Info("board created", slog.String("board_id", board.ID))
	return board, nil
}

// GetAll implements store.BoardStore.GetAll
// Boards are returned sorted by ID.
func (s *BoardStore) GetAll(ctx context.Context) ([]*domain.Board, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	boards := []*domain.Board{}
	paginator := s3.NewListObjectsV2Paginator(s.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			log.Error("failed to list boards", slog.String("error", err.Error()))
			return nil, store.NewStoreError(entityBoard, "get_all", "failed to list boards", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, documentSuffix) {
				continue
			}
			board, _, err := s.read(ctx, key)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				log.Error("failed to read board",
					slog.String("error", err.Error()),
					slog.String("key", key))
				return nil, store.NewStoreError(entityBoard, "get_all", "failed to read board", err)
			}
			boards = append(boards, board)
		}
	}

	sort.Slice(boards, func(i, j int) bool { return boards[i].ID < boards[j].ID })

	log.Debug("boards retrieved", slog.Int("count", len(boards)))
	return boards, nil
}

// Get implements store.BoardStore.Get
func (s *BoardStore) Get(ctx context.Context, id string) (*domain.Board, bool, error) {
	board, _, err := s.read(ctx, s.key(id))
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get board",
			slog.String("error", err.Error()),
			slog.String("board_id", id))
		return nil, false, store.NewStoreError(entityBoard, "get", "failed to read board", err)
	}
	return board, true, nil
}

// AddCard implements store.BoardStore.AddCard
func (s *BoardStore) AddCard(ctx context.Context, boardID string, content string) (*domain.Card, error) {
	var card domain.Card
	err := s.mutate(ctx, "add_card", boardID, func(b *domain.Board) (bool, error) {
		var err error
		card, err = b.AddCard(content)
		return err == nil, err
	})
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// UpdateCard implements store.BoardStore.UpdateCard
func (s *BoardStore) UpdateCard(ctx context.Context, boardID string, cardID int, content string) error {
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
func (s *BoardStore) DeleteCard(ctx context.Context, boardID string, cardID int) error {
	return s.mutate(ctx, "delete_card", boardID, func(b *domain.Board) (bool, error) {
		return b.DeleteCard(cardID), nil
	})
}

// mutate reads the board, applies fn and writes the result back guarded by
// the ETag that was read. When another writer got there first the whole
// cycle starts again from a fresh read, up to maxRetries extra times.
func (s *BoardStore) mutate(
	ctx context.Context,
	operation string,
	boardID string,
	fn func(b *domain.Board) (bool, error),
) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("operation", operation),
		slog.String("board_id", boardID),
	)
	key := s.key(boardID)

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*retryBackoff); err != nil {
				return err
			}
		}

		board, etag, err := s.read(ctx, key)
		if err != nil {
			if isNotFound(err) {
				return store.ErrBoardNotFound
			}
			log.Error("failed to read board", slog.String("error", err.Error()))
			return store.NewStoreError(entityBoard, operation, "failed to read board", err)
		}
		if etag == "" {
			return store.NewStoreError(entityBoard, operation, "cannot update board safely", errNoETag)
		}

		changed, err := fn(board)
		if err != nil || !changed {
			return err
		}

		err = s.write(ctx, key, board, etag)
		if err == nil {
			return nil
		}
		if isNotFound(err) {
			return store.ErrBoardNotFound
		}
		if !isConditionFailed(err) {
			log.Error("failed to write board", slog.String("error", err.Error()))
			return store.NewStoreError(entityBoard, operation, "failed to write board", err)
		}
		log.Debug("board changed concurrently, retrying", slog.Int("attempt", attempt+1))
	}

	log.Warn("giving up on contended board", slog.Int("max_retries", s.maxRetries))
	return store.NewStoreError(
		entityBoard,
		operation,
		fmt.Sprintf("board kept changing after %d retries", s.maxRetries),
		store.ErrConcurrentUpdate,
	)
}

// read fetches and decodes the document at key along with its ETag.
func (s *BoardStore) read(ctx context.Context, key string) (*domain.Board, string, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading board data: %w", err)
	}

	var board domain.Board
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, "", fmt.Errorf("error decoding board json at %s: %w", key, err)
	}
	if board.Cards == nil {
		board.Cards = []domain.Card{}
	}
	if err := board.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: board at %s: %v", store.ErrCorruptBoard, key, err)
	}
	return &board, aws.ToString(out.ETag), nil
}

// write stores board at key only if the object still carries etag.
func (s *BoardStore) write(ctx context.Context, key string, board *domain.Board, etag string) error {
	data, err := json.Marshal(board)
	if err != nil {
		return fmt.Errorf("error encoding board json: %w", err)
	}

	_, err = s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		IfMatch:     aws.String(etag),
	})
	return err
}

// key maps a board ID to its object key. IDs are path-escaped so that any
// caller supplied ID stays a single key segment.
func (s *BoardStore) key(id string) string {
	return s.prefix + url.PathEscape(id) + documentSuffix
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// errNoETag is returned when the service omits ETags; without one no
// conditional write is possible.
var errNoETag = errors.New("object has no ETag")

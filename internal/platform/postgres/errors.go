package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/leancoffee-api/internal/store"
)

// SQLSTATE codes the board store reacts to.
const (
	uniqueViolationCode = "23505"

	// Raised by the card_sequence and cards CHECK constraints on boards.
	checkViolationCode = "23514"
)

// MapError translates a driver error into the store error taxonomy.
// The driver error stays in the message but not in the chain, so callers
// match only on store sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case checkViolationCode:
		return fmt.Errorf("%w: constraint %s rejected the row: %v", store.ErrCorruptBoard, pgErr.ConstraintName, err)
	default:
		return err
	}
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// such as a second board with an existing ID.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

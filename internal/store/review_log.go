package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
)

// ReviewLogStore defines the interface for review history persistence.
// Statistics are derived from these durable rows, never synthesized.
type ReviewLogStore interface {
	// Create appends a review log entry. Entries are immutable once written.
	Create(ctx context.Context, entry *domain.ReviewLog) error

	// ListByUser returns the user's review log entries ordered by review
	// time descending. limit bounds the result set; limit <= 0 means no bound.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReviewLog, error)

	// CountByUser returns the user's total and correct review counts.
	CountByUser(ctx context.Context, userID uuid.UUID) (total, correct int, err error)

	// ReviewDays returns the distinct UTC days on which the user reviewed,
	// most recent first, limited to the given number of days back from now.
	// Used to compute streaks from real history.
	ReviewDays(ctx context.Context, userID uuid.UUID, now time.Time, backDays int) ([]time.Time, error)

	// WithTx returns a new ReviewLogStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}

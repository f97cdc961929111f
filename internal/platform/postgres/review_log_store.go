package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create.
func (s *PostgresReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_logs (id, user_id, card_id, session_id, grade,
			response_time_ms, interval_days_before, interval_days_after,
			ease_factor_before, ease_factor_after, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.CardID,
		entry.SessionID,
		entry.Grade,
		entry.ResponseTime.Milliseconds(),
		entry.IntervalDaysBefore,
		entry.IntervalDaysAfter,
		entry.EaseFactorBefore,
		entry.EaseFactorAfter,
		entry.ReviewedAt,
	)
	if err != nil {
		s.logger.Error("failed to create review log entry",
			slog.String("card_id", entry.CardID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create review log entry: %w", err)
	}

	return nil
}

// ListByUser implements store.ReviewLogStore.ListByUser.
func (s *PostgresReviewLogStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.ReviewLog, error) {
	query := `
		SELECT id, user_id, card_id, session_id, grade, response_time_ms,
			interval_days_before, interval_days_after,
			ease_factor_before, ease_factor_after, reviewed_at
		FROM review_logs
		WHERE user_id = $1
		ORDER BY reviewed_at DESC, id DESC
	`
	args := []any{userID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.ReviewLog
	for rows.Next() {
		var entry domain.ReviewLog
		var responseTimeMs int64
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.CardID,
			&entry.SessionID,
			&entry.Grade,
			&responseTimeMs,
			&entry.IntervalDaysBefore,
			&entry.IntervalDaysAfter,
			&entry.EaseFactorBefore,
			&entry.EaseFactorAfter,
			&entry.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		entry.ResponseTime = time.Duration(responseTimeMs) * time.Millisecond
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review log rows: %w", err)
	}

	return entries, nil
}

// CountByUser implements store.ReviewLogStore.CountByUser.
func (s *PostgresReviewLogStore) CountByUser(
	ctx context.Context,
	userID uuid.UUID,
) (total, correct int, err error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE grade <> $2)
		FROM review_logs
		WHERE user_id = $1
	`

	err = s.db.QueryRowContext(ctx, query, userID, domain.ReviewGradeForgot).
		Scan(&total, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count review logs: %w", err)
	}

	return total, correct, nil
}

// ReviewDays implements store.ReviewLogStore.ReviewDays.
func (s *PostgresReviewLogStore) ReviewDays(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	backDays int,
) ([]time.Time, error) {
	query := `
		SELECT DISTINCT date_trunc('day', reviewed_at AT TIME ZONE 'UTC') AS day
		FROM review_logs
		WHERE user_id = $1 AND reviewed_at >= $2
		ORDER BY day DESC
	`

	since := now.UTC().AddDate(0, 0, -backDays)
	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query review days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []time.Time
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan review day row: %w", err)
		}
		days = append(days, day.UTC())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review day rows: %w", err)
	}

	return days, nil
}

// WithTx implements store.ReviewLogStore.WithTx.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, the default logger is used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// cardColumns is the column list shared by every card SELECT.
const cardColumns = `id, user_id, content, state, ease_factor, interval_days,
	repetitions, due_at, last_reviewed_at, created_at, updated_at`

// Create implements store.CardStore.Create.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, user_id, content, state, ease_factor, interval_days,
			repetitions, due_at, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		[]byte(card.Content),
		card.State,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.DueAt,
		nullableTime(card.LastReviewedAt),
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		s.logger.Error("failed to create card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		s.logger.Error("failed to get card",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// GetDueCards implements store.CardStore.GetDueCards.
// Suspended cards are excluded; ordering is due time ascending with ID as
// the deterministic tie-breaker.
func (s *PostgresCardStore) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = $1 AND state <> $2 AND due_at <= $3
		ORDER BY due_at ASC, id ASC
	`
	args := []any{userID, domain.CardStateSuspended, now}

	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to query due cards",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query due cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}

	return cards, nil
}

// Upsert implements store.CardStore.Upsert.
// The write is durable before the call returns; per-card serialization is
// provided by the database's row-level locking on the primary key.
func (s *PostgresCardStore) Upsert(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, user_id, content, state, ease_factor, interval_days,
			repetitions, due_at, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			state = EXCLUDED.state,
			ease_factor = EXCLUDED.ease_factor,
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			due_at = EXCLUDED.due_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.UserID,
		[]byte(card.Content),
		card.State,
		card.EaseFactor,
		card.IntervalDays,
		card.Repetitions,
		card.DueAt,
		nullableTime(card.LastReviewedAt),
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to upsert card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to upsert card: %w", err)
	}

	return nil
}

// UpdateState implements store.CardStore.UpdateState.
func (s *PostgresCardStore) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state domain.CardState,
	now time.Time,
) error {
	if !state.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidCardState)
	}

	query := `UPDATE cards SET state = $1, updated_at = $2 WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, state, now, id)
	if err != nil {
		s.logger.Error("failed to update card state",
			slog.String("card_id", id.String()),
			slog.String("state", string(state)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update card state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

// Delete implements store.CardStore.Delete.
// Review log entries referencing the card are removed by the schema's
// ON DELETE CASCADE foreign key constraint.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		s.logger.Error("failed to delete card",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrCardNotFound
	}

	return nil
}

// CountByState implements store.CardStore.CountByState.
func (s *PostgresCardStore) CountByState(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.CardState]int, error) {
	query := `SELECT state, COUNT(*) FROM cards WHERE user_id = $1 GROUP BY state`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards by state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[domain.CardState]int)
	for rows.Next() {
		var state domain.CardState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("failed to scan state count row: %w", err)
		}
		counts[state] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating state count rows: %w", err)
	}

	return counts, nil
}

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning code.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard reads one card row into a domain.Card.
func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var content []byte
	var lastReviewedAt sql.NullTime

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&content,
		&card.State,
		&card.EaseFactor,
		&card.IntervalDays,
		&card.Repetitions,
		&card.DueAt,
		&lastReviewedAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Content = content
	if lastReviewedAt.Valid {
		card.LastReviewedAt = lastReviewedAt.Time
	}

	return &card, nil
}

// nullableTime converts a zero time to a SQL NULL.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Package sqlite provides SQLite implementations of the store interfaces
// for device-local persistence, using database/sql with the modernc.org
// pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/store"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// Open creates a new database connection and ensures the schema is in place.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// isUniqueViolation checks if the given error is a SQLite unique
// constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CardStore implements the store.CardStore interface using a SQLite
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new SQLite implementation of the CardStore
// interface.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

const cardColumns = `id, user_id, content, state, ease_factor, interval_days,
	repetitions, due_at, last_reviewed_at, created_at, updated_at`

// Create implements store.CardStore.Create.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID.String(),
		card.UserID.String(),
		string(card.Content),
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
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return card, nil
}

// GetDueCards implements store.CardStore.GetDueCards.
func (s *CardStore) GetDueCards(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE user_id = ? AND state <> ? AND due_at <= ?
		ORDER BY due_at ASC, id ASC
	`
	args := []any{userID.String(), domain.CardStateSuspended, now}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
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
func (s *CardStore) Upsert(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			content = excluded.content,
			state = excluded.state,
			ease_factor = excluded.ease_factor,
			interval_days = excluded.interval_days,
			repetitions = excluded.repetitions,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		card.ID.String(),
		card.UserID.String(),
		string(card.Content),
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
		return fmt.Errorf("failed to upsert card: %w", err)
	}

	return nil
}

// UpdateState implements store.CardStore.UpdateState.
func (s *CardStore) UpdateState(
	ctx context.Context,
	id uuid.UUID,
	state domain.CardState,
	now time.Time,
) error {
	if !state.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidCardState)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET state = ?, updated_at = ? WHERE id = ?`,
		state, now, id.String())
	if err != nil {
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
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id.String())
	if err != nil {
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
func (s *CardStore) CountByState(
	ctx context.Context,
	userID uuid.UUID,
) (map[domain.CardState]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, COUNT(*) FROM cards WHERE user_id = ? GROUP BY state`,
		userID.String())
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
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
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
	var id, userID, content string
	var lastReviewedAt sql.NullTime

	err := row.Scan(
		&id,
		&userID,
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

	card.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid card ID in database: %w", err)
	}
	card.UserID, err = uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}

	card.Content = []byte(content)
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

// UserStore implements the store.UserStore interface using a SQLite
// database as the storage backend.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a new SQLite implementation of the UserStore
// interface.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, hashed_password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID.String(),
		user.Email,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, hashed_password, created_at, updated_at FROM users WHERE id = ?`,
		id.String())
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx,
		`SELECT id, email, hashed_password, created_at, updated_at FROM users WHERE email = ?`,
		email)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	var id string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&id,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %w", err)
	}

	return &user, nil
}

// ReviewLogStore implements the store.ReviewLogStore interface using a
// SQLite database as the storage backend.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a new SQLite implementation of the
// ReviewLogStore interface.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure ReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create.
func (s *ReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_logs (id, user_id, card_id, session_id, grade,
			response_time_ms, interval_days_before, interval_days_after,
			ease_factor_before, ease_factor_after, reviewed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(),
		entry.UserID.String(),
		entry.CardID.String(),
		entry.SessionID.String(),
		entry.Grade,
		entry.ResponseTime.Milliseconds(),
		entry.IntervalDaysBefore,
		entry.IntervalDaysAfter,
		entry.EaseFactorBefore,
		entry.EaseFactorAfter,
		entry.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review log entry: %w", err)
	}

	return nil
}

// ListByUser implements store.ReviewLogStore.ListByUser.
func (s *ReviewLogStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.ReviewLog, error) {
	query := `
		SELECT id, user_id, card_id, session_id, grade, response_time_ms,
			interval_days_before, interval_days_after,
			ease_factor_before, ease_factor_after, reviewed_at
		FROM review_logs
		WHERE user_id = ?
		ORDER BY reviewed_at DESC, id DESC
	`
	args := []any{userID.String()}

	if limit > 0 {
		query += ` LIMIT ?`
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
		var id, uid, cardID, sessionID string
		var responseTimeMs int64
		if err := rows.Scan(
			&id,
			&uid,
			&cardID,
			&sessionID,
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

		entry.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid review log ID in database: %w", err)
		}
		entry.UserID, err = uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID in database: %w", err)
		}
		entry.CardID, err = uuid.Parse(cardID)
		if err != nil {
			return nil, fmt.Errorf("invalid card ID in database: %w", err)
		}
		entry.SessionID, err = uuid.Parse(sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session ID in database: %w", err)
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
func (s *ReviewLogStore) CountByUser(
	ctx context.Context,
	userID uuid.UUID,
) (total, correct int, err error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN grade <> ? THEN 1 ELSE 0 END), 0)
		FROM review_logs
		WHERE user_id = ?
	`

	err = s.db.QueryRowContext(ctx, query, domain.ReviewGradeForgot, userID.String()).
		Scan(&total, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count review logs: %w", err)
	}

	return total, correct, nil
}

// ReviewDays implements store.ReviewLogStore.ReviewDays.
func (s *ReviewLogStore) ReviewDays(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	backDays int,
) ([]time.Time, error) {
	query := `
		SELECT DISTINCT strftime('%Y-%m-%d', reviewed_at) AS day
		FROM review_logs
		WHERE user_id = ? AND reviewed_at >= ?
		ORDER BY day DESC
	`

	since := now.UTC().AddDate(0, 0, -backDays)
	rows, err := s.db.QueryContext(ctx, query, userID.String(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query review days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan review day row: %w", err)
		}
		day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid review day in database: %w", err)
		}
		days = append(days, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review day rows: %w", err)
	}

	return days, nil
}

// WithTx implements store.ReviewLogStore.WithTx.
func (s *ReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &ReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
//
// Writes are durable before the call returns, and concurrent writes to the
// same card ID are serialized by the backing database (single-writer
// discipline per card; last write wins). Cross-card transactions are not
// required — scheduling one card never depends on another's state.
type CardStore interface {
	// Create saves a new card.
	// Returns validation errors if the card data is invalid, and
	// ErrDuplicate if a card with the same ID already exists.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetDueCards returns the user's non-suspended cards with a due time at
	// or before now, ordered by due time ascending (oldest first) with ties
	// broken by ID for determinism. limit bounds the result set; limit <= 0
	// means no bound.
	GetDueCards(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// Upsert writes the card's full scheduling state, inserting or
	// overwriting by ID. The operation is idempotent: replaying an upsert
	// with identical data has no additional effect.
	Upsert(ctx context.Context, card *domain.Card) error

	// UpdateState transitions a card to the given state (used for suspend
	// and reactivate). Returns ErrCardNotFound if the card does not exist.
	UpdateState(ctx context.Context, id uuid.UUID, state domain.CardState, now time.Time) error

	// Delete removes a card from the store by its ID. Review log entries
	// referencing the card are removed by the schema's cascade rules.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByState returns the number of the user's cards in each state.
	CountByState(ctx context.Context, userID uuid.UUID) (map[domain.CardState]int, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service via RunInTransaction).
	WithTx(tx *sql.Tx) CardStore
}

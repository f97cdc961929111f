// Package memory provides in-memory implementations of the store
// interfaces. They are safe for concurrent use and are intended for
// tests and for running the server without a database.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/store"
)

// CardStore is an in-memory implementation of store.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Card
}

// NewCardStore creates an empty in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{cards: make(map[uuid.UUID]*domain.Card)}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create.
func (s *CardStore) Create(_ context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; exists {
		return store.ErrDuplicate
	}
	s.cards[card.ID] = card.Clone()
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

// GetDueCards implements store.CardStore.GetDueCards.
func (s *CardStore) GetDueCards(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []*domain.Card
	for _, card := range s.cards {
		if card.UserID != userID || card.State == domain.CardStateSuspended {
			continue
		}
		if card.IsDue(now) {
			due = append(due, card.Clone())
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].ID.String() < due[j].ID.String()
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Upsert implements store.CardStore.Upsert.
func (s *CardStore) Upsert(_ context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards[card.ID] = card.Clone()
	return nil
}

// UpdateState implements store.CardStore.UpdateState.
func (s *CardStore) UpdateState(
	_ context.Context,
	id uuid.UUID,
	state domain.CardState,
	now time.Time,
) error {
	if !state.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidCardState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	card.State = state
	card.UpdatedAt = now
	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	return nil
}

// CountByState implements store.CardStore.CountByState.
func (s *CardStore) CountByState(
	_ context.Context,
	userID uuid.UUID,
) (map[domain.CardState]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.CardState]int)
	for _, card := range s.cards {
		if card.UserID == userID {
			counts[card.State]++
		}
	}
	return counts, nil
}

// WithTx implements store.CardStore.WithTx. The in-memory store has no
// transaction support; each operation is atomic on its own.
func (s *CardStore) WithTx(_ *sql.Tx) store.CardStore {
	return s
}

// UserStore is an in-memory implementation of store.UserStore.
type UserStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	byEmail map[string]uuid.UUID
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	clone := *user
	clone.Password = ""
	s.users[user.ID] = &clone
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *s.users[id]
	return &clone, nil
}

// ReviewLogStore is an in-memory implementation of store.ReviewLogStore.
type ReviewLogStore struct {
	mu      sync.RWMutex
	entries []*domain.ReviewLog
}

// NewReviewLogStore creates an empty in-memory review log store.
func NewReviewLogStore() *ReviewLogStore {
	return &ReviewLogStore{}
}

// Ensure ReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create.
func (s *ReviewLogStore) Create(_ context.Context, entry *domain.ReviewLog) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *entry
	s.entries = append(s.entries, &clone)
	return nil
}

// ListByUser implements store.ReviewLogStore.ListByUser.
func (s *ReviewLogStore) ListByUser(
	_ context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.ReviewLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ReviewLog
	for _, entry := range s.entries {
		if entry.UserID == userID {
			clone := *entry
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ReviewedAt.After(result[j].ReviewedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountByUser implements store.ReviewLogStore.CountByUser.
func (s *ReviewLogStore) CountByUser(
	_ context.Context,
	userID uuid.UUID,
) (total, correct int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.UserID != userID {
			continue
		}
		total++
		if entry.Grade.IsCorrect() {
			correct++
		}
	}
	return total, correct, nil
}

// ReviewDays implements store.ReviewLogStore.ReviewDays.
func (s *ReviewLogStore) ReviewDays(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	backDays int,
) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := now.UTC().AddDate(0, 0, -backDays)
	seen := make(map[time.Time]struct{})
	for _, entry := range s.entries {
		if entry.UserID != userID || entry.ReviewedAt.Before(since) {
			continue
		}
		t := entry.ReviewedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		seen[day] = struct{}{}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	return days, nil
}

// WithTx implements store.ReviewLogStore.WithTx. The in-memory store has
// no transaction support.
func (s *ReviewLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore {
	return s
}

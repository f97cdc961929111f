package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/domain/srs"
	"github.com/vocably/srs-api/internal/platform/memory"
	"github.com/vocably/srs-api/internal/store"
)

func newCardService(t *testing.T) (CardService, *memory.CardStore) {
	t.Helper()
	cardStore := memory.NewCardStore()
	return NewCardService(cardStore, srs.NewDefaultService(), nil), cardStore
}

func TestCreateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, cardStore := newCardService(t)
	userID := uuid.New()

	card, err := svc.CreateCard(ctx, userID, []byte(`{"keyword":"flor","meaning":"flower"}`), now)
	require.NoError(t, err)

	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, domain.CardStateNew, card.State)
	assert.True(t, card.DueAt.Equal(now))

	stored, err := cardStore.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, stored.ID)
}

func TestCreateCardInvalidContent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newCardService(t)

	_, err := svc.CreateCard(ctx, uuid.New(), []byte(`{broken`), now)
	assert.ErrorIs(t, err, domain.ErrCardContentInvalid)

	_, err = svc.CreateCard(ctx, uuid.New(), nil, now)
	assert.ErrorIs(t, err, domain.ErrCardContentEmpty)
}

func TestGetCardOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newCardService(t)
	owner := uuid.New()

	card, err := svc.CreateCard(ctx, owner, []byte(`{"keyword":"sal"}`), now)
	require.NoError(t, err)

	got, err := svc.GetCard(ctx, owner, card.ID)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)

	// Another user's lookup is rejected, not surfaced as missing.
	_, err = svc.GetCard(ctx, uuid.New(), card.ID)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = svc.GetCard(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestSuspendAndReactivateCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, cardStore := newCardService(t)
	userID := uuid.New()

	card, err := svc.CreateCard(ctx, userID, []byte(`{"keyword":"mesa"}`), now)
	require.NoError(t, err)

	require.NoError(t, svc.SuspendCard(ctx, userID, card.ID, now))

	stored, err := cardStore.GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CardStateSuspended, stored.State)

	// Suspended cards never show up in the due queue.
	due, err := svc.ListDueCards(ctx, userID, now.Add(time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	reactivated, err := svc.ReactivateCard(ctx, userID, card.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.CardStateNew, reactivated.State, "never-reviewed card returns to new")

	// Reactivating an active card is an error.
	_, err = svc.ReactivateCard(ctx, userID, card.ID, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, srs.ErrCardNotSuspended)
}

func TestPostponeCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newCardService(t)
	userID := uuid.New()

	card, err := svc.CreateCard(ctx, userID, []byte(`{"keyword":"vino"}`), now)
	require.NoError(t, err)

	postponed, err := svc.PostponeCard(ctx, userID, card.ID, 3, now)
	require.NoError(t, err)
	assert.True(t, postponed.DueAt.Equal(now.AddDate(0, 0, 3)))

	_, err = svc.PostponeCard(ctx, userID, card.ID, 0, now)
	assert.ErrorIs(t, err, srs.ErrInvalidDays)

	_, err = svc.PostponeCard(ctx, uuid.New(), card.ID, 3, now)
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, cardStore := newCardService(t)
	userID := uuid.New()

	card, err := svc.CreateCard(ctx, userID, []byte(`{"keyword":"pez"}`), now)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteCard(ctx, uuid.New(), card.ID), ErrNotOwned)
	require.NoError(t, svc.DeleteCard(ctx, userID, card.ID))

	_, err = cardStore.GetByID(ctx, card.ID)
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestListDueCardsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, cardStore := newCardService(t)
	userID := uuid.New()

	older, err := domain.NewCard(userID, []byte(`{"keyword":"viejo"}`), now.Add(-2*time.Hour))
	require.NoError(t, err)
	require.NoError(t, cardStore.Create(ctx, older))

	newer, err := domain.NewCard(userID, []byte(`{"keyword":"joven"}`), now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, cardStore.Create(ctx, newer))

	notDue, err := domain.NewCard(userID, []byte(`{"keyword":"futuro"}`), now)
	require.NoError(t, err)
	notDue.DueAt = now.Add(time.Hour)
	require.NoError(t, cardStore.Create(ctx, notDue))

	due, err := svc.ListDueCards(ctx, userID, now, 0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, older.ID, due[0].ID, "oldest due first")
	assert.Equal(t, newer.ID, due[1].ID)
}

package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocably/srs-api/internal/domain"
)

func newTestCard(t *testing.T, now time.Time) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), []byte(`{"keyword":"sol"}`), now)
	require.NoError(t, err, "Failed to create card")
	return card
}

func TestScheduleValidation(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil card", func(t *testing.T) {
		t.Parallel()
		_, err := service.Schedule(nil, domain.ReviewGradeGood, now)
		assert.ErrorIs(t, err, ErrNilCard)
	})

	t.Run("invalid grade", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		_, err := service.Schedule(card, domain.ReviewGrade("perfect"), now)
		assert.ErrorIs(t, err, ErrInvalidGrade)
	})

	t.Run("suspended card", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		card.State = domain.CardStateSuspended
		_, err := service.Schedule(card, domain.ReviewGradeGood, now)
		assert.ErrorIs(t, err, ErrCardSuspended)
	})
}

func TestScheduleEasyOnNewCard(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	card := newTestCard(t, now)

	next, err := service.Schedule(card, domain.ReviewGradeEasy, now)
	require.NoError(t, err)

	assert.Equal(t, 2, next.IntervalDays)
	assert.Equal(t, 1, next.Repetitions)
	assert.InDelta(t, 2.65, next.EaseFactor, 1e-9)
	assert.Equal(t, domain.CardStateLearning, next.State)
	assert.True(t, next.DueAt.Equal(now.AddDate(0, 0, 2)))
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("pushes due date without touching scheduling state", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		card.State = domain.CardStateReview
		card.IntervalDays = 10
		card.Repetitions = 4
		card.DueAt = now.AddDate(0, 0, 2)

		next, err := service.Postpone(card, 3, now)
		require.NoError(t, err)

		assert.True(t, next.DueAt.Equal(now.AddDate(0, 0, 5)), "due date moves from its old value, not from now")
		assert.Equal(t, 10, next.IntervalDays)
		assert.Equal(t, 4, next.Repetitions)
		assert.Equal(t, card.EaseFactor, next.EaseFactor)
		assert.Equal(t, domain.CardStateReview, next.State)
	})

	t.Run("nil card", func(t *testing.T) {
		t.Parallel()
		_, err := service.Postpone(nil, 3, now)
		assert.ErrorIs(t, err, ErrNilCard)
	})

	t.Run("zero days", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		_, err := service.Postpone(card, 0, now)
		assert.ErrorIs(t, err, ErrInvalidDays)
	})

	t.Run("negative days", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		_, err := service.Postpone(card, -2, now)
		assert.ErrorIs(t, err, ErrInvalidDays)
	})
}

func TestReactivate(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		configure func(card *domain.Card)
		wantState domain.CardState
	}{
		{
			name: "never reviewed returns to new",
			configure: func(card *domain.Card) {
				card.State = domain.CardStateSuspended
			},
			wantState: domain.CardStateNew,
		},
		{
			name: "graduated history returns to review",
			configure: func(card *domain.Card) {
				card.State = domain.CardStateSuspended
				card.Repetitions = 3
				card.IntervalDays = 12
				card.LastReviewedAt = now.AddDate(0, 0, -12)
			},
			wantState: domain.CardStateReview,
		},
		{
			name: "partial history returns to learning",
			configure: func(card *domain.Card) {
				card.State = domain.CardStateSuspended
				card.Repetitions = 1
				card.IntervalDays = 1
				card.LastReviewedAt = now.AddDate(0, 0, -1)
			},
			wantState: domain.CardStateLearning,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := newTestCard(t, now)
			tc.configure(card)

			next, err := service.Reactivate(card, now)
			require.NoError(t, err)

			assert.Equal(t, tc.wantState, next.State)
			assert.Equal(t, card.IntervalDays, next.IntervalDays)
			assert.Equal(t, card.EaseFactor, next.EaseFactor)
			assert.Equal(t, card.Repetitions, next.Repetitions)
			assert.True(t, next.DueAt.Equal(card.DueAt), "reactivation leaves the due date alone")
		})
	}

	t.Run("not suspended", func(t *testing.T) {
		t.Parallel()
		card := newTestCard(t, now)
		_, err := service.Reactivate(card, now)
		assert.ErrorIs(t, err, ErrCardNotSuspended)
	})

	t.Run("nil card", func(t *testing.T) {
		t.Parallel()
		_, err := service.Reactivate(nil, now)
		assert.ErrorIs(t, err, ErrNilCard)
	})
}

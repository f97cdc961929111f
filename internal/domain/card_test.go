package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCard(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	card, err := NewCard(userID, []byte(`{"keyword":"agua","meaning":"water"}`), now)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, userID, card.UserID)
	assert.Equal(t, CardStateNew, card.State)
	assert.Equal(t, DefaultEaseFactor, card.EaseFactor)
	assert.Equal(t, 0, card.IntervalDays)
	assert.Equal(t, 0, card.Repetitions)
	assert.True(t, card.DueAt.Equal(now), "new cards are due immediately")
	assert.True(t, card.LastReviewedAt.IsZero())
}

func TestCardValidate(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	valid := func() *Card {
		return &Card{
			ID:           uuid.New(),
			UserID:       uuid.New(),
			Content:      []byte(`{"keyword":"pan"}`),
			State:        CardStateNew,
			EaseFactor:   DefaultEaseFactor,
			IntervalDays: 0,
			Repetitions:  0,
			DueAt:        now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	testCases := []struct {
		name      string
		configure func(card *Card)
		wantErr   error
	}{
		{
			name:      "valid card",
			configure: func(card *Card) {},
			wantErr:   nil,
		},
		{
			name:      "missing ID",
			configure: func(card *Card) { card.ID = uuid.Nil },
			wantErr:   ErrCardIDEmpty,
		},
		{
			name:      "missing user ID",
			configure: func(card *Card) { card.UserID = uuid.Nil },
			wantErr:   ErrCardUserIDEmpty,
		},
		{
			name:      "empty content",
			configure: func(card *Card) { card.Content = nil },
			wantErr:   ErrCardContentEmpty,
		},
		{
			name:      "malformed content",
			configure: func(card *Card) { card.Content = []byte(`{"keyword":`) },
			wantErr:   ErrCardContentInvalid,
		},
		{
			name:      "unknown state",
			configure: func(card *Card) { card.State = CardState("archived") },
			wantErr:   ErrInvalidCardState,
		},
		{
			name:      "negative interval",
			configure: func(card *Card) { card.IntervalDays = -1 },
			wantErr:   ErrCardIntervalNegative,
		},
		{
			name:      "ease factor at or below 1.0",
			configure: func(card *Card) { card.EaseFactor = 1.0 },
			wantErr:   ErrCardEaseFactorInvalid,
		},
		{
			name:      "negative repetitions",
			configure: func(card *Card) { card.Repetitions = -1 },
			wantErr:   ErrCardRepetitionsNegative,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := valid()
			tc.configure(card)

			err := card.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestCardIsDue(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		due   time.Time
		state CardState
		want  bool
	}{
		{"due in the past", now.Add(-time.Hour), CardStateReview, true},
		{"due exactly now", now, CardStateLearning, true},
		{"due in the future", now.Add(time.Hour), CardStateReview, false},
		{"suspended cards are never due", now.Add(-time.Hour), CardStateSuspended, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			card := &Card{DueAt: tc.due, State: tc.state}
			assert.Equal(t, tc.want, card.IsDue(now))
		})
	}
}

func TestCardClone(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	card, err := NewCard(uuid.New(), []byte(`{"keyword":"luz"}`), now)
	require.NoError(t, err)

	clone := card.Clone()
	clone.Repetitions = 5
	clone.State = CardStateReview

	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, CardStateNew, card.State)
}

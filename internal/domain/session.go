package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionState represents the lifecycle state of a review session.
type SessionState string

// Possible session states. Active sessions move to completed when every
// card is answered or the wall-clock budget runs out, and to cancelled on
// an explicit cancel. Both are terminal.
const (
	SessionStateActive    SessionState = "active"
	SessionStateCompleted SessionState = "completed"
	SessionStateCancelled SessionState = "cancelled"
)

// Session-specific validation errors
var (
	// ErrSessionNoCards is returned when a session is created with no cards.
	ErrSessionNoCards = errors.New("session must contain at least one card")

	// ErrSessionUserIDEmpty is returned when a session's user ID is empty or nil.
	ErrSessionUserIDEmpty = errors.New("session user ID cannot be empty")
)

// ReviewSession is an ephemeral grouping of due cards for one bounded
// review sitting. It holds a snapshot of due-card references taken at
// start time, not authoritative card state: the card records themselves
// are owned by the store and updated as each answer is submitted.
type ReviewSession struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"user_id"`
	StartedAt      time.Time     `json:"started_at"`
	TargetDuration time.Duration `json:"target_duration"`
	State          SessionState  `json:"state"`
	CardIDs        []uuid.UUID   `json:"card_ids"`
	CompletedItems int           `json:"completed_items"`
	CorrectItems   int           `json:"correct_items"`

	answered map[uuid.UUID]bool
}

// NewReviewSession creates an active session over the given due-card
// snapshot. The card order is preserved as given (oldest due first).
func NewReviewSession(
	userID uuid.UUID,
	cardIDs []uuid.UUID,
	targetDuration time.Duration,
	now time.Time,
) (*ReviewSession, error) {
	if userID == uuid.Nil {
		return nil, ErrSessionUserIDEmpty
	}

	if len(cardIDs) == 0 {
		return nil, ErrSessionNoCards
	}

	ids := make([]uuid.UUID, len(cardIDs))
	copy(ids, cardIDs)

	return &ReviewSession{
		ID:             uuid.New(),
		UserID:         userID,
		StartedAt:      now,
		TargetDuration: targetDuration,
		State:          SessionStateActive,
		CardIDs:        ids,
		answered:       make(map[uuid.UUID]bool, len(ids)),
	}, nil
}

// TotalItems returns the number of cards selected for the session.
func (s *ReviewSession) TotalItems() int {
	return len(s.CardIDs)
}

// Contains reports whether the card is part of the session's due-set.
func (s *ReviewSession) Contains(cardID uuid.UUID) bool {
	for _, id := range s.CardIDs {
		if id == cardID {
			return true
		}
	}
	return false
}

// IsAnswered reports whether an answer has already been recorded for the card.
func (s *ReviewSession) IsAnswered(cardID uuid.UUID) bool {
	return s.answered[cardID]
}

// RecordAnswer marks the card as answered and advances the completion
// counters. The caller is responsible for validating membership and
// answered-state first; RecordAnswer is a plain state mutation.
func (s *ReviewSession) RecordAnswer(cardID uuid.UUID, grade ReviewGrade) {
	s.answered[cardID] = true
	s.CompletedItems++
	if grade.IsCorrect() {
		s.CorrectItems++
	}
}

// AllAnswered reports whether every card in the session has been answered.
func (s *ReviewSession) AllAnswered() bool {
	return s.CompletedItems >= len(s.CardIDs)
}

// IsTimedOut reports whether the session's wall-clock budget has elapsed
// at the given time. The session owns no timer: the caller (typically the
// UI's own tick) polls this lazily.
func (s *ReviewSession) IsTimedOut(now time.Time) bool {
	if s.TargetDuration <= 0 {
		return false
	}
	return now.Sub(s.StartedAt) >= s.TargetDuration
}

// Summarize finalizes the session into a SessionSummary at the given time.
func (s *ReviewSession) Summarize(now time.Time) *SessionSummary {
	summary := &SessionSummary{
		SessionID:     s.ID,
		UserID:        s.UserID,
		TotalItems:    len(s.CardIDs),
		TotalReviewed: s.CompletedItems,
		Correct:       s.CorrectItems,
		StartedAt:     s.StartedAt,
		Duration:      now.Sub(s.StartedAt),
	}
	if s.CompletedItems > 0 {
		summary.Accuracy = float64(s.CorrectItems) / float64(s.CompletedItems)
	}
	return summary
}

// SessionSummary is the aggregate result of a completed review session.
// It is emitted as plain values; whether and how it is logged to analytics
// is the surrounding application's concern.
type SessionSummary struct {
	SessionID     uuid.UUID     `json:"session_id"`
	UserID        uuid.UUID     `json:"user_id"`
	TotalItems    int           `json:"total_items"`
	TotalReviewed int           `json:"total_reviewed"`
	Correct       int           `json:"correct"`
	Accuracy      float64       `json:"accuracy"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}

package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review log validation errors
var (
	// ErrReviewLogCardIDEmpty is returned when a review log's card ID is empty or nil.
	ErrReviewLogCardIDEmpty = errors.New("review log card ID cannot be empty")

	// ErrReviewLogUserIDEmpty is returned when a review log's user ID is empty or nil.
	ErrReviewLogUserIDEmpty = errors.New("review log user ID cannot be empty")

	// ErrReviewLogResponseTimeNegative is returned when a response time is below zero.
	ErrReviewLogResponseTimeNegative = errors.New("response time must be greater than or equal to 0")
)

// ReviewLog is the durable record of a single graded review. Session and
// dashboard statistics are derived from these persisted rows rather than
// from synthesized history.
type ReviewLog struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	CardID             uuid.UUID     `json:"card_id"`
	SessionID          uuid.UUID     `json:"session_id"`
	Grade              ReviewGrade   `json:"grade"`
	ResponseTime       time.Duration `json:"response_time"`
	IntervalDaysBefore int           `json:"interval_days_before"`
	IntervalDaysAfter  int           `json:"interval_days_after"`
	EaseFactorBefore   float64       `json:"ease_factor_before"`
	EaseFactorAfter    float64       `json:"ease_factor_after"`
	ReviewedAt         time.Time     `json:"reviewed_at"`
}

// NewReviewLog builds a review log entry from a card's state before and
// after scheduling.
func NewReviewLog(
	sessionID uuid.UUID,
	before, after *Card,
	grade ReviewGrade,
	responseTime time.Duration,
	now time.Time,
) (*ReviewLog, error) {
	entry := &ReviewLog{
		ID:                 uuid.New(),
		UserID:             before.UserID,
		CardID:             before.ID,
		SessionID:          sessionID,
		Grade:              grade,
		ResponseTime:       responseTime,
		IntervalDaysBefore: before.IntervalDays,
		IntervalDaysAfter:  after.IntervalDays,
		EaseFactorBefore:   before.EaseFactor,
		EaseFactorAfter:    after.EaseFactor,
		ReviewedAt:         now,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the ReviewLog has valid data.
func (l *ReviewLog) Validate() error {
	if l.UserID == uuid.Nil {
		return ErrReviewLogUserIDEmpty
	}

	if l.CardID == uuid.Nil {
		return ErrReviewLogCardIDEmpty
	}

	if !l.Grade.IsValid() {
		return ErrInvalidGrade
	}

	if l.ResponseTime < 0 {
		return ErrReviewLogResponseTimeNegative
	}

	return nil
}

// ReviewStats aggregates a user's persisted review history.
type ReviewStats struct {
	TotalReviews   int     `json:"total_reviews"`
	CorrectReviews int     `json:"correct_reviews"`
	Accuracy       float64 `json:"accuracy"`
	StreakDays     int     `json:"streak_days"`
	CardsNew       int     `json:"cards_new"`
	CardsLearning  int     `json:"cards_learning"`
	CardsReview    int     `json:"cards_review"`
	CardsSuspended int     `json:"cards_suspended"`
}

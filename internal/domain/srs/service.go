package srs

import (
	"errors"
	"time"

	"github.com/vocably/srs-api/internal/domain"
)

// Common errors
var (
	// ErrNilCard is returned when a nil card is passed to a scheduling operation.
	ErrNilCard = errors.New("card cannot be nil")

	// ErrInvalidGrade is returned when a grade is outside the defined set.
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrCardSuspended is returned when a suspended card is scheduled.
	// Suspended cards must be reactivated before they can be reviewed.
	ErrCardSuspended = errors.New("cannot schedule a suspended card")

	// ErrInvalidDays is returned when a postponement is under one day.
	ErrInvalidDays = errors.New("postpone days must be at least 1")

	// ErrCardNotSuspended is returned when a non-suspended card is reactivated.
	ErrCardNotSuspended = errors.New("card is not suspended")
)

// Service defines the interface for scheduling operations. All methods are
// pure computations: the current time is injected, the input card is never
// mutated, and identical inputs always produce identical outputs.
type Service interface {
	// Schedule computes a card's next scheduling state for a review grade.
	// Returns ErrInvalidGrade for grades outside the defined set and
	// ErrCardSuspended for suspended cards.
	Schedule(card *domain.Card, grade domain.ReviewGrade, now time.Time) (*domain.Card, error)

	// Postpone pushes the card's due date forward by the given number of
	// days without touching its interval, ease factor, or state.
	Postpone(card *domain.Card, days int, now time.Time) (*domain.Card, error)

	// Reactivate returns a suspended card to the learning state implied by
	// its accumulated history. Scheduling fields are left untouched; a card
	// whose due date passed while suspended is immediately due again.
	Reactivate(card *domain.Card, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(
	card *domain.Card,
	grade domain.ReviewGrade,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !grade.IsValid() {
		return nil, ErrInvalidGrade
	}

	if card.State == domain.CardStateSuspended {
		return nil, ErrCardSuspended
	}

	return schedule(card, grade, now, s.params), nil
}

// Postpone implements the Service interface.
func (s *defaultService) Postpone(
	card *domain.Card,
	days int,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := card.Clone()
	next.DueAt = card.DueAt.AddDate(0, 0, days)
	next.UpdatedAt = now

	return next, nil
}

// Reactivate implements the Service interface.
func (s *defaultService) Reactivate(
	card *domain.Card,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if card.State != domain.CardStateSuspended {
		return nil, ErrCardNotSuspended
	}

	next := card.Clone()
	next.UpdatedAt = now

	switch {
	case card.LastReviewedAt.IsZero():
		next.State = domain.CardStateNew
	case card.Repetitions >= s.params.GraduationRepetitions &&
		card.IntervalDays >= s.params.GraduationIntervalDays:
		next.State = domain.CardStateReview
	default:
		next.State = domain.CardStateLearning
	}

	return next, nil
}

package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CardState represents a card's position in the learning lifecycle.
type CardState string

// Possible card states. Cards move new → learning → review on successful
// recalls; a "forgot" grade returns a card to learning but never to new.
// Suspended cards are excluded from due queries until reactivated.
const (
	CardStateNew       CardState = "new"
	CardStateLearning  CardState = "learning"
	CardStateReview    CardState = "review"
	CardStateSuspended CardState = "suspended"
)

// IsValid reports whether the state is one of the defined values.
func (s CardState) IsValid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateSuspended:
		return true
	default:
		return false
	}
}

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = errors.New("card user ID cannot be empty")

	// ErrCardContentEmpty is returned when a card's content is empty.
	ErrCardContentEmpty = errors.New("card content cannot be empty")

	// ErrCardContentInvalid is returned when a card's content is not valid JSON.
	ErrCardContentInvalid = errors.New("card content must be valid JSON")

	// ErrCardIntervalNegative is returned when a card's interval is below zero.
	ErrCardIntervalNegative = errors.New("interval days must be greater than or equal to 0")

	// ErrCardEaseFactorInvalid is returned when a card's ease factor is not above 1.0.
	ErrCardEaseFactorInvalid = errors.New("ease factor must be greater than 1.0")

	// ErrCardRepetitionsNegative is returned when a card's repetition count is below zero.
	ErrCardRepetitionsNegative = errors.New("repetitions must be greater than or equal to 0")
)

// DefaultEaseFactor is the starting ease factor for newly created cards.
const DefaultEaseFactor = 2.5

// Card is a learning item together with its scheduling state.
//
// The content is stored as an opaque JSON structure the engine never
// interprets: the client supplies keyword text, audio and image URLs, and
// whatever else it needs back at review time.
//
// DueAt is always derived from the review time plus the interval; it is
// never set independently outside of the scheduler.
type Card struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Content        json.RawMessage `json:"content"`
	State          CardState       `json:"state"`
	EaseFactor     float64         `json:"ease_factor"`
	IntervalDays   int             `json:"interval_days"`
	Repetitions    int             `json:"repetitions"`
	DueAt          time.Time       `json:"due_at"`
	LastReviewedAt time.Time       `json:"last_reviewed_at"` // Zero when never reviewed
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CardContent is the conventional shape of the content field. Cards may
// carry additional fields; the engine passes the raw JSON through unchanged.
type CardContent struct {
	Keyword  string `json:"keyword"`
	Meaning  string `json:"meaning"`
	AudioURL string `json:"audio_url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// NewCard creates a new Card for the given user with the given content.
// The card starts in the "new" state with the default ease factor and is
// due immediately.
func NewCard(userID uuid.UUID, content json.RawMessage, now time.Time) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		UserID:       userID,
		Content:      content,
		State:        CardStateNew,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		DueAt:        now, // Reviewable immediately
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if len(c.Content) == 0 {
		return ErrCardContentEmpty
	}

	var js json.RawMessage
	if err := json.Unmarshal(c.Content, &js); err != nil {
		return ErrCardContentInvalid
	}

	if !c.State.IsValid() {
		return ErrInvalidCardState
	}

	if c.IntervalDays < 0 {
		return ErrCardIntervalNegative
	}

	if c.EaseFactor <= 1.0 {
		return ErrCardEaseFactorInvalid
	}

	if c.Repetitions < 0 {
		return ErrCardRepetitionsNegative
	}

	return nil
}

// IsDue reports whether the card is reviewable at the given time.
// Suspended cards are never due.
func (c *Card) IsDue(now time.Time) bool {
	return c.State != CardStateSuspended && !c.DueAt.After(now)
}

// Clone returns a copy of the card. The content slice is shared; callers
// treat content as immutable.
func (c *Card) Clone() *Card {
	out := *c
	return &out
}

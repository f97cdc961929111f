package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
)

// RegisterRequest represents the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest represents the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents the response for successful authentication.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateCardRequest represents the payload for creating a card. Content
// is stored opaquely; the server only requires that it is valid JSON.
type CreateCardRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

// PostponeRequest represents the payload for postponing a card's review.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// AnswerRequest represents the payload for answering a card in the
// active review session. Exactly one of Grade or Assessment must be set:
// Grade uses the four-grade scheme directly, Assessment the three-option
// self-rating shown by the mobile client.
type AnswerRequest struct {
	CardID         string `json:"card_id"    validate:"required,uuid"`
	Grade          string `json:"grade"      validate:"omitempty,oneof=forgot hard good easy"`
	Assessment     string `json:"assessment" validate:"omitempty,oneof=instantly_got_it had_to_think forgot"`
	ResponseTimeMs int64  `json:"response_time_ms" validate:"omitempty,min=0"`
}

// CardResponse represents the response data for a card.
type CardResponse struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Content        interface{} `json:"content"`
	State          string      `json:"state"`
	EaseFactor     float64     `json:"ease_factor"`
	IntervalDays   int         `json:"interval_days"`
	Repetitions    int         `json:"repetitions"`
	DueAt          time.Time   `json:"due_at"`
	LastReviewedAt *time.Time  `json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// SessionResponse represents an active session's progress.
type SessionResponse struct {
	ID             string         `json:"id"`
	StartedAt      time.Time      `json:"started_at"`
	State          string         `json:"state"`
	TotalItems     int            `json:"total_items"`
	CompletedItems int            `json:"completed_items"`
	CorrectItems   int            `json:"correct_items"`
	Cards          []CardResponse `json:"cards,omitempty"`
}

// SummaryResponse represents a finished session's summary.
type SummaryResponse struct {
	SessionID     string    `json:"session_id"`
	TotalItems    int       `json:"total_items"`
	TotalReviewed int       `json:"total_reviewed"`
	Correct       int       `json:"correct"`
	Accuracy      float64   `json:"accuracy"`
	StartedAt     time.Time `json:"started_at"`
	DurationMs    int64     `json:"duration_ms"`
}

// AnswerResponse represents the result of answering one card.
type AnswerResponse struct {
	Card      CardResponse     `json:"card"`
	Answered  int              `json:"answered"`
	Remaining int              `json:"remaining"`
	Summary   *SummaryResponse `json:"summary,omitempty"`
}

// cardToResponse converts a domain.Card to a CardResponse.
func cardToResponse(card *domain.Card) CardResponse {
	var content interface{}
	if err := json.Unmarshal(card.Content, &content); err != nil {
		// In case we can't unmarshal, return raw bytes as a string representation
		content = string(card.Content)
	}

	resp := CardResponse{
		ID:           card.ID.String(),
		UserID:       card.UserID.String(),
		Content:      content,
		State:        string(card.State),
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
		DueAt:        card.DueAt,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
	if !card.LastReviewedAt.IsZero() {
		t := card.LastReviewedAt
		resp.LastReviewedAt = &t
	}
	return resp
}

// summaryToResponse converts a domain.SessionSummary to a SummaryResponse.
func summaryToResponse(summary *domain.SessionSummary) *SummaryResponse {
	if summary == nil {
		return nil
	}
	return &SummaryResponse{
		SessionID:     summary.SessionID.String(),
		TotalItems:    summary.TotalItems,
		TotalReviewed: summary.TotalReviewed,
		Correct:       summary.Correct,
		Accuracy:      summary.Accuracy,
		StartedAt:     summary.StartedAt,
		DurationMs:    summary.Duration.Milliseconds(),
	}
}

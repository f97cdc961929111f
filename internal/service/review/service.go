// Package review implements the review session lifecycle: starting a
// session over the due queue, grading answers through the scheduler, and
// finalizing sessions into summaries.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
)

// AnswerResult is returned by SubmitAnswer. It carries the rescheduled
// card along with the session's progress after the answer was recorded.
type AnswerResult struct {
	// Card is the card with its updated scheduling state.
	Card *domain.Card

	// Answered is the number of cards answered so far, including this one.
	Answered int

	// Remaining is the number of unanswered cards left in the session.
	Remaining int

	// Summary is non-nil when this answer completed the session.
	Summary *domain.SessionSummary
}

// ReviewService provides methods for running review sessions over a
// user's due cards. A user has at most one active session at a time;
// operations on a user's session are processed in strict arrival order.
type ReviewService interface {
	// StartSession begins a new review session for the user, filling it
	// with the user's due cards (oldest due first) up to the configured
	// session size.
	//
	// Returns ErrNoCardsDue if the user has nothing due, and
	// ErrSessionInProgress if the user already has an active session
	// that has not timed out.
	StartSession(
		ctx context.Context,
		userID uuid.UUID,
		now time.Time,
	) (*domain.ReviewSession, []*domain.Card, error)

	// SubmitAnswer grades one card in the user's active session. The
	// card is rescheduled, and the updated card plus a review log entry
	// are persisted before the session's progress advances. A failed
	// submit leaves the session active and the answer retryable.
	//
	// Returns ErrNoActiveSession if the user has no active session (or
	// it timed out), and ErrCardNotInSession if the card is not part of
	// the session or was already answered.
	SubmitAnswer(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		grade domain.ReviewGrade,
		responseTime time.Duration,
		now time.Time,
	) (*AnswerResult, error)

	// CancelSession cancels the user's active session. Already-committed
	// answers are kept; nothing is rolled back. Cancelling when no
	// session is active is a no-op.
	CancelSession(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.SessionSummary, error)

	// GetSession returns the user's active session.
	// Returns ErrNoActiveSession if there is none or it has timed out
	// (a timed-out session is finalized before this returns).
	GetSession(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewSession, error)
}

// Common error types for ReviewService
var (
	// ErrNoCardsDue indicates that the user has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrSessionInProgress indicates the user already has an active session.
	ErrSessionInProgress = errors.New("a review session is already in progress")

	// ErrNoActiveSession indicates the user has no active session.
	ErrNoActiveSession = errors.New("no active review session")

	// ErrCardNotInSession indicates the card is not part of the active
	// session, or has already been answered in it.
	ErrCardNotInSession = errors.New("card is not pending in the active session")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewStartSessionError returns a new ServiceError for the start_session operation.
func NewStartSessionError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "start_session",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answer",
		Message:   message,
		Err:       err,
	}
}

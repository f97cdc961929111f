package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidGrade is returned when a review grade is outside the
	// defined set (forgot, hard, good, easy).
	ErrInvalidGrade = errors.New("invalid review grade")

	// ErrInvalidSelfAssessment is returned when a self-assessment value
	// cannot be mapped onto a review grade.
	ErrInvalidSelfAssessment = errors.New("invalid self-assessment")

	// ErrInvalidCardState is returned when a card state is not one of
	// new, learning, review, or suspended.
	ErrInvalidCardState = errors.New("invalid card state")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

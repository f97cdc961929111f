package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/api/shared"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/platform/clock"
	"github.com/vocably/srs-api/internal/platform/logger"
	"github.com/vocably/srs-api/internal/redact"
	"github.com/vocably/srs-api/internal/service/review"
)

// SessionHandler handles review session HTTP requests.
type SessionHandler struct {
	reviewService review.ReviewService
	clock         clock.Clock
	logger        *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	reviewService review.ReviewService,
	clk clock.Clock,
	logger *slog.Logger,
) *SessionHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		reviewService: reviewService,
		clock:         clk,
		logger:        logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /sessions requests. It starts a review
// session over the user's due cards and returns the session with its
// card contents.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	session, cards, err := h.reviewService.StartSession(r.Context(), userID, h.clock.Now())

	// Special case: no cards due for review
	if errors.Is(err, review.ErrNoCardsDue) {
		log.Debug("no cards due for review", slog.String("user_id", userID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to start review session"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session, cards))
}

// SubmitAnswer handles POST /sessions/answer requests. The answer carries
// either a four-grade value or a three-option self-assessment.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	grade, err := resolveGrade(req)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, GetSafeErrorMessage(err), err)
		return
	}

	result, err := h.reviewService.SubmitAnswer(
		r.Context(),
		userID,
		cardID,
		grade,
		time.Duration(req.ResponseTimeMs)*time.Millisecond,
		h.clock.Now(),
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit answer"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("answer submitted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("grade", string(grade)))

	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		Card:      cardToResponse(result.Card),
		Answered:  result.Answered,
		Remaining: result.Remaining,
		Summary:   summaryToResponse(result.Summary),
	})
}

// GetSession handles GET /sessions requests, returning the active
// session's progress.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	session, err := h.reviewService.GetSession(r.Context(), userID, h.clock.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session, nil))
}

// CancelSession handles DELETE /sessions requests. Cancelling is
// idempotent; the summary of the cancelled session is returned when one
// was active.
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	summary, err := h.reviewService.CancelSession(r.Context(), userID, h.clock.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to cancel session", err)
		return
	}

	if summary == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(summary))
}

// resolveGrade maps the request's grade or self-assessment onto a review
// grade, requiring exactly one of the two.
func resolveGrade(req AnswerRequest) (domain.ReviewGrade, error) {
	switch {
	case req.Grade != "" && req.Assessment != "":
		return "", domain.ErrInvalidSelfAssessment
	case req.Grade != "":
		grade := domain.ReviewGrade(req.Grade)
		if !grade.IsValid() {
			return "", domain.ErrInvalidGrade
		}
		return grade, nil
	case req.Assessment != "":
		return domain.SelfAssessment(req.Assessment).Grade()
	default:
		return "", domain.ErrInvalidGrade
	}
}

// sessionToResponse converts a session (and optionally its card
// contents) into a SessionResponse.
func sessionToResponse(session *domain.ReviewSession, cards []*domain.Card) SessionResponse {
	resp := SessionResponse{
		ID:             session.ID.String(),
		StartedAt:      session.StartedAt,
		State:          string(session.State),
		TotalItems:     session.TotalItems(),
		CompletedItems: session.CompletedItems,
		CorrectItems:   session.CorrectItems,
	}
	for _, card := range cards {
		resp.Cards = append(resp.Cards, cardToResponse(card))
	}
	return resp
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vocably/srs-api/internal/api/middleware"
	"github.com/vocably/srs-api/internal/config"
	"github.com/vocably/srs-api/internal/domain/srs"
	"github.com/vocably/srs-api/internal/platform/clock"
	"github.com/vocably/srs-api/internal/platform/memory"
	"github.com/vocably/srs-api/internal/service"
	"github.com/vocably/srs-api/internal/service/auth"
	"github.com/vocably/srs-api/internal/service/review"
)

// testServer wires the full handler stack over in-memory stores with a
// fixed clock.
type testServer struct {
	router *chi.Mux
	clock  *clock.Fixed
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)

	cardStore := memory.NewCardStore()
	userStore := memory.NewUserStore()
	logStore := memory.NewReviewLogStore()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-key-thats-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	verifier := auth.NewBcryptVerifier(bcrypt.MinCost)

	srsService := srs.NewDefaultService()
	userService := service.NewUserService(userStore, verifier, verifier, nil)
	cardService := service.NewCardService(cardStore, srsService, nil)
	statsService := service.NewStatsService(cardStore, logStore, nil)
	reviewService := review.NewReviewService(nil, cardStore, logStore, srsService, review.Options{
		MaxCards:       20,
		TargetDuration: 5 * time.Minute,
	}, nil)

	authHandler := NewAuthHandler(userService, jwtService)
	cardHandler := NewCardHandler(cardService, clk, nil)
	sessionHandler := NewSessionHandler(reviewService, clk, nil)
	statsHandler := NewStatsHandler(statsService, clk, nil)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/cards", cardHandler.CreateCard)
			r.Get("/cards/due", cardHandler.GetDueCards)
			r.Get("/cards/{id}", cardHandler.GetCard)
			r.Delete("/cards/{id}", cardHandler.DeleteCard)
			r.Post("/cards/{id}/suspend", cardHandler.SuspendCard)
			r.Post("/cards/{id}/reactivate", cardHandler.ReactivateCard)
			r.Post("/cards/{id}/postpone", cardHandler.PostponeCard)

			r.Post("/sessions", sessionHandler.StartSession)
			r.Get("/sessions", sessionHandler.GetSession)
			r.Delete("/sessions", sessionHandler.CancelSession)
			r.Post("/sessions/answer", sessionHandler.SubmitAnswer)

			r.Get("/stats", statsHandler.GetStats)
		})
	})

	return &testServer{router: r, clock: clk}
}

// do issues a request against the test router, JSON-encoding body when it
// is non-nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// registerUser registers a fresh user and returns its access token.
func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:    email,
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// createCard creates a card for the token's user and returns its ID.
func (ts *testServer) createCard(t *testing.T, token, keyword string) string {
	t.Helper()

	rec := ts.do(t, http.MethodPost, "/api/cards", token, CreateCardRequest{
		Content: json.RawMessage(fmt.Sprintf(`{"keyword":%q}`, keyword)),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var card CardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	return card.ID
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.registerUser(t, "learner@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Email:    "learner@example.com",
			Password: "another long password",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email:    "learner@example.com",
			Password: "correct horse battery",
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
			Email:    "learner@example.com",
			Password: "wrong password here",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("register with short password", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
			Email:    "other@example.com",
			Password: "short",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthenticationRequired(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/cards/due", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/cards/due", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCardLifecycle(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "cards@example.com")

	cardID := ts.createCard(t, token, "casa")

	t.Run("get card", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/cards/"+cardID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var card CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
		assert.Equal(t, "new", card.State)
		assert.Nil(t, card.LastReviewedAt)
	})

	t.Run("due list includes the new card", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/cards/due", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var cards []CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
		require.Len(t, cards, 1)
		assert.Equal(t, cardID, cards[0].ID)
	})

	t.Run("another user cannot touch the card", func(t *testing.T) {
		otherToken := ts.registerUser(t, "intruder@example.com")
		rec := ts.do(t, http.MethodGet, "/api/cards/"+cardID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("suspend and reactivate", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/cards/"+cardID+"/suspend", token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = ts.do(t, http.MethodGet, "/api/cards/due", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var cards []CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
		assert.Empty(t, cards)

		rec = ts.do(t, http.MethodPost, "/api/cards/"+cardID+"/reactivate", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var card CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
		assert.Equal(t, "new", card.State)

		// Reactivating twice is a conflict.
		rec = ts.do(t, http.MethodPost, "/api/cards/"+cardID+"/reactivate", token, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("postpone", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/cards/"+cardID+"/postpone", token, PostponeRequest{Days: 3})
		require.Equal(t, http.StatusOK, rec.Code)

		var card CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
		assert.True(t, card.DueAt.After(ts.clock.Now().AddDate(0, 0, 2)))

		rec = ts.do(t, http.MethodPost, "/api/cards/"+cardID+"/postpone", token, PostponeRequest{Days: 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := ts.do(t, http.MethodDelete, "/api/cards/"+cardID, token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = ts.do(t, http.MethodGet, "/api/cards/"+cardID, token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed card id", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/api/cards/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCreateCardRejectsBadContent(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "content@example.com")

	rec := ts.do(t, http.MethodPost, "/api/cards", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "session@example.com")

	firstID := ts.createCard(t, token, "uno")
	secondID := ts.createCard(t, token, "dos")

	// Start a session over both due cards.
	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "active", session.State)
	assert.Equal(t, 2, session.TotalItems)
	require.Len(t, session.Cards, 2)

	// Starting again conflicts with the active session.
	rec = ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Answer the first card with a four-grade value.
	rec = ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
		CardID:         firstID,
		Grade:          "good",
		ResponseTimeMs: 1800,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var answer AnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, 1, answer.Answered)
	assert.Equal(t, 1, answer.Remaining)
	assert.Nil(t, answer.Summary)
	assert.Equal(t, 1, answer.Card.IntervalDays)

	// Progress shows through GET /sessions.
	rec = ts.do(t, http.MethodGet, "/api/sessions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, 1, session.CompletedItems)

	// Answer the second card with a self-assessment; the session completes.
	rec = ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
		CardID:     secondID,
		Assessment: "forgot",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	require.NotNil(t, answer.Summary)
	assert.Equal(t, 2, answer.Summary.TotalReviewed)
	assert.Equal(t, 1, answer.Summary.Correct)
	assert.InDelta(t, 0.5, answer.Summary.Accuracy, 1e-9)

	// No active session remains.
	rec = ts.do(t, http.MethodGet, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Stats reflect the two persisted reviews.
	rec = ts.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, float64(2), stats["total_reviews"])
	assert.Equal(t, float64(1), stats["correct_reviews"])
	assert.Equal(t, float64(1), stats["streak_days"])
}

func TestStartSessionNoCards(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "empty@example.com")

	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmitAnswerValidation(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "answers@example.com")
	cardID := ts.createCard(t, token, "tres")

	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("grade and assessment together", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
			CardID:     cardID,
			Grade:      "good",
			Assessment: "forgot",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("neither grade nor assessment", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
			CardID: cardID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown grade", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
			CardID: cardID,
			Grade:  "again",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed card id", func(t *testing.T) {
		rec := ts.do(t, http.MethodPost, "/api/sessions/answer", token, AnswerRequest{
			CardID: "nope",
			Grade:  "good",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCancelSession(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "cancel@example.com")
	ts.createCard(t, token, "cuatro")

	// Nothing active yet; cancel is a no-op.
	rec := ts.do(t, http.MethodDelete, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/sessions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalItems)
	assert.Equal(t, 0, summary.TotalReviewed)
}

func TestSessionTimeout(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	token := ts.registerUser(t, "timeout@example.com")
	ts.createCard(t, token, "cinco")

	rec := ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Advance past the five-minute budget; the session finalizes lazily.
	ts.clock.Advance(6 * time.Minute)

	rec = ts.do(t, http.MethodGet, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The card is still due, so a fresh session starts.
	rec = ts.do(t, http.MethodPost, "/api/sessions", token, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

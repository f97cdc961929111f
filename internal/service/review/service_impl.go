package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/domain/srs"
	"github.com/vocably/srs-api/internal/platform/logger"
	"github.com/vocably/srs-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// Options bound the sessions the service creates.
type Options struct {
	// MaxCards caps the number of due cards pulled into one session.
	// Zero means no cap.
	MaxCards int

	// TargetDuration is the wall-clock budget per session. Zero disables
	// the timeout.
	TargetDuration time.Duration
}

// reviewServiceImpl implements the ReviewService interface. Active
// sessions live in memory, keyed by user; card and review log state is
// persisted through the stores as each answer lands.
type reviewServiceImpl struct {
	db         *sql.DB
	cardStore  store.CardStore
	logStore   store.ReviewLogStore
	srsService srs.Service
	opts       Options
	logger     *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.ReviewSession
	userMu   map[uuid.UUID]*sync.Mutex
}

// NewReviewService creates a new ReviewService implementation. db may be
// nil when the stores do not support transactions (e.g. the in-memory
// backend); answers are then persisted as two sequential writes.
func NewReviewService(
	db *sql.DB,
	cardStore store.CardStore,
	logStore store.ReviewLogStore,
	srsService srs.Service,
	opts Options,
	logger *slog.Logger,
) ReviewService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if logStore == nil {
		panic("logStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:         db,
		cardStore:  cardStore,
		logStore:   logStore,
		srsService: srsService,
		opts:       opts,
		logger:     logger.With(slog.String("component", "review_service")),
		sessions:   make(map[uuid.UUID]*domain.ReviewSession),
		userMu:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockUser returns the per-user mutex, creating it on first use. Holding
// it serializes a user's session operations in arrival order without
// blocking other users' reviews.
func (s *reviewServiceImpl) lockUser(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	mu, ok := s.userMu[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userMu[userID] = mu
	}
	return mu
}

// activeSession returns the user's session if it is still active at now.
// A timed-out session is finalized and removed before returning.
func (s *reviewServiceImpl) activeSession(
	userID uuid.UUID,
	now time.Time,
) (*domain.ReviewSession, *domain.SessionSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}

	if session.IsTimedOut(now) {
		session.State = domain.SessionStateCompleted
		delete(s.sessions, userID)
		return nil, session.Summarize(now)
	}

	return session, nil
}

// StartSession implements ReviewService.StartSession.
func (s *reviewServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.ReviewSession, []*domain.Card, error) {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if session, summary := s.activeSession(userID, now); session != nil {
		log.Debug("session already in progress",
			slog.String("user_id", userID.String()),
			slog.String("session_id", session.ID.String()))
		return nil, nil, ErrSessionInProgress
	} else if summary != nil {
		log.Info("finalized timed-out session before starting a new one",
			slog.String("user_id", userID.String()),
			slog.String("session_id", summary.SessionID.String()),
			slog.Int("total_reviewed", summary.TotalReviewed))
	}

	cards, err := s.cardStore.GetDueCards(ctx, userID, now, s.opts.MaxCards)
	if err != nil {
		log.Error("failed to load due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, nil, NewStartSessionError("failed to load due cards", err)
	}

	if len(cards) == 0 {
		log.Debug("no cards due", slog.String("user_id", userID.String()))
		return nil, nil, ErrNoCardsDue
	}

	cardIDs := make([]uuid.UUID, len(cards))
	for i, card := range cards {
		cardIDs[i] = card.ID
	}

	session, err := domain.NewReviewSession(userID, cardIDs, s.opts.TargetDuration, now)
	if err != nil {
		return nil, nil, NewStartSessionError("failed to create session", err)
	}

	s.mu.Lock()
	s.sessions[userID] = session
	s.mu.Unlock()

	log.Info("review session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("total_items", session.TotalItems()))

	return session, cards, nil
}

// SubmitAnswer implements ReviewService.SubmitAnswer.
func (s *reviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	grade domain.ReviewGrade,
	responseTime time.Duration,
	now time.Time,
) (*AnswerResult, error) {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if !grade.IsValid() {
		return nil, srs.ErrInvalidGrade
	}

	session, _ := s.activeSession(userID, now)
	if session == nil {
		return nil, ErrNoActiveSession
	}

	if !session.Contains(cardID) || session.IsAnswered(cardID) {
		log.Warn("card not pending in session",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("session_id", session.ID.String()))
		return nil, ErrCardNotInSession
	}

	before, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, store.ErrCardNotFound
		}
		return nil, NewSubmitAnswerError("failed to load card", err)
	}

	if before.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	after, err := s.srsService.Schedule(before, grade, now)
	if err != nil {
		log.Error("failed to schedule card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	entry, err := domain.NewReviewLog(session.ID, before, after, grade, responseTime, now)
	if err != nil {
		return nil, NewSubmitAnswerError("failed to build review log entry", err)
	}

	// Card state and review log commit together; the in-session progress
	// counter only advances after the write is durable, so a failure here
	// leaves the answer retryable.
	if err := s.persistAnswer(ctx, after, entry); err != nil {
		log.Error("failed to persist answer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitAnswerError("failed to persist answer", err)
	}

	session.RecordAnswer(cardID, grade)

	result := &AnswerResult{
		Card:      after,
		Answered:  session.CompletedItems,
		Remaining: session.TotalItems() - session.CompletedItems,
	}

	if session.AllAnswered() {
		session.State = domain.SessionStateCompleted
		result.Summary = session.Summarize(now)

		s.mu.Lock()
		delete(s.sessions, userID)
		s.mu.Unlock()

		log.Info("review session completed",
			slog.String("user_id", userID.String()),
			slog.String("session_id", session.ID.String()),
			slog.Int("total_reviewed", result.Summary.TotalReviewed),
			slog.Float64("accuracy", result.Summary.Accuracy))
	}

	log.Debug("answer recorded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("grade", string(grade)),
		slog.Int("interval_days", after.IntervalDays),
		slog.Time("due_at", after.DueAt))

	return result, nil
}

// persistAnswer writes the rescheduled card and its review log entry,
// atomically when a transactional database is available.
func (s *reviewServiceImpl) persistAnswer(
	ctx context.Context,
	card *domain.Card,
	entry *domain.ReviewLog,
) error {
	if s.db == nil {
		if err := s.cardStore.Upsert(ctx, card); err != nil {
			return fmt.Errorf("failed to upsert card: %w", err)
		}
		if err := s.logStore.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create review log entry: %w", err)
		}
		return nil
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardStore.WithTx(tx).Upsert(ctx, card); err != nil {
			return fmt.Errorf("failed to upsert card: %w", err)
		}
		if err := s.logStore.WithTx(tx).Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to create review log entry: %w", err)
		}
		return nil
	})
}

// CancelSession implements ReviewService.CancelSession.
func (s *reviewServiceImpl) CancelSession(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.SessionSummary, error) {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)

	session, summary := s.activeSession(userID, now)
	if session == nil {
		// Either never started or already finalized; cancel is idempotent.
		return summary, nil
	}

	session.State = domain.SessionStateCancelled
	summary = session.Summarize(now)

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	log.Info("review session cancelled",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.Int("total_reviewed", summary.TotalReviewed))

	return summary, nil
}

// GetSession implements ReviewService.GetSession.
func (s *reviewServiceImpl) GetSession(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.ReviewSession, error) {
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	log := logger.FromContextOrDefault(ctx, s.logger)

	session, summary := s.activeSession(userID, now)
	if session == nil {
		if summary != nil {
			log.Info("finalized timed-out session",
				slog.String("user_id", userID.String()),
				slog.String("session_id", summary.SessionID.String()))
		}
		return nil, ErrNoActiveSession
	}

	return session, nil
}

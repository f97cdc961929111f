package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/domain/srs"
	"github.com/vocably/srs-api/internal/platform/logger"
	"github.com/vocably/srs-api/internal/store"
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CardService provides card management operations. Scheduling changes
// driven by reviews belong to the review service; this service covers
// the card lifecycle around them.
type CardService interface {
	// CreateCard creates a new card with the given content for the user.
	// The card starts in the new state and is immediately due.
	CreateCard(ctx context.Context, userID uuid.UUID, content json.RawMessage, now time.Time) (*domain.Card, error)

	// GetCard retrieves a card by its ID.
	// Returns ErrNotOwned if the card belongs to a different user.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// ListDueCards returns the user's due, non-suspended cards, oldest due
	// first. limit <= 0 means no bound.
	ListDueCards(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Card, error)

	// SuspendCard removes a card from the due rotation until it is
	// explicitly reactivated.
	SuspendCard(ctx context.Context, userID, cardID uuid.UUID, now time.Time) error

	// ReactivateCard returns a suspended card to rotation, restoring the
	// state implied by its review history.
	ReactivateCard(ctx context.Context, userID, cardID uuid.UUID, now time.Time) (*domain.Card, error)

	// PostponeCard pushes a card's due date forward by the given number of
	// days without touching its scheduling parameters.
	PostponeCard(ctx context.Context, userID, cardID uuid.UUID, days int, now time.Time) (*domain.Card, error)

	// DeleteCard removes a card permanently.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardStore  store.CardStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewCardService creates a new CardService.
func NewCardService(
	cardStore store.CardStore,
	srsService srs.Service,
	logger *slog.Logger,
) CardService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cardStore:  cardStore,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "card_service")),
	}
}

// CreateCard implements CardService.CreateCard.
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	content json.RawMessage,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(userID, content, now)
	if err != nil {
		log.Debug("invalid card data",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.ID.String()))

	return card, nil
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if card.UserID != userID {
		return nil, ErrNotOwned
	}

	return card, nil
}

// ListDueCards implements CardService.ListDueCards.
func (s *cardServiceImpl) ListDueCards(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.cardStore.GetDueCards(ctx, userID, now, limit)
	if err != nil {
		log.Error("failed to list due cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewCardServiceError("list_due_cards", "failed to query due cards", err)
	}

	return cards, nil
}

// SuspendCard implements CardService.SuspendCard.
func (s *cardServiceImpl) SuspendCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	now time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return err
	}

	if err := s.cardStore.UpdateState(ctx, cardID, domain.CardStateSuspended, now); err != nil {
		log.Error("failed to suspend card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return NewCardServiceError("suspend_card", "failed to update card state", err)
	}

	log.Info("card suspended",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	return nil
}

// ReactivateCard implements CardService.ReactivateCard.
func (s *cardServiceImpl) ReactivateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	reactivated, err := s.srsService.Reactivate(card, now)
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Upsert(ctx, reactivated); err != nil {
		log.Error("failed to reactivate card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("reactivate_card", "failed to save card", err)
	}

	log.Info("card reactivated",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("state", string(reactivated.State)))

	return reactivated, nil
}

// PostponeCard implements CardService.PostponeCard.
func (s *cardServiceImpl) PostponeCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	days int,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	postponed, err := s.srsService.Postpone(card, days, now)
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Upsert(ctx, postponed); err != nil {
		log.Error("failed to postpone card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("postpone_card", "failed to save card", err)
	}

	log.Info("card postponed",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due_at", postponed.DueAt))

	return postponed, nil
}

// DeleteCard implements CardService.DeleteCard.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetCard(ctx, userID, cardID); err != nil {
		return err
	}

	if err := s.cardStore.Delete(ctx, cardID); err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	return nil
}

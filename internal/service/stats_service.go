package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vocably/srs-api/internal/domain"
	"github.com/vocably/srs-api/internal/platform/logger"
	"github.com/vocably/srs-api/internal/store"
)

// streakWindowDays bounds how far back the streak computation looks.
const streakWindowDays = 365

// StatsService derives dashboard statistics from the persisted review
// history and card inventory.
type StatsService interface {
	// GetStats returns the user's aggregate review statistics at now.
	GetStats(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ReviewStats, error)
}

// statsServiceImpl implements the StatsService interface
type statsServiceImpl struct {
	cardStore store.CardStore
	logStore  store.ReviewLogStore
	logger    *slog.Logger
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	cardStore store.CardStore,
	logStore store.ReviewLogStore,
	logger *slog.Logger,
) StatsService {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if logStore == nil {
		panic("logStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &statsServiceImpl{
		cardStore: cardStore,
		logStore:  logStore,
		logger:    logger.With(slog.String("component", "stats_service")),
	}
}

// GetStats implements StatsService.GetStats.
func (s *statsServiceImpl) GetStats(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	total, correct, err := s.logStore.CountByUser(ctx, userID)
	if err != nil {
		log.Error("failed to count reviews",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	days, err := s.logStore.ReviewDays(ctx, userID, now, streakWindowDays)
	if err != nil {
		log.Error("failed to load review days",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	counts, err := s.cardStore.CountByState(ctx, userID)
	if err != nil {
		log.Error("failed to count cards by state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	stats := &domain.ReviewStats{
		TotalReviews:   total,
		CorrectReviews: correct,
		StreakDays:     streak(days, now),
		CardsNew:       counts[domain.CardStateNew],
		CardsLearning:  counts[domain.CardStateLearning],
		CardsReview:    counts[domain.CardStateReview],
		CardsSuspended: counts[domain.CardStateSuspended],
	}
	if total > 0 {
		stats.Accuracy = float64(correct) / float64(total)
	}

	return stats, nil
}

// streak counts consecutive review days ending today or yesterday. days
// must be UTC midnights in descending order, as returned by the store.
// A streak survives a day with no reviews yet (today), but not a full
// missed day.
func streak(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	t := now.UTC()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	expected := today
	if !days[0].Equal(today) {
		expected = today.AddDate(0, 0, -1)
	}

	count := 0
	for _, day := range days {
		if !day.Equal(expected) {
			break
		}
		count++
		expected = expected.AddDate(0, 0, -1)
	}

	return count
}

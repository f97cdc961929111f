package api

import (
	"log/slog"
	"net/http"

	"github.com/vocably/srs-api/internal/api/shared"
	"github.com/vocably/srs-api/internal/platform/clock"
	"github.com/vocably/srs-api/internal/service"
)

// StatsHandler handles review statistics HTTP requests.
type StatsHandler struct {
	statsService service.StatsService
	clock        clock.Clock
	logger       *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(
	statsService service.StatsService,
	clk clock.Clock,
	logger *slog.Logger,
) *StatsHandler {
	if statsService == nil {
		panic("statsService cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsHandler{
		statsService: statsService,
		clock:        clk,
		logger:       logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /stats requests.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.statsService.GetStats(r.Context(), userID, h.clock.Now())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to load statistics", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/age-wisdom/internal/model"
	"github.com/sakif/age-wisdom/internal/service"
)

// StatsHandler serves the aggregate read endpoints.
type StatsHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// HandleAges returns active-post counts per target age.
//
// HTTP: GET /api/ages
//
// RESPONSE: {"ages": [{"target_age": 25, "post_count": 3}, ...]}
//
// Ages with no posts are omitted; the age-picker UI treats a missing age
// as zero.
func (h *StatsHandler) HandleAges(w http.ResponseWriter, r *http.Request) {
	counts, err := h.stats.AgeCounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if counts == nil {
		counts = []model.AgeCount{}
	}

	writeJSON(w, http.StatusOK, struct {
		Ages []model.AgeCount `json:"ages"`
	}{Ages: counts})
}

// HandleSite returns the site-wide stats.
//
// HTTP: GET /api/stats/site
func (h *StatsHandler) HandleSite(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Site(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

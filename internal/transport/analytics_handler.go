package transport

import (
	"errors"
	"net/http"
	"time"

	"gearbox/internal/analytics"
	"gearbox/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultSummaryWindow is the reporting range when the caller gives none
const defaultSummaryWindow = 30 * 24 * time.Hour

// SummaryRangeRequest is the optional custom date range for a summary,
// in epoch milliseconds
type SummaryRangeRequest struct {
	Since int64 `json:"since" validate:"omitempty,gt=0"`
	Until int64 `json:"until" validate:"omitempty,gt=0"`
}

// SummaryResponse wraps a successful proxy response
type SummaryResponse struct {
	Success bool               `json:"success"`
	Data    *analytics.Summary `json:"data"`
}

// AnalyticsHandler proxies traffic reports from the hosted analytics API.
// It sits behind the internal shared-secret middleware; everything past the
// 401 check is a configuration or upstream concern.
type AnalyticsHandler struct {
	client *analytics.Client
	logger *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(client *analytics.Client, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		client: client,
		logger: logger,
	}
}

// RegisterRoutes registers the analytics routes behind the internal auth
// middleware
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router, internalAuth func(http.Handler) http.Handler) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(internalAuth)
		r.Get("/summary", h.GetSummary)
		r.Post("/summary", h.GetSummaryRange)
	})
}

// GetSummary returns the last 30 days of analytics
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	until := time.Now()
	since := until.Add(-defaultSummaryWindow)
	h.respondSummary(w, r, since, until)
}

// GetSummaryRange returns analytics for a caller-provided range, defaulting
// each missing bound to the last 30 days
func (h *AnalyticsHandler) GetSummaryRange(w http.ResponseWriter, r *http.Request) {
	var req SummaryRangeRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Summary range validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	until := time.Now()
	if req.Until > 0 {
		until = time.UnixMilli(req.Until)
	}
	since := until.Add(-defaultSummaryWindow)
	if req.Since > 0 {
		since = time.UnixMilli(req.Since)
	}

	h.respondSummary(w, r, since, until)
}

func (h *AnalyticsHandler) respondSummary(w http.ResponseWriter, r *http.Request, since, until time.Time) {
	summary, err := h.client.Summary(r.Context(), since, until)
	if err != nil {
		if errors.Is(err, analytics.ErrNotConfigured) {
			h.logger.Error("Analytics credentials missing")
			middleware.RespondWithError(w, http.StatusInternalServerError, "missing analytics configuration")
			return
		}

		var upstream *analytics.UpstreamError
		if errors.As(err, &upstream) {
			h.logger.Error("Analytics upstream failed",
				zap.Int("upstream_status", upstream.Status),
			)
			middleware.RespondWithErrorDetails(w, http.StatusInternalServerError,
				"failed to fetch analytics data",
				map[string]interface{}{
					"status": upstream.Status,
					"detail": upstream.Detail,
				})
			return
		}

		h.logger.Error("Analytics request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to fetch analytics data")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SummaryResponse{
		Success: true,
		Data:    summary,
	})
}

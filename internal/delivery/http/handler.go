package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
)

// DiscoveryUsecase is the part of the discovery service the handler needs
type DiscoveryUsecase interface {
	Discover(ctx context.Context, expense *domain.Expense, prefs domain.UserPreferences, progress *domain.ProgressSink) (*domain.DiscoveryResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	discovery DiscoveryUsecase
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(discovery DiscoveryUsecase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{discovery: discovery, logger: logger}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "spendlens-backend",
		"version": "1.0.0",
	})
}

// searchRequest is the JSON body for an alternatives search
type searchRequest struct {
	Expense     domain.Expense         `json:"expense" binding:"required"`
	Preferences domain.UserPreferences `json:"preferences"`
}

// SearchAlternatives runs a discovery run for the posted expense. The
// response status field always distinguishes "found", "no cheaper
// alternatives", and "search failed" so the caller never sees an ambiguous
// empty list.
func (h *Handler) SearchAlternatives(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_request", "error": err.Error()})
		return
	}

	sink := domain.NewProgressSink(64)
	go h.drainProgress(sink)

	result, err := h.discovery.Discover(c.Request.Context(), &req.Expense, req.Preferences, sink)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"alternatives": result.Alternatives,
			"best":         result.Best,
			"sourceErrors": result.SourceErrors,
			"fromCache":    result.FromCache,
		})
	case errors.Is(err, domain.ErrInvalidExpense):
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid_request", "error": err.Error()})
	case errors.Is(err, domain.ErrNoAlternatives):
		resp := gin.H{
			"status":  "no_alternatives",
			"message": "no cheaper alternatives were found for this expense",
		}
		if result != nil && len(result.SourceErrors) > 0 {
			resp["sourceErrors"] = result.SourceErrors
		}
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, domain.ErrSearchFailed):
		resp := gin.H{
			"status":  "search_failed",
			"message": "every provider failed; try again later",
		}
		if result != nil {
			resp["sourceErrors"] = result.SourceErrors
		}
		c.JSON(http.StatusBadGateway, resp)
	default:
		h.logger.Error("discovery failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "internal error"})
	}
}

// drainProgress consumes the run's progress stream. The HTTP surface is
// request/response, so events are surfaced through logs rather than pushed to
// the client.
func (h *Handler) drainProgress(sink *domain.ProgressSink) {
	for ev := range sink.Events() {
		h.logger.Debug("discovery progress",
			zap.String("source", ev.Source),
			zap.String("status", string(ev.Status)),
			zap.Int("percent", ev.Percent),
			zap.String("message", ev.Message))
	}
}

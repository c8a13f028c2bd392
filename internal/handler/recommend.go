// internal/handler/recommend.go
package handler

import (
	"bestcard/internal/domain"
	"bestcard/internal/middleware"
	"bestcard/internal/parser"
	"bestcard/internal/recommend"
	"bestcard/internal/storage"
	"context"
	"errors"
	"log/slog"
	"net/http"

	val "bestcard/internal/validator"

	"github.com/gin-gonic/gin"
)

// Recommender is the orchestrator as seen by the HTTP and bot layers.
type Recommender interface {
	Recommend(ctx context.Context, req domain.RecommendRequest) (*domain.RecommendResponse, error)
}

type RecommendHandler struct {
	service Recommender
	logger  *slog.Logger
}

func NewRecommendHandler(service Recommender, logger *slog.Logger) *RecommendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendHandler{service: service, logger: logger}
}

// Recommend godoc
// @Summary Recommend the best card for a purchase
// @Description Accepts free text, explicit fields, or both (explicit fields win)
// @Tags recommend
// @Accept json
// @Produce json
// @Param request body domain.RecommendRequest true "Purchase"
// @Success 200 {object} domain.RecommendResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/recommend [post]
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req domain.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON: " + err.Error()})
		return
	}
	if err := val.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	resp, err := h.service.Recommend(c.Request.Context(), req)
	if err != nil {
		status, detail := StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Recommend failed", "error", err, "request_id", c.GetString(middleware.RequestIDKey))
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"detail": detail})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StatusFor maps an orchestrator error to an HTTP status and client message.
func StatusFor(err error) (int, string) {
	var ve *recommend.ValidationError
	switch {
	case parser.IsParseError(err), errors.As(err, &ve):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

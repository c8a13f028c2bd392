package handler

import (
	"bestcard/internal/auth"
	"errors"
	"log/slog"
	"net/http"
	"time"

	val "bestcard/internal/validator"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	ClientID     string `json:"client_id" validate:"required,notblank"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthHandler struct {
	tokens  *auth.TokenService
	clients auth.Clients
}

func NewAuthHandler(tokens *auth.TokenService, clients auth.Clients) *AuthHandler {
	return &AuthHandler{tokens: tokens, clients: clients}
}

// Login godoc
// @Summary Issue an API token for a registered client
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Client"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON"})
		return
	}
	if err := val.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !h.clients.Verify(req.ClientID, req.ClientSecret) {
		slog.Warn("Login rejected", "client_id", req.ClientID)
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid client credentials"})
		return
	}

	token, exp, err := h.tokens.GenerateToken(req.ClientID)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyClientID) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		slog.Error("Token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: exp})
}

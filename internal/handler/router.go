package handler

import (
	"bestcard/internal/auth"
	"bestcard/internal/middleware"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterOptions struct {
	Service     Recommender
	Tokens      *auth.TokenService
	Clients     auth.Clients
	RequireAuth bool
	Logger      *slog.Logger
}

// NewRouter builds the gin engine with health, login and recommend routes.
// /recommend stays open; /api/v1/recommend needs a token when RequireAuth is set.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(opts.Logger), gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	recommendHandler := NewRecommendHandler(opts.Service, opts.Logger)
	router.POST("/recommend", recommendHandler.Recommend)

	v1 := router.Group("/api/v1")
	if opts.Tokens != nil {
		v1.POST("/login", NewAuthHandler(opts.Tokens, opts.Clients).Login)
	}

	protected := v1.Group("")
	if opts.RequireAuth && opts.Tokens != nil {
		protected.Use(middleware.NewAuthMiddleware(opts.Tokens).RequireAuth())
	}
	protected.POST("/recommend", recommendHandler.Recommend)

	return router
}

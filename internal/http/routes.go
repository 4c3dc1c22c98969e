package http

import (
	"time"

	"scratch_lottery/internal/config"
	"scratch_lottery/internal/http/handlers"
	"scratch_lottery/internal/http/middleware"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the scratch game API onto the gin engine.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, scratch *service.ScratchService, version string) {
	users := repository.NewUserRepositoryWithInitial(db, cfg.InitialCoins)
	h := handlers.NewHandler(db, cfg.BotToken, users, scratch)
	healthHandler := handlers.NewHealthHandler(db, version)

	apiRateWindow := time.Duration(cfg.APIRateWindow) * time.Second
	gameRateWindow := time.Duration(cfg.GameRateWindow) * time.Second

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, apiRateWindow))

	// Auth
	v1.POST("/auth", h.Auth)

	// User profile
	v1.GET("/me", middleware.JWT(), h.Me)
	v1.GET("/me/transactions", middleware.JWT(), h.MyTransactions)

	// Game rate limiter middleware (per user, not per IP)
	gameRL := middleware.GameRateLimit(cfg.GameRateLimit, gameRateWindow)

	// Scratch game
	v1.POST("/game/scratch/buy", middleware.JWT(), gameRL, h.BuyCard)
	v1.POST("/game/scratch/reveal", middleware.JWT(), gameRL, h.RevealCell)
	v1.GET("/game/scratch/info", h.GameInfo)

	// Cards
	v1.GET("/cards", middleware.JWT(), h.MyCards)
	v1.GET("/cards/:id/image", h.CardImage)

	// Leaderboard
	v1.GET("/top", h.TopWinners)
}

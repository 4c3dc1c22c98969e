package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scratch_lottery/internal/bot"
	"scratch_lottery/internal/config"
	"scratch_lottery/internal/db"
	httpServer "scratch_lottery/internal/http"
	"scratch_lottery/internal/http/middleware"
	"scratch_lottery/internal/logger"
	"scratch_lottery/internal/render"
	"scratch_lottery/internal/repository"
	"scratch_lottery/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	renderer := render.New(cfg.AssetsDir)
	scratch := service.NewScratchService(dbPool, renderer, cfg.CardPrice)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, cfg, scratch, version)

	var scratchBot *bot.ScratchBot
	if cfg.BotEnabled {
		users := repository.NewUserRepositoryWithInitial(dbPool, cfg.InitialCoins)
		admin := service.NewAdminService(dbPool)

		var err error
		scratchBot, err = bot.New(cfg.BotToken, scratch, admin, users, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Fatal("failed to start bot", "error", err)
		}
		go scratchBot.Start()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	if scratchBot != nil {
		scratchBot.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

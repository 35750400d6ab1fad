package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/prizedraw-backend/api/routes"
	"github.com/ArowuTest/prizedraw-backend/internal/config"
	"github.com/ArowuTest/prizedraw-backend/internal/events"
	"github.com/ArowuTest/prizedraw-backend/internal/handlers"
	"github.com/ArowuTest/prizedraw-backend/internal/metrics"
	"github.com/ArowuTest/prizedraw-backend/internal/middleware"
	"github.com/ArowuTest/prizedraw-backend/internal/sampler"
	"github.com/ArowuTest/prizedraw-backend/internal/services"
	"github.com/ArowuTest/prizedraw-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

func main() {
	// Load .env (optional) and configuration
	if loaded, err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("Failed to read .env: %v", err)
	} else if !loaded {
		log.Println("No .env file found, using environment and config.yaml")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel, os.Stdout))
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage
	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()

	// Event stream and metrics
	hub := events.NewHub(cfg.Server.AllowedHosts)
	go hub.Run(ctx)
	collector := metrics.NewCollector()

	// Draw engine
	drawService := services.NewDrawService(
		cfg.Draw.Tiers,
		sampler.NewTimeSource(),
		stores.State,
		stores.Records,
		hub,
		collector,
		cfg.Storage.WriteTimeout,
	)
	if err := drawService.LoadState(ctx); err != nil {
		log.Fatalf("Failed to restore draw state: %v", err)
	}
	countdownService := services.NewCountdownService(drawService, hub)
	authService := services.NewAuthService(cfg)

	// Login throttling
	limiter := middleware.NewRateLimiter(cfg.Admin.LoginRate, cfg.Admin.LoginBurst)
	limiter.StartCleanup(time.Minute, ctx.Done())

	handlerDeps := routes.HandlerDependencies{
		AuthHandler:   handlers.NewAuthHandler(authService),
		DrawHandler:   handlers.NewDrawHandler(drawService, countdownService, cfg.Draw.CountdownSeconds),
		RosterHandler: handlers.NewRosterHandler(drawService),
		EventStream:   hub.ServeWS,
		Metrics:       collector.Handler(),
		HTTPMetrics:   collector.GinMiddleware(),
		LoginLimiter:  limiter,
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver, "tiers", len(cfg.Draw.Tiers))

	// Run server in a goroutine so that it doesn't block
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	slog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

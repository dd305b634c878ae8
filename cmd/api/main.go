package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"pet-health-tracker/internal/adapters/storage"
	"pet-health-tracker/internal/config"
	"pet-health-tracker/internal/domain/tracker"
	"pet-health-tracker/internal/middleware"
	"pet-health-tracker/internal/platform/logger"
	"pet-health-tracker/internal/platform/metrics"
	"pet-health-tracker/internal/router"
)

// @title Pet Health Tracker API
// @version 1.0
// @description Perfiles de mascotas con vacunas, medicaciones y citas; borrado en cascada con deshacer.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.NewStateStore(ctx, cfg)
	if err != nil {
		log.Error("store error", map[string]any{"driver": cfg.StoreDriver, "err": err})
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.Warn("store close error", map[string]any{"err": err})
		}
	}()

	svc := tracker.NewService(store, log)
	if err := svc.Load(ctx); err != nil {
		log.Error("load state error", map[string]any{"driver": cfg.StoreDriver, "err": err})
		os.Exit(1)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	var limiter *middleware.IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		go limiter.RunCleanup(ctx.Done(), time.Minute)
	}

	r := router.NewRouter(router.Options{
		Service: svc,
		Logger:  log,
		Metrics: prometheus.DefaultGatherer,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown error", map[string]any{"err": err})
		}
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr, "driver": cfg.StoreDriver})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
	log.Info("server stopped", nil)
}

package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/agendafacil/agendafacil/internal/api/router"
	"github.com/agendafacil/agendafacil/internal/booking"
	"github.com/agendafacil/agendafacil/internal/clients"
	"github.com/agendafacil/agendafacil/internal/config"
	"github.com/agendafacil/agendafacil/internal/observability/metrics"
	"github.com/agendafacil/agendafacil/internal/professionals"
	"github.com/agendafacil/agendafacil/internal/schedule"
	"github.com/agendafacil/agendafacil/internal/services"
	"github.com/agendafacil/agendafacil/internal/stats"
	"github.com/agendafacil/agendafacil/pkg/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting agendafacil API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	// Redis is optional: without it slot listings are computed on every
	// request.
	var rdb redis.UniversalClient
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, slot caching disabled", "error", err)
		} else {
			rdb = client
			defer client.Close()
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	professionalsRepo := professionals.NewRepository(pool)
	servicesRepo := services.NewRepository(pool)
	scheduleRepo := schedule.NewRepository(pool)
	clientsRepo := clients.NewRepository(pool)
	appointmentsRepo := booking.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)

	var slotCache *booking.SlotCache
	if rdb != nil {
		slotCache = booking.NewSlotCache(rdb, cfg.SlotCacheTTL)
	}

	bookingService := booking.NewService(
		appointmentsRepo, servicesRepo, scheduleRepo, clientsRepo,
		slotCache, bookingMetrics, logger,
		booking.Options{
			SlotStep:     time.Duration(cfg.SlotStepMinutes) * time.Minute,
			CancelNotice: cfg.CancelNotice,
		},
	)

	routerCfg := &router.Config{
		Logger:          logger,
		AuthHandler:     professionals.NewHandler(professionalsRepo, cfg.JWTSecret, cfg.TokenExpiry, logger),
		ServicesHandler: services.NewHandler(servicesRepo, logger),
		ScheduleHandler: schedule.NewHandler(scheduleRepo, logger),
		BookingHandler:  booking.NewHandler(bookingService, logger),
		PublicHandler:   booking.NewPublicHandler(bookingService, servicesRepo, logger),
		ClientsHandler:  clients.NewHandler(clientsRepo, logger),
		StatsHandler:    stats.NewHandler(statsRepo, logger),

		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		DB:             pool,

		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		PublicRateLimit:    cfg.PublicRateLimit,
		PublicRateBurst:    cfg.PublicRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/doctorbookings/homevisit-api/internal/api/router"
	appconfig "github.com/doctorbookings/homevisit-api/internal/config"
	"github.com/doctorbookings/homevisit-api/internal/leads"
	"github.com/doctorbookings/homevisit-api/internal/notify"
	"github.com/doctorbookings/homevisit-api/internal/observability/metrics"
	"github.com/doctorbookings/homevisit-api/internal/ratelimit"
	"github.com/doctorbookings/homevisit-api/internal/tracking"
	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

const sweepInterval = 5 * time.Minute

func main() {
	// Local development convenience; deployments set real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting homevisit API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New(prometheus.DefaultRegisterer)

	leadLimiter, errLimiter := buildLimiters(ctx, cfg, logger)

	telegram := notify.NewTelegramClient(notify.TelegramConfig{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		BaseURL:  cfg.TelegramBaseURL,
		Timeout:  cfg.TelegramTimeout,
	}, logger)
	if !telegram.Configured() {
		logger.Warn("telegram credentials not configured, owner alerts disabled")
	}

	var email notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		email = sg
	}

	service := notify.NewService(telegram, email, cfg.BusinessEmail, m, logger)

	if cfg.DailyReportEnabled {
		go notify.NewReporter(service, logger).Run(ctx)
	}

	routerCfg := &router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadLimiter, service, m, logger, cfg.MainPhone),
		TrackingHandler:    tracking.NewHandler(errLimiter, leadLimiter, service, m, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
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
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLimiters picks the limiter backend: Redis when configured (shared
// quota across instances), otherwise the process-local sliding window with a
// background sweep.
func buildLimiters(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (ratelimit.Limiter, ratelimit.Limiter) {
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		logger.Info("using redis rate limiter", "addr", cfg.RedisAddr)
		return ratelimit.NewRedisLimiter(client, cfg.LeadRateLimit, cfg.LeadRateWindow, "homevisit:leads:", logger),
			ratelimit.NewRedisLimiter(client, cfg.ErrorRateLimit, cfg.ErrorRateWindow, "homevisit:errors:", logger)
	}

	leadLimiter := ratelimit.NewMemoryLimiter(cfg.LeadRateLimit, cfg.LeadRateWindow)
	errLimiter := ratelimit.NewMemoryLimiter(cfg.ErrorRateLimit, cfg.ErrorRateWindow)

	// Out-of-band cleanup so idle clients don't accumulate between requests.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				leadLimiter.Sweep(ctx, now)
				errLimiter.Sweep(ctx, now)
			}
		}
	}()

	return leadLimiter, errLimiter
}

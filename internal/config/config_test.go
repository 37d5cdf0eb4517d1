package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("MAIN_PHONE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.MainPhone != "+91-9182296058" {
		t.Fatalf("expected fallback phone default, got %s", cfg.MainPhone)
	}
	if cfg.BusinessEmail != "doctorbookings2708@gmail.com" {
		t.Fatalf("expected business email default, got %s", cfg.BusinessEmail)
	}
	if cfg.TelegramBotToken != "" {
		t.Fatalf("expected telegram token empty by default, got %s", cfg.TelegramBotToken)
	}
	if cfg.LeadRateLimit != 10 {
		t.Fatalf("expected default lead rate limit, got %d", cfg.LeadRateLimit)
	}
	if cfg.LeadRateWindow != 5*time.Minute {
		t.Fatalf("expected default lead rate window, got %s", cfg.LeadRateWindow)
	}
	if cfg.ErrorRateWindow != time.Minute {
		t.Fatalf("expected default error rate window, got %s", cfg.ErrorRateWindow)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis disabled by default, got %s", cfg.RedisAddr)
	}
	if !cfg.DailyReportEnabled {
		t.Fatalf("expected daily report enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAIN_PHONE", "+91-9000000000")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("LEAD_RATE_LIMIT", "3")
	t.Setenv("LEAD_RATE_WINDOW", "1s")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://doctorathome.in, https://www.doctorathome.in")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.MainPhone != "+91-9000000000" {
		t.Fatalf("expected phone override, got %s", cfg.MainPhone)
	}
	if cfg.TelegramBotToken != "bot-token" || cfg.TelegramChatID != "12345" {
		t.Fatalf("expected telegram overrides, got %q/%q", cfg.TelegramBotToken, cfg.TelegramChatID)
	}
	if cfg.LeadRateLimit != 3 {
		t.Fatalf("expected lead rate limit override, got %d", cfg.LeadRateLimit)
	}
	if cfg.LeadRateWindow != time.Second {
		t.Fatalf("expected lead rate window override, got %s", cfg.LeadRateWindow)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected redis addr override, got %s", cfg.RedisAddr)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://www.doctorathome.in" {
		t.Fatalf("expected parsed origins, got %v", cfg.CORSAllowedOrigins)
	}
}

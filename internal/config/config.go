package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Business contact details shown to patients in fallback messages.
	MainPhone     string
	BusinessEmail string

	// Telegram bot credentials for owner alerts. Both empty means alerts
	// are soft-disabled, never an error.
	TelegramBotToken string
	TelegramChatID   string
	TelegramBaseURL  string
	TelegramTimeout  time.Duration

	// SendGrid Email Configuration (optional alert copy to the business inbox)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Lead endpoint rate limiting
	LeadRateLimit  int
	LeadRateWindow time.Duration

	// Error-tracking endpoint rate limiting
	ErrorRateLimit  int
	ErrorRateWindow time.Duration

	// Optional Redis-backed limiter for multi-instance deployments.
	// Empty RedisAddr keeps the in-memory limiter.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	DailyReportEnabled bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		MainPhone:     getEnv("MAIN_PHONE", "+91-9182296058"),
		BusinessEmail: getEnv("BUSINESS_EMAIL", "doctorbookings2708@gmail.com"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramBaseURL:  getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		TelegramTimeout:  getEnvAsDuration("TELEGRAM_TIMEOUT", 10*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Doctor Bookings"),

		LeadRateLimit:  getEnvAsInt("LEAD_RATE_LIMIT", 10),
		LeadRateWindow: getEnvAsDuration("LEAD_RATE_WINDOW", 5*time.Minute),

		ErrorRateLimit:  getEnvAsInt("ERROR_RATE_LIMIT", 10),
		ErrorRateWindow: getEnvAsDuration("ERROR_RATE_WINDOW", time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DailyReportEnabled: getEnvAsBool("DAILY_REPORT_ENABLED", true),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

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
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Crowd status snapshots are served from Redis for this long before
	// being recomputed from the appointment store.
	CrowdCacheTTL time.Duration

	// SendGrid email configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// SMS gateway configuration
	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string

	// Fallback consultation window used when a doctor record carries an
	// unparseable daily start/end time.
	DefaultDayStart string
	DefaultDayEnd   string

	StoreTimeout time.Duration

	// HMAC secret for the staff admin JWT. Empty disables the admin
	// surface.
	AdminAuthSecret string

	CORSAllowedOrigins []string

	// Rate limit applied to the public booking API, per client IP.
	BookingRatePerSec float64
	BookingBurst      int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		CrowdCacheTTL:     getEnvAsDuration("CROWD_CACHE_TTL", 30*time.Second),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "noreply@clinicq.local"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "ClinicQ"),
		SMSAccountSID:     getEnv("SMS_ACCOUNT_SID", ""),
		SMSAuthToken:      getEnv("SMS_AUTH_TOKEN", ""),
		SMSFromNumber:     getEnv("SMS_FROM_NUMBER", ""),
		DefaultDayStart:   getEnv("DEFAULT_DAY_START", "09:00"),
		DefaultDayEnd:     getEnv("DEFAULT_DAY_END", "17:00"),
		StoreTimeout:      getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),

		AdminAuthSecret:    getEnv("ADMIN_AUTH_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS"),
		BookingRatePerSec:  getEnvAsFloat("BOOKING_RATE_PER_SEC", 5),
		BookingBurst:       getEnvAsInt("BOOKING_BURST", 10),
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

// getEnvAsFloat retrieves an environment variable as a float or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated environment variable,
// dropping empty entries.
func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	Env        string // "development" or "production"

	MongoURI string
	MongoDB  string

	JWTSecret  string
	SessionTTL time.Duration
	ResetTTL   time.Duration

	// ClientURL is the frontend base URL used to build reset links and
	// allowed as the CORS origin.
	ClientURL string

	// ReaperSchedule is a standard cron expression for the expired
	// reset-token purge.
	ReaperSchedule string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "5000")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	smtpPortStr := getEnv("EMAIL_PORT", "587")
	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	env := getEnv("APP_ENV", "development")

	// Short-lived sessions in development keep expiry paths exercised;
	// production matches the week-long cookie the frontend expects.
	sessionTTL := 7 * 24 * time.Hour
	if env == "development" {
		sessionTTL = time.Hour
	}

	return &Config{
		ServerPort:     port,
		Env:            env,
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "keyauth"),
		JWTSecret:      secret,
		SessionTTL:     sessionTTL,
		ResetTTL:       5 * time.Minute,
		ClientURL:      getEnv("CLIENT_URL", "http://localhost:3000"),
		ReaperSchedule: getEnv("REAPER_SCHEDULE", "*/10 * * * *"),
		SMTPHost:       getEnv("EMAIL_HOST", "localhost"),
		SMTPPort:       smtpPort,
		SMTPUser:       getEnv("EMAIL_HOST_USER", ""),
		SMTPPassword:   getEnv("EMAIL_HOST_PASSWORD", ""),
	}, nil
}

// IsProd reports whether the service runs with production settings.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port          int
	JWTSecret     string
	DatabaseURL   string
	EncryptionKey string
	CORSOrigins   []string
	AdminEmail    string
	AdminPassword string

	// External collaborators.
	PodcastAPIURL    string
	PodcastAPIKey    string
	TranscriptAPIURL string
	TranscriptAPIKey string
	ModelAPIURL      string
	ModelAPIKey      string
	ModelName        string
	CheckoutBaseURL  string
	PaymentPortalURL string
	WebhookSecret    string

	// Sweep cadence for quota resets and subscription expiry.
	SweepInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "4001"))

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encKey := getEnv("ENCRYPTION_KEY", "")
	if len(encKey) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes, got %d", len(encKey))
	}

	webhookSecret := getEnv("PAYMENT_WEBHOOK_SECRET", "")
	if webhookSecret == "" {
		return nil, fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required")
	}

	origins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,https://podclip.app"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	sweepInterval, err := time.ParseDuration(getEnv("SWEEP_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL: %w", err)
	}

	return &Config{
		Port:          port,
		JWTSecret:     jwtSecret,
		DatabaseURL:   dbURL,
		EncryptionKey: encKey,
		CORSOrigins:   origins,
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@podclip.app"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		PodcastAPIURL:    getEnv("PODCAST_API_URL", "https://api.podcastindex.org/api/1.0"),
		PodcastAPIKey:    getEnv("PODCAST_API_KEY", ""),
		TranscriptAPIURL: getEnv("TRANSCRIPT_API_URL", "https://api.transcripts.example.com/v1"),
		TranscriptAPIKey: getEnv("TRANSCRIPT_API_KEY", ""),
		ModelAPIURL:      getEnv("MODEL_API_URL", "https://api.openai.com/v1"),
		ModelAPIKey:      getEnv("MODEL_API_KEY", ""),
		ModelName:        getEnv("MODEL_NAME", "gpt-4o-mini"),
		CheckoutBaseURL:  getEnv("PAYMENT_CHECKOUT_URL", "https://billing.podclip.app/checkout"),
		PaymentPortalURL: getEnv("PAYMENT_PORTAL_URL", "https://billing.podclip.app/portal"),
		WebhookSecret:    webhookSecret,

		SweepInterval: sweepInterval,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultInviteLink is used when GROUP_INVITE_LINK is not set.
const DefaultInviteLink = "https://t.me/+gatekeeper"

// Config holds all application configuration
type Config struct {
	// Required
	BotToken    string
	BotUsername string // public handle, used for deep links
	AdminID     int64
	ChannelID   int64

	// Optional; zero value disables the feature
	GeminiAPIKey    string
	GeminiModel     string
	TopicID         int
	GroupID         int64
	GroupInviteLink string
	DataDir         string
	PendingTTL      time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		BotUsername:     os.Getenv("BOT_USERNAME"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GroupInviteLink: getEnv("GROUP_INVITE_LINK", DefaultInviteLink),
		DataDir:         getEnv("DATA_DIR", "data"),
	}

	// Validate required fields
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if cfg.BotUsername == "" {
		return nil, fmt.Errorf("BOT_USERNAME is required")
	}

	adminID, err := strconv.ParseInt(os.Getenv("ADMIN_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_ID is required and must be numeric: %w", err)
	}
	cfg.AdminID = adminID

	channelID, err := strconv.ParseInt(os.Getenv("CHANNEL_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("CHANNEL_ID is required and must be numeric: %w", err)
	}
	cfg.ChannelID = channelID

	// Optional numeric settings: invalid values disable the feature instead
	// of failing startup.
	if raw := os.Getenv("TOPIC_ID"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			cfg.TopicID = id
		}
	}
	if raw := os.Getenv("GROUP_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.GroupID = id
		}
	}
	if raw := os.Getenv("PENDING_TTL"); raw != "" {
		if ttl, err := time.ParseDuration(raw); err == nil && ttl > 0 {
			cfg.PendingTTL = ttl
		}
	}

	return cfg, nil
}

// ChatEnabled reports whether the completion service is configured.
func (c *Config) ChatEnabled() bool {
	return c.GeminiAPIKey != ""
}

// AutoInviteEnabled reports whether the private group is configured.
func (c *Config) AutoInviteEnabled() bool {
	return c.GroupID != 0
}

// TopicGuardEnabled reports whether the restricted topic is configured.
func (c *Config) TopicGuardEnabled() bool {
	return c.TopicID != 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

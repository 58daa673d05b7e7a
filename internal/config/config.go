package config

import (
	"fmt"
	"os"
	"time"
)

// Plan source modes.
const (
	PlanSourceStatic = "static"
	PlanSourceRemote = "remote"
)

// Config holds the configuration for the application.
type Config struct {
	AssistantURL    string
	AssistantAPIKey string // optional; enables signed transport requests
	ChatTimeout     time.Duration

	PlanSource string // "static" (bundled fixtures) or "remote"
	PlanAPIURL string // required when PlanSource is "remote"

	// Telegram Config
	TelegramBotToken    string
	TelegramAllowUserID int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	assistantURL := os.Getenv("ASSISTANT_API_URL")
	if assistantURL == "" {
		return nil, fmt.Errorf("ASSISTANT_API_URL environment variable not set")
	}

	// Optional; when present the transport signs each request with it.
	assistantAPIKey := os.Getenv("ASSISTANT_API_KEY")

	chatTimeout := 30 * time.Second
	if v := os.Getenv("CHAT_TIMEOUT_SECONDS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err != nil || secs <= 0 {
			return nil, fmt.Errorf("CHAT_TIMEOUT_SECONDS must be a positive integer, got %q", v)
		}
		chatTimeout = time.Duration(secs) * time.Second
	}

	planSource := os.Getenv("PLAN_SOURCE")
	if planSource == "" {
		planSource = PlanSourceStatic
	}
	if planSource != PlanSourceStatic && planSource != PlanSourceRemote {
		return nil, fmt.Errorf("PLAN_SOURCE must be %q or %q, got %q", PlanSourceStatic, PlanSourceRemote, planSource)
	}

	planAPIURL := os.Getenv("PLAN_API_URL")
	if planSource == PlanSourceRemote && planAPIURL == "" {
		return nil, fmt.Errorf("PLAN_API_URL environment variable not set (required when PLAN_SOURCE=remote)")
	}

	// Telegram Config (optional for the TUI, required for the bot)
	telegramBotToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	telegramAllowUserIDStr := os.Getenv("TELEGRAM_ALLOW_USER_ID")
	var telegramAllowUserID int64
	if telegramAllowUserIDStr != "" {
		fmt.Sscanf(telegramAllowUserIDStr, "%d", &telegramAllowUserID)
	}

	return &Config{
		AssistantURL:        assistantURL,
		AssistantAPIKey:     assistantAPIKey,
		ChatTimeout:         chatTimeout,
		PlanSource:          planSource,
		PlanAPIURL:          planAPIURL,
		TelegramBotToken:    telegramBotToken,
		TelegramAllowUserID: telegramAllowUserID,
	}, nil
}

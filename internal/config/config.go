// Package config holds the widget configuration: connection settings resolved
// from the environment and per-tenant company settings fetched at startup.
package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/WidgetWorks/ChatFlow/internal/models"
	"github.com/WidgetWorks/ChatFlow/internal/tone"
	"github.com/WidgetWorks/ChatFlow/internal/util"
)

// DefaultBaseURL is used when no backend address is configured.
const DefaultBaseURL = "http://localhost:5001"

// Config is the engine-facing widget configuration. Company fields are empty
// until ApplyCompany merges the fetched tenant config.
type Config struct {
	BaseURL   string
	AuthToken string
	BotID     string
	// Username is the explicit config value, the highest-priority identity
	// source. The session resolver owns the full fallback chain.
	Username string
	Debug    bool

	Company models.CompanyConfig
}

// FromEnv builds a Config from environment variables. Call godotenv.Load
// beforehand if a .env file should participate.
func FromEnv() Config {
	cfg := Config{
		BaseURL:   strings.TrimSpace(os.Getenv("CHATFLOW_API_URL")),
		AuthToken: strings.TrimSpace(os.Getenv("CHATFLOW_AUTH_TOKEN")),
		BotID:     strings.TrimSpace(os.Getenv("CHATFLOW_BOT_ID")),
		Username:  strings.TrimSpace(os.Getenv("CHATFLOW_USERNAME")),
		Debug:     util.ParseBoolEnv("CHATFLOW_DEBUG", false),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
		slog.Debug("No CHATFLOW_API_URL set, using default", "default", DefaultBaseURL)
	}
	slog.Debug("Configuration loaded from environment",
		"base_url", cfg.BaseURL,
		"auth_token_set", cfg.AuthToken != "",
		"bot_id_set", cfg.BotID != "",
		"username_set", cfg.Username != "")
	return cfg
}

// ApplyCompany merges a fetched company config. Missing fields keep their
// previous values so a partial config cannot erase earlier settings.
func (c *Config) ApplyCompany(company models.CompanyConfig) {
	if company.PrimaryColor != "" {
		c.Company.PrimaryColor = company.PrimaryColor
	}
	if company.CompanyName != "" {
		c.Company.CompanyName = company.CompanyName
	}
	if company.CompanyDescription != "" {
		c.Company.CompanyDescription = company.CompanyDescription
	}
	if company.AvatarURL != "" {
		c.Company.AvatarURL = company.AvatarURL
	}
	if company.WelcomeMessage != "" {
		c.Company.WelcomeMessage = strings.TrimSpace(company.WelcomeMessage)
	}
	if company.Tone != "" {
		c.Company.Tone = tone.Normalize(company.Tone)
	}
	slog.Debug("Company config applied",
		"company", c.Company.CompanyName,
		"tone", c.Tone(),
		"welcome_set", c.Company.WelcomeMessage != "")
}

// Tone returns the effective company tone, defaulting to Professional.
func (c *Config) Tone() string {
	return tone.Normalize(c.Company.Tone)
}

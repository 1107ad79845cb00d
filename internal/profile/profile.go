package profile

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start a bot process.
type Profile struct {
	// Mode can be "prod" or "dev".
	Mode string
	// Token is the bot access token issued by the platform.
	Token string
	// BaseURL overrides the platform API endpoint, for testing.
	BaseURL string

	// Storage selects the FSM backend: "memory" or "redis".
	Storage string
	// RedisURL is the redis connection string when Storage is "redis".
	RedisURL string

	// Addr and Port are where the webhook server listens.
	Addr string
	Port int
	// WebhookPath is the route receiving platform pushes.
	WebhookPath string
	// WebhookURL is the public URL the platform delivers to.
	WebhookURL string

	// PollLimit and PollTimeout tune long polling.
	PollLimit   int
	PollTimeout int
	// SkipUpdates drops the backlog accumulated while the bot was down.
	SkipUpdates bool
	// Concurrent dispatches each update on its own goroutine.
	Concurrent bool

	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	if p.Token == "" {
		p.Token = getEnvOrDefault("MAXBOT_TOKEN", "")
	}
	if p.BaseURL == "" {
		p.BaseURL = getEnvOrDefault("MAXBOT_BASE_URL", "")
	}
	if p.Storage == "" {
		p.Storage = getEnvOrDefault("MAXBOT_STORAGE", "memory")
	}
	if p.RedisURL == "" {
		p.RedisURL = getEnvOrDefault("MAXBOT_REDIS_URL", "redis://localhost:6379/0")
	}
	if p.WebhookURL == "" {
		p.WebhookURL = getEnvOrDefault("MAXBOT_WEBHOOK_URL", "")
	}
	p.PollLimit = getEnvOrDefaultInt("MAXBOT_POLL_LIMIT", p.PollLimit)
	p.PollTimeout = getEnvOrDefaultInt("MAXBOT_POLL_TIMEOUT", p.PollTimeout)
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		slog.Warn("unknown mode, falling back to dev", "mode", p.Mode)
		p.Mode = "dev"
	}
	if p.Token == "" {
		return errors.New("bot token is required, set MAXBOT_TOKEN or --token")
	}
	if p.Storage != "memory" && p.Storage != "redis" {
		return errors.Errorf("unknown storage %q, want memory or redis", p.Storage)
	}
	if p.BaseURL != "" {
		if _, err := url.Parse(p.BaseURL); err != nil {
			return errors.Wrap(err, "invalid base url")
		}
	}
	return nil
}

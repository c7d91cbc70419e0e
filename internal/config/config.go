package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at
// startup and passed by reference into each component; nothing reads
// the environment after Load returns.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Webhook configuration
	Webhook WebhookConfig

	// Mail configuration
	Mail MailConfig

	// GitHub API configuration
	GitHub GitHubConfig

	// Rollbar configuration
	Rollbar RollbarConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// WebhookConfig holds webhook validation configuration
type WebhookConfig struct {
	Secret string // Shared secret for HMAC signature validation
}

// MailConfig holds everything the mail dispatcher needs: message
// addressing, optional headers, and the SMTP relay connection.
type MailConfig struct {
	Sender         string // Configured From address
	SendFromAuthor bool   // Use the pusher's address as From instead of Sender
	Recipient      string // Primary To address
	RecipientCC    string // Raw comma-separated CC list, may be empty
	ReplyTo        string // Optional Reply-To header
	Approved       string // Optional Approved header (mailing list moderation)
	Project        string // Project label used in the subject line

	SMTPHost    string
	SMTPPort    int
	SMTPTimeout time.Duration
	Login       string
	Password    string
}

// GitHubConfig holds pull-request lookup configuration
type GitHubConfig struct {
	APIBaseURL    string // Override for the GitHub API base URL, empty for api.github.com
	LookupTimeout time.Duration
}

// RollbarConfig holds crash-reporting configuration
type RollbarConfig struct {
	AccessToken string // Empty disables crash reporting
	Environment string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("GITHUB_COMMIT_EMAILER_SECRET", ""),
		},
		Mail: MailConfig{
			Sender:         getEnv("GITHUB_COMMIT_EMAILER_SENDER", ""),
			SendFromAuthor: envIsSet("GITHUB_COMMIT_EMAILER_SEND_FROM_AUTHOR"),
			Recipient:      getEnv("GITHUB_COMMIT_EMAILER_RECIPIENT", ""),
			RecipientCC:    getEnv("GITHUB_COMMIT_EMAILER_RECIPIENT_CC", ""),
			ReplyTo:        getEnv("GITHUB_COMMIT_EMAILER_REPLY_TO", ""),
			Approved:       getEnv("GITHUB_COMMIT_EMAILER_APPROVED_HEADER", ""),
			Project:        getEnv("GITHUB_COMMIT_EMAILER_PROJECT", "Chapel"),
			SMTPHost:       getEnv("SMTP_HOST", "smtp.mailgun.org"),
			SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
			SMTPTimeout:    getEnvAsDuration("SMTP_TIMEOUT", 30*time.Second),
			Login:          getEnv("MAILGUN_LOGIN", ""),
			Password:       getEnv("MAILGUN_PASSWORD", ""),
		},
		GitHub: GitHubConfig{
			APIBaseURL:    getEnv("GITHUB_API_BASE_URL", ""),
			LookupTimeout: getEnvAsDuration("GITHUB_PR_LOOKUP_TIMEOUT", 10*time.Second),
		},
		Rollbar: RollbarConfig{
			AccessToken: getEnv("ROLLBAR_ACCESS_TOKEN", ""),
			Environment: getEnv("GITHUB_COMMIT_EMAILER_ROLLBAR_ENV", "github-email-notifications"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. A missing secret, sender or
// recipient is not checked here: those surface as configuration errors
// at request time so the service can still start and report them
// through the normal error path.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Mail.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}

	if c.Mail.SMTPPort < 1 || c.Mail.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.Mail.SMTPPort)
	}

	if c.GitHub.LookupTimeout <= 0 {
		return fmt.Errorf("invalid pull request lookup timeout: %s", c.GitHub.LookupTimeout)
	}

	return nil
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CCAddresses returns the configured CC list split into individual
// addresses, with empty entries dropped.
func (m *MailConfig) CCAddresses() []string {
	if m.RecipientCC == "" {
		return nil
	}

	addresses := make([]string, 0)
	for _, addr := range strings.Split(m.RecipientCC, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			addresses = append(addresses, trimmed)
		}
	}

	return addresses
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// envIsSet reports whether the variable is present at all. The
// send-from-author flag is presence-based: any value enables it.
func envIsSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

package conf

import (
	"os"
	"strconv"
	"time"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// Storage configuration
	Storage StorageConfig

	// Notification webhook URL; empty disables notification
	WebhookURL string

	// Admin refresh configuration
	Admin AdminConfig

	// Error log file path
	ErrorLogPath string
}

// TelegramConfig contains platform transport configuration
type TelegramConfig struct {
	BotToken string
}

// StorageConfig contains database configuration
type StorageConfig struct {
	DBPath       string
	ChatTable    string
	MessageTable string
}

// AdminConfig contains the admin refresh cadence and page size
type AdminConfig struct {
	RefreshInterval time.Duration
	PageSize        int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	refreshSeconds := 20
	if val := os.Getenv("ADMIN_REFRESH_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			refreshSeconds = parsed
		}
	}

	pageSize := 200
	if val := os.Getenv("ADMIN_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			pageSize = parsed
		}
	}

	errorLogPath := os.Getenv("ERROR_LOG_PATH")
	if errorLogPath == "" {
		errorLogPath = "errors.log"
	}

	return &Config{
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Storage: StorageConfig{
			DBPath:       os.Getenv("DB_PATH"),
			ChatTable:    os.Getenv("CHAT_TABLE"),
			MessageTable: os.Getenv("MESSAGE_TABLE"),
		},
		WebhookURL: os.Getenv("WEBHOOK_URL"),
		Admin: AdminConfig{
			RefreshInterval: time.Duration(refreshSeconds) * time.Second,
			PageSize:        pageSize,
		},
		ErrorLogPath: errorLogPath,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return &ConfigError{Field: "TELEGRAM_BOT_TOKEN", Message: "required"}
	}
	if c.Storage.DBPath == "" {
		return &ConfigError{Field: "DB_PATH", Message: "required"}
	}
	if c.Storage.ChatTable == "" {
		return &ConfigError{Field: "CHAT_TABLE", Message: "required"}
	}
	if c.Storage.MessageTable == "" {
		return &ConfigError{Field: "MESSAGE_TABLE", Message: "required"}
	}
	if c.Admin.RefreshInterval <= 0 {
		return &ConfigError{Field: "ADMIN_REFRESH_SECONDS", Message: "must be positive"}
	}
	if c.Admin.PageSize <= 0 {
		return &ConfigError{Field: "ADMIN_PAGE_SIZE", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

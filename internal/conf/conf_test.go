package conf

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("DB_PATH", "/tmp/watch.db")
	t.Setenv("CHAT_TABLE", "chats")
	t.Setenv("MESSAGE_TABLE", "messages")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Admin.RefreshInterval != 20*time.Second {
		t.Errorf("RefreshInterval = %v, want 20s", cfg.Admin.RefreshInterval)
	}
	if cfg.Admin.PageSize != 200 {
		t.Errorf("PageSize = %d, want 200", cfg.Admin.PageSize)
	}
	if cfg.ErrorLogPath != "errors.log" {
		t.Errorf("ErrorLogPath = %q, want errors.log", cfg.ErrorLogPath)
	}
	if cfg.WebhookURL != "" {
		t.Errorf("WebhookURL = %q, want empty (disabled)", cfg.WebhookURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_REFRESH_SECONDS", "90")
	t.Setenv("ADMIN_PAGE_SIZE", "50")
	t.Setenv("WEBHOOK_URL", "https://example.test/hook")

	cfg := LoadFromEnv()
	if cfg.Admin.RefreshInterval != 90*time.Second {
		t.Errorf("RefreshInterval = %v, want 90s", cfg.Admin.RefreshInterval)
	}
	if cfg.Admin.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Admin.PageSize)
	}
	if cfg.WebhookURL != "https://example.test/hook" {
		t.Errorf("WebhookURL = %q", cfg.WebhookURL)
	}
}

func TestValidateRejectsNonPositiveAdminSettings(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"ADMIN_REFRESH_SECONDS", "0"},
		{"ADMIN_REFRESH_SECONDS", "-5"},
		{"ADMIN_PAGE_SIZE", "0"},
		{"ADMIN_PAGE_SIZE", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.env+"="+tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.env, tt.value)

			err := LoadFromEnv().Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.env {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.env)
			}
		})
	}
}

func TestValidateMissingRequired(t *testing.T) {
	for _, field := range []string{"TELEGRAM_BOT_TOKEN", "DB_PATH", "CHAT_TABLE", "MESSAGE_TABLE"} {
		t.Run(field, func(t *testing.T) {
			setRequired(t)
			t.Setenv(field, "")

			err := LoadFromEnv().Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, field)
			}
		})
	}
}

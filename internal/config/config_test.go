package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"short", "***"},
		{"exactly8", "***"},
		{"longerstring", "long...ring"},
		{"abcdefghij", "abcd...ghij"},
	}

	for _, tt := range tests {
		result := maskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	input := "prefix_${TEST_VAR}_suffix"
	result := expandEnv(input)
	expected := "prefix_test_value_suffix"

	if result != expected {
		t.Errorf("expandEnv(%q) = %q, want %q", input, result, expected)
	}
}

func TestExpandEnv_MissingVar(t *testing.T) {
	os.Unsetenv("MISSING_VAR")

	input := "prefix_${MISSING_VAR}_suffix"
	result := expandEnv(input)
	expected := "prefix__suffix" // Missing var expands to empty string

	if result != expected {
		t.Errorf("expandEnv(%q) = %q, want %q", input, result, expected)
	}
}

func createTestConfig(t *testing.T, content string) string {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	config := `
telegram:
  token: "${TEST_BOT_TOKEN}"
  sticker_id: "CAACAgIAAxkBAAE"

chat_defaults:
  delete_leave_notice: false
  autodelete_seconds: 30

welcome:
  mode: fixed
  templates:
    - "Hi {memberName}, welcome to {chatTitle}"

share:
  link: "https://t.me/example"

storage:
  db_path: "./data/journal.db"
  retention: 48h
`
	t.Setenv("TEST_BOT_TOKEN", "test-token-12345678")
	t.Setenv("CONFIG_PATH", createTestConfig(t, config))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Telegram.Token != "test-token-12345678" {
		t.Errorf("Token = %q, want env-expanded value", cfg.Telegram.Token)
	}
	if cfg.Telegram.StickerID != "CAACAgIAAxkBAAE" {
		t.Errorf("StickerID = %q", cfg.Telegram.StickerID)
	}
	// Keys not present in the file keep their defaults.
	if !cfg.ChatDefaults.DeleteJoinNotice || !cfg.ChatDefaults.DeletePinNotice || !cfg.ChatDefaults.WelcomeEnabled {
		t.Errorf("unset chat defaults should stay true: %+v", cfg.ChatDefaults)
	}
	if cfg.ChatDefaults.DeleteLeaveNotice {
		t.Error("DeleteLeaveNotice should be overridden to false")
	}
	if cfg.ChatDefaults.AutoDeleteSeconds != 30 {
		t.Errorf("AutoDeleteSeconds = %d, want 30", cfg.ChatDefaults.AutoDeleteSeconds)
	}
	if cfg.Welcome.Mode != WelcomeModeFixed || len(cfg.Welcome.Templates) != 1 {
		t.Errorf("Welcome = %+v", cfg.Welcome)
	}
	if cfg.Share.Link != "https://t.me/example" || cfg.Share.Required != 3 {
		t.Errorf("Share = %+v", cfg.Share)
	}
	if cfg.Storage.Retention != 48*time.Hour || cfg.Storage.CleanupInterval != time.Hour {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
}

func TestLoad_TemplatesKeepDollarSigns(t *testing.T) {
	config := `
telegram:
  token: "${TEST_BOT_TOKEN}"
welcome:
  templates:
    - "Hi {memberName}, entry is $5 or ${PRICE}"
`
	t.Setenv("TEST_BOT_TOKEN", "test-token-12345678")
	t.Setenv("PRICE", "free")
	t.Setenv("CONFIG_PATH", createTestConfig(t, config))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Telegram.Token != "test-token-12345678" {
		t.Errorf("Token = %q, want env-expanded value", cfg.Telegram.Token)
	}
	want := "Hi {memberName}, entry is $5 or ${PRICE}"
	if len(cfg.Welcome.Templates) != 1 || cfg.Welcome.Templates[0] != want {
		t.Errorf("Templates = %q, want [%q]", cfg.Welcome.Templates, want)
	}
}

func TestLoad_MissingFileUsesEnvironment(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("BOT_TOKEN", "env-token-abcdefgh")
	t.Setenv("STICKER_ID", "sticker-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.Token != "env-token-abcdefgh" {
		t.Errorf("Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.StickerID != "sticker-1" {
		t.Errorf("StickerID = %q", cfg.Telegram.StickerID)
	}
	if cfg.Share.Link != DefaultShareLink {
		t.Errorf("Share.Link = %q, want default", cfg.Share.Link)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("BOT_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for missing token")
	}
	if !strings.Contains(err.Error(), "telegram.token is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("CONFIG_PATH", createTestConfig(t, "telegram: [unclosed"))

	_, err := Load()
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad mode", func(c *Config) { c.Welcome.Mode = "sequential" }, "welcome.mode"},
		{"empty share link", func(c *Config) { c.Share.Link = "" }, "share.link is required"},
		{"zero required", func(c *Config) { c.Share.Required = 0 }, "share.required"},
		{"zero rate limit", func(c *Config) { c.Commands.RateLimit = 0 }, "commands.rate_limit"},
		{"db without retention", func(c *Config) {
			c.Storage.DBPath = "x.db"
			c.Storage.Retention = 0
		}, "storage.retention"},
		{"retention ignored without db", func(c *Config) { c.Storage.Retention = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Telegram.Token = "token-123456789"
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestString_MasksToken(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "123456789:ABCDEFGHIJKLMNOP"

	s := cfg.String()
	if strings.Contains(s, cfg.Telegram.Token) {
		t.Error("String() must not print the raw token")
	}
	if !strings.Contains(s, "1234...MNOP") {
		t.Errorf("String() should contain masked token, got:\n%s", s)
	}
	if !strings.Contains(s, "Journal: disabled") {
		t.Error("String() should report the disabled journal")
	}
}

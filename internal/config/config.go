package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "./configs/config.yaml"

	// DefaultShareLink is the channel invite link embedded in every gate keyboard.
	DefaultShareLink = "https://t.me/+0qp1zIGHPlYwZTBl"
	DefaultShareText = "Join this channel"

	WelcomeModeRandom = "random"
	WelcomeModeFixed  = "fixed"
)

type Config struct {
	Telegram     TelegramConfig     `yaml:"telegram"`
	ChatDefaults ChatDefaultsConfig `yaml:"chat_defaults"`
	Welcome      WelcomeConfig      `yaml:"welcome"`
	Share        ShareConfig        `yaml:"share"`
	Commands     CommandsConfig     `yaml:"commands"`
	Storage      StorageConfig      `yaml:"storage"`
	Security     SecurityConfig     `yaml:"security"`
}

type TelegramConfig struct {
	Token     string `yaml:"token"`
	StickerID string `yaml:"sticker_id"`
}

// ChatDefaultsConfig is copied into every chat the first time the bot sees it.
type ChatDefaultsConfig struct {
	DeleteJoinNotice  bool `yaml:"delete_join_notice"`
	DeleteLeaveNotice bool `yaml:"delete_leave_notice"`
	DeletePinNotice   bool `yaml:"delete_pin_notice"`
	WelcomeEnabled    bool `yaml:"welcome_enabled"`
	AutoDeleteSeconds uint `yaml:"autodelete_seconds"`
}

type WelcomeConfig struct {
	Mode      string   `yaml:"mode"`
	Templates []string `yaml:"templates"`
}

type ShareConfig struct {
	Link     string `yaml:"link"`
	Text     string `yaml:"text"`
	Required int    `yaml:"required"`
}

type CommandsConfig struct {
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type StorageConfig struct {
	DBPath          string        `yaml:"db_path"`
	Retention       time.Duration `yaml:"retention"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type SecurityConfig struct {
	SecretPatterns []string `yaml:"secret_patterns"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ChatDefaults: ChatDefaultsConfig{
			DeleteJoinNotice:  true,
			DeleteLeaveNotice: true,
			DeletePinNotice:   true,
			WelcomeEnabled:    true,
		},
		Welcome: WelcomeConfig{
			Mode: WelcomeModeRandom,
		},
		Share: ShareConfig{
			Link:     DefaultShareLink,
			Text:     DefaultShareText,
			Required: 3,
		},
		Commands: CommandsConfig{
			RateLimit:  3,
			RateWindow: time.Minute,
		},
		Storage: StorageConfig{
			Retention:       7 * 24 * time.Hour,
			CleanupInterval: time.Hour,
		},
	}
}

// Load reads the YAML file at $CONFIG_PATH on top of Default() and expands
// ${VAR} references in the telegram section. A missing file is not an error:
// the bot then runs from BOT_TOKEN and STICKER_ID alone.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg.Telegram.Token = os.Getenv("BOT_TOKEN")
		cfg.Telegram.StickerID = os.Getenv("STICKER_ID")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		// Only telegram.* is expanded; templates may carry a literal $.
		cfg.Telegram.Token = expandEnv(cfg.Telegram.Token)
		cfg.Telegram.StickerID = expandEnv(cfg.Telegram.StickerID)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	switch c.Welcome.Mode {
	case WelcomeModeRandom, WelcomeModeFixed:
	default:
		return fmt.Errorf("welcome.mode must be %q or %q, got %q", WelcomeModeRandom, WelcomeModeFixed, c.Welcome.Mode)
	}
	if c.Share.Link == "" {
		return fmt.Errorf("share.link is required")
	}
	if c.Share.Required <= 0 {
		return fmt.Errorf("share.required must be positive")
	}
	if c.Commands.RateLimit <= 0 {
		return fmt.Errorf("commands.rate_limit must be positive")
	}
	if c.Commands.RateWindow <= 0 {
		return fmt.Errorf("commands.rate_window must be positive")
	}
	if c.Storage.DBPath != "" {
		if c.Storage.Retention <= 0 {
			return fmt.Errorf("storage.retention is required when storage.db_path is set")
		}
		if c.Storage.CleanupInterval <= 0 {
			return fmt.Errorf("storage.cleanup_interval is required when storage.db_path is set")
		}
	}
	return nil
}

func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("Configuration:\n")
	sb.WriteString(fmt.Sprintf("  Telegram Token: %s\n", maskSecret(c.Telegram.Token)))
	sb.WriteString(fmt.Sprintf("  Sticker: %v\n", c.Telegram.StickerID != ""))
	sb.WriteString(fmt.Sprintf("  Delete Join/Leave/Pin Notices: %v/%v/%v\n",
		c.ChatDefaults.DeleteJoinNotice, c.ChatDefaults.DeleteLeaveNotice, c.ChatDefaults.DeletePinNotice))
	sb.WriteString(fmt.Sprintf("  Welcome Enabled: %v\n", c.ChatDefaults.WelcomeEnabled))
	sb.WriteString(fmt.Sprintf("  Welcome Auto-Delete: %ds\n", c.ChatDefaults.AutoDeleteSeconds))
	sb.WriteString(fmt.Sprintf("  Welcome Mode: %s (%d custom templates)\n", c.Welcome.Mode, len(c.Welcome.Templates)))
	sb.WriteString(fmt.Sprintf("  Share Link: %s (required %d)\n", c.Share.Link, c.Share.Required))
	sb.WriteString(fmt.Sprintf("  Command Rate Limit: %d per %s\n", c.Commands.RateLimit, c.Commands.RateWindow))
	if c.Storage.DBPath != "" {
		sb.WriteString(fmt.Sprintf("  Journal DB Path: %s (retention %s)\n", c.Storage.DBPath, c.Storage.Retention))
	} else {
		sb.WriteString("  Journal: disabled\n")
	}
	return sb.String()
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultPageSize              = 60
	DefaultTypingIntervalSeconds = 5

	maxPageSize = 200
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// SyncConfig controls how conversation history is pulled from the
// platform.
type SyncConfig struct {
	PageSize int `json:"page_size"`
}

// NotificationEventsConfig stores per-event notification toggles.
type NotificationEventsConfig struct {
	IncomingMessage  bool `json:"incoming_message"`
	ConnectionStatus bool `json:"connection_status"`
}

// NotificationConfig stores desktop notification preferences.
type NotificationConfig struct {
	NotifyWhenFocused bool                     `json:"notify_when_focused"`
	Events            NotificationEventsConfig `json:"events"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	LastSelectedThread    string             `json:"last_selected_thread"`
	TypingIntervalSeconds int                `json:"typing_interval_seconds"`
	Notifications         NotificationConfig `json:"notifications"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Sync    SyncConfig    `json:"sync"`
	Logging LoggingConfig `json:"logging"`
	UI      UIConfig      `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		Sync: SyncConfig{
			PageSize: DefaultPageSize,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		UI: UIConfig{
			LastSelectedThread:    "",
			TypingIntervalSeconds: DefaultTypingIntervalSeconds,
			Notifications: NotificationConfig{
				NotifyWhenFocused: false,
				Events: NotificationEventsConfig{
					IncomingMessage:  true,
					ConnectionStatus: true,
				},
			},
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if c.Sync.PageSize <= 0 {
		c.Sync.PageSize = DefaultPageSize
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.UI.TypingIntervalSeconds <= 0 {
		c.UI.TypingIntervalSeconds = DefaultTypingIntervalSeconds
	}
}

func (c AppConfig) Validate() error {
	if c.Sync.PageSize <= 0 {
		return errors.New("sync page size must be positive")
	}
	if c.Sync.PageSize > maxPageSize {
		return fmt.Errorf("sync page size must not exceed %d", maxPageSize)
	}
	if c.UI.TypingIntervalSeconds <= 0 {
		return errors.New("typing interval must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Logging.Level)
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}

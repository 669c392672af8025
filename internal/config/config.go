// Package config loads the daemon settings from TOML and keeps them
// current while the file changes.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "notifyd"

// DefaultSound is the theme sound requested when a notification has no
// sound hint.
const DefaultSound = "message-new-instant"

// DefaultHistoryEntries is how many notifications the history keeps.
const DefaultHistoryEntries = 500

// Urgency levels as sent in the "urgency" hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

type Config struct {
	LogLevel     string `koanf:"log_level"`      // debug, info, warn, error
	DoNotDisturb bool   `koanf:"do_not_disturb"` // silences sounds; notifications are still recorded
	EnableLinks  bool   `koanf:"enable_links"`   // extract links from bodies

	Sounds   SoundsConfig   `koanf:"sounds"`
	Timeouts TimeoutsConfig `koanf:"timeouts"`
	History  HistoryConfig  `koanf:"history"`

	// Per-application overrides, matched by desktop entry then app name.
	AppRules []AppRule `koanf:"app_rules"`
}

// SoundsConfig holds notification sound settings.
type SoundsConfig struct {
	Enabled bool    `koanf:"enabled"`
	Default string  `koanf:"default"` // theme name; empty disables the fallback sound
	Volume  float64 `koanf:"volume"`  // power-of-two gain, 0 = unchanged (-10..2)
}

// TimeoutsConfig caps how long notifications live, per urgency, in
// milliseconds. Zero means no cap.
type TimeoutsConfig struct {
	Low      int32 `koanf:"low"`
	Normal   int32 `koanf:"normal"`
	Critical int32 `koanf:"critical"`
}

// HistoryConfig controls the persistent notification history.
type HistoryConfig struct {
	Enabled    bool   `koanf:"enabled"`
	MaxEntries int    `koanf:"max_entries"` // oldest rows are pruned past this
	Path       string `koanf:"path"`        // empty = $XDG_DATA_HOME/notifyd/history.db
}

// AppRule overrides behaviour for one application. Unset booleans mean
// enabled.
type AppRule struct {
	AppName         string `koanf:"app_name"`
	DesktopEntry    string `koanf:"desktop_entry"`
	Enabled         *bool  `koanf:"enabled"`
	SoundEnabled    *bool  `koanf:"sound_enabled"`
	UrgencyOverride *int   `koanf:"urgency_override"` // 0 low, 1 normal, 2 critical
	TimeoutOverride *int32 `koanf:"timeout_override"` // milliseconds
}

// Default returns the settings used when no file sets them.
func Default() *Config {
	return &Config{
		LogLevel:    "info",
		EnableLinks: true,
		Sounds: SoundsConfig{
			Enabled: true,
			Default: DefaultSound,
		},
		Timeouts: TimeoutsConfig{
			Low:    3000,
			Normal: 5000,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: DefaultHistoryEntries,
		},
	}
}

// Load reads the config files in priority order (last wins) over the
// defaults. A non-empty path replaces the search and must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	} else {
		for _, p := range getConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
					return nil, fmt.Errorf("load %s: %w", p, err)
				}
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/notifyd/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./notifyd.toml (pwd, highest priority)
		appName + ".toml",
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Sounds),
		validation.Field(&c.Timeouts),
		validation.Field(&c.History),
		validation.Field(&c.AppRules),
	)
}

// Validate checks the sound settings.
func (s SoundsConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Volume, validation.Min(-10.0), validation.Max(2.0)),
	)
}

// Validate checks the timeout caps.
func (t TimeoutsConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Low, validation.Min(int32(0))),
		validation.Field(&t.Normal, validation.Min(int32(0))),
		validation.Field(&t.Critical, validation.Min(int32(0))),
	)
}

// Validate checks the history settings.
func (h HistoryConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.MaxEntries, validation.Required, validation.Min(1), validation.Max(100000)),
	)
}

// Validate checks that the rule can match something.
func (r AppRule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AppName, validation.Required.When(r.DesktopEntry == "").Error("app_name or desktop_entry is required")),
		validation.Field(&r.UrgencyOverride, validation.Min(UrgencyLow), validation.Max(UrgencyCritical)),
		validation.Field(&r.TimeoutOverride, validation.Min(int32(0))),
	)
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// FindAppRule returns the rule for an application. A rule with a matching
// desktop entry wins; otherwise a rule with the same app name and no
// desktop entry applies.
func (c *Config) FindAppRule(appName, desktopEntry string) (AppRule, bool) {
	if desktopEntry != "" {
		for _, r := range c.AppRules {
			if r.DesktopEntry == desktopEntry {
				return r, true
			}
		}
	}
	for _, r := range c.AppRules {
		if r.AppName == appName && r.DesktopEntry == "" {
			return r, true
		}
	}
	return AppRule{}, false
}

// AppEnabled reports whether notifications from the application are
// delivered.
func (c *Config) AppEnabled(appName, desktopEntry string) bool {
	r, ok := c.FindAppRule(appName, desktopEntry)
	return !ok || r.Enabled == nil || *r.Enabled
}

// SoundEnabledForApp reports whether the application may play sounds.
func (c *Config) SoundEnabledForApp(appName, desktopEntry string) bool {
	r, ok := c.FindAppRule(appName, desktopEntry)
	return !ok || r.SoundEnabled == nil || *r.SoundEnabled
}

// MaxTimeout returns the cap for the urgency, 0 if uncapped.
func (c *Config) MaxTimeout(urgency int) int32 {
	switch urgency {
	case UrgencyLow:
		return c.Timeouts.Low
	case UrgencyCritical:
		return c.Timeouts.Critical
	default:
		return c.Timeouts.Normal
	}
}

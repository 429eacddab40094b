package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath            string   `yaml:"db_path"`
	MaxAttempts       int      `yaml:"max_attempts"`
	RetryDelaySeconds int      `yaml:"retry_delay_seconds"`
	DevicePaths       []string `yaml:"device_paths"`
	ContendedDevice   string   `yaml:"contended_device"`
	TempPrefix        string   `yaml:"temp_prefix"`
	Destructive       bool     `yaml:"destructive"`
}

// RecoverySettings are effective runtime values consumed by the dispatcher.
type RecoverySettings struct {
	MaxAttempts     int           `json:"max_attempts"`
	RetryDelay      time.Duration `json:"retry_delay"`
	DevicePaths     []string      `json:"device_paths"`
	ContendedDevice string        `json:"contended_device"`
	TempPrefix      string        `json:"temp_prefix"`
	Destructive     bool          `json:"destructive"`
}

const (
	defaultMaxAttempts       = 3
	defaultRetryDelaySeconds = 2
	defaultContendedDevice   = "/dev/busy_device"
	defaultTempPrefix        = "/tmp/remedy_"

	maxConfigurableAttempts = 20
	maxRetryDelaySeconds    = 300
)

// defaultDevicePaths mirrors the fixed candidate order the device
// strategy walks when the config does not override it.
func defaultDevicePaths() []string {
	return []string{"/dev/tty0", "/dev/null", "/dev/zero"}
}

// EffectiveRecoverySettings returns validated recovery settings with defaults.
// Invalid or missing config values fall back to safe defaults.
func EffectiveRecoverySettings() RecoverySettings {
	s, err := LoadSettings()
	if err != nil {
		s = Settings{}
	}
	return effectiveFromSettings(s)
}

func effectiveFromSettings(s Settings) RecoverySettings {
	cfg := RecoverySettings{
		MaxAttempts:     defaultMaxAttempts,
		RetryDelay:      defaultRetryDelaySeconds * time.Second,
		DevicePaths:     defaultDevicePaths(),
		ContendedDevice: defaultContendedDevice,
		TempPrefix:      defaultTempPrefix,
	}

	if s.MaxAttempts > 0 {
		cfg.MaxAttempts = s.MaxAttempts
	}
	if s.RetryDelaySeconds > 0 {
		cfg.RetryDelay = time.Duration(s.RetryDelaySeconds) * time.Second
	}
	if len(s.DevicePaths) > 0 {
		cfg.DevicePaths = s.DevicePaths
	}
	if s.ContendedDevice != "" {
		cfg.ContendedDevice = s.ContendedDevice
	}
	if s.TempPrefix != "" {
		cfg.TempPrefix = s.TempPrefix
	}
	cfg.Destructive = s.Destructive

	if cfg.MaxAttempts > maxConfigurableAttempts {
		cfg.MaxAttempts = maxConfigurableAttempts
	}
	if cfg.RetryDelay > maxRetryDelaySeconds*time.Second {
		cfg.RetryDelay = maxRetryDelaySeconds * time.Second
	}
	return cfg
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// dbPathOverrideMu and dbPathOverride implement a mutex-protected process-wide override for CLI --db-path.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	dbPathOverrideMu sync.RWMutex
	dbPathOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	dbPathOverrideMu.Lock()
	dbPathOverride = path
	dbPathOverrideMu.Unlock()
}

func getDBPathOverride() string {
	dbPathOverrideMu.RLock()
	v := dbPathOverride
	dbPathOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/remedy/config.yaml
// 2) /etc/remedy/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		// 1) User config (~/.config/remedy/config.yaml)
		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}
		if s, err := loadSettingsFile(filepath.Join(dir, "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		// 2) /etc
		if s, err := loadSettingsFile(filepath.Join(string(os.PathSeparator), "etc", "remedy", "config.yaml")); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}

		// 3) Local ./config.yaml (lowest priority)
		if s, err := loadSettingsFile("config.yaml"); err == nil {
			settings = s
			return
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			settingsErr = err
			return
		}
	})

	return settings, settingsErr
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

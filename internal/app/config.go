package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/remedy/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "remedy"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# remedy configuration
# Run: remedy --help

# Optional: override the SQLite event log location.
# Can also be set via REMEDY_DB_PATH or --db-path.
# db_path: ~/.config/remedy/remedy.db

# Retry policy shared by all recovery strategies.
# max_attempts: 3
# retry_delay_seconds: 2

# Candidate device paths probed by the device strategy, in priority order.
# device_paths: [/dev/tty0, /dev/null, /dev/zero]

# Allow process-wide destructive remediation (fd sweep, shm removal,
# forced release of device holders). Off by default.
# destructive: false
`

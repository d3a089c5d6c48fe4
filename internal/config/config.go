package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forgex-labs/forgex/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys recognized in the config file and environment.
const (
	KeyLogLevel       = "log.level"
	KeyExecTimeout    = "exec.timeout"
	KeyFileTimeout    = "exec.file_timeout"
	KeyNonInteractive = "run.non_interactive"
)

// Defaults applied when a key is absent from both file and environment.
const (
	DefaultExecTimeout = 10 * time.Second
	DefaultFileTimeout = 60 * time.Second
)

// Dir returns the path to the Forgex config directory (~/.forgex/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.forgex/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// FORGEX_LOG_LEVEL and friends override file values.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyLogLevel, "info")
	viper.SetDefault(KeyExecTimeout, DefaultExecTimeout.String())
	viper.SetDefault(KeyFileTimeout, DefaultFileTimeout.String())
	viper.SetDefault(KeyNonInteractive, false)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// ExecTimeout returns the bounded timeout for plain exec value resolution.
func ExecTimeout() time.Duration {
	if d := viper.GetDuration(KeyExecTimeout); d > 0 {
		return d
	}
	return DefaultExecTimeout
}

// FileTimeout returns the bounded timeout for exec-file script execution.
func FileTimeout() time.Duration {
	if d := viper.GetDuration(KeyFileTimeout); d > 0 {
		return d
	}
	return DefaultFileTimeout
}

// NonInteractive reports whether prompts should fall back to defaults.
func NonInteractive() bool {
	return viper.GetBool(KeyNonInteractive)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

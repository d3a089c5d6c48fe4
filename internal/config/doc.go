// Package config manages user-level CLI settings stored at
// ~/.forgex/config.yaml and overridable through FORGEX_* environment
// variables: log level, external process timeouts, and non-interactive mode.
package config

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Remote contains connection settings for the reconstruction service.
type Remote struct {
	Endpoint          string  `toml:"endpoint"`
	Token             string  `toml:"token"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RetryAttempts     int     `toml:"retry_attempts"`
	RetryBaseMillis   int     `toml:"retry_base_ms"`
	RetryMaxMillis    int     `toml:"retry_max_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Paths contains local directories used by the CLI.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Previews contains preview classification and viewer settings.
type Previews struct {
	MeshExtensions     []string `toml:"mesh_extensions"`
	PanoramaFilename   string   `toml:"panorama_filename"`
	PanoramaURL        string   `toml:"panorama_url"`
	PageURL            string   `toml:"page_url"`
	MaxConcurrentLoads int      `toml:"max_concurrent_loads"`
	LoadTimeoutSeconds int      `toml:"load_timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Contribution describes an externally supplied task action.
type Contribution struct {
	Key    string `toml:"key"`
	Label  string `toml:"label"`
	Weight int    `toml:"weight"`
}

// Actions contains task action menu extensions.
type Actions struct {
	Contributions []Contribution `toml:"contributions"`
}

// Watch contains settings for the long-running display session.
type Watch struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Config encapsulates all configuration values for the trisetra CLI.
//
// Configuration sections by subsystem:
//   - Remote: reconstruction service endpoint, token, retry and rate limits
//   - Paths: local state (local storage database, locks) and log directories
//   - Previews: mesh detection, panorama viewer and image loading
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
//   - Actions: externally contributed task actions
//   - Watch: status polling interval for display sessions
type Config struct {
	Remote        Remote        `toml:"remote"`
	Paths         Paths         `toml:"paths"`
	Previews      Previews      `toml:"previews"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Actions       Actions       `toml:"actions"`
	Watch         Watch         `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("trisetra.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LocalStoragePath returns the SQLite file backing client-local storage.
func (c *Config) LocalStoragePath() string {
	return filepath.Join(c.Paths.StateDir, "local_storage.db")
}

// RemoteTimeout returns the HTTP timeout for remote calls; zero means none.
func (c *Config) RemoteTimeout() time.Duration {
	if c.Remote.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base and maximum delay used for read retries.
func (c *Config) RetryBackoff() (time.Duration, time.Duration) {
	return time.Duration(c.Remote.RetryBaseMillis) * time.Millisecond,
		time.Duration(c.Remote.RetryMaxMillis) * time.Millisecond
}

// WatchInterval returns the status polling interval for display sessions.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

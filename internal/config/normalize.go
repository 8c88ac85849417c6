package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRemote()
	c.normalizePreviews()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeActions()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeRemote applies environment overrides and the fixed fallbacks the
// service expects when nothing is configured.
func (c *Config) normalizeRemote() {
	if value, ok := os.LookupEnv("TRISETRA_API_ENDPOINT"); ok && strings.TrimSpace(value) != "" {
		c.Remote.Endpoint = value
	}
	if value, ok := os.LookupEnv("TRISETRA_API_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.Remote.Token = value
	}
	c.Remote.Endpoint = strings.TrimRight(strings.TrimSpace(c.Remote.Endpoint), "/")
	if c.Remote.Endpoint == "" {
		c.Remote.Endpoint = defaultEndpoint
	}
	c.Remote.Token = strings.TrimSpace(c.Remote.Token)
	if c.Remote.Token == "" {
		c.Remote.Token = defaultToken
	}
	if c.Remote.RetryAttempts <= 0 {
		c.Remote.RetryAttempts = 1
	}
	if c.Remote.Burst <= 0 {
		c.Remote.Burst = defaultBurst
	}
}

func (c *Config) normalizePreviews() {
	exts := make([]string, 0, len(c.Previews.MeshExtensions))
	seen := make(map[string]struct{}, len(c.Previews.MeshExtensions))
	for _, ext := range c.Previews.MeshExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaultMeshExtensions()
	}
	c.Previews.MeshExtensions = exts
	c.Previews.PanoramaFilename = strings.TrimSpace(c.Previews.PanoramaFilename)
	if c.Previews.PanoramaFilename == "" {
		c.Previews.PanoramaFilename = defaultPanoramaFilename
	}
	c.Previews.PanoramaURL = strings.TrimSpace(c.Previews.PanoramaURL)
	if c.Previews.PanoramaURL == "" {
		c.Previews.PanoramaURL = defaultPanoramaURL
	}
	c.Previews.PageURL = strings.TrimSpace(c.Previews.PageURL)
	if c.Previews.MaxConcurrentLoads <= 0 {
		c.Previews.MaxConcurrentLoads = defaultMaxConcurrentLoads
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("TRISETRA_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeActions() {
	for i := range c.Actions.Contributions {
		c.Actions.Contributions[i].Key = strings.TrimSpace(c.Actions.Contributions[i].Key)
		c.Actions.Contributions[i].Label = strings.TrimSpace(c.Actions.Contributions[i].Label)
	}
}

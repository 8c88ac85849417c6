package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRemote(); err != nil {
		return err
	}
	if err := c.validatePreviews(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateActions(); err != nil {
		return err
	}
	if c.Watch.IntervalSeconds <= 0 {
		return errors.New("watch.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRemote() error {
	parsed, err := url.Parse(c.Remote.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("remote.endpoint must be an absolute URL, got %q", c.Remote.Endpoint)
	}
	if c.Remote.TimeoutSeconds < 0 {
		return errors.New("remote.timeout_seconds must be >= 0")
	}
	if c.Remote.RetryBaseMillis < 0 || c.Remote.RetryMaxMillis < 0 {
		return errors.New("remote.retry_base_ms and remote.retry_max_ms must be >= 0")
	}
	if c.Remote.RetryMaxMillis > 0 && c.Remote.RetryBaseMillis > c.Remote.RetryMaxMillis {
		return errors.New("remote.retry_base_ms must not exceed remote.retry_max_ms")
	}
	if c.Remote.RequestsPerSecond < 0 {
		return errors.New("remote.requests_per_second must be >= 0")
	}
	return nil
}

func (c *Config) validatePreviews() error {
	if _, err := url.Parse(c.Previews.PanoramaURL); err != nil {
		return fmt.Errorf("previews.panorama_url: %w", err)
	}
	if strings.Contains(c.Previews.PanoramaFilename, "/") {
		return errors.New("previews.panorama_filename must be a bare file name")
	}
	if c.Previews.LoadTimeoutSeconds < 0 {
		return errors.New("previews.load_timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateActions() error {
	seen := make(map[string]struct{}, len(c.Actions.Contributions))
	for i, contribution := range c.Actions.Contributions {
		if contribution.Key == "" {
			return fmt.Errorf("actions.contributions[%d].key must be set", i)
		}
		if contribution.Label == "" {
			return fmt.Errorf("actions.contributions[%d].label must be set", i)
		}
		if _, ok := seen[contribution.Key]; ok {
			return fmt.Errorf("actions.contributions[%d].key %q is duplicated", i, contribution.Key)
		}
		seen[contribution.Key] = struct{}{}
	}
	return nil
}

package testsupport

import (
	"path/filepath"
	"testing"

	"trisetra/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Remote.Endpoint = "http://127.0.0.1:0/cvat"
	cfgVal.Remote.Token = "test-token"
	cfgVal.Remote.RetryBaseMillis = 1
	cfgVal.Remote.RetryMaxMillis = 1
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Previews.PageURL = "http://localhost:3000/tasks"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEndpoint points the config at a remote service, typically a FakeRemote.
func WithEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.Endpoint = endpoint
	}
}

// WithToken sets the remote token on the test config.
func WithToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Remote.Token = token
	}
}

// WithNtfyTopic enables ntfy notifications against the given URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithContribution appends an externally contributed task action.
func WithContribution(key, label string, weight int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Actions.Contributions = append(b.cfg.Actions.Contributions, config.Contribution{
			Key:    key,
			Label:  label,
			Weight: weight,
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

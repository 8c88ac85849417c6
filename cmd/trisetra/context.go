package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"trisetra/internal/config"
	"trisetra/internal/dispatch"
	"trisetra/internal/logging"
	"trisetra/internal/notifications"
	"trisetra/internal/previews"
	"trisetra/internal/remote"
	"trisetra/internal/rotation"
	"trisetra/internal/workorder"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		verbose := c.verboseFlag != nil && *c.verboseFlag
		logger, err := logging.NewFromConfig(c.configValue(), verbose)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) remoteClient() *remote.Client {
	return remote.NewFromConfig(c.configValue(), c.loggerValue())
}

// notifier prints notifications next to command output and forwards them to
// ntfy when configured. In JSON mode the console copy goes to stderr.
func (c *commandContext) notifier(cmd *cobra.Command) notifications.Notifier {
	var out io.Writer = cmd.OutOrStdout()
	if c.jsonMode() {
		out = cmd.ErrOrStderr()
	}
	return notifications.Multi(
		notifications.NewConsole(out),
		notifications.NewService(c.configValue()),
	)
}

func (c *commandContext) controller(cmd *cobra.Command) *workorder.Controller {
	return workorder.NewController(
		c.remoteClient(),
		workorder.WithNotifier(c.notifier(cmd)),
		workorder.WithLogger(c.loggerValue()),
	)
}

func (c *commandContext) pipeline() *previews.Pipeline {
	cfg := c.configValue()
	return previews.NewPipeline(c.remoteClient(), cfg.Previews, previews.WithLogger(c.loggerValue()))
}

func (c *commandContext) dispatcher(cmd *cobra.Command) *dispatch.Dispatcher {
	return dispatch.New(c.remoteClient(), c.notifier(cmd), c.loggerValue())
}

func (c *commandContext) withStore(fn func(*rotation.Store) error) error {
	store, err := rotation.Open(c.configValue())
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func parseTaskID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", value)
	}
	return id, nil
}

package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fastscribe/internal/config"
	"fastscribe/internal/credentials"
	"fastscribe/internal/logging"
	"fastscribe/internal/services"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	jsonFlag     *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	poolOnce sync.Once
	pool     *credentials.Pool
	poolErr  error

	requestID string
}

func newCommandContext(configFlag, logLevelFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		jsonFlag:     jsonFlag,
		requestID:    uuid.NewString(),
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
		if level := c.logLevel(); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// ensureCredentials builds the invocation's credential pool once. The cloud
// backend and the notes client share it, so keys rotate across both.
func (c *commandContext) ensureCredentials() (*credentials.Pool, error) {
	c.poolOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.poolErr = err
			return
		}
		c.pool, c.poolErr = credentialPool(cfg)
		logger, err := c.ensureLogger()
		if err != nil {
			return
		}
		if c.poolErr != nil {
			logger.Debug("no cloud credentials configured",
				logging.String(logging.FieldEventType, "credentials_missing"),
				logging.Error(c.poolErr),
			)
			return
		}
		logger.Debug("credential pool ready",
			logging.String(logging.FieldEventType, "credentials_loaded"),
			logging.Int("keys", c.pool.Size()),
			logging.String("source", string(c.pool.Source())),
		)
	})
	return c.pool, c.poolErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// requestContext tags the command's context with this invocation's request id.
func (c *commandContext) requestContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRequestID(ctx, c.requestID)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

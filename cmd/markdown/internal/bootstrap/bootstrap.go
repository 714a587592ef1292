package bootstrap

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-markdown/internal/di"
	"github.com/goliatone/go-markdown/internal/logging"
	"github.com/goliatone/go-markdown/internal/markdown"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// Options captures configuration for markdown CLI bootstraps.
type Options struct {
	// ConfigPath points at an explicit settings file. When empty the
	// default search locations are used.
	ConfigPath     string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the container and the configured markdown service/logger.
type Module struct {
	Container *di.Container
	Service   *markdown.Service
	Logger    interfaces.Logger
}

// BuildModule loads settings (defaults, file, MARKDOWN_* environment) and
// wires the runtime for command line use.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	v := viper.New()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		v.SetConfigFile(path)
	}

	cfg, err := runtimeconfig.Load(ctx, v)
	if err != nil {
		return nil, err
	}

	containerOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		containerOpts = append(containerOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}
	container, err := di.NewContainer(cfg, containerOpts...)
	if err != nil {
		return nil, err
	}

	logger := logging.CLILogger(container.LoggerProvider())
	if path := v.ConfigFileUsed(); path != "" {
		logger.Debug("markdown.cli.config_loaded", "path", path)
	}

	return &Module{
		Container: container,
		Service:   container.MarkdownService(),
		Logger:    logger,
	}, nil
}

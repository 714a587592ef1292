package logging

import (
	"context"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

const (
	rootModule      = "markdown"
	serviceModule   = "markdown.service"
	componentModule = "markdown.component"
	tagsModule      = "markdown.tags"
	cliModule       = "markdown.cli"
)

const (
	fieldDirection = "direction"
	fieldComponent = "component"
	fieldVariable  = "variable"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ServiceLogger returns the logger used by the conversion service.
func ServiceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, serviceModule)
}

// ComponentLogger returns the logger used by body-capturing components.
func ComponentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, componentModule)
}

// TagsLogger returns the logger used by the tag host.
func TagsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tagsModule)
}

// CLILogger returns the logger used by the command line harness.
func CLILogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cliModule)
}

// WithConversionContext enriches the logger with the conversion direction
// and, when known, the component and variable driving it. Empty values are
// ignored.
func WithConversionContext(logger interfaces.Logger, direction, component, variable string) interfaces.Logger {
	return WithFields(logger, map[string]any{
		fieldDirection: direction,
		fieldComponent: component,
		fieldVariable:  variable,
	})
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

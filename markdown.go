// Package markdown converts Markdown to HTML and back, and exposes a
// body-capturing markdown component for hosts that embed content in text.
package markdown

import (
	"context"

	"github.com/goliatone/go-markdown/internal/component"
	"github.com/goliatone/go-markdown/internal/di"
	internalmarkdown "github.com/goliatone/go-markdown/internal/markdown"
	"github.com/goliatone/go-markdown/internal/tags"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// ServiceName is the well-known name the conversion service is registered under.
const ServiceName = di.MarkdownServiceName

// Service is the conversion service contract.
type Service = interfaces.MarkdownConverter

// Scope holds variables bound while rendering components.
type Scope = tags.Scope

// Option overrides a runtime collaborator such as the logger provider.
type Option = di.Option

var (
	WithLoggerProvider       = di.WithLoggerProvider
	WithMetrics              = di.WithMetrics
	WithPrometheusRegisterer = di.WithPrometheusRegisterer
)

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the conversion service.
func (m *Module) Markdown() *internalmarkdown.Service {
	return m.container.MarkdownService()
}

// ToHTML renders Markdown as HTML.
func (m *Module) ToHTML(ctx context.Context, markdown string) (string, error) {
	return m.container.MarkdownService().ToHTML(ctx, markdown)
}

// ToMarkdown converts HTML back into Markdown.
func (m *Module) ToMarkdown(ctx context.Context, html string) (string, error) {
	return m.container.MarkdownService().ToMarkdown(ctx, html)
}

// Settings returns the effective conversion settings.
func (m *Module) Settings() map[string]any {
	return m.container.MarkdownService().Settings()
}

// Lookup returns a service registered under name, such as ServiceName.
func (m *Module) Lookup(name string) (any, bool) {
	return m.container.Lookup(name)
}

// Components returns the registry holding the markdown component.
func (m *Module) Components() interfaces.ComponentRegistry {
	return m.container.Components()
}

// Functions returns the markdown and htmlToMarkdown functions.
func (m *Module) Functions() *component.Functions {
	return m.container.Functions()
}

// Render expands {{< markdown >}} components in content. scope may be nil.
func (m *Module) Render(ctx context.Context, content string, scope *Scope) (string, error) {
	return m.container.TagHost().Render(ctx, content, scope)
}

// NewScope returns a variables scope seeded with initial.
func NewScope(initial map[string]any) *Scope {
	return tags.NewScope(initial)
}

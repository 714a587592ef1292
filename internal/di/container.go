package di

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-markdown/internal/component"
	"github.com/goliatone/go-markdown/internal/logging"
	"github.com/goliatone/go-markdown/internal/logging/gologger"
	"github.com/goliatone/go-markdown/internal/markdown"
	"github.com/goliatone/go-markdown/internal/metrics"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
	"github.com/goliatone/go-markdown/internal/tags"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

var (
	// ErrServiceRequired indicates Register was called without a name or a value.
	ErrServiceRequired = errors.New("markdown container: service name and value are required")
	// ErrServiceExists indicates a service is already registered under the name.
	ErrServiceExists = errors.New("markdown container: service already registered")
)

// MarkdownServiceName is the well-known name the conversion service is
// registered under.
const MarkdownServiceName = "markdownService"

// Container wires the conversion service, the components built on it and
// the ambient logging and metrics.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	metrics        interfaces.MarkdownMetrics
	registerer     prom.Registerer

	service    *markdown.Service
	components *component.Registry
	functions  *component.Functions
	host       *tags.Host

	mu       sync.RWMutex
	services map[string]any
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider derived from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetrics overrides the metrics recorder.
func WithMetrics(recorder interfaces.MarkdownMetrics) Option {
	return func(c *Container) {
		c.metrics = recorder
	}
}

// WithPrometheusRegisterer records conversion metrics with Prometheus,
// registering the collectors with reg. It is ignored when WithMetrics is set.
func WithPrometheusRegisterer(reg prom.Registerer) Option {
	return func(c *Container) {
		c.registerer = reg
	}
}

// NewContainer builds every runtime collaborator for cfg. Conversion
// settings are not validated here; a bad setting surfaces from the first
// conversion the way the service reports it.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	c := &Container{
		Config:   cfg,
		services: map[string]any{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogger(); err != nil {
		return nil, err
	}
	if err := c.configureMetrics(); err != nil {
		return nil, err
	}

	c.service = markdown.NewService(cfg,
		markdown.WithLogger(logging.ServiceLogger(c.loggerProvider)),
		markdown.WithMetrics(c.metrics),
	)
	if err := c.Register(MarkdownServiceName, c.service); err != nil {
		return nil, err
	}

	if err := c.configureComponents(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "").Debug("markdown.container.configured",
		"extensions", c.service.Extensions(),
		"components", len(c.components.List()),
		"functions", c.functions.Names(),
	)
	return c, nil
}

func (c *Container) configureLogger() error {
	if c.loggerProvider != nil || !c.Config.Logging.Enabled {
		return nil
	}
	if err := c.Config.Logging.Validate(); err != nil {
		return err
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureMetrics() error {
	if c.metrics != nil {
		return nil
	}
	if c.registerer == nil {
		c.metrics = markdown.NoOpMetrics()
		return nil
	}
	recorder, err := metrics.NewPrometheusRecorder(c.registerer)
	if err != nil {
		return fmt.Errorf("markdown metrics: %w", err)
	}
	c.metrics = recorder
	return nil
}

func (c *Container) configureComponents() error {
	c.components = component.NewRegistry(component.NewValidator())
	construct := component.NewMarkdown(c.service, logging.ComponentLogger(c.loggerProvider))
	if err := c.components.Register(construct.Definition()); err != nil {
		return err
	}

	c.functions = component.NewFunctions()
	if err := component.RegisterMarkdownFunctions(c.functions, c.service); err != nil {
		return err
	}

	c.host = tags.NewHost(c.components, logging.TagsLogger(c.loggerProvider))
	return nil
}

// Register stores a named service so hosts can look it up later.
func (c *Container) Register(name string, service any) error {
	if name == "" || service == nil {
		return ErrServiceRequired
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[name]; exists {
		return fmt.Errorf("%w: %s", ErrServiceExists, name)
	}
	c.services[name] = service
	return nil
}

// Lookup returns the service registered under name.
func (c *Container) Lookup(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	service, ok := c.services[name]
	return service, ok
}

// ServiceNames lists the registered service names in sorted order.
func (c *Container) ServiceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Container) MarkdownService() *markdown.Service {
	return c.service
}

func (c *Container) Components() *component.Registry {
	return c.components
}

func (c *Container) Functions() *component.Functions {
	return c.functions
}

func (c *Container) TagHost() *tags.Host {
	return c.host
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Metrics() interfaces.MarkdownMetrics {
	return c.metrics
}

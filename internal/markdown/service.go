package markdown

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-markdown/internal/logging"
	"github.com/goliatone/go-markdown/internal/markdown/extensions"
	"github.com/goliatone/go-markdown/internal/runtimeconfig"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// Service converts between Markdown and HTML using delegates derived from a
// single configuration snapshot. It is safe for concurrent use.
type Service struct {
	cfg     runtimeconfig.Config
	logger  interfaces.Logger
	metrics interfaces.MarkdownMetrics

	parser    func() (parser.Parser, error)
	renderer  func() (renderer.Renderer, error)
	converter func() (*converter.Converter, error)
}

var _ interfaces.MarkdownConverter = (*Service)(nil)

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics interfaces.MarkdownMetrics) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewService returns a service for cfg. Nothing is built until the first
// conversion; a configuration problem surfaces from that call and every call
// after it.
func NewService(cfg runtimeconfig.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		logger:  logging.NoOp(),
		metrics: NoOpMetrics(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.parser = sync.OnceValues(s.buildParser)
	s.renderer = sync.OnceValues(s.buildRenderer)
	s.converter = sync.OnceValues(s.buildConverter)
	return s
}

// Config returns the configuration snapshot the service was built from.
func (s *Service) Config() runtimeconfig.Config {
	return s.cfg
}

// Settings returns the effective settings keyed by their public names.
func (s *Service) Settings() map[string]any {
	return s.cfg.Settings()
}

// Extensions returns the ordered extension names applied by the service.
func (s *Service) Extensions() []string {
	return Extensions(s.cfg)
}

// ToHTML renders trimmed Markdown as HTML. Malformed Markdown is rendered on
// a best effort basis and never produces an error.
func (s *Service) ToHTML(ctx context.Context, markdown string) (string, error) {
	if err := contextError(ctx); err != nil {
		return "", err
	}
	started := time.Now()

	p, err := s.parser()
	if err != nil {
		return "", s.failed(ctx, interfaces.DirectionToHTML, err)
	}
	r, err := s.renderer()
	if err != nil {
		return "", s.failed(ctx, interfaces.DirectionToHTML, err)
	}

	source := []byte(strings.TrimSpace(markdown))
	pc := parser.NewContext(parser.WithIDs(extensions.NewHeadingIDs()))
	doc := p.Parse(text.NewReader(source), parser.WithContext(pc))

	var buf bytes.Buffer
	if err := r.Render(&buf, source, doc); err != nil {
		return "", s.failed(ctx, interfaces.DirectionToHTML, wrapRenderError(err))
	}

	s.metrics.ObserveConversion(interfaces.DirectionToHTML, time.Since(started))
	return buf.String(), nil
}

// ToMarkdown converts trimmed HTML back into Markdown. The conversion is lossy.
func (s *Service) ToMarkdown(ctx context.Context, html string) (string, error) {
	if err := contextError(ctx); err != nil {
		return "", err
	}
	started := time.Now()

	conv, err := s.converter()
	if err != nil {
		return "", s.failed(ctx, interfaces.DirectionToMarkdown, err)
	}

	opts := []converter.ConvertOptionFunc{}
	if ctx != nil {
		opts = append(opts, converter.WithContext(ctx))
	}
	out, err := conv.ConvertString(strings.TrimSpace(html), opts...)
	if err != nil {
		return "", s.failed(ctx, interfaces.DirectionToMarkdown, wrapConvertError(err))
	}

	s.metrics.ObserveConversion(interfaces.DirectionToMarkdown, time.Since(started))
	return out, nil
}

func (s *Service) buildParser() (parser.Parser, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, s.buildFailed(interfaces.DelegateParser, err)
	}
	p := newEngine(s.cfg).Parser()
	s.built(interfaces.DelegateParser)
	return p, nil
}

func (s *Service) buildRenderer() (renderer.Renderer, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, s.buildFailed(interfaces.DelegateRenderer, err)
	}
	r := newEngine(s.cfg).Renderer()
	s.built(interfaces.DelegateRenderer)
	return r, nil
}

func (s *Service) buildConverter() (*converter.Converter, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, s.buildFailed(interfaces.DelegateConverter, err)
	}
	conv := newConverter()
	// plugin registration errors are held by the converter until first use
	if _, err := conv.ConvertString(""); err != nil {
		return nil, s.buildFailed(interfaces.DelegateConverter, err)
	}
	s.built(interfaces.DelegateConverter)
	return conv, nil
}

func (s *Service) built(delegate string) {
	s.metrics.IncrementDelegateBuild(delegate)
	s.logger.Debug("markdown.delegate.built", "delegate", delegate, "extensions", s.Extensions())
}

func (s *Service) buildFailed(delegate string, err error) error {
	s.logger.Error("markdown.delegate.build_failed", "delegate", delegate, "error", err)
	return wrapBuildError(err, delegate)
}

func (s *Service) failed(ctx context.Context, direction string, err error) error {
	s.metrics.IncrementConversionError(direction)
	logger := logging.WithConversionContext(logging.LoggerWithContext(s.logger, ctx), direction, "", "")
	logger.Warn("markdown.conversion.failed", "error", err)
	return err
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

package component

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-markdown/internal/logging"
	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// MarkdownName is the name the construct registers under.
const MarkdownName = "markdown"

// AttributeVariable names the optional attribute that redirects output into a variable.
const AttributeVariable = "variable"

// Attributes configures a single Markdown invocation.
type Attributes struct {
	// Variable receives the rendered HTML when non-empty. When empty the HTML
	// is appended to the host's output buffer.
	Variable string
}

// ParseAttributes reads Attributes out of a raw host mapping. Keys are
// case-insensitive; a variable that is not a string is rejected.
func ParseAttributes(raw map[string]any) (Attributes, error) {
	var attrs Attributes
	for key, value := range raw {
		if !strings.EqualFold(strings.TrimSpace(key), AttributeVariable) || value == nil {
			continue
		}
		switch value.(type) {
		case string, []byte, fmt.Stringer:
		default:
			return Attributes{}, wrapAttributeError(
				fmt.Errorf("%w: %s must be a string, got %T", ErrAttributeType, AttributeVariable, value), MarkdownName)
		}
		variable, err := cast.ToStringE(value)
		if err != nil {
			return Attributes{}, wrapAttributeError(fmt.Errorf("%w: %v", ErrAttributeType, err), MarkdownName)
		}
		attrs.Variable = strings.TrimSpace(variable)
	}
	return attrs, nil
}

// Markdown captures the output of its body and emits it as HTML.
type Markdown struct {
	converter interfaces.MarkdownConverter
	logger    interfaces.Logger
}

// NewMarkdown returns a construct backed by converter.
func NewMarkdown(converter interfaces.MarkdownConverter, logger interfaces.Logger) *Markdown {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Markdown{converter: converter, logger: logger}
}

// Invoke runs body into a private buffer and converts what it wrote. If the
// body exits early its result is returned untouched and the buffer is
// dropped, so no variable is bound and nothing reaches the host buffer.
func (m *Markdown) Invoke(ctx context.Context, host interfaces.ComponentHost, attrs Attributes, body interfaces.ComponentBody) (interfaces.BodyResult, error) {
	if m == nil || m.converter == nil {
		return interfaces.DefaultReturn, ErrConverterRequired
	}
	logger := logging.WithConversionContext(logging.LoggerWithContext(m.logger, ctx), interfaces.DirectionToHTML, MarkdownName, attrs.Variable)

	var buffer strings.Builder
	if body != nil {
		result, err := body(ctx, &buffer)
		if err != nil {
			return result, err
		}
		if result.IsEarlyExit() {
			logger.Debug("markdown.component.early_exit")
			return result, nil
		}
	}

	html, err := m.converter.ToHTML(ctx, buffer.String())
	if err != nil {
		return interfaces.DefaultReturn, err
	}

	if attrs.Variable != "" {
		if err := host.SetVariable(ctx, attrs.Variable, html); err != nil {
			return interfaces.DefaultReturn, wrapHostError(err, MarkdownName)
		}
	} else if err := host.WriteToBuffer(ctx, html); err != nil {
		return interfaces.DefaultReturn, wrapHostError(err, MarkdownName)
	}

	logger.Trace("markdown.component.rendered", "bytes", len(html))
	return interfaces.DefaultReturn, nil
}

// Invoker adapts Invoke to the untyped host calling convention.
func (m *Markdown) Invoker() interfaces.ComponentInvoker {
	return func(ctx context.Context, host interfaces.ComponentHost, raw map[string]any, body interfaces.ComponentBody) (interfaces.BodyResult, error) {
		attrs, err := ParseAttributes(raw)
		if err != nil {
			return interfaces.DefaultReturn, err
		}
		return m.Invoke(ctx, host, attrs, body)
	}
}

// Definition describes the construct for registration with a Registry.
func (m *Markdown) Definition() interfaces.ComponentDefinition {
	return interfaces.ComponentDefinition{
		Name:        MarkdownName,
		Description: "Renders the Markdown written by its body as HTML",
		Attributes: []interfaces.ComponentAttribute{
			{Name: AttributeVariable},
		},
		RequiresBody: true,
		Invoker:      m.Invoker(),
	}
}

package interfaces

import (
	"context"
	"time"
)

// MarkdownConverter converts between Markdown and HTML. Implementations are
// safe for concurrent use once constructed.
type MarkdownConverter interface {
	// ToHTML renders Markdown text as an HTML fragment.
	ToHTML(ctx context.Context, markdown string) (string, error)
	// ToMarkdown converts an HTML fragment back into Markdown, best effort.
	ToMarkdown(ctx context.Context, html string) (string, error)
}

// Conversion directions reported to MarkdownMetrics.
const (
	DirectionToHTML     = "to_html"
	DirectionToMarkdown = "to_markdown"
)

// Delegate names reported when a conversion delegate is constructed.
const (
	DelegateParser    = "parser"
	DelegateRenderer  = "renderer"
	DelegateConverter = "converter"
)

// MarkdownMetrics receives observations from the conversion service.
type MarkdownMetrics interface {
	ObserveConversion(direction string, duration time.Duration)
	IncrementConversionError(direction string)
	IncrementDelegateBuild(delegate string)
}

package markdown

import (
	"time"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.MarkdownMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveConversion(string, time.Duration) {}

func (noopMetrics) IncrementConversionError(string) {}

func (noopMetrics) IncrementDelegateBuild(string) {}

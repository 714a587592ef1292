// Package metrics records conversion activity with Prometheus.
package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-markdown/pkg/interfaces"
)

const namespace = "markdown"

// PrometheusRecorder implements interfaces.MarkdownMetrics using Prometheus metrics.
type PrometheusRecorder struct {
	conversionDuration *prom.HistogramVec
	conversions        *prom.CounterVec
	conversionErrors   *prom.CounterVec
	delegateBuilds     *prom.CounterVec
}

var _ interfaces.MarkdownMetrics = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil registerer gets a private registry, which keeps repeated construction
// in tests from colliding.
func NewPrometheusRecorder(reg prom.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		conversionDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of successful conversions by direction",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"direction"}),
		conversions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Successful conversions by direction",
		}, []string{"direction"}),
		conversionErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_errors_total",
			Help:      "Failed conversions by direction",
		}, []string{"direction"}),
		delegateBuilds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "delegate_builds_total",
			Help:      "Parser, renderer and converter constructions",
		}, []string{"delegate"}),
	}

	for _, c := range []prom.Collector{pr.conversionDuration, pr.conversions, pr.conversionErrors, pr.delegateBuilds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return pr, nil
}

func (p *PrometheusRecorder) ObserveConversion(direction string, d time.Duration) {
	if p == nil || p.conversionDuration == nil {
		return
	}
	p.conversionDuration.WithLabelValues(direction).Observe(d.Seconds())
	p.conversions.WithLabelValues(direction).Inc()
}

func (p *PrometheusRecorder) IncrementConversionError(direction string) {
	if p == nil || p.conversionErrors == nil {
		return
	}
	p.conversionErrors.WithLabelValues(direction).Inc()
}

func (p *PrometheusRecorder) IncrementDelegateBuild(delegate string) {
	if p == nil || p.delegateBuilds == nil {
		return
	}
	p.delegateBuilds.WithLabelValues(delegate).Inc()
}

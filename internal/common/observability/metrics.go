// Package observability exports OpenTelemetry assessment metrics through Prometheus.
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	assessmentCounter  otelmetric.Int64Counter
	assessmentDuration otelmetric.Float64Histogram
	scoreHistogram     otelmetric.Int64Histogram
}

// New registers the exporter with the default Prometheus registerer, so the
// instruments appear on the same /metrics endpoint as the promauto metrics.
func New(serviceName string) (*Observability, error) {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	counter, err := meter.Int64Counter(
		"visa.assessments",
		otelmetric.WithDescription("Number of visa assessments by assessor and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create assessment counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"visa.assessment.duration",
		otelmetric.WithDescription("Assessment duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	scores, err := meter.Int64Histogram(
		"visa.assessment.score",
		otelmetric.WithDescription("Distribution of assessment scores"),
		otelmetric.WithExplicitBucketBoundaries(0, 45, 60, 75, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("create score histogram: %w", err)
	}

	return &Observability{
		meterProvider:      provider,
		assessmentCounter:  counter,
		assessmentDuration: duration,
		scoreHistogram:     scores,
	}, nil
}

// RecordAssessment records one assessment attempt. It is safe on a nil receiver.
func (o *Observability) RecordAssessment(ctx context.Context, assessor, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("assessor", assessor),
		attribute.String("outcome", outcome),
	)
	o.assessmentCounter.Add(ctx, 1, attrs)
	o.assessmentDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordScore records the final score of a successful assessment.
func (o *Observability) RecordScore(ctx context.Context, assessor string, score int) {
	if o == nil {
		return
	}
	o.scoreHistogram.Record(ctx, int64(score), otelmetric.WithAttributes(attribute.String("assessor", assessor)))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}

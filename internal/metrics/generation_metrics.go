package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("doc-orchestrator/generation-metrics")

// GenerationMetrics collects measurements about documentation runs.
type GenerationMetrics struct {
	runsStartedCounter   metric.Int64Counter
	runsCompletedCounter metric.Int64Counter
	runsFailedCounter    metric.Int64Counter
	runDurationHistogram metric.Float64Histogram
	tokensUsedCounter    metric.Int64Counter
	sectionsHistogram    metric.Int64Histogram
	runsActiveGauge      metric.Int64UpDownCounter
}

// NewGenerationMetrics creates the generation metrics collector.
func NewGenerationMetrics() (*GenerationMetrics, error) {
	runsStartedCounter, err := meter.Int64Counter(
		"doc_orchestrator.generations.started",
		metric.WithDescription("Total number of documentation generation runs started"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsCompletedCounter, err := meter.Int64Counter(
		"doc_orchestrator.generations.completed",
		metric.WithDescription("Total number of generation runs completed successfully"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runsFailedCounter, err := meter.Int64Counter(
		"doc_orchestrator.generations.failed",
		metric.WithDescription("Total number of generation runs that failed"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	runDurationHistogram, err := meter.Float64Histogram(
		"doc_orchestrator.generation.duration",
		metric.WithDescription("Duration of generation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsedCounter, err := meter.Int64Counter(
		"doc_orchestrator.generation.tokens",
		metric.WithDescription("Total language model tokens consumed by generation runs"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, err
	}

	sectionsHistogram, err := meter.Int64Histogram(
		"doc_orchestrator.generation.sections",
		metric.WithDescription("Number of sections produced per generation run"),
		metric.WithUnit("{section}"),
	)
	if err != nil {
		return nil, err
	}

	runsActiveGauge, err := meter.Int64UpDownCounter(
		"doc_orchestrator.generations.active",
		metric.WithDescription("Number of generation runs currently in flight"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{
		runsStartedCounter:   runsStartedCounter,
		runsCompletedCounter: runsCompletedCounter,
		runsFailedCounter:    runsFailedCounter,
		runDurationHistogram: runDurationHistogram,
		tokensUsedCounter:    tokensUsedCounter,
		sectionsHistogram:    sectionsHistogram,
		runsActiveGauge:      runsActiveGauge,
	}, nil
}

// RecordStarted records the launch of a generation run.
func (gm *GenerationMetrics) RecordStarted(ctx context.Context) {
	gm.runsStartedCounter.Add(ctx, 1)
	gm.runsActiveGauge.Add(ctx, 1)
}

// RecordGeneration records a successful run.
func (gm *GenerationMetrics) RecordGeneration(ctx context.Context, method string, duration time.Duration, tokens, sections int) {
	attrs := metric.WithAttributes(
		attribute.String("generation.method", method),
		attribute.String("status", "completed"),
	)
	gm.runsCompletedCounter.Add(ctx, 1, attrs)
	gm.runDurationHistogram.Record(ctx, duration.Seconds(), attrs)
	gm.tokensUsedCounter.Add(ctx, int64(tokens),
		metric.WithAttributes(attribute.String("generation.method", method)))
	gm.sectionsHistogram.Record(ctx, int64(sections),
		metric.WithAttributes(attribute.String("generation.method", method)))
	gm.runsActiveGauge.Add(ctx, -1)
}

// RecordFailure records a failed run.
func (gm *GenerationMetrics) RecordFailure(ctx context.Context, reason string) {
	gm.runsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("status", "failed"),
			attribute.String("error.type", reason),
		),
	)
	gm.runsActiveGauge.Add(ctx, -1)
}

package metrics

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface the services report to.
type Recorder interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
	RecordDiagnostics(ctx context.Context, operation string, ds diagnostics.Diagnostics)
	RecordArmiesBuilt(ctx context.Context, count int)
	RecordUnitsParsed(ctx context.Context, count int)
}

// PrometheusRecorder implements Recorder with client_golang collectors.
type PrometheusRecorder struct {
	attempts    *prometheus.CounterVec
	successes   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
	armies      prometheus.Counter
	units       prometheus.Counter
}

// NewPrometheusRecorder registers its collectors on registry.
func NewPrometheusRecorder(registry prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Number of service operations started.",
		}, []string{"operation"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Number of service operations that completed.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Number of service operations that failed.",
		}, []string{"operation"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics collected, by kind and severity.",
		}, []string{"operation", "kind", "severity"}),
		armies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "armies_built_total",
			Help:      "Army records built.",
		}),
		units: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_parsed_total",
			Help:      "Unit entries parsed.",
		}),
	}

	for _, c := range []prometheus.Collector{r.attempts, r.successes, r.failures, r.durations, r.diagnostics, r.armies, r.units} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) RecordOperationAttempt(_ context.Context, operation string) {
	r.attempts.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationSuccess(_ context.Context, operation string) {
	r.successes.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationFailure(_ context.Context, operation string) {
	r.failures.WithLabelValues(operation).Inc()
}

func (r *PrometheusRecorder) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordDiagnostics(_ context.Context, operation string, ds diagnostics.Diagnostics) {
	for _, d := range ds {
		r.diagnostics.WithLabelValues(operation, string(d.Kind), string(d.Severity)).Inc()
	}
}

func (r *PrometheusRecorder) RecordArmiesBuilt(_ context.Context, count int) {
	r.armies.Add(float64(count))
}

func (r *PrometheusRecorder) RecordUnitsParsed(_ context.Context, count int) {
	r.units.Add(float64(count))
}

// NoOp discards everything. Used in tests and when metrics are disabled.
type NoOp struct{}

func (NoOp) RecordOperationAttempt(context.Context, string) {}
func (NoOp) RecordOperationSuccess(context.Context, string) {}
func (NoOp) RecordOperationFailure(context.Context, string) {}
func (NoOp) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOp) RecordDiagnostics(context.Context, string, diagnostics.Diagnostics) {}
func (NoOp) RecordArmiesBuilt(context.Context, int) {}
func (NoOp) RecordUnitsParsed(context.Context, int) {}

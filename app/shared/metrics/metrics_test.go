package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(registry, "test")
	require.NoError(t, err)
	ctx := context.Background()

	r.RecordOperationAttempt(ctx, "BuildArmies")
	r.RecordOperationAttempt(ctx, "BuildArmies")
	r.RecordOperationSuccess(ctx, "BuildArmies")
	r.RecordOperationFailure(ctx, "BuildArmies")
	r.RecordOperationDuration(ctx, "BuildArmies", 20*time.Millisecond)
	r.RecordArmiesBuilt(ctx, 3)
	r.RecordUnitsParsed(ctx, 17)
	r.RecordDiagnostics(ctx, "BuildArmies", diagnostics.Diagnostics{
		diagnostics.Warning(diagnostics.KindDuplicateTotal, diagnostics.ScopeArmy, "repeat"),
		diagnostics.Warning(diagnostics.KindDuplicateTotal, diagnostics.ScopeArmy, "repeat again"),
		{Kind: diagnostics.KindStructural, Severity: diagnostics.SeverityError, Scope: diagnostics.ScopeArmy},
	})

	require.Equal(t, 2.0, testutil.ToFloat64(r.attempts.WithLabelValues("BuildArmies")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.successes.WithLabelValues("BuildArmies")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.failures.WithLabelValues("BuildArmies")))
	require.Equal(t, 3.0, testutil.ToFloat64(r.armies))
	require.Equal(t, 17.0, testutil.ToFloat64(r.units))
	require.Equal(t, 2.0, testutil.ToFloat64(r.diagnostics.WithLabelValues("BuildArmies", "duplicate_total", "warning")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.diagnostics.WithLabelValues("BuildArmies", "structural", "error")))
	require.Equal(t, 1, testutil.CollectAndCount(r.durations))
}

func TestNewPrometheusRecorder_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewPrometheusRecorder(registry, "test")
	require.NoError(t, err)

	_, err = NewPrometheusRecorder(registry, "test")
	require.Error(t, err)
}

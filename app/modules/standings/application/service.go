package standingsservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/vocab"
	"github.com/Black-And-White-Club/armylists/app/shared/metrics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StandingsService implements the Service interface.
type StandingsService struct {
	logger  *slog.Logger
	metrics metrics.Recorder
	tracer  trace.Tracer
	vocab   *vocab.Set
}

// NewStandingsService creates a new StandingsService. A nil vocabulary set uses the
// built-in defaults.
func NewStandingsService(
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
	set *vocab.Set,
) *StandingsService {
	if set == nil {
		set = vocab.Default()
	}
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	return &StandingsService{
		logger:  logger,
		metrics: recorder,
		tracer:  tracer,
		vocab:   set,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *StandingsService,
	ctx context.Context,
	operationName string,
	tournament string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("tournament", tournament),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.String("tournament", tournament),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("tournament", tournament),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("tournament", tournament),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.String("operation", operationName),
			attr.String("tournament", tournament),
			attr.Any("failure_payload", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.String("tournament", tournament),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

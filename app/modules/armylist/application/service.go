package armylistservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/armylists/app/modules/armylist/application/parsers"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/vocab"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/armylists/app/shared/metrics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options tune the builder. Zero values fall back to the defaults below.
type Options struct {
	Workers        int
	MinBlockLines  int
	MinTotalPoints int
	MaxTotalPoints int
	Policy         diagnostics.Policy
}

const (
	DefaultWorkers        = 4
	DefaultMinBlockLines  = 6
	DefaultMinTotalPoints = 1000
	DefaultMaxTotalPoints = 10000
)

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.MinBlockLines <= 0 {
		o.MinBlockLines = DefaultMinBlockLines
	}
	if o.MinTotalPoints <= 0 {
		o.MinTotalPoints = DefaultMinTotalPoints
	}
	if o.MaxTotalPoints <= 0 {
		o.MaxTotalPoints = DefaultMaxTotalPoints
	}
	if o.Policy == "" {
		o.Policy = diagnostics.PolicyBestEffort
	}
	return o
}

// ArmyListService implements the Service interface.
type ArmyListService struct {
	logger  *slog.Logger
	metrics metrics.Recorder
	tracer  trace.Tracer
	vocab   *vocab.Set
	opts    Options

	segmenter  *parsers.Segmenter
	unitParser *parsers.UnitLineParser
	totals     parsers.TotalsDetector
	newID      func() string
}

// NewArmyListService creates a new ArmyListService. A nil vocabulary set uses the
// built-in defaults.
func NewArmyListService(
	logger *slog.Logger,
	recorder metrics.Recorder,
	tracer trace.Tracer,
	set *vocab.Set,
	opts Options,
) *ArmyListService {
	if set == nil {
		set = vocab.Default()
	}
	if recorder == nil {
		recorder = metrics.NoOp{}
	}
	opts = opts.withDefaults()
	return &ArmyListService{
		logger:     logger,
		metrics:    recorder,
		tracer:     tracer,
		vocab:      set,
		opts:       opts,
		segmenter:  parsers.NewSegmenter(set.Factions),
		unitParser: parsers.NewUnitLineParser(),
		totals:     parsers.TotalsDetector{Min: opts.MinTotalPoints, Max: opts.MaxTotalPoints},
		newID:      uuid.NewString,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ArmyListService,
	ctx context.Context,
	operationName string,
	source string,
	op operationFunc[T],
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("source", source),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.String("source", source),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("source", source),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, operationName+" completed successfully",
		attr.String("operation", operationName),
		attr.String("source", source),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName)
	return result, nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	armylistservice "github.com/Black-And-White-Club/armylists/app/modules/armylist/application"
	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/vocab"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/export"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/sources"
	standingsservice "github.com/Black-And-White-Club/armylists/app/modules/standings/application"
	"github.com/Black-And-White-Club/armylists/app/pipeline"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/armylists/app/shared/metrics"
	"github.com/Black-And-White-Club/armylists/config"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "armylists"

// App holds the wired services of one process.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Registry  *prometheus.Registry
	Vocab     *vocab.Set
	Factory   *sources.Factory
	Armies    *armylistservice.ArmyListService
	Standings *standingsservice.StandingsService
	Pipeline  *pipeline.Pipeline

	// PubSub is set when records are published in-process.
	PubSub *gochannel.GoChannel

	closers []io.Closer
}

// Options adjusts NewApp for commands that write their own output.
type Options struct {
	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer
	// ExtraSinks run after the configured ones.
	ExtraSinks []pipeline.Sink
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger, err := newLogger(cfg.Observability, opts.LogOutput)
	if err != nil {
		return nil, err
	}

	set := vocab.Default()
	if path := cfg.Parsing.VocabularyFile; path != "" {
		if set, err = vocab.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load vocabularies: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheusRecorder(registry, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	tracer := otel.Tracer(serviceName)

	loc := time.UTC
	if tz := cfg.Parsing.Timezone; tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
		}
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Tracer:   tracer,
		Registry: registry,
		Vocab:    set,
		Factory:  sources.NewFactory(sources.NewDateParser(sources.RealClock{}, loc)),
	}
	app.Armies = armylistservice.NewArmyListService(logger, recorder, tracer, set, armylistservice.Options{
		Workers:        cfg.Parsing.Workers,
		MinBlockLines:  cfg.Parsing.MinBlockLines,
		MinTotalPoints: cfg.Parsing.MinTotalPoints,
		MaxTotalPoints: cfg.Parsing.MaxTotalPoints,
		Policy:         diagnostics.ParsePolicy(strings.ToLower(cfg.Parsing.Policy)),
	})
	app.Standings = standingsservice.NewStandingsService(logger, recorder, tracer, set)

	sinks, err := app.sinks(cfg.Export)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Pipeline = pipeline.New(app.Armies, app.Standings, logger, append(sinks, opts.ExtraSinks...)...)

	logger.InfoContext(ctx, "Application initialized",
		attr.String("environment", cfg.Observability.Environment),
		attr.Int("workers", cfg.Parsing.Workers),
		attr.String("policy", cfg.Parsing.Policy),
		attr.Int("factions", len(set.Factions.Names())),
	)
	return app, nil
}

func (app *App) sinks(cfg config.ExportConfig) ([]pipeline.Sink, error) {
	var sinks []pipeline.Sink
	if cfg.NDJSONPath != "" {
		f, err := os.OpenFile(cfg.NDJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open export file: %w", err)
		}
		app.closers = append(app.closers, f)
		sinks = append(sinks, export.NewNDJSONWriter(f))
	}
	if cfg.Publish {
		app.PubSub = export.NewInProcessPubSub(app.Logger, 256)
		app.closers = append(app.closers, app.PubSub)
		sinks = append(sinks, export.NewPublisher(app.PubSub, cfg.Topic, app.Logger))
	}
	return sinks, nil
}

// LoadDocument adapts every file and merges them into one document, in order.
func (app *App) LoadDocument(paths ...string) (*armytypes.SourceDocument, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}
	merged := &armytypes.SourceDocument{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		adapter, err := app.Factory.GetAdapter(path, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		doc, err := adapter.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		merged.Merge(doc)
	}
	return merged, nil
}

// Close releases export files and the in-process pub/sub.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

func newLogger(cfg config.ObservabilityConfig, out io.Writer) (*slog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		attr.String("service", serviceName),
		attr.String("environment", cfg.Environment),
	), nil
}

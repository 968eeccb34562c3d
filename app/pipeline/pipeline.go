package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	armylistservice "github.com/Black-And-White-Club/armylists/app/modules/armylist/application"
	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	standingsservice "github.com/Black-And-White-Club/armylists/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/armylists/app/modules/standings/domain"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
)

// ErrStandingsRejected wraps a domain rejection from the standings stage.
var ErrStandingsRejected = errors.New("standings rejected")

// Sink receives the final army records of a processed document.
type Sink interface {
	Export(ctx context.Context, armies []armytypes.ArmyEntry) error
}

// Report is the result of processing one document end to end.
type Report struct {
	Event       armytypes.EventInfo         `json:"event"`
	Armies      []armytypes.ArmyEntry       `json:"armies"`
	Teams       []standingsdomain.TeamScore `json:"teams,omitempty"`
	Diagnostics diagnostics.Diagnostics     `json:"diagnostics"`
}

// Pipeline runs army building and standings as two phases. Standings never start
// until every block of the document has been built.
type Pipeline struct {
	armies    armylistservice.Service
	standings standingsservice.Service
	sinks     []Sink
	logger    *slog.Logger
}

// New creates a Pipeline. Sinks run in order after a successful run.
func New(armies armylistservice.Service, standings standingsservice.Service, logger *slog.Logger, sinks ...Sink) *Pipeline {
	return &Pipeline{armies: armies, standings: standings, sinks: sinks, logger: logger}
}

// Build runs the first phase only.
func (p *Pipeline) Build(ctx context.Context, doc *armytypes.SourceDocument) (*Report, error) {
	outcome, err := p.armies.BuildArmies(ctx, doc)
	report := &Report{Armies: outcome.Successes, Diagnostics: outcome.Diagnostics}
	if doc != nil {
		report.Event = doc.Event
	}
	if err != nil {
		var batch *diagnostics.BatchFailureError
		if errors.As(err, &batch) {
			report.Diagnostics = batch.Diagnostics
		}
		return report, err
	}
	return report, nil
}

// Process builds every army, then scores the event, then hands the records to the sinks.
func (p *Pipeline) Process(ctx context.Context, doc *armytypes.SourceDocument) (*Report, error) {
	report, err := p.Build(ctx, doc)
	if err != nil {
		return report, err
	}

	result, err := p.standings.ComputeStandings(ctx, standingsservice.EventInput{
		Event:  doc.Event,
		Armies: report.Armies,
		Rounds: doc.Rounds,
		Teams:  doc.Teams,
	})
	if err != nil {
		return report, fmt.Errorf("compute standings: %w", err)
	}
	if result.Failure != nil {
		return report, fmt.Errorf("%w: %w", ErrStandingsRejected, *result.Failure)
	}

	standings := *result.Success
	report.Event.EventType = standings.EventType
	report.Armies = standings.Armies
	report.Teams = standings.Teams
	report.Diagnostics.Merge(standings.Diagnostics)

	if err := p.Export(ctx, report.Armies); err != nil {
		return report, err
	}
	return report, nil
}

// Export sends armies to every sink, stopping at the first failure.
func (p *Pipeline) Export(ctx context.Context, armies []armytypes.ArmyEntry) error {
	for _, sink := range p.sinks {
		if err := sink.Export(ctx, armies); err != nil {
			p.logger.ErrorContext(ctx, "Export failed",
				attr.Int("armies", len(armies)),
				attr.Error(err),
			)
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

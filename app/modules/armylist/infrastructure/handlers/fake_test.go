package armylisthandlers

import (
	"context"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	standingsservice "github.com/Black-And-White-Club/armylists/app/modules/standings/application"
	"github.com/Black-And-White-Club/armylists/app/pipeline"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
)

// ------------------------
// Fake Processor
// ------------------------

type FakeProcessor struct {
	BuildFunc   func(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error)
	ProcessFunc func(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error)

	Docs []*armytypes.SourceDocument
}

func (f *FakeProcessor) Build(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error) {
	f.Docs = append(f.Docs, doc)
	if f.BuildFunc != nil {
		return f.BuildFunc(ctx, doc)
	}
	return &pipeline.Report{Event: doc.Event}, nil
}

func (f *FakeProcessor) Process(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error) {
	f.Docs = append(f.Docs, doc)
	if f.ProcessFunc != nil {
		return f.ProcessFunc(ctx, doc)
	}
	return &pipeline.Report{Event: doc.Event}, nil
}

// ------------------------
// Fake Standings Service
// ------------------------

type FakeStandings struct {
	ComputeStandingsFunc func(ctx context.Context, in standingsservice.EventInput) (standingsservice.StandingsOperationResult, error)
}

func (f *FakeStandings) ComputeStandings(ctx context.Context, in standingsservice.EventInput) (standingsservice.StandingsOperationResult, error) {
	if f.ComputeStandingsFunc != nil {
		return f.ComputeStandingsFunc(ctx, in)
	}
	return results.SuccessResult[*standingsservice.Standings, error](&standingsservice.Standings{
		EventType: armytypes.EventTypeSingles,
		Armies:    in.Armies,
	}), nil
}

var (
	_ Processor                = (*FakeProcessor)(nil)
	_ standingsservice.Service = (*FakeStandings)(nil)
)

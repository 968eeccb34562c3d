package armylistservice

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/armylists/app/modules/armylist/application/parsers"
	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"golang.org/x/sync/errgroup"
)

// blockJob is one segmented block queued for building. Number is 1-based across the
// whole document so diagnostics stay unambiguous when there are several sections.
type blockJob struct {
	Number  int
	Section armytypes.Section
	Block   parsers.Block
	// Shared is set when the section produced more than one block.
	Shared bool
}

// blockResult holds at most one army.
type blockResult = diagnostics.Outcome[armytypes.ArmyEntry]

// BuildArmies segments every section of doc and builds one army record per block.
// Blocks are built concurrently; results keep document order. A failing block never
// affects another. The only fatal outcome is a BatchFailureError, or a RejectedError
// when the all-or-nothing policy is configured. Cancelling ctx abandons the batch.
func (s *ArmyListService) BuildArmies(ctx context.Context, doc *armytypes.SourceDocument) (diagnostics.Outcome[armytypes.ArmyEntry], error) {
	source := ""
	if doc != nil {
		source = doc.Source
	}
	return withTelemetry(s, ctx, "BuildArmies", source, func(ctx context.Context) (diagnostics.Outcome[armytypes.ArmyEntry], error) {
		if doc == nil || doc.LineCount() == 0 {
			return diagnostics.Outcome[armytypes.ArmyEntry]{}, &diagnostics.BatchFailureError{Reason: reasonEmptyInput}
		}

		var outcome diagnostics.Outcome[armytypes.ArmyEntry]
		jobs := s.segment(doc, &outcome.Diagnostics)
		if len(jobs) == 0 {
			return diagnostics.Outcome[armytypes.ArmyEntry]{}, &diagnostics.BatchFailureError{Reason: reasonNoBlocks}
		}

		built := make([]blockResult, len(jobs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Workers)
		for i, job := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				built[i] = s.buildBlock(job, doc.Event)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return diagnostics.Outcome[armytypes.ArmyEntry]{}, err
		}
		if err := ctx.Err(); err != nil {
			return diagnostics.Outcome[armytypes.ArmyEntry]{}, err
		}

		units := 0
		for _, r := range built {
			outcome.Absorb(r)
			for _, army := range r.Successes {
				units += len(army.Units)
			}
		}
		s.metrics.RecordDiagnostics(ctx, "BuildArmies", outcome.Diagnostics)

		if len(outcome.Successes) == 0 {
			return diagnostics.Outcome[armytypes.ArmyEntry]{}, &diagnostics.BatchFailureError{
				Reason:      reasonEveryBlockError,
				Diagnostics: outcome.Diagnostics,
			}
		}
		if err := outcome.Enforce(s.opts.Policy); err != nil {
			return diagnostics.Outcome[armytypes.ArmyEntry]{Diagnostics: outcome.Diagnostics}, err
		}

		s.metrics.RecordArmiesBuilt(ctx, len(outcome.Successes))
		s.metrics.RecordUnitsParsed(ctx, units)
		if len(outcome.Diagnostics) > 0 {
			s.logger.WarnContext(ctx, "Army lists built with diagnostics",
				attr.Int("armies", len(outcome.Successes)),
				attr.Int("errors", len(outcome.Diagnostics.Errors())),
				attr.Int("warnings", len(outcome.Diagnostics.Warnings())),
				attr.Bool("partial", outcome.Partial()),
			)
		}
		return outcome, nil
	})
}

// segment splits every section into block jobs numbered across the document.
func (s *ArmyListService) segment(doc *armytypes.SourceDocument, ds *diagnostics.Diagnostics) []blockJob {
	var jobs []blockJob
	for _, section := range doc.Sections {
		blocks := s.segmenter.Segment(section.Lines)
		shared := len(blocks) > 1
		if shared && section.ParticipantID != "" {
			d := diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeBlock,
				fmt.Sprintf("participant %q submitted %d lists; none is linked to the participant", section.ParticipantID, len(blocks)))
			d.Block = len(jobs) + 1
			ds.Add(d)
		}
		for _, b := range blocks {
			jobs = append(jobs, blockJob{
				Number:  len(jobs) + 1,
				Section: section,
				Block:   b,
				Shared:  shared,
			})
		}
	}
	return jobs
}

// buildBlock turns one block into a record. It touches no shared state.
func (s *ArmyListService) buildBlock(job blockJob, event armytypes.EventInfo) blockResult {
	var (
		res    blockResult
		block  = job.Block
		player = block.PlayerName
	)

	if player == "" {
		d := diagnostics.Warning(diagnostics.KindMissingPlayerName, diagnostics.ScopeBlock,
			fmt.Sprintf("army %q has no player name line", block.ArmyName))
		d.Block, d.Line = job.Number, block.StartLine
		res.Diagnostics.Add(d)
	}

	if block.LineCount() < s.opts.MinBlockLines {
		res.Fail(&diagnostics.StructuralError{
			Block:  job.Number,
			Player: player,
			Reason: fmt.Sprintf("block has %d lines, at least %d required", block.LineCount(), s.opts.MinBlockLines),
		})
		return res
	}

	b := newArmyBuilder(s.newID(), player, block.ArmyName, event)
	if !job.Shared {
		b = b.withParticipant(job.Section.ParticipantID, job.Section.Placing)
	}

	for i, line := range block.BodyLines {
		lineNo := block.BodyLineNumber(i)

		if total, ok := s.totals.Detect(line); ok {
			if prev := b.reportedTotal(); prev != nil && *prev != total {
				d := diagnostics.Warning(diagnostics.KindDuplicateTotal, diagnostics.ScopeArmy,
					fmt.Sprintf("total declared again as %d (was %d); using the later value", total, *prev))
				d.Player, d.Block, d.Line = player, job.Number, lineNo
				res.Diagnostics.Add(d)
			}
			b = b.withReportedTotal(total)
			continue
		}

		units, err := s.unitParser.Parse(line, lineNo)
		if err != nil {
			d := res.Fail(err)
			d.Player, d.Block = player, job.Number
			b = b.withLineError(err.Error())
			continue
		}
		b = b.withUnits(units...)
	}

	if b.unitCount() == 0 {
		res.Fail(&diagnostics.StructuralError{
			Block:  job.Number,
			Player: player,
			Reason: "no unit lines could be parsed",
		})
		return res
	}

	army, mismatch := b.build()
	if mismatch != nil {
		d := res.Fail(mismatch)
		d.Block = job.Number
	}
	res.Succeed(army)
	return res
}

package armylistservice

import (
	"slices"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
)

// armyBuilder accumulates one block's record. Every with* method returns a new builder
// and leaves the receiver untouched.
type armyBuilder struct {
	entry      armytypes.ArmyEntry
	reported   *int
	lineErrors []string
}

func newArmyBuilder(id, player, army string, event armytypes.EventInfo) armyBuilder {
	eventType := event.EventType
	if eventType == "" {
		eventType = armytypes.EventTypeSingles
	}
	return armyBuilder{entry: armytypes.ArmyEntry{
		ID:         id,
		PlayerName: player,
		Army:       army,
		Tournament: event.Tournament,
		EventDate:  event.EventDate,
		EventType:  eventType,
	}}
}

func (b armyBuilder) withParticipant(participantID string, placing *int) armyBuilder {
	b.entry.ParticipantID = participantID
	if placing != nil {
		b.entry.ListPlacing = armytypes.Ptr(*placing)
	}
	return b
}

func (b armyBuilder) withUnits(units ...armytypes.UnitEntry) armyBuilder {
	b.entry.Units = slices.Concat(b.entry.Units, units)
	return b
}

// withReportedTotal sets the declared total. The last declaration wins.
func (b armyBuilder) withReportedTotal(total int) armyBuilder {
	b.reported = armytypes.Ptr(total)
	return b
}

func (b armyBuilder) withLineError(msg string) armyBuilder {
	b.lineErrors = slices.Concat(b.lineErrors, []string{msg})
	return b
}

func (b armyBuilder) reportedTotal() *int { return b.reported }

func (b armyBuilder) unitCount() int { return len(b.entry.Units) }

// build reconciles the calculated total against the reported one. A mismatch is
// returned alongside the record; the units are never altered to make totals agree.
func (b armyBuilder) build() (armytypes.ArmyEntry, *diagnostics.PointsMismatchError) {
	entry := b.entry.Clone()

	calculated := 0
	for _, u := range entry.Units {
		calculated += u.Points
	}
	entry.CalculatedTotalArmyPoints = calculated
	entry.ValidationErrors = slices.Clone(b.lineErrors)
	entry.Validated = len(b.lineErrors) == 0

	var mismatch *diagnostics.PointsMismatchError
	if b.reported != nil {
		entry.ReportedTotalArmyPoints = armytypes.Ptr(*b.reported)
		if calculated != *b.reported {
			mismatch = &diagnostics.PointsMismatchError{
				Player:     entry.PlayerName,
				Reported:   *b.reported,
				Calculated: calculated,
			}
			entry.Validated = false
			entry.ValidationErrors = append(entry.ValidationErrors, mismatch.Error())
		}
	}
	if entry.ValidationErrors == nil {
		entry.ValidationErrors = []string{}
	}
	if entry.RoundPerformance == nil {
		entry.RoundPerformance = []armytypes.Round{}
	}
	return entry, mismatch
}

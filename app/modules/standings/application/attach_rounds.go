package standingsservice

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/vocab"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
)

// eventIndex holds the working copies of an event's armies, keyed by correlation key
// and, when unambiguous, by player name.
type eventIndex struct {
	armies []armytypes.ArmyEntry
	byKey  map[string]int
	byName map[string]int
}

func newEventIndex(armies []armytypes.ArmyEntry, ds *diagnostics.Diagnostics) *eventIndex {
	idx := &eventIndex{
		armies: make([]armytypes.ArmyEntry, len(armies)),
		byKey:  make(map[string]int, len(armies)),
		byName: make(map[string]int, len(armies)),
	}
	ambiguous := make(map[string]bool)
	for i, a := range armies {
		idx.armies[i] = a.Clone()
		key := a.CorrelationKey()
		if _, dup := idx.byKey[key]; dup {
			d := diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeArmy,
				fmt.Sprintf("participant %q has more than one army; rounds attach to the first", key))
			d.Player = a.PlayerName
			ds.Add(d)
			continue
		}
		idx.byKey[key] = i

		name := vocab.Normalize(a.PlayerName)
		if name == "" {
			continue
		}
		if _, dup := idx.byName[name]; dup || ambiguous[name] {
			ambiguous[name] = true
			delete(idx.byName, name)
			continue
		}
		idx.byName[name] = i
	}
	return idx
}

// lookup resolves a participant key, falling back to a unique player name so that
// sources which only know names can still refer to an army.
func (x *eventIndex) lookup(key string) (int, bool) {
	if i, ok := x.byKey[key]; ok {
		return i, true
	}
	i, ok := x.byName[vocab.Normalize(key)]
	return i, ok
}

// attachedRound ties a kept round report to the army it was attached to.
type attachedRound struct {
	army   int
	report armytypes.RoundReport
}

// attachRounds copies each report onto its army as a Round. The first report for an
// (army, round) pair wins.
func (s *StandingsService) attachRounds(idx *eventIndex, reports []armytypes.RoundReport, event armytypes.EventInfo, ds *diagnostics.Diagnostics) []attachedRound {
	attached := make([]attachedRound, 0, len(reports))
	for _, rep := range reports {
		a, ok := idx.lookup(rep.ParticipantID)
		if !ok {
			d := diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeRound,
				fmt.Sprintf("round report for unknown participant %q", rep.ParticipantID))
			d.Round = rep.RoundNumber
			ds.Add(d)
			continue
		}
		army := &idx.armies[a]

		if rep.RoundNumber < 1 || (event.Rounds > 0 && rep.RoundNumber > event.Rounds) {
			d := ds.AddError(&diagnostics.UnknownEnumValueError{Field: "round_number", Value: strconv.Itoa(rep.RoundNumber)})
			d.Player = army.PlayerName
			continue
		}
		if army.RoundFor(rep.RoundNumber) >= 0 {
			d := diagnostics.Warning(diagnostics.KindDuplicateRound, diagnostics.ScopeRound,
				"round reported more than once; keeping the first report")
			d.Player, d.Round = army.PlayerName, rep.RoundNumber
			ds.Add(d)
			continue
		}

		army.RoundPerformance = append(army.RoundPerformance, s.resolveRound(rep, army.PlayerName, ds))
		attached = append(attached, attachedRound{army: a, report: rep})
	}

	for i := range idx.armies {
		slices.SortStableFunc(idx.armies[i].RoundPerformance, func(a, b armytypes.Round) int {
			return cmp.Compare(a.RoundNumber, b.RoundNumber)
		})
	}
	return attached
}

// resolveRound builds a Round from a report, resolving its enum fields. Unknown values
// leave the field unset.
func (s *StandingsService) resolveRound(rep armytypes.RoundReport, player string, ds *diagnostics.Diagnostics) armytypes.Round {
	resolve := func(field, raw string, v *vocab.Vocabulary) *string {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		name, ok := v.Lookup(raw)
		if !ok {
			d := ds.AddError(&diagnostics.UnknownEnumValueError{Field: field, Value: raw})
			d.Player, d.Round = player, rep.RoundNumber
			return nil
		}
		return &name
	}

	round := armytypes.Round{
		Result:             rep.Result,
		SecondaryPoints:    rep.SecondaryPoints,
		RoundNumber:        rep.RoundNumber,
		WonSecondary:       rep.WonSecondary,
		DeployedFirst:      rep.DeployedFirst,
		DeployedEverything: rep.DeployedEverything,
		FirstTurn:          rep.FirstTurn,
		MapSelected:        resolve("map_selected", rep.Map, s.vocab.Maps),
		DeploymentSelected: resolve("deployment_selected", rep.Deployment, s.vocab.Deployments),
		ObjectiveSelected:  resolve("objective_selected", rep.Objective, s.vocab.Objectives),
		SpellsSelected:     make([]string, 0, len(rep.Spells)),
	}
	for _, raw := range rep.Spells {
		if spell := resolve("spells_selected", raw, s.vocab.Spells); spell != nil {
			round.SpellsSelected = append(round.SpellsSelected, *spell)
		}
	}
	// Detach the boolean pointers from the report.
	return round.Clone()
}

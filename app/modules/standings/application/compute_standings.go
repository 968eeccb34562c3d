package standingsservice

import (
	"context"
	"fmt"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	standingsdomain "github.com/Black-And-White-Club/armylists/app/modules/standings/domain"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
)

// ComputeStandings attaches round reports to the event's armies, links opponents and
// scores the event according to its type. It works on copies of in.Armies: either the
// complete ranked event is returned, or nothing is. Invalid event metadata is a
// Failure result; cancellation is returned as an error.
func (s *StandingsService) ComputeStandings(ctx context.Context, in EventInput) (StandingsOperationResult, error) {
	return withTelemetry(s, ctx, "ComputeStandings", in.Event.Tournament, func(ctx context.Context) (StandingsOperationResult, error) {
		eventType, ok := armytypes.ParseEventType(string(in.Event.EventType))
		if !ok {
			return results.FailureResult[*Standings, error](fmt.Errorf("%w: %q", ErrUnknownEventType, in.Event.EventType)), nil
		}

		caps := standingsdomain.Caps{Min: in.Event.TeamPointCapMin, Max: in.Event.TeamPointCapMax}
		if eventType == armytypes.EventTypeTeams {
			if err := validateTeamEvent(in, caps); err != nil {
				return results.FailureResult[*Standings, error](err), nil
			}
		}

		var ds diagnostics.Diagnostics
		idx := newEventIndex(in.Armies, &ds)

		attached := s.attachRounds(idx, in.Rounds, in.Event, &ds)
		if err := ctx.Err(); err != nil {
			return StandingsOperationResult{}, err
		}

		linkOpponents(idx, attached, &ds)
		if err := ctx.Err(); err != nil {
			return StandingsOperationResult{}, err
		}

		standings := &Standings{EventType: eventType, Armies: idx.armies}
		switch eventType {
		case armytypes.EventTypeSingles:
			scoreSingles(idx.armies)
		case armytypes.EventTypeTeams:
			standings.Teams = scoreTeams(idx, in, caps, &ds)
		case armytypes.EventTypeCasual:
			// Rounds and linkage only.
		}
		if err := ctx.Err(); err != nil {
			return StandingsOperationResult{}, err
		}

		standings.Diagnostics = ds
		s.metrics.RecordDiagnostics(ctx, "ComputeStandings", ds)
		if len(ds) > 0 {
			s.logger.WarnContext(ctx, "Standings computed with diagnostics",
				attr.String("event_type", string(eventType)),
				attr.Int("armies", len(standings.Armies)),
				attr.Int("warnings", len(ds.Warnings())),
			)
		}
		return results.SuccessResult[*Standings, error](standings), nil
	})
}

func validateTeamEvent(in EventInput, caps standingsdomain.Caps) error {
	if in.Event.Rounds < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRounds, in.Event.Rounds)
	}
	if err := caps.Validate(); err != nil {
		return err
	}
	for _, a := range in.Armies {
		if a.TeamPlacing != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyRanked, a.ID)
		}
	}
	return nil
}

// scoreSingles sets each army's tournament totals to the sum of its rounds. Armies
// without rounds keep absent totals.
func scoreSingles(armies []armytypes.ArmyEntry) {
	for i := range armies {
		rounds := armies[i].RoundPerformance
		if len(rounds) == 0 {
			continue
		}
		total, secondary := 0, 0
		for _, r := range rounds {
			total += r.Result
			secondary += r.SecondaryPoints
		}
		armies[i].CalculatedTotalTournamentPoints = armytypes.Ptr(total)
		armies[i].CalculatedTotalTournamentSecondaryPoints = armytypes.Ptr(secondary)
	}
}

// scoreTeams scores and ranks every roster, then copies each team's standing onto its
// participants.
func scoreTeams(idx *eventIndex, in EventInput, caps standingsdomain.Caps, ds *diagnostics.Diagnostics) []standingsdomain.TeamScore {
	rounds := in.Event.Rounds

	var (
		inputs   []standingsdomain.TeamScoreInput
		rosters  = make(map[string]armytypes.TeamRoster, len(in.Teams))
		members  = make(map[string][]int, len(in.Teams))
		assigned = make(map[int]string, len(idx.armies))
	)

	for _, roster := range in.Teams {
		if _, dup := rosters[roster.TeamID]; dup {
			ds.Add(diagnostics.Warning(diagnostics.KindDuplicateTeam, diagnostics.ScopeTeam,
				fmt.Sprintf("team %q listed more than once; keeping the first roster", roster.TeamID)))
			continue
		}
		rosters[roster.TeamID] = roster

		input := standingsdomain.TeamScoreInput{
			TeamID:      roster.TeamID,
			BonusPoints: roster.BonusPoints(),
			Rounds:      rounds,
			Results:     make([][]standingsdomain.RoundResult, rounds),
		}
		for _, pid := range roster.ParticipantIDs {
			a, ok := idx.lookup(pid)
			if !ok {
				ds.Add(diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeTeam,
					fmt.Sprintf("team %q lists unknown participant %q", roster.TeamID, pid)))
				continue
			}
			if team, taken := assigned[a]; taken {
				d := diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeTeam,
					fmt.Sprintf("participant %q already plays for team %q", pid, team))
				d.Player = idx.armies[a].PlayerName
				ds.Add(d)
				continue
			}
			assigned[a] = roster.TeamID
			members[roster.TeamID] = append(members[roster.TeamID], a)

			for _, r := range idx.armies[a].RoundPerformance {
				if r.RoundNumber < 1 || r.RoundNumber > rounds {
					continue
				}
				input.Results[r.RoundNumber-1] = append(input.Results[r.RoundNumber-1], standingsdomain.RoundResult{
					Result:          r.Result,
					SecondaryPoints: r.SecondaryPoints,
				})
			}
		}
		inputs = append(inputs, input)
	}

	scores := make([]standingsdomain.TeamScore, 0, len(inputs))
	for _, input := range inputs {
		scores = append(scores, standingsdomain.ScoreTeam(input, caps))
	}
	ranked := standingsdomain.RankTeams(scores)

	for _, team := range ranked {
		captain := -1
		if id := rosters[team.TeamID].CaptainID; id != nil {
			if a, ok := idx.lookup(*id); ok {
				captain = a
			}
		}
		for _, a := range members[team.TeamID] {
			army := &idx.armies[a]
			army.TeamID = armytypes.Ptr(team.TeamID)
			army.TeamCaptain = armytypes.Ptr(a == captain)
			army.TeamPointCapMin = copyInt(caps.Min)
			army.TeamPointCapMax = copyInt(caps.Max)
			army.TeamTotalTournamentPoints = armytypes.Ptr(team.TotalPoints)
			army.TeamTotalSecondaryPoints = armytypes.Ptr(team.SecondaryPoints)
			army.TeamPlacing = armytypes.Ptr(team.Placing)
		}
	}

	for i, army := range idx.armies {
		if _, ok := assigned[i]; ok {
			continue
		}
		d := diagnostics.Warning(diagnostics.KindUnknownParticipant, diagnostics.ScopeArmy,
			fmt.Sprintf("army %q is not on any team roster", army.CorrelationKey()))
		d.Player = army.PlayerName
		ds.Add(d)
	}
	return ranked
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return armytypes.Ptr(*p)
}

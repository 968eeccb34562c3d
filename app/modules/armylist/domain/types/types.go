package armytypes

import (
	"slices"
	"strings"
)

// EventType is the scoring format of a tournament.
type EventType string

const (
	EventTypeSingles EventType = "singles"
	EventTypeTeams   EventType = "teams"
	EventTypeCasual  EventType = "casual"
)

// ParseEventType maps loose input ("Team", "SINGLES", "") onto an EventType.
// Empty input defaults to singles.
func ParseEventType(s string) (EventType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "singles", "solo":
		return EventTypeSingles, true
	case "team", "teams":
		return EventTypeTeams, true
	case "casual", "friendly":
		return EventTypeCasual, true
	default:
		return "", false
	}
}

// UnitEntry is one line item of an army list.
type UnitEntry struct {
	ID       string   `json:"id"`
	Points   int      `json:"points"`
	Quantity int      `json:"quantity"`
	Name     string   `json:"name"`
	Upgrades []string `json:"upgrades"`
}

// Round is one game played by an army within an event.
type Round struct {
	Opponent           *string  `json:"opponent"`
	Result             int      `json:"result"`
	SecondaryPoints    int      `json:"secondary_points"`
	RoundNumber        int      `json:"round_number"`
	WonSecondary       *bool    `json:"won_secondary"`
	DeployedFirst      *bool    `json:"deployed_first"`
	DeployedEverything *bool    `json:"deployed_everything"`
	FirstTurn          *bool    `json:"first_turn"`
	MapSelected        *string  `json:"map_selected"`
	DeploymentSelected *string  `json:"deployment_selected"`
	ObjectiveSelected  *string  `json:"objective_selected"`
	SpellsSelected     []string `json:"spells_selected"`
}

// ArmyEntry is the canonical record for one player's list at one event.
type ArmyEntry struct {
	ID                                       string      `json:"id"`
	ParticipantID                            string      `json:"participant_id,omitempty"`
	PlayerName                               string      `json:"player_name"`
	Army                                     string      `json:"army"`
	Tournament                               string      `json:"tournament"`
	EventDate                                string      `json:"event_date"`
	EventType                                EventType   `json:"event_type"`
	Units                                    []UnitEntry `json:"units"`
	ReportedTotalArmyPoints                  *int        `json:"reported_total_army_points"`
	CalculatedTotalArmyPoints                int         `json:"calculated_total_army_points"`
	Validated                                bool        `json:"validated"`
	ValidationErrors                         []string    `json:"validation_errors"`
	RoundPerformance                         []Round     `json:"round_performance"`
	CalculatedTotalTournamentPoints          *int        `json:"calculated_total_tournament_points"`
	CalculatedTotalTournamentSecondaryPoints *int        `json:"calculated_total_tournament_secondary_points"`
	TeamID                                   *string     `json:"team_id"`
	TeamCaptain                              *bool       `json:"team_captain"`
	TeamPointCapMin                          *int        `json:"team_point_cap_min"`
	TeamPointCapMax                          *int        `json:"team_point_cap_max"`
	TeamTotalTournamentPoints                *int        `json:"team_total_tournament_points"`
	TeamTotalSecondaryPoints                 *int        `json:"team_total_secondary_points"`
	TeamPlacing                              *int        `json:"team_placing"`
	ListPlacing                              *int        `json:"list_placing"`
}

// CorrelationKey is the identifier rosters and round reports use to refer to this army.
func (a ArmyEntry) CorrelationKey() string {
	if a.ParticipantID != "" {
		return a.ParticipantID
	}
	return a.ID
}

// RoundFor returns the index of the round with the given number, or -1.
func (a ArmyEntry) RoundFor(number int) int {
	return slices.IndexFunc(a.RoundPerformance, func(r Round) bool { return r.RoundNumber == number })
}

// Clone returns a deep copy so that later stages never alias an earlier stage's slices.
func (a ArmyEntry) Clone() ArmyEntry {
	out := a
	if a.Units != nil {
		out.Units = make([]UnitEntry, len(a.Units))
		for i, u := range a.Units {
			u.Upgrades = slices.Clone(u.Upgrades)
			out.Units[i] = u
		}
	}
	out.ValidationErrors = slices.Clone(a.ValidationErrors)
	if a.RoundPerformance != nil {
		out.RoundPerformance = make([]Round, len(a.RoundPerformance))
		for i, r := range a.RoundPerformance {
			out.RoundPerformance[i] = r.Clone()
		}
	}
	out.ReportedTotalArmyPoints = clonePtr(a.ReportedTotalArmyPoints)
	out.CalculatedTotalTournamentPoints = clonePtr(a.CalculatedTotalTournamentPoints)
	out.CalculatedTotalTournamentSecondaryPoints = clonePtr(a.CalculatedTotalTournamentSecondaryPoints)
	out.TeamID = clonePtr(a.TeamID)
	out.TeamCaptain = clonePtr(a.TeamCaptain)
	out.TeamPointCapMin = clonePtr(a.TeamPointCapMin)
	out.TeamPointCapMax = clonePtr(a.TeamPointCapMax)
	out.TeamTotalTournamentPoints = clonePtr(a.TeamTotalTournamentPoints)
	out.TeamTotalSecondaryPoints = clonePtr(a.TeamTotalSecondaryPoints)
	out.TeamPlacing = clonePtr(a.TeamPlacing)
	out.ListPlacing = clonePtr(a.ListPlacing)
	return out
}

// Clone returns a deep copy of the round.
func (r Round) Clone() Round {
	out := r
	out.Opponent = clonePtr(r.Opponent)
	out.WonSecondary = clonePtr(r.WonSecondary)
	out.DeployedFirst = clonePtr(r.DeployedFirst)
	out.DeployedEverything = clonePtr(r.DeployedEverything)
	out.FirstTurn = clonePtr(r.FirstTurn)
	out.MapSelected = clonePtr(r.MapSelected)
	out.DeploymentSelected = clonePtr(r.DeploymentSelected)
	out.ObjectiveSelected = clonePtr(r.ObjectiveSelected)
	out.SpellsSelected = slices.Clone(r.SpellsSelected)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

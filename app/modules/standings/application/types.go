package standingsservice

import (
	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	standingsdomain "github.com/Black-And-White-Club/armylists/app/modules/standings/domain"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
)

// EventInput is one event's built army records plus the round and roster data the
// source adapters supplied.
type EventInput struct {
	Event  armytypes.EventInfo     `json:"event"`
	Armies []armytypes.ArmyEntry   `json:"armies"`
	Rounds []armytypes.RoundReport `json:"rounds,omitempty"`
	Teams  []armytypes.TeamRoster  `json:"teams,omitempty"`
}

// Standings is the ranked output for one event. Armies are copies; the input records
// are never modified.
type Standings struct {
	EventType   armytypes.EventType         `json:"event_type"`
	Armies      []armytypes.ArmyEntry       `json:"armies"`
	Teams       []standingsdomain.TeamScore `json:"teams,omitempty"`
	Diagnostics diagnostics.Diagnostics     `json:"diagnostics"`
}

// StandingsOperationResult is the result of ComputeStandings.
type StandingsOperationResult = results.OperationResult[*Standings, error]

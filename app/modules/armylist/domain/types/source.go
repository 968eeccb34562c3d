package armytypes

// EventInfo is the event-level metadata a source adapter knows about.
type EventInfo struct {
	Tournament      string    `json:"tournament" yaml:"tournament"`
	EventDate       string    `json:"event_date" yaml:"event_date"`
	EventType       EventType `json:"event_type" yaml:"event_type"`
	Rounds          int       `json:"rounds" yaml:"rounds"`
	TeamPointCapMin *int      `json:"team_point_cap_min,omitempty" yaml:"team_point_cap_min,omitempty"`
	TeamPointCapMax *int      `json:"team_point_cap_max,omitempty" yaml:"team_point_cap_max,omitempty"`
}

// Section is a run of lines that belongs to one participant when the source knows who
// wrote it. Plain documents produce a single section without a participant id.
type Section struct {
	ParticipantID string   `json:"participant_id,omitempty"`
	Placing       *int     `json:"placing,omitempty"`
	Lines         []string `json:"lines"`
}

// RoundReport is a raw game result as supplied by an adapter, before vocabulary
// resolution and opponent linkage.
type RoundReport struct {
	ParticipantID      string   `json:"participant_id" yaml:"participant_id"`
	RoundNumber        int      `json:"round_number" yaml:"round_number"`
	GameID             string   `json:"game_id,omitempty" yaml:"game_id,omitempty"`
	OpponentID         string   `json:"opponent_id,omitempty" yaml:"opponent_id,omitempty"`
	Result             int      `json:"result" yaml:"result"`
	SecondaryPoints    int      `json:"secondary_points" yaml:"secondary_points"`
	WonSecondary       *bool    `json:"won_secondary,omitempty" yaml:"won_secondary,omitempty"`
	DeployedFirst      *bool    `json:"deployed_first,omitempty" yaml:"deployed_first,omitempty"`
	DeployedEverything *bool    `json:"deployed_everything,omitempty" yaml:"deployed_everything,omitempty"`
	FirstTurn          *bool    `json:"first_turn,omitempty" yaml:"first_turn,omitempty"`
	Map                string   `json:"map,omitempty" yaml:"map,omitempty"`
	Deployment         string   `json:"deployment,omitempty" yaml:"deployment,omitempty"`
	Objective          string   `json:"objective,omitempty" yaml:"objective,omitempty"`
	Spells             []string `json:"spells,omitempty" yaml:"spells,omitempty"`
}

// ExtraPoints is a flat bonus (or penalty) awarded to a team.
type ExtraPoints struct {
	Amount int    `json:"amount" yaml:"amount"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// TeamRoster lists the participants of one team.
type TeamRoster struct {
	TeamID         string        `json:"team_id" yaml:"team_id"`
	ParticipantIDs []string      `json:"participant_ids" yaml:"participant_ids"`
	ExtraPoints    []ExtraPoints `json:"extra_points,omitempty" yaml:"extra_points,omitempty"`
	CaptainID      *string       `json:"captain_id,omitempty" yaml:"captain_id,omitempty"`
}

// BonusPoints sums the team's extra points.
func (t TeamRoster) BonusPoints() int {
	total := 0
	for _, e := range t.ExtraPoints {
		total += e.Amount
	}
	return total
}

// SourceDocument is what every source adapter produces: line sections for the parser,
// plus whatever round and team metadata the source carries.
type SourceDocument struct {
	Source   string        `json:"source"`
	Event    EventInfo     `json:"event"`
	Sections []Section     `json:"sections"`
	Rounds   []RoundReport `json:"rounds,omitempty"`
	Teams    []TeamRoster  `json:"teams,omitempty"`
}

// LineCount is the number of lines across all sections.
func (d *SourceDocument) LineCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Lines)
	}
	return n
}

// Merge folds other into d. Event fields already set on d win.
func (d *SourceDocument) Merge(other *SourceDocument) {
	if other == nil {
		return
	}
	if d.Source == "" {
		d.Source = other.Source
	}
	if d.Event.Tournament == "" {
		d.Event.Tournament = other.Event.Tournament
	}
	if d.Event.EventDate == "" {
		d.Event.EventDate = other.Event.EventDate
	}
	if d.Event.EventType == "" {
		d.Event.EventType = other.Event.EventType
	}
	if d.Event.Rounds < other.Event.Rounds {
		d.Event.Rounds = other.Event.Rounds
	}
	if d.Event.TeamPointCapMin == nil {
		d.Event.TeamPointCapMin = other.Event.TeamPointCapMin
	}
	if d.Event.TeamPointCapMax == nil {
		d.Event.TeamPointCapMax = other.Event.TeamPointCapMax
	}
	d.Sections = append(d.Sections, other.Sections...)
	d.Rounds = append(d.Rounds, other.Rounds...)
	d.Teams = append(d.Teams, other.Teams...)
}

package sources

import (
	"encoding/json"
	"fmt"
	"strings"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
)

type platformExport struct {
	Event        platformEvent         `json:"event"`
	Participants []platformParticipant `json:"participants"`
	Games        []platformGame        `json:"games"`
	Teams        []platformTeam        `json:"teams"`
}

type platformEvent struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	Format       string `json:"format"`
	Rounds       int    `json:"rounds"`
	TeamPointCap *struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	} `json:"team_point_cap"`
}

type platformParticipant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Faction string `json:"faction"`
	List    string `json:"list"`
	Placing *int   `json:"placing"`
	TeamID  string `json:"team_id"`
}

type platformGame struct {
	ID         string           `json:"id"`
	Round      int              `json:"round"`
	Map        string           `json:"map"`
	Deployment string           `json:"deployment"`
	Objective  string           `json:"objective"`
	Players    []platformPlayer `json:"players"`
}

type platformPlayer struct {
	ParticipantID      string   `json:"participant_id"`
	Result             int      `json:"result"`
	Secondary          int      `json:"secondary"`
	WonSecondary       *bool    `json:"won_secondary"`
	DeployedFirst      *bool    `json:"deployed_first"`
	DeployedEverything *bool    `json:"deployed_everything"`
	FirstTurn          *bool    `json:"first_turn"`
	Spells             []string `json:"spells"`
}

type platformTeam struct {
	ID      string                  `json:"id"`
	Members []string                `json:"members"`
	Captain string                  `json:"captain"`
	Bonus   []armytypes.ExtraPoints `json:"bonus"`
}

// PlatformAdapter reads the JSON export of a tournament platform: participants with
// their lists, games grouped by round, and teams.
type PlatformAdapter struct {
	dates *DateParser
}

// NewPlatformAdapter creates a PlatformAdapter.
func NewPlatformAdapter(dates *DateParser) *PlatformAdapter {
	if dates == nil {
		dates = NewDateParser(nil, nil)
	}
	return &PlatformAdapter{dates: dates}
}

func (a *PlatformAdapter) Parse(data []byte) (*armytypes.SourceDocument, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}
	var export platformExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("decode platform export: %w", err)
	}

	doc := &armytypes.SourceDocument{
		Source: "platform",
		Event: armytypes.EventInfo{
			Tournament: strings.TrimSpace(export.Event.Name),
			EventType:  armytypes.EventType(strings.TrimSpace(export.Event.Format)),
			Rounds:     export.Event.Rounds,
		},
	}
	doc.Event.EventDate, _ = a.dates.Normalize(export.Event.Date)
	if c := export.Event.TeamPointCap; c != nil {
		doc.Event.TeamPointCapMin, doc.Event.TeamPointCapMax = c.Min, c.Max
	}

	entries := make([]FormEntry, 0, len(export.Participants))
	for _, p := range export.Participants {
		entry := FormEntry{
			ParticipantID: strings.TrimSpace(p.ID),
			PlayerName:    p.Name,
			Army:          p.Faction,
			List:          p.List,
			Placing:       p.Placing,
			TeamID:        p.TeamID,
		}
		entries = append(entries, entry)
		doc.Sections = append(doc.Sections, armytypes.Section{
			ParticipantID: entry.ParticipantID,
			Placing:       entry.Placing,
			Lines:         entryLines(entry),
		})
	}

	for _, g := range export.Games {
		doc.Rounds = append(doc.Rounds, gameReports(g)...)
		if g.Round > doc.Event.Rounds {
			doc.Event.Rounds = g.Round
		}
	}

	declared := make([]armytypes.TeamRoster, 0, len(export.Teams))
	for _, t := range export.Teams {
		roster := armytypes.TeamRoster{
			TeamID:         t.ID,
			ParticipantIDs: t.Members,
			ExtraPoints:    t.Bonus,
		}
		if t.Captain != "" {
			roster.CaptainID = armytypes.Ptr(t.Captain)
		}
		declared = append(declared, roster)
	}
	doc.Teams = mergeRosters(declared, entries)
	return doc, nil
}

// gameReports turns one game into a report per player. Two-player games name each
// other as opponents; the game id is kept either way.
func gameReports(g platformGame) []armytypes.RoundReport {
	reports := make([]armytypes.RoundReport, 0, len(g.Players))
	for i, p := range g.Players {
		rep := armytypes.RoundReport{
			ParticipantID:      p.ParticipantID,
			RoundNumber:        g.Round,
			GameID:             g.ID,
			Result:             p.Result,
			SecondaryPoints:    p.Secondary,
			WonSecondary:       p.WonSecondary,
			DeployedFirst:      p.DeployedFirst,
			DeployedEverything: p.DeployedEverything,
			FirstTurn:          p.FirstTurn,
			Map:                g.Map,
			Deployment:         g.Deployment,
			Objective:          g.Objective,
			Spells:             p.Spells,
		}
		if len(g.Players) == 2 {
			rep.OpponentID = g.Players[1-i].ParticipantID
		}
		reports = append(reports, rep)
	}
	return reports
}

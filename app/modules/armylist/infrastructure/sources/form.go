package sources

import (
	"encoding/json"
	"fmt"
	"strings"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"gopkg.in/yaml.v3"
)

// FormFormat is the encoding of a web-form submission.
type FormFormat string

const (
	FormatJSON FormFormat = "json"
	FormatYAML FormFormat = "yaml"
)

// FormEntry is one player's submission.
type FormEntry struct {
	ParticipantID string `json:"participant_id" yaml:"participant_id"`
	PlayerName    string `json:"player_name" yaml:"player_name"`
	Army          string `json:"army" yaml:"army"`
	List          string `json:"list" yaml:"list"`
	Placing       *int   `json:"placing,omitempty" yaml:"placing,omitempty"`
	TeamID        string `json:"team_id,omitempty" yaml:"team_id,omitempty"`
	Captain       bool   `json:"captain,omitempty" yaml:"captain,omitempty"`
}

// FormEvent is the event block of a submission. Date is free text.
type FormEvent struct {
	Tournament      string `json:"tournament" yaml:"tournament"`
	Date            string `json:"date" yaml:"date"`
	Type            string `json:"type" yaml:"type"`
	Rounds          int    `json:"rounds" yaml:"rounds"`
	TeamPointCapMin *int   `json:"team_point_cap_min,omitempty" yaml:"team_point_cap_min,omitempty"`
	TeamPointCapMax *int   `json:"team_point_cap_max,omitempty" yaml:"team_point_cap_max,omitempty"`
}

// FormSubmission is either a single entry (fields at the top level) or an organizer
// upload with an entries list, optionally carrying teams and round results.
type FormSubmission struct {
	FormEntry `yaml:",inline"`
	Event     FormEvent               `json:"event" yaml:"event"`
	Entries   []FormEntry             `json:"entries" yaml:"entries"`
	Teams     []armytypes.TeamRoster  `json:"teams" yaml:"teams"`
	Rounds    []armytypes.RoundReport `json:"rounds" yaml:"rounds"`
}

// FormAdapter reads web-form submissions.
type FormAdapter struct {
	format FormFormat
	dates  *DateParser
}

// NewFormAdapter creates a FormAdapter for the given encoding.
func NewFormAdapter(format FormFormat, dates *DateParser) *FormAdapter {
	if dates == nil {
		dates = NewDateParser(nil, nil)
	}
	return &FormAdapter{format: format, dates: dates}
}

func (a *FormAdapter) Parse(data []byte) (*armytypes.SourceDocument, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptySource
	}

	var sub FormSubmission
	var err error
	switch a.format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &sub)
	default:
		err = json.Unmarshal(data, &sub)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s form: %w", a.format, err)
	}

	entries := sub.Entries
	if len(entries) == 0 && (sub.List != "" || sub.PlayerName != "") {
		entries = []FormEntry{sub.FormEntry}
	}

	doc := &armytypes.SourceDocument{
		Source: "form",
		Event: armytypes.EventInfo{
			Tournament:      strings.TrimSpace(sub.Event.Tournament),
			EventType:       armytypes.EventType(strings.TrimSpace(sub.Event.Type)),
			Rounds:          sub.Event.Rounds,
			TeamPointCapMin: sub.Event.TeamPointCapMin,
			TeamPointCapMax: sub.Event.TeamPointCapMax,
		},
		Rounds: sub.Rounds,
	}
	// An unrecognized date is kept verbatim rather than dropped.
	doc.Event.EventDate, _ = a.dates.Normalize(sub.Event.Date)

	for _, e := range entries {
		doc.Sections = append(doc.Sections, armytypes.Section{
			ParticipantID: strings.TrimSpace(e.ParticipantID),
			Placing:       e.Placing,
			Lines:         entryLines(e),
		})
	}
	doc.Teams = mergeRosters(sub.Teams, entries)
	return doc, nil
}

// entryLines prepends the player and army fields to the pasted list unless the list
// already opens with them.
func entryLines(e FormEntry) []string {
	list := NormalizeLines(e.List)
	first := firstNonEmpty(list)

	var head []string
	player := strings.TrimSpace(e.PlayerName)
	army := strings.TrimSpace(e.Army)
	if player != "" {
		if strings.EqualFold(first, player) {
			// The list carries its own player line; the army line would follow it.
			first = firstNonEmpty(list[indexOfNonEmpty(list)+1:])
		} else {
			head = append(head, player)
		}
	}
	if army != "" && !sameArmyLine(first, army) {
		head = append(head, "Army: "+army)
	}
	return append(head, list...)
}

func sameArmyLine(line, army string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	army = strings.ToLower(army)
	if line == army {
		return true
	}
	for _, label := range []string{"army", "faction"} {
		if rest, ok := strings.CutPrefix(line, label); ok && strings.TrimLeft(rest, " :-") == army {
			return true
		}
	}
	return false
}

func indexOfNonEmpty(lines []string) int {
	for i, l := range lines {
		if l != "" {
			return i
		}
	}
	return -1
}

func firstNonEmpty(lines []string) string {
	for _, l := range lines {
		if l != "" {
			return l
		}
	}
	return ""
}

// mergeRosters combines declared teams with team_id fields on entries. Declared teams
// keep their order; teams only named on entries follow in first-seen order.
func mergeRosters(declared []armytypes.TeamRoster, entries []FormEntry) []armytypes.TeamRoster {
	teams := make([]armytypes.TeamRoster, 0, len(declared))
	index := make(map[string]int)
	members := make(map[string]map[string]bool)
	for _, t := range declared {
		index[t.TeamID] = len(teams)
		members[t.TeamID] = make(map[string]bool)
		for _, p := range t.ParticipantIDs {
			members[t.TeamID][p] = true
		}
		teams = append(teams, t)
	}

	for _, e := range entries {
		teamID := strings.TrimSpace(e.TeamID)
		pid := strings.TrimSpace(e.ParticipantID)
		if pid == "" {
			pid = strings.TrimSpace(e.PlayerName)
		}
		if teamID == "" || pid == "" {
			continue
		}
		i, ok := index[teamID]
		if !ok {
			i = len(teams)
			index[teamID] = i
			members[teamID] = make(map[string]bool)
			teams = append(teams, armytypes.TeamRoster{TeamID: teamID})
		}
		if !members[teamID][pid] {
			members[teamID][pid] = true
			teams[i].ParticipantIDs = append(teams[i].ParticipantIDs, pid)
		}
		if e.Captain && teams[i].CaptainID == nil {
			teams[i].CaptainID = armytypes.Ptr(pid)
		}
	}

	if len(teams) == 0 {
		return nil
	}
	return teams
}

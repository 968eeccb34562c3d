package sources

import (
	"bytes"
	"testing"
	"time"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testDates() *DateParser {
	return NewDateParser(fixedClock{t: time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)}, time.UTC)
}

func TestFactory_GetAdapter(t *testing.T) {
	factory := NewFactory(testDates())
	tests := []struct {
		name     string
		filename string
		data     string
		want     string
		wantErr  bool
	}{
		{name: "text file", filename: "lists.txt", want: "text"},
		{name: "no extension", filename: "lists", want: "text"},
		{name: "platform export", filename: "export.json", data: `{"participants": []}`, want: "platform"},
		{name: "json form", filename: "entry.json", data: `{"player_name": "Alice"}`, want: "form"},
		{name: "yaml form", filename: "entry.YML", want: "form"},
		{name: "csv sheet", filename: "results.csv", want: "sheet"},
		{name: "xlsx sheet", filename: "results.xlsx", want: "sheet"},
		{name: "unsupported file", filename: "lists.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := factory.GetAdapter(tt.filename, []byte(tt.data))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFileType)
				return
			}
			require.NoError(t, err)
			var ok bool
			switch tt.want {
			case "text":
				_, ok = adapter.(*TextAdapter)
			case "platform":
				_, ok = adapter.(*PlatformAdapter)
			case "form":
				_, ok = adapter.(*FormAdapter)
			case "sheet":
				_, ok = adapter.(*ResultsSheetAdapter)
			}
			require.True(t, ok, "got %T", adapter)
		})
	}
}

func TestNormalizeLines(t *testing.T) {
	lines := NormalizeLines("Bob\r\nVampire Covenant\r\n   \r\n１２００ Grave Guard\t\n")
	require.Equal(t, []string{"Bob", "Vampire Covenant", "", "1200 Grave Guard"}, lines)
	require.Nil(t, NormalizeLines(""))
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "plain utf8", data: []byte("Café"), want: "Café"},
		{name: "utf8 bom", data: []byte("\xef\xbb\xbfBob"), want: "Bob"},
		{name: "utf16 bom", data: []byte("\xff\xfeB\x00o\x00b\x00"), want: "Bob"},
		{name: "windows-1252", data: []byte("Caf\xe9"), want: "Café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDateParser_Normalize(t *testing.T) {
	p := testDates()
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "2025-04-12", want: "2025-04-12", wantOK: true},
		{raw: "12/04/2025", want: "2025-04-12", wantOK: true},
		{raw: "12 April 2025", want: "2025-04-12", wantOK: true},
		{raw: "April 12, 2025", want: "2025-04-12", wantOK: true},
		{raw: "tomorrow", want: "2025-03-11", wantOK: true},
		{raw: "", want: "", wantOK: true},
		{raw: "TBD", want: "TBD", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := p.Normalize(tt.raw)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestTextAdapter_Parse(t *testing.T) {
	doc, err := NewTextAdapter("lists.txt").Parse([]byte("Bob\nVampire Covenant\n450 - Vampire Count\n"))
	require.NoError(t, err)
	require.Equal(t, "lists.txt", doc.Source)
	require.Len(t, doc.Sections, 1)
	require.Empty(t, doc.Sections[0].ParticipantID)
	require.Equal(t, []string{"Bob", "Vampire Covenant", "450 - Vampire Count"}, doc.Sections[0].Lines)

	_, err = NewTextAdapter("empty.txt").Parse(nil)
	require.ErrorIs(t, err, ErrEmptySource)
}

func TestFormAdapter_SingleJSONEntry(t *testing.T) {
	data := `{
		"event": {"tournament": "Spring Clash", "date": "12/04/2025", "type": "singles", "rounds": 3},
		"participant_id": "p-1",
		"player_name": "Alice",
		"army": "Vampire Covenant",
		"list": "450 - Vampire Count, General\n1200 - 20 Grave Guard\n4500",
		"placing": 1
	}`
	doc, err := NewFormAdapter(FormatJSON, testDates()).Parse([]byte(data))
	require.NoError(t, err)

	require.Equal(t, armytypes.EventInfo{
		Tournament: "Spring Clash",
		EventDate:  "2025-04-12",
		EventType:  armytypes.EventTypeSingles,
		Rounds:     3,
	}, doc.Event)
	require.Len(t, doc.Sections, 1)
	section := doc.Sections[0]
	require.Equal(t, "p-1", section.ParticipantID)
	require.NotNil(t, section.Placing)
	require.Equal(t, 1, *section.Placing)
	require.Equal(t, []string{
		"Alice",
		"Army: Vampire Covenant",
		"450 - Vampire Count, General",
		"1200 - 20 Grave Guard",
		"4500",
	}, section.Lines)
	require.Nil(t, doc.Teams)
}

func TestFormAdapter_YAMLOrganizerUpload(t *testing.T) {
	data := `
event:
  tournament: Team Cup
  date: "2025-05-01"
  type: teams
  rounds: 2
  team_point_cap_min: 15
  team_point_cap_max: 30
entries:
  - participant_id: p-1
    player_name: Alice
    army: Vampire Covenant
    list: |
      Alice
      Vampire Covenant
      450 - Vampire Count
    team_id: t-1
    captain: true
  - participant_id: p-2
    player_name: Bob
    list: "Bob\nArmy: Orcs\n100 Orcs"
    team_id: t-1
teams:
  - team_id: t-1
    extra_points:
      - amount: 10
        reason: painting
rounds:
  - participant_id: p-1
    round_number: 1
    result: 10
`
	doc, err := NewFormAdapter(FormatYAML, testDates()).Parse([]byte(data))
	require.NoError(t, err)

	require.Equal(t, "2025-05-01", doc.Event.EventDate)
	require.Equal(t, armytypes.EventTypeTeams, doc.Event.EventType)
	require.Equal(t, 15, *doc.Event.TeamPointCapMin)
	require.Equal(t, 30, *doc.Event.TeamPointCapMax)

	require.Len(t, doc.Sections, 2)
	require.Equal(t, []string{"Alice", "Vampire Covenant", "450 - Vampire Count"}, doc.Sections[0].Lines)
	require.Equal(t, []string{"Bob", "Army: Orcs", "100 Orcs"}, doc.Sections[1].Lines)

	want := []armytypes.TeamRoster{{
		TeamID:         "t-1",
		ParticipantIDs: []string{"p-1", "p-2"},
		ExtraPoints:    []armytypes.ExtraPoints{{Amount: 10, Reason: "painting"}},
		CaptainID:      armytypes.Ptr("p-1"),
	}}
	if diff := cmp.Diff(want, doc.Teams); diff != "" {
		t.Errorf("teams mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, doc.Rounds, 1)
	require.Equal(t, 10, doc.Rounds[0].Result)
}

func TestFormAdapter_Errors(t *testing.T) {
	_, err := NewFormAdapter(FormatJSON, testDates()).Parse([]byte("   "))
	require.ErrorIs(t, err, ErrEmptySource)

	_, err = NewFormAdapter(FormatJSON, testDates()).Parse([]byte("{not json"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode json form")
}

func TestPlatformAdapter_Parse(t *testing.T) {
	data := `{
		"event": {"name": "GT", "date": "2025-06-07", "format": "teams", "rounds": 1, "team_point_cap": {"min": 15, "max": 30}},
		"participants": [
			{"id": "p-1", "name": "Alice", "faction": "Vampire Covenant", "list": "450 - Vampire Count", "team_id": "t-1"},
			{"id": "p-2", "name": "Bob", "faction": "Orcs", "list": "100 Orcs", "placing": 2}
		],
		"games": [
			{"id": "g-1", "round": 2, "map": "Valley", "players": [
				{"participant_id": "p-1", "result": 12, "secondary": 3, "first_turn": true},
				{"participant_id": "p-2", "result": 8, "secondary": 1}
			]},
			{"id": "g-2", "round": 1, "players": [{"participant_id": "p-3", "result": 20}]}
		],
		"teams": [{"id": "t-1", "members": ["p-1"], "captain": "p-1", "bonus": [{"amount": 5}]}]
	}`
	factory := NewFactory(testDates())
	adapter, err := factory.GetAdapter("export.json", []byte(data))
	require.NoError(t, err)
	doc, err := adapter.Parse([]byte(data))
	require.NoError(t, err)

	require.Equal(t, "GT", doc.Event.Tournament)
	require.Equal(t, "2025-06-07", doc.Event.EventDate)
	require.Equal(t, 2, doc.Event.Rounds, "rounds grow to the highest game round")
	require.Equal(t, 15, *doc.Event.TeamPointCapMin)

	require.Len(t, doc.Sections, 2)
	require.Equal(t, []string{"Alice", "Army: Vampire Covenant", "450 - Vampire Count"}, doc.Sections[0].Lines)
	require.Equal(t, 2, *doc.Sections[1].Placing)

	want := []armytypes.RoundReport{
		{ParticipantID: "p-1", RoundNumber: 2, GameID: "g-1", OpponentID: "p-2", Result: 12, SecondaryPoints: 3, FirstTurn: armytypes.Ptr(true), Map: "Valley"},
		{ParticipantID: "p-2", RoundNumber: 2, GameID: "g-1", OpponentID: "p-1", Result: 8, SecondaryPoints: 1, Map: "Valley"},
		{ParticipantID: "p-3", RoundNumber: 1, GameID: "g-2", Result: 20},
	}
	if diff := cmp.Diff(want, doc.Rounds); diff != "" {
		t.Errorf("rounds mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, doc.Teams, 1)
	require.Equal(t, []string{"p-1"}, doc.Teams[0].ParticipantIDs)
	require.Equal(t, "p-1", *doc.Teams[0].CaptainID)
	require.Equal(t, 5, doc.Teams[0].BonusPoints())
}

func TestResultsSheetAdapter_CSV(t *testing.T) {
	data := "Spring Clash results,,\r\n" +
		"Round,Player,Opponent,Result,Secondary,Map,Spells,First Turn\r\n" +
		"1,Alice,Bob,12,3,Valley,Fireball; Haste,yes\r\n" +
		"1,Bob,Alice,8,1,Valley,,no\r\n" +
		",,,,,,,\r\n" +
		"R2,Alice,Carol,,,,,\r\n" +
		"2,Carol,Alice,15,,,,\r\n"

	doc, err := NewResultsSheetAdapter(SheetCSV).Parse([]byte(data))
	require.NoError(t, err)
	require.Empty(t, doc.Sections)
	require.Equal(t, 2, doc.Event.Rounds)

	want := []armytypes.RoundReport{
		{ParticipantID: "Alice", RoundNumber: 1, OpponentID: "Bob", Result: 12, SecondaryPoints: 3, Map: "Valley", Spells: []string{"Fireball", "Haste"}, FirstTurn: armytypes.Ptr(true)},
		{ParticipantID: "Bob", RoundNumber: 1, OpponentID: "Alice", Result: 8, SecondaryPoints: 1, Map: "Valley", FirstTurn: armytypes.Ptr(false)},
		{ParticipantID: "Carol", RoundNumber: 2, OpponentID: "Alice", Result: 15},
	}
	if diff := cmp.Diff(want, doc.Rounds); diff != "" {
		t.Errorf("rounds mismatch (-want +got):\n%s", diff)
	}
}

func TestResultsSheetAdapter_TabDelimited(t *testing.T) {
	doc, err := NewResultsSheetAdapter(SheetCSV).Parse([]byte("Round\tPlayer\tResult\n1\tAlice\t10\n"))
	require.NoError(t, err)
	require.Len(t, doc.Rounds, 1)
	require.Equal(t, "Alice", doc.Rounds[0].ParticipantID)
	require.Equal(t, 10, doc.Rounds[0].Result)
}

func TestResultsSheetAdapter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantIs  error
		wantMsg string
	}{
		{name: "missing result column", data: "Round,Player,Secondary\n1,Alice,3\n", wantIs: ErrMissingColumn, wantMsg: "result"},
		{name: "no header", data: "a,b\n1,2\n", wantIs: ErrMissingColumn, wantMsg: "no header row"},
		{name: "bad round", data: "Round,Player,Result\nfirst,Alice,10\n", wantMsg: `row 2: invalid round "first"`},
		{name: "empty", data: "", wantIs: ErrEmptySource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResultsSheetAdapter(SheetCSV).Parse([]byte(tt.data))
			require.Error(t, err)
			if tt.wantIs != nil {
				require.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				require.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestResultsSheetAdapter_XLSX(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"Round", "Player", "Result", "Game"},
		{"1", "Alice", "10", "7"},
		{"1", "Bob", "10", "7"},
	})
	doc, err := NewResultsSheetAdapter(SheetXLSX).Parse(data)
	require.NoError(t, err)
	require.Len(t, doc.Rounds, 2)
	require.Equal(t, "7", doc.Rounds[0].GameID)
	require.Equal(t, "Bob", doc.Rounds[1].ParticipantID)

	_, err = NewResultsSheetAdapter(SheetXLSX).Parse([]byte("not a workbook"))
	require.Error(t, err)
}

func TestSourceDocument_MergeTextAndSheet(t *testing.T) {
	text, err := NewTextAdapter("lists.txt").Parse([]byte("Alice\nVampire Covenant\n450 - Vampire Count\n"))
	require.NoError(t, err)
	sheet, err := NewResultsSheetAdapter(SheetCSV).Parse([]byte("Round,Player,Result\n1,Alice,10\n2,Alice,12\n"))
	require.NoError(t, err)

	text.Merge(sheet)
	require.Equal(t, "lists.txt", text.Source)
	require.Equal(t, 2, text.Event.Rounds)
	require.Len(t, text.Sections, 1)
	require.Len(t, text.Rounds, 2)
}

func buildXLSX(t *testing.T, rows [][]string) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		require.NoError(t, f.SetSheetRow(sheet, axis, &cells))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return buf.Bytes()
}

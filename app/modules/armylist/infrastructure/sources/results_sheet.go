package sources

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/xuri/excelize/v2"
)

// SheetFormat is the container of a results sheet.
type SheetFormat string

const (
	SheetCSV  SheetFormat = "csv"
	SheetXLSX SheetFormat = "xlsx"
)

type sheetColumn string

const (
	colPlayer             sheetColumn = "player"
	colRound              sheetColumn = "round"
	colResult             sheetColumn = "result"
	colSecondary          sheetColumn = "secondary"
	colOpponent           sheetColumn = "opponent"
	colGame               sheetColumn = "game"
	colMap                sheetColumn = "map"
	colDeployment         sheetColumn = "deployment"
	colObjective          sheetColumn = "objective"
	colSpells             sheetColumn = "spells"
	colWonSecondary       sheetColumn = "won_secondary"
	colDeployedFirst      sheetColumn = "deployed_first"
	colDeployedEverything sheetColumn = "deployed_everything"
	colFirstTurn          sheetColumn = "first_turn"
)

// sheetColumns lists the header spellings accepted for each column.
var sheetColumns = map[sheetColumn][]string{
	colPlayer:             {"participant_id", "participant", "player", "player name", "name"},
	colRound:              {"round", "round number", "rnd"},
	colResult:             {"result", "tournament points", "tp", "points"},
	colSecondary:          {"secondary", "secondary points", "sp", "vp"},
	colOpponent:           {"opponent", "opponent id", "opponent name", "vs"},
	colGame:               {"game", "game id", "table", "pairing"},
	colMap:                {"map", "map selected"},
	colDeployment:         {"deployment", "deployment selected"},
	colObjective:          {"objective", "objective selected", "scenario"},
	colSpells:             {"spells", "spells selected"},
	colWonSecondary:       {"won secondary", "secondary won"},
	colDeployedFirst:      {"deployed first"},
	colDeployedEverything: {"deployed everything", "deployed all"},
	colFirstTurn:          {"first turn", "went first"},
}

var requiredColumns = []sheetColumn{colPlayer, colRound, colResult}

// ResultsSheetAdapter reads per-game round results from a spreadsheet, one row per
// player per round. It produces round reports only; army lists come from other sources
// and are combined with SourceDocument.Merge.
type ResultsSheetAdapter struct {
	format SheetFormat
}

// NewResultsSheetAdapter creates a ResultsSheetAdapter.
func NewResultsSheetAdapter(format SheetFormat) *ResultsSheetAdapter {
	return &ResultsSheetAdapter{format: format}
}

func (a *ResultsSheetAdapter) Parse(data []byte) (*armytypes.SourceDocument, error) {
	if len(data) == 0 {
		return nil, ErrEmptySource
	}

	var (
		rows [][]string
		err  error
	)
	switch a.format {
	case SheetXLSX:
		rows, err = readXLSXRows(data)
	default:
		rows, err = readCSVRows(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	headerRow := detectHeaderRow(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: no header row found", ErrMissingColumn)
	}
	cols := make(map[sheetColumn]int, len(sheetColumns))
	for name, spellings := range sheetColumns {
		cols[name] = findColumn(rows[headerRow], spellings)
	}
	for _, name := range requiredColumns {
		if cols[name] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	doc := &armytypes.SourceDocument{Source: "results_sheet:" + string(a.format)}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		rep, ok, err := reportFromRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if !ok {
			continue
		}
		doc.Rounds = append(doc.Rounds, rep)
		if rep.RoundNumber > doc.Event.Rounds {
			doc.Event.Rounds = rep.RoundNumber
		}
	}
	return doc, nil
}

// reportFromRow builds a report from one row. Rows without a player or without a
// result are skipped (ok=false); malformed numbers are errors.
func reportFromRow(row []string, cols map[sheetColumn]int) (armytypes.RoundReport, bool, error) {
	cell := func(c sheetColumn) string {
		i := cols[c]
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	player := cell(colPlayer)
	rawResult := cell(colResult)
	if player == "" || rawResult == "" {
		return armytypes.RoundReport{}, false, nil
	}

	round, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(cell(colRound)), "r"))
	if err != nil {
		return armytypes.RoundReport{}, false, fmt.Errorf("invalid round %q", cell(colRound))
	}
	result, err := strconv.Atoi(rawResult)
	if err != nil {
		return armytypes.RoundReport{}, false, fmt.Errorf("invalid result %q", rawResult)
	}
	secondary := 0
	if raw := cell(colSecondary); raw != "" {
		if secondary, err = strconv.Atoi(raw); err != nil {
			return armytypes.RoundReport{}, false, fmt.Errorf("invalid secondary points %q", raw)
		}
	}

	rep := armytypes.RoundReport{
		ParticipantID:      player,
		RoundNumber:        round,
		GameID:             cell(colGame),
		OpponentID:         cell(colOpponent),
		Result:             result,
		SecondaryPoints:    secondary,
		WonSecondary:       parseFlag(cell(colWonSecondary)),
		DeployedFirst:      parseFlag(cell(colDeployedFirst)),
		DeployedEverything: parseFlag(cell(colDeployedEverything)),
		FirstTurn:          parseFlag(cell(colFirstTurn)),
		Map:                cell(colMap),
		Deployment:         cell(colDeployment),
		Objective:          cell(colObjective),
	}
	if raw := cell(colSpells); raw != "" {
		for _, s := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' || r == '|' }) {
			if s = strings.TrimSpace(s); s != "" {
				rep.Spells = append(rep.Spells, s)
			}
		}
	}
	return rep, true, nil
}

// parseFlag reads yes/no style cells. Anything unrecognized is unknown (nil).
func parseFlag(s string) *bool {
	switch strings.ToLower(s) {
	case "y", "yes", "true", "1", "x":
		return armytypes.Ptr(true)
	case "n", "no", "false", "0":
		return armytypes.Ptr(false)
	default:
		return nil
	}
}

func readCSVRows(data []byte) ([][]string, error) {
	cleaned, delimiter := preprocessCSVData(data)
	reader := csv.NewReader(strings.NewReader(cleaned))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		// Skip empty rows
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func readXLSXRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

package sources

import (
	"bytes"
	"strings"
)

// normalizeHeader lowercases a header cell and drops spaces, underscores and hyphens.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// findColumn searches for a column by multiple possible names (case-insensitive)
func findColumn(header []string, possibleNames []string) int {
	for i, col := range header {
		colNorm := normalizeHeader(col)
		for _, name := range possibleNames {
			if colNorm == normalizeHeader(name) {
				return i
			}
		}
	}
	return -1
}

// preprocessCSVData strips a UTF-8 BOM, unifies line endings and picks comma or tab
// as the delimiter by counting both over the first 5 lines.
func preprocessCSVData(data []byte) (string, rune) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	cleaned := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))

	lines := strings.SplitN(cleaned, "\n", 6)
	commaCount, tabCount := 0, 0
	for i := 0; i < len(lines) && i < 5; i++ {
		commaCount += strings.Count(lines[i], ",")
		tabCount += strings.Count(lines[i], "\t")
	}

	if tabCount > commaCount {
		return cleaned, '\t'
	}
	return cleaned, ','
}

// detectHeaderRow scans the first 5 rows for the one matching the most known column
// names. At least 2 matches are needed; -1 means no header was found.
func detectHeaderRow(rows [][]string) int {
	known := make(map[string]bool)
	for _, names := range sheetColumns {
		for _, n := range names {
			known[normalizeHeader(n)] = true
		}
	}

	bestScore, bestRow := 0, -1
	for rowIdx := 0; rowIdx < len(rows) && rowIdx < 5; rowIdx++ {
		score := 0
		for _, cell := range rows[rowIdx] {
			if known[normalizeHeader(cell)] {
				score++
			}
		}
		if score >= 2 && score > bestScore {
			bestScore, bestRow = score, rowIdx
		}
	}
	return bestRow
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

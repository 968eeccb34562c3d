package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	labeledTotalRe  = regexp.MustCompile(`(?i)^(?:total[a-z\s]*|army\s+(?:cost|points|total)|points|list\s+total)\s*[:=\-–]?\s*(\d{1,5})\s*(?:pts?\.?|points)?$`)
	suffixedTotalRe = regexp.MustCompile(`(?i)^(\d{1,5})\s*(?:pts?\.?|points)$`)
	bareTotalRe     = regexp.MustCompile(`^(\d{1,5})$`)
	thousandsRe     = regexp.MustCompile(`(\d)[,.](\d{3})\b`)
)

// TotalsDetector recognizes a line declaring an army's total points.
type TotalsDetector struct {
	// Min and Max bound totals declared without a "total" label.
	Min int
	Max int
}

// Detect returns the declared total when line is a total-points declaration:
// "Total Army Cost: 4499 pts", "Total: 4500", "4498pts", or a bare number within
// [Min, Max].
func (d TotalsDetector) Detect(line string) (int, bool) {
	s := strings.TrimSpace(line)
	s = strings.Trim(s, "[]()*=")
	s = strings.TrimSpace(thousandsRe.ReplaceAllString(s, "$1$2"))
	if s == "" {
		return 0, false
	}

	if m := labeledTotalRe.FindStringSubmatch(s); m != nil {
		return atoiOK(m[1])
	}
	for _, re := range []*regexp.Regexp{suffixedTotalRe, bareTotalRe} {
		if m := re.FindStringSubmatch(s); m != nil {
			v, ok := atoiOK(m[1])
			if ok && d.inRange(v) {
				return v, true
			}
			return 0, false
		}
	}
	return 0, false
}

func (d TotalsDetector) inRange(v int) bool {
	if d.Min > 0 && v < d.Min {
		return false
	}
	if d.Max > 0 && v > d.Max {
		return false
	}
	return true
}

func atoiOK(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

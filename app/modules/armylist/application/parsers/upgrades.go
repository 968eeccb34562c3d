package parsers

import (
	"regexp"
	"strings"
)

var (
	parenSaveRe    = regexp.MustCompile(`\(\s*\d+\+\s*\)`)
	bareSaveRe     = regexp.MustCompile(`\b\d+\+`)
	bracketCostRe  = regexp.MustCompile(`(?i)\[\s*\d+\s*(?:pts?|points)?\.?\s*\]`)
	inlineCostRe   = regexp.MustCompile(`(?i)\b\d+\s*(?:pts?|points)\b\.?`)
	emptyParenRe   = regexp.MustCompile(`\(\s*\)`)
	innerParenRe   = regexp.MustCompile(`([^,()]*)\(([^()]*)\)`)
	apostropheRepl = strings.NewReplacer("&#39;", "'", "&#039;", "'", "&apos;", "'", "&rsquo;", "'", "’", "'", "&amp;", "&")
)

const (
	upgradeMusician             = "musician"
	upgradeStandardBearer       = "standard bearer"
	upgradeChampion             = "champion"
	upgradeBattleStandardBearer = "battle standard bearer"
)

var shorthandUpgrades = map[string]string{
	"m":                      upgradeMusician,
	"muso":                   upgradeMusician,
	"musician":               upgradeMusician,
	"s":                      upgradeStandardBearer,
	"standard":               upgradeStandardBearer,
	"standard bearer":        upgradeStandardBearer,
	"c":                      upgradeChampion,
	"champ":                  upgradeChampion,
	"champion":               upgradeChampion,
	"bsb":                    upgradeBattleStandardBearer,
	"battlestandard":         upgradeBattleStandardBearer,
	"battle standard":        upgradeBattleStandardBearer,
	"battle standard bearer": upgradeBattleStandardBearer,
}

var fullCommandTokens = map[string]struct{}{
	"fcg":                {},
	"gmc":                {},
	"full command":       {},
	"full command group": {},
}

// StripAnnotations removes cost and save annotations such as "(4+)", "4+", "[25 pts]" and
// "25 pts", and normalizes HTML-escaped apostrophes.
func StripAnnotations(s string) string {
	s = apostropheRepl.Replace(s)
	s = parenSaveRe.ReplaceAllString(s, "")
	s = bareSaveRe.ReplaceAllString(s, "")
	s = bracketCostRe.ReplaceAllString(s, "")
	s = inlineCostRe.ReplaceAllString(s, "")
	s = emptyParenRe.ReplaceAllString(s, "")
	return s
}

// FlattenUpgrades rewrites every "text(inner)" as "text, inner" until no parentheses
// remain, so an upgrade of an upgrade becomes a sibling. Unbalanced parentheses are
// dropped. A string without parentheses is returned unchanged.
func FlattenUpgrades(s string) string {
	for strings.ContainsAny(s, "()") {
		next := innerParenRe.ReplaceAllStringFunc(s, func(m string) string {
			parts := innerParenRe.FindStringSubmatch(m)
			return strings.TrimRight(parts[1], " ") + ", " + strings.TrimSpace(parts[2])
		})
		if next == s {
			s = strings.NewReplacer("(", ",", ")", ",").Replace(s)
			break
		}
		s = next
	}
	return s
}

// ExpandShorthand maps shorthand upgrade tokens onto canonical names, case-insensitively.
// A full-command token becomes "standard bearer" in place, and "musician" and "champion"
// are appended after the remaining upgrades.
func ExpandShorthand(upgrades []string) []string {
	out := make([]string, 0, len(upgrades)+2)
	var appended []string
	for _, u := range upgrades {
		key := strings.ToLower(strings.Join(strings.Fields(u), " "))
		if _, ok := fullCommandTokens[key]; ok {
			out = append(out, upgradeStandardBearer)
			appended = append(appended, upgradeMusician, upgradeChampion)
			continue
		}
		if canonical, ok := shorthandUpgrades[key]; ok {
			out = append(out, canonical)
			continue
		}
		out = append(out, u)
	}
	return append(out, appended...)
}

// splitItems splits on commas, collapsing whitespace, lower-casing and dropping empties.
func splitItems(s string) []string {
	raw := strings.Split(s, ",")
	items := make([]string, 0, len(raw))
	for _, r := range raw {
		item := strings.ToLower(strings.Join(strings.Fields(r), " "))
		item = strings.Trim(item, " .;:-")
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

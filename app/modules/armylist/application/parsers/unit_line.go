package parsers

import (
	"regexp"
	"strconv"
	"strings"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/google/uuid"
)

var (
	// leadingPointsRe matches "300 - ...", "300: ...", "300pts ..." and "300 ...".
	leadingPointsRe = regexp.MustCompile(`^(\d{1,4})(?:\s*(?i:pts?|points)\.?)?(?:\s*[^\w\s(\[]+\s*|\s+)(.*)$`)

	// nextEntryRe finds the points token of a further entry packed onto the same line.
	// It needs a dash or colon so quantities and inline "N pts" costs are not mistaken
	// for points.
	nextEntryRe = regexp.MustCompile(`[\s,;|](\d{1,4})(?:\s*(?i:pts?|points)\.?)?\s*[-–—:]\s+`)

	// quantityRe splits "25 Spearmen", "10x Skeletons" and "25Spearmen".
	quantityRe = regexp.MustCompile(`^(\d{1,2})(\s*[xX×]\s*|\s+|)(\D.*)$`)
	ordinalRe  = regexp.MustCompile(`^(?i:st|nd|rd|th)\b`)
)

// UnitLineParser turns a body line into unit entries.
type UnitLineParser struct {
	newID func() string
}

// UnitLineParserOption configures a UnitLineParser.
type UnitLineParserOption func(*UnitLineParser)

// WithIDGenerator overrides how unit ids are minted.
func WithIDGenerator(fn func() string) UnitLineParserOption {
	return func(p *UnitLineParser) {
		p.newID = fn
	}
}

// NewUnitLineParser creates a UnitLineParser.
func NewUnitLineParser(opts ...UnitLineParserOption) *UnitLineParser {
	p := &UnitLineParser{newID: uuid.NewString}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type segment struct {
	points string
	text   string
}

// Parse parses one body line. A line without a leading points token is not a unit line
// and yields no entries and no error. Any failure loses the whole line.
func (p *UnitLineParser) Parse(line string, lineNo int) ([]armytypes.UnitEntry, error) {
	line = strings.TrimSpace(line)
	m := leadingPointsRe.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}

	segments := splitSegments(m[1], m[2])
	units := make([]armytypes.UnitEntry, 0, len(segments))
	for _, seg := range segments {
		unit, err := p.parseSegment(seg)
		if err != nil {
			err.Line = lineNo
			err.Text = line
			return nil, err
		}
		units = append(units, unit)
	}
	return units, nil
}

// splitSegments cuts rest at each further points token: each entry runs to the next
// token or the end of the line.
func splitSegments(firstPoints, rest string) []segment {
	matches := nextEntryRe.FindAllStringSubmatchIndex(rest, -1)
	segments := make([]segment, 0, len(matches)+1)

	points, start := firstPoints, 0
	for _, mi := range matches {
		segments = append(segments, segment{points: points, text: rest[start:mi[0]]})
		points = rest[mi[2]:mi[3]]
		start = mi[1]
	}
	return append(segments, segment{points: points, text: rest[start:]})
}

func (p *UnitLineParser) parseSegment(seg segment) (armytypes.UnitEntry, *diagnostics.UnitLineParseError) {
	points, err := strconv.Atoi(seg.points)
	if err != nil || points < 0 {
		return armytypes.UnitEntry{}, &diagnostics.UnitLineParseError{Reason: "invalid points value " + strconv.Quote(seg.points), Err: err}
	}

	text := strings.TrimSpace(seg.text)
	quantity := 1
	qm := quantityRe.FindStringSubmatch(text)
	if qm != nil && qm[2] == "" && ordinalRe.MatchString(qm[3]) {
		qm = nil // "10th Legion"
	}
	if qm != nil {
		quantity, err = strconv.Atoi(qm[1])
		if err != nil {
			return armytypes.UnitEntry{}, &diagnostics.UnitLineParseError{Reason: "invalid quantity " + strconv.Quote(qm[1]), Err: err}
		}
		if quantity < 1 {
			return armytypes.UnitEntry{}, &diagnostics.UnitLineParseError{Reason: "quantity must be at least 1"}
		}
		text = qm[3]
	}

	items := splitItems(FlattenUpgrades(StripAnnotations(text)))
	if len(items) == 0 {
		return armytypes.UnitEntry{}, &diagnostics.UnitLineParseError{Reason: "missing unit name"}
	}

	return armytypes.UnitEntry{
		ID:       p.newID(),
		Points:   points,
		Quantity: quantity,
		Name:     items[0],
		Upgrades: ExpandShorthand(items[1:]),
	}, nil
}

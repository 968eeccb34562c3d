package parsers

import (
	"strings"

	"github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/vocab"
)

// Block is the contiguous text belonging to one player's army list. Index is 1-based
// within its section, StartLine is the source line of the army-name line, and
// LineNumbers holds the source line of each body line.
type Block struct {
	Index       int
	PlayerName  string
	ArmyName    string
	StartLine   int
	BodyLines   []string
	LineNumbers []int
}

// LineCount counts the player and army lines along with the body.
func (b Block) LineCount() int {
	return 2 + len(b.BodyLines)
}

// BodyLineNumber maps an index into BodyLines back onto the source line number.
func (b Block) BodyLineNumber(i int) int {
	if i < 0 || i >= len(b.LineNumbers) {
		return 0
	}
	return b.LineNumbers[i]
}

type segmenterState int

const (
	stateScanning segmenterState = iota
	stateInBlock
)

// Segmenter splits a line sequence into army blocks. A line naming a known faction opens
// a block; the line before it names the player.
type Segmenter struct {
	factions *vocab.Vocabulary
}

// NewSegmenter creates a Segmenter recognizing the given factions.
func NewSegmenter(factions *vocab.Vocabulary) *Segmenter {
	return &Segmenter{factions: factions}
}

// Segment returns every block in order. It never drops a block; minimum-size checks
// belong to the caller.
func (s *Segmenter) Segment(lines []string) []Block {
	var (
		blocks    []Block
		state     = stateScanning
		prev      string
		prevInCur bool
	)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if army, ok := s.MatchArmy(line); ok {
			player := prev
			if state == stateInBlock && prevInCur {
				// The player line was swallowed as body of the previous block.
				cur := &blocks[len(blocks)-1]
				cur.BodyLines = cur.BodyLines[:len(cur.BodyLines)-1]
				cur.LineNumbers = cur.LineNumbers[:len(cur.LineNumbers)-1]
			}
			blocks = append(blocks, Block{
				Index:      len(blocks) + 1,
				PlayerName: player,
				ArmyName:   army,
				StartLine:  i + 1,
			})
			state = stateInBlock
			prev, prevInCur = "", false
			continue
		}

		switch state {
		case stateScanning:
			prevInCur = false
		case stateInBlock:
			cur := &blocks[len(blocks)-1]
			cur.BodyLines = append(cur.BodyLines, line)
			cur.LineNumbers = append(cur.LineNumbers, i+1)
			prevInCur = true
		}
		prev = line
	}

	return blocks
}

// MatchArmy reports whether line is an army-name line and returns the canonical faction.
// "Army: <faction>" and "Faction - <faction>" labels are accepted.
func (s *Segmenter) MatchArmy(line string) (string, bool) {
	if name, ok := s.factions.Lookup(line); ok {
		return name, true
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, label := range []string{"army", "faction"} {
		rest, found := strings.CutPrefix(lower, label)
		if !found {
			continue
		}
		rest = strings.TrimLeft(rest, " :-")
		if rest == "" {
			continue
		}
		if name, ok := s.factions.Lookup(rest); ok {
			return name, true
		}
	}
	return "", false
}

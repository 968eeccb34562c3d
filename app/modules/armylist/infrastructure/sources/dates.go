package sources

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

// EventDateLayout is the canonical form of EventInfo.EventDate.
const EventDateLayout = "2006-01-02"

// Clock abstracts time.Now for relative date parsing.
type Clock interface {
	Now() time.Time
}

// RealClock is the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

var dateLayouts = []string{
	EventDateLayout,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC3339,
}

// DateParser normalizes the loose event dates organizers type into web forms
// ("12/05/2025", "next saturday", "March 3rd").
type DateParser struct {
	clock Clock
	loc   *time.Location
	w     *when.Parser
}

// NewDateParser creates a DateParser. Nil arguments fall back to the system clock and UTC.
func NewDateParser(clock Clock, loc *time.Location) *DateParser {
	if clock == nil {
		clock = RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	return &DateParser{clock: clock, loc: loc, w: w}
}

// Normalize returns the date as YYYY-MM-DD. Fixed layouts are tried first (day-first
// for slashed dates), then natural language. An unrecognized value is returned as given
// with ok=false.
func (p *DateParser) Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t.Format(EventDateLayout), true
		}
	}

	r, err := p.w.Parse(strings.ToLower(s), p.clock.Now().In(p.loc))
	if err != nil || r == nil {
		return s, false
	}
	return r.Time.In(p.loc).Format(EventDateLayout), true
}

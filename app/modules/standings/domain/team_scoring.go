package standingsdomain

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidCaps is returned when the cap floor exceeds the cap ceiling.
var ErrInvalidCaps = errors.New("team point cap min exceeds max")

// Caps bounds a team's aggregated round score. Either side may be absent.
type Caps struct {
	Min *int
	Max *int
}

// Validate rejects a floor above the ceiling.
func (c Caps) Validate() error {
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return fmt.Errorf("%w: %d > %d", ErrInvalidCaps, *c.Min, *c.Max)
	}
	return nil
}

// Clamp bounds v by the caps that are set.
func (c Caps) Clamp(v int) int {
	if c.Min != nil && v < *c.Min {
		v = *c.Min
	}
	if c.Max != nil && v > *c.Max {
		v = *c.Max
	}
	return v
}

// RoundResult is one participant's contribution to a team round.
type RoundResult struct {
	Result          int
	SecondaryPoints int
}

// TeamScoreInput is everything needed to score one team.
type TeamScoreInput struct {
	TeamID      string
	BonusPoints int
	Rounds      int
	// Results[r] holds the results reported for round r+1 by the team's participants.
	Results [][]RoundResult
}

// TeamScore is a team's scored standing.
type TeamScore struct {
	TeamID          string `json:"team_id"`
	BonusPoints     int    `json:"bonus_points"`
	RoundTotals     []int  `json:"round_totals"`
	RoundSecondary  []int  `json:"round_secondary"`
	TotalPoints     int    `json:"total_points"`
	SecondaryPoints int    `json:"secondary_points"`
	Placing         int    `json:"placing"`
}

// ScoreTeam computes a team's per-round totals and running totals.
//
// Each round's result sum is clamped to caps; secondary points are summed without
// clamping. A round nobody on the team reported contributes zero and is not clamped.
// The team total is the bonus plus every clamped round total.
func ScoreTeam(in TeamScoreInput, caps Caps) TeamScore {
	score := TeamScore{
		TeamID:         in.TeamID,
		BonusPoints:    in.BonusPoints,
		RoundTotals:    make([]int, in.Rounds),
		RoundSecondary: make([]int, in.Rounds),
		TotalPoints:    in.BonusPoints,
	}

	for r := 0; r < in.Rounds; r++ {
		if r >= len(in.Results) || len(in.Results[r]) == 0 {
			continue
		}
		sum, secondary := 0, 0
		for _, res := range in.Results[r] {
			sum += res.Result
			secondary += res.SecondaryPoints
		}
		score.RoundTotals[r] = caps.Clamp(sum)
		score.RoundSecondary[r] = secondary
		score.TotalPoints += score.RoundTotals[r]
		score.SecondaryPoints += secondary
	}
	return score
}

// RankTeams orders teams by total points, then secondary points, both descending, with
// ties broken by team id ascending, and assigns 1-based placings. The input is not
// modified.
func RankTeams(scores []TeamScore) []TeamScore {
	ranked := slices.Clone(scores)
	slices.SortFunc(ranked, func(a, b TeamScore) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.SecondaryPoints, a.SecondaryPoints); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})
	for i := range ranked {
		ranked[i].Placing = i + 1
	}
	return ranked
}

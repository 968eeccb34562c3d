package standingsdomain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestCaps_Clamp(t *testing.T) {
	tests := []struct {
		name string
		caps Caps
		in   int
		want int
	}{
		{name: "No caps", caps: Caps{}, in: 99, want: 99},
		{name: "Below floor", caps: Caps{Min: intPtr(15), Max: intPtr(30)}, in: 10, want: 15},
		{name: "Above ceiling", caps: Caps{Min: intPtr(15), Max: intPtr(30)}, in: 40, want: 30},
		{name: "Inside", caps: Caps{Min: intPtr(15), Max: intPtr(30)}, in: 26, want: 26},
		{name: "Floor only", caps: Caps{Min: intPtr(5)}, in: 0, want: 5},
		{name: "Ceiling only", caps: Caps{Max: intPtr(20)}, in: 21, want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.caps.Clamp(tt.in))
		})
	}
}

func TestCaps_Validate(t *testing.T) {
	require.NoError(t, Caps{}.Validate())
	require.NoError(t, Caps{Min: intPtr(10), Max: intPtr(10)}.Validate())
	require.ErrorIs(t, Caps{Min: intPtr(11), Max: intPtr(10)}.Validate(), ErrInvalidCaps)
}

func TestScoreTeam(t *testing.T) {
	caps := Caps{Min: intPtr(15), Max: intPtr(30)}

	t.Run("Single round with bonus", func(t *testing.T) {
		got := ScoreTeam(TeamScoreInput{
			TeamID:      "t1",
			BonusPoints: 10,
			Rounds:      1,
			Results:     [][]RoundResult{{{Result: 10, SecondaryPoints: 3}, {Result: 16, SecondaryPoints: 4}}},
		}, caps)
		require.Equal(t, []int{26}, got.RoundTotals)
		require.Equal(t, 36, got.TotalPoints)
		require.Equal(t, 7, got.SecondaryPoints)
	})

	t.Run("Clamps each round but not secondary", func(t *testing.T) {
		got := ScoreTeam(TeamScoreInput{
			TeamID: "t1",
			Rounds: 3,
			Results: [][]RoundResult{
				{{Result: 2, SecondaryPoints: 1}, {Result: 3, SecondaryPoints: 1}},
				{{Result: 20, SecondaryPoints: 25}, {Result: 20, SecondaryPoints: 25}},
			},
		}, caps)
		require.Equal(t, []int{15, 30, 0}, got.RoundTotals)
		require.Equal(t, []int{2, 50, 0}, got.RoundSecondary)
		require.Equal(t, 45, got.TotalPoints)
		require.Equal(t, 52, got.SecondaryPoints)
	})

	t.Run("Unreported round is not clamped", func(t *testing.T) {
		got := ScoreTeam(TeamScoreInput{TeamID: "t1", Rounds: 2, BonusPoints: -5}, caps)
		require.Equal(t, []int{0, 0}, got.RoundTotals)
		require.Equal(t, -5, got.TotalPoints)
	})
}

func TestRankTeams(t *testing.T) {
	in := []TeamScore{
		{TeamID: "charlie", TotalPoints: 50, SecondaryPoints: 10},
		{TeamID: "bravo", TotalPoints: 60, SecondaryPoints: 5},
		{TeamID: "delta", TotalPoints: 50, SecondaryPoints: 12},
		{TeamID: "alpha", TotalPoints: 50, SecondaryPoints: 10},
	}

	ranked := RankTeams(in)

	var order []string
	for i, s := range ranked {
		order = append(order, s.TeamID)
		require.Equal(t, i+1, s.Placing)
	}
	require.Equal(t, []string{"bravo", "delta", "alpha", "charlie"}, order)
	require.Zero(t, in[0].Placing, "input must not be modified")
}

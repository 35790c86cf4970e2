package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

func TestPointsWithoutBonus(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()

	tests := []struct {
		name  string
		pos   squad.Position
		stats squad.LiveStats
		want  int
	}{
		{
			name:  "keeper full match with saves and clean sheet",
			pos:   squad.PositionGoalkeeper,
			stats: squad.LiveStats{Minutes: 90, CleanSheets: 1, Saves: 7},
			// 1 appearance + 1 full match + 4 clean sheet + 2 save chunks.
			want: 8,
		},
		{
			name:  "keeper pen save and conceded",
			pos:   squad.PositionGoalkeeper,
			stats: squad.LiveStats{Minutes: 90, PenSaved: 1, GoalsConceded: 3},
			// 2 minutes + 5 pen save - 1 for two conceded.
			want: 6,
		},
		{
			name:  "defender goal and defensive contribution",
			pos:   squad.PositionDefender,
			stats: squad.LiveStats{Minutes: 90, Goals: 1, DefContrib: 21},
			// 2 minutes + 6 goal + 2 for two full chunks of 10.
			want: 12,
		},
		{
			name:  "midfielder brace with assist",
			pos:   squad.PositionMidfielder,
			stats: squad.LiveStats{Minutes: 72, Goals: 2, Assists: 1},
			want:  15,
		},
		{
			name:  "midfielder clean sheet is one point",
			pos:   squad.PositionMidfielder,
			stats: squad.LiveStats{Minutes: 90, CleanSheets: 1},
			want:  3,
		},
		{
			name:  "forward ignores clean sheet and conceded",
			pos:   squad.PositionForward,
			stats: squad.LiveStats{Minutes: 90, CleanSheets: 1, GoalsConceded: 4, Goals: 1},
			want:  6,
		},
		{
			name:  "sub appearance only",
			pos:   squad.PositionForward,
			stats: squad.LiveStats{Minutes: 13},
			want:  1,
		},
		{
			name:  "cards and own goal",
			pos:   squad.PositionDefender,
			stats: squad.LiveStats{Minutes: 90, Yellow: 1, Red: 1, OwnGoals: 1},
			want:  -4,
		},
		{
			name:  "missed penalty",
			pos:   squad.PositionForward,
			stats: squad.LiveStats{Minutes: 90, PenMissed: 1},
			want:  0,
		},
		{
			name:  "outfield saves never score",
			pos:   squad.PositionMidfielder,
			stats: squad.LiveStats{Minutes: 90, Saves: 6, PenSaved: 1},
			want:  2,
		},
		{
			name:  "did not play",
			pos:   squad.PositionMidfielder,
			stats: squad.LiveStats{},
			want:  0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := rules.PointsWithoutBonus(tc.pos, tc.stats)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPointsWithoutBonus_UnknownPosition(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()
	_, ok := rules.PointsWithoutBonus(squad.Position(9), squad.LiveStats{Minutes: 90})
	assert.False(t, ok)
}

func TestCanonicalPoints(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()

	got, ok := rules.CanonicalPoints(squad.PositionMidfielder, squad.LiveStats{Minutes: 90, Goals: 1, Bonus: 3})
	require.True(t, ok)
	assert.Equal(t, 10, got)

	// Unknown position falls back to the provider total.
	got, ok = rules.CanonicalPoints(squad.Position(0), squad.LiveStats{TotalPoints: 7, Bonus: 3})
	assert.False(t, ok)
	assert.Equal(t, 7, got)
}

func TestAdjustedPoints(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()

	tests := []struct {
		name       string
		pos        squad.Position
		stats      squad.LiveStats
		want       int
		wantStatus BonusStatus
	}{
		{
			name:       "no bonus keeps raw total",
			pos:        squad.PositionMidfielder,
			stats:      squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1},
			want:       7,
			wantStatus: BonusIncluded,
		},
		{
			name: "raw total already includes bonus",
			pos:  squad.PositionMidfielder,
			// Recomputed without bonus: 7. Raw 10 == 7+3.
			stats:      squad.LiveStats{TotalPoints: 10, Minutes: 90, Goals: 1, Bonus: 3},
			want:       10,
			wantStatus: BonusIncluded,
		},
		{
			name: "raw total missing bonus gets it added",
			pos:  squad.PositionMidfielder,
			// Raw 7 == recomputed without bonus.
			stats:      squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1, Bonus: 3},
			want:       10,
			wantStatus: BonusProjected,
		},
		{
			name: "closer to the no-bonus reading projects the bonus",
			pos:  squad.PositionMidfielder,
			// Recomputed 7, with bonus 10; raw 8 sits closer to 7.
			stats:      squad.LiveStats{TotalPoints: 8, Minutes: 90, Goals: 1, Bonus: 3},
			want:       11,
			wantStatus: BonusProjected,
		},
		{
			name: "closer to the with-bonus reading keeps raw",
			pos:  squad.PositionMidfielder,
			// Raw 9 sits closer to 10 than to 7.
			stats:      squad.LiveStats{TotalPoints: 9, Minutes: 90, Goals: 1, Bonus: 3},
			want:       9,
			wantStatus: BonusIncluded,
		},
		{
			name: "equidistant raw projects the bonus",
			pos:  squad.PositionMidfielder,
			// Recomputed 7, with bonus 9; raw 8 is equidistant. The tie
			// deliberately reads as bonus-not-yet-included.
			stats:      squad.LiveStats{TotalPoints: 8, Minutes: 90, Goals: 1, Bonus: 2},
			want:       10,
			wantStatus: BonusProjected,
		},
		{
			name:       "unknown position with bonus keeps raw",
			pos:        squad.Position(7),
			stats:      squad.LiveStats{TotalPoints: 12, Bonus: 3},
			want:       12,
			wantStatus: BonusUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, status := rules.AdjustedPoints(tc.pos, tc.stats)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantStatus, status)

			// Re-resolving the same snapshot never compounds the bonus.
			again, againStatus := rules.AdjustedPoints(tc.pos, tc.stats)
			assert.Equal(t, got, again)
			assert.Equal(t, status, againStatus)
		})
	}
}

func TestGameweekPoints(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()
	picks := []squad.Pick{
		{Position: squad.PositionGoalkeeper, Multiplier: 1, Live: squad.LiveStats{TotalPoints: 2, Minutes: 90}},
		{Position: squad.PositionMidfielder, Multiplier: 2, Live: squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1}},
		// Bench: multiplier zero contributes nothing.
		{Position: squad.PositionForward, Multiplier: 0, Live: squad.LiveStats{TotalPoints: 9, Minutes: 90, Goals: 1}},
	}

	assert.Equal(t, 16, rules.GameweekPoints(picks))
}

func TestFormatBreakdown(t *testing.T) {
	t.Parallel()

	rules := DefaultRuleset()

	t.Run("lists scoring parts in order", func(t *testing.T) {
		t.Parallel()

		stats := squad.LiveStats{TotalPoints: 14, Minutes: 90, Goals: 1, CleanSheets: 1, Bonus: 2}
		adjusted, status := rules.AdjustedPoints(squad.PositionDefender, stats)
		got := rules.FormatBreakdown(squad.PositionDefender, stats, status, adjusted)

		assert.Equal(t, "1 pt - appearance; 1 pt - 60+ mins; 6 pts - goals; 4 pts - clean sheet; 2 pts - bonus", got)
	})

	t.Run("projected bonus is marked", func(t *testing.T) {
		t.Parallel()

		stats := squad.LiveStats{TotalPoints: 2, Minutes: 90, Bonus: 1}
		adjusted, status := rules.AdjustedPoints(squad.PositionForward, stats)
		require.Equal(t, BonusProjected, status)
		got := rules.FormatBreakdown(squad.PositionForward, stats, status, adjusted)

		assert.Contains(t, got, "bonus (projected)")
	})

	t.Run("empty stats", func(t *testing.T) {
		t.Parallel()

		got := rules.FormatBreakdown(squad.PositionMidfielder, squad.LiveStats{}, BonusIncluded, 0)
		assert.Equal(t, "0 pts - no returns yet", got)
	})

	t.Run("gap surfaces as live adjustments", func(t *testing.T) {
		t.Parallel()

		stats := squad.LiveStats{Minutes: 90}
		got := rules.FormatBreakdown(squad.PositionMidfielder, stats, BonusIncluded, 5)
		assert.Contains(t, got, "3 pts - other/live adjustments")
	})
}

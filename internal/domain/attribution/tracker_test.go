package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

func TestTracker_FirstObservationSeeds(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(scoring.DefaultRuleset())
	pick := midfielder("Saka")
	pick.Live = squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1}

	assert.Nil(t, tracker.Observe(7, pick, diffAt), "a seeded baseline must not replay history as events")

	pick.Live.Goals++
	pick.Live.TotalPoints += 5
	events := tracker.Observe(7, pick, diffAt)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryGoal, events[0].Category)
}

func TestTracker_GameweekRolloverReseeds(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(scoring.DefaultRuleset())
	pick := midfielder("Saka")
	pick.Live = squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1}

	require.Nil(t, tracker.Observe(7, pick, diffAt))

	// New gameweek, counters reset upstream. No spurious negative events.
	pick.Live = squad.LiveStats{}
	assert.Nil(t, tracker.Observe(8, pick, diffAt))

	pick.Live = squad.LiveStats{TotalPoints: 1, Minutes: 5}
	events := tracker.Observe(8, pick, diffAt)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryAppearance, events[0].Category)
}

func TestTracker_Reset(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(scoring.DefaultRuleset())
	pick := midfielder("Saka")
	pick.Live = squad.LiveStats{TotalPoints: 7, Minutes: 90, Goals: 1}

	require.Nil(t, tracker.Observe(7, pick, diffAt))
	tracker.Reset()

	pick.Live.TotalPoints += 5
	pick.Live.Goals++
	assert.Nil(t, tracker.Observe(7, pick, diffAt), "reset requires a fresh baseline")
}

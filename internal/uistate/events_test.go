package uistate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fplbuddy/scoreboard/internal/domain/attribution"
)

func namedEvent(n int) attribution.Event {
	return attribution.Event{Player: fmt.Sprintf("player %d", n), Delta: 1}
}

func TestEventLog_HistoryEvictsOldest(t *testing.T) {
	t.Parallel()

	log := NewEventLog()
	for i := 0; i < HistoryCapacity+3; i++ {
		log.Push(namedEvent(i))
	}

	runtime, ok := log.Snapshot()
	require.True(t, ok)
	require.Len(t, runtime.Events, HistoryCapacity)
	assert.Equal(t, "player 3", runtime.Events[0].Player, "oldest entries leave first")
	assert.Equal(t, fmt.Sprintf("player %d", HistoryCapacity+2), runtime.Events[len(runtime.Events)-1].Player)
}

func TestEventLog_PopupQueueDropsNewest(t *testing.T) {
	t.Parallel()

	log := NewEventLog()
	for i := 0; i < PopupCapacity; i++ {
		assert.True(t, log.Push(namedEvent(i)))
	}

	// Queue full: the event is dropped from popups but still lands in
	// history.
	assert.False(t, log.Push(namedEvent(99)))

	runtime, ok := log.Snapshot()
	require.True(t, ok)
	assert.Len(t, runtime.Events, PopupCapacity+1)

	// Popups drain in arrival order and exclude the dropped one.
	for i := 0; i < PopupCapacity; i++ {
		ev, ok := log.PopPopup()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("player %d", i), ev.Player)
	}
	_, ok = log.PopPopup()
	assert.False(t, ok)
}

func TestEventLog_Clear(t *testing.T) {
	t.Parallel()

	log := NewEventLog()
	log.Push(namedEvent(1))
	log.Push(namedEvent(2))

	log.Clear()

	runtime, ok := log.Snapshot()
	require.True(t, ok)
	assert.Empty(t, runtime.Events)

	_, ok = log.PopPopup()
	assert.False(t, ok)
}

func TestEventLog_SquadRowsCappedAndVersioned(t *testing.T) {
	t.Parallel()

	log := NewEventLog()

	before, ok := log.Snapshot()
	require.True(t, ok)

	rows := make([]SquadRow, SquadCapacity+4)
	for i := range rows {
		rows[i] = SquadRow{Slot: i + 1}
	}
	require.True(t, log.SetSquad(rows))

	runtime, ok := log.Snapshot()
	require.True(t, ok)
	assert.Len(t, runtime.Squad, SquadCapacity)
	assert.Greater(t, runtime.SquadVersion, before.SquadVersion)
	assert.Equal(t, before.EventVersion, runtime.EventVersion, "squad writes do not touch the event version")
}

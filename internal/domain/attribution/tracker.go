package attribution

import (
	"sync"
	"time"

	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

type observedKey struct {
	Gameweek  int
	ElementID int
}

// Tracker retains the last observed live stats per (gameweek, element) and
// turns successive observations into attributed events. Diffing never
// crosses gameweeks: entries from a stale gameweek are evicted as soon as a
// new one is observed.
type Tracker struct {
	mu    sync.Mutex
	rules scoring.Ruleset
	last  map[observedKey]squad.LiveStats
}

func NewTracker(rules scoring.Ruleset) *Tracker {
	return &Tracker{
		rules: rules,
		last:  make(map[observedKey]squad.LiveStats),
	}
}

// Observe records one pick's current stats for a gameweek and returns the
// events attributable since the previous observation. The first observation
// for a (gameweek, element) pair seeds state and emits nothing.
func (t *Tracker) Observe(gameweek int, pick squad.Pick, at time.Time) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.evictStaleLocked(gameweek)

	key := observedKey{Gameweek: gameweek, ElementID: pick.ElementID}
	prev, seen := t.last[key]
	t.last[key] = pick.Live
	if !seen {
		return nil
	}

	return Diff(t.rules, pick, prev, pick.Live, at)
}

// Reset drops all retained state, forcing the next observation of every
// player to re-seed.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[observedKey]squad.LiveStats)
}

func (t *Tracker) evictStaleLocked(gameweek int) {
	for key := range t.last {
		if key.Gameweek != gameweek {
			delete(t.last, key)
		}
	}
}

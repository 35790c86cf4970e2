package uistate

import "github.com/fplbuddy/scoreboard/internal/domain/attribution"

const (
	// HistoryCapacity bounds the events-list view; the oldest entry is
	// evicted first once full.
	HistoryCapacity = 24
	// PopupCapacity bounds the one-shot popup queue. Popups are best
	// effort: once full, new events are dropped from the queue but still
	// recorded in history.
	PopupCapacity = 8
	// SquadCapacity bounds the squad view rows.
	SquadCapacity = 16
)

// SquadRow is one line of the squad view.
type SquadRow struct {
	Slot       int    `json:"slot"`
	Player     string `json:"player"`
	Team       string `json:"team"`
	Points     int    `json:"points"`
	Multiplier int    `json:"multiplier"`
	IsCaptain  bool   `json:"is_captain"`
	IsVice     bool   `json:"is_vice"`
	Breakdown  string `json:"breakdown"`
}

// EventLog owns event history, the popup queue and the squad rows on behalf
// of the renderer. Same copy-in/copy-out discipline as the state store.
type EventLog struct {
	lock timedLock

	history []attribution.Event
	popups  []attribution.Event
	squad   []SquadRow

	eventVersion uint64
	squadVersion uint64
}

func NewEventLog() *EventLog {
	return &EventLog{lock: newTimedLock()}
}

// Push records an event in history and queues it for popup display. The
// return reports whether the event made the popup queue.
func (l *EventLog) Push(ev attribution.Event) bool {
	if !l.lock.acquire(writeWait) {
		return false
	}
	defer l.lock.release()

	if len(l.history) >= HistoryCapacity {
		l.history = append(l.history[:0], l.history[1:]...)
	}
	l.history = append(l.history, ev)
	l.eventVersion++

	if len(l.popups) >= PopupCapacity {
		return false
	}
	l.popups = append(l.popups, ev)
	return true
}

// PopPopup removes and returns the oldest queued popup.
func (l *EventLog) PopPopup() (attribution.Event, bool) {
	if !l.lock.acquire(readWait) {
		return attribution.Event{}, false
	}
	defer l.lock.release()

	if len(l.popups) == 0 {
		return attribution.Event{}, false
	}
	ev := l.popups[0]
	l.popups = append(l.popups[:0], l.popups[1:]...)
	return ev, true
}

// Clear drops history and queued popups, used when demo mode re-seeds.
func (l *EventLog) Clear() {
	if !l.lock.acquire(writeWait) {
		return
	}
	defer l.lock.release()

	l.history = nil
	l.popups = nil
	l.eventVersion++
}

// SetSquad replaces the squad rows.
func (l *EventLog) SetSquad(rows []SquadRow) bool {
	if !l.lock.acquire(writeWait) {
		return false
	}
	defer l.lock.release()

	if len(rows) > SquadCapacity {
		rows = rows[:SquadCapacity]
	}
	l.squad = append([]SquadRow(nil), rows...)
	l.squadVersion++
	return true
}

// Runtime is the renderer's copy of list state, with versions so unchanged
// lists are not re-rendered.
type Runtime struct {
	Events       []attribution.Event `json:"events"`
	Squad        []SquadRow          `json:"squad"`
	EventVersion uint64              `json:"event_version"`
	SquadVersion uint64              `json:"squad_version"`
}

// Snapshot copies history and squad rows without draining popups.
func (l *EventLog) Snapshot() (Runtime, bool) {
	if !l.lock.acquire(readWait) {
		return Runtime{}, false
	}
	defer l.lock.release()

	return Runtime{
		Events:       append([]attribution.Event(nil), l.history...),
		Squad:        append([]SquadRow(nil), l.squad...),
		EventVersion: l.eventVersion,
		SquadVersion: l.squadVersion,
	}, true
}

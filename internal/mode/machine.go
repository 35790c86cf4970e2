package mode

import (
	"time"

	"github.com/fplbuddy/scoreboard/internal/uistate"
)

// Mode is the active display mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModePreDeadline
	ModeFinalHour
	ModeLive
	ModeEventPopup
	ModeEventsList
	ModeSquad
)

var modeNames = map[Mode]string{
	ModeIdle:        "idle",
	ModePreDeadline: "pre_deadline",
	ModeFinalHour:   "final_hour",
	ModeLive:        "live",
	ModeEventPopup:  "event_popup",
	ModeEventsList:  "events_list",
	ModeSquad:       "squad",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

const (
	// PreDeadlineWindow is how far out the deadline screen takes over.
	PreDeadlineWindow = 6 * time.Hour
	// FinalHourWindow switches to the final countdown.
	FinalHourWindow = time.Hour
	// PopupDuration is how long an event popup stays up before it
	// self-exits back to the live screen.
	PopupDuration = 4 * time.Second
	// HoldToSquad is the long-press threshold for entering the squad view
	// from the live screen.
	HoldToSquad = 3 * time.Second
)

// AutoMode derives the non-sticky mode from shared state alone. Live wins
// whenever the gameweek is in progress; otherwise time-to-deadline decides.
// A missing or unparseable deadline degrades to Idle.
func AutoMode(state uistate.SharedState, now time.Time) Mode {
	if state.IsLiveGW {
		return ModeLive
	}
	if !state.HasNextDeadline || state.NextDeadline.IsZero() {
		return ModeIdle
	}
	remaining := state.NextDeadline.Sub(now)
	if remaining <= FinalHourWindow {
		return ModeFinalHour
	}
	if remaining <= PreDeadlineWindow {
		return ModePreDeadline
	}
	return ModeIdle
}

// Machine tracks the current mode. It is owned by the renderer loop and
// evaluated once per tick, so transitions never happen mid-render.
type Machine struct {
	current     Mode
	popupHideAt time.Time
}

func NewMachine() *Machine {
	return &Machine{current: ModeIdle}
}

func (m *Machine) Current() Mode {
	return m.current
}

func (m *Machine) isSticky() bool {
	switch m.current {
	case ModeEventPopup, ModeEventsList, ModeSquad:
		return true
	default:
		return false
	}
}

// Tick advances the machine for one renderer cycle and returns the mode to
// render. Sticky modes are never overridden by the automatic rule; the
// popup self-exits to Live once its display duration elapses.
func (m *Machine) Tick(state uistate.SharedState, now time.Time) Mode {
	if m.current == ModeEventPopup && !m.popupHideAt.IsZero() && !now.Before(m.popupHideAt) {
		m.popupHideAt = time.Time{}
		m.current = ModeLive
	}

	if m.isSticky() {
		return m.current
	}

	m.current = AutoMode(state, now)
	return m.current
}

// ShowPopup enters the popup overlay. Popups only interrupt the live
// screen; queued events keep waiting otherwise.
func (m *Machine) ShowPopup(now time.Time) bool {
	if m.current != ModeLive {
		return false
	}
	m.current = ModeEventPopup
	m.popupHideAt = now.Add(PopupDuration)
	return true
}

// EnterSquad handles the long-press gesture, valid only on the live screen.
func (m *Machine) EnterSquad() bool {
	if m.current != ModeLive {
		return false
	}
	m.current = ModeSquad
	return true
}

// EnterEventsList handles the ticker tap, valid only on the live screen.
func (m *Machine) EnterEventsList() bool {
	if m.current != ModeLive {
		return false
	}
	m.current = ModeEventsList
	return true
}

// Back exits an overlay via the explicit back gesture.
func (m *Machine) Back() bool {
	switch m.current {
	case ModeEventsList, ModeSquad, ModeEventPopup:
		m.popupHideAt = time.Time{}
		m.current = ModeLive
		return true
	default:
		return false
	}
}

package demo

import (
	"fmt"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

// EventKind is one injectable demo event type.
type EventKind string

const (
	EventGoal       EventKind = "goal"
	EventAssist     EventKind = "assist"
	EventCleanSheet EventKind = "cs"
	EventConcede    EventKind = "concede"
	EventSave       EventKind = "save"
	EventBonus      EventKind = "bonus"
	EventYellow     EventKind = "yc"
	EventRed        EventKind = "rc"
	EventOwnGoal    EventKind = "og"
	EventPenSave    EventKind = "pen_save"
	EventPenMiss    EventKind = "pen_miss"
	EventDefContrib EventKind = "defcontrib"
	EventMinutes    EventKind = "minutes"
)

// eventAliases maps every accepted console spelling to its canonical kind.
var eventAliases = map[string]EventKind{
	"goal": EventGoal, "g": EventGoal,
	"assist": EventAssist, "a": EventAssist,
	"cs": EventCleanSheet, "clean": EventCleanSheet, "clean_sheet": EventCleanSheet,
	"concede": EventConcede, "gc": EventConcede,
	"save": EventSave, "saves": EventSave, "sv": EventSave,
	"bonus": EventBonus, "b": EventBonus,
	"yc": EventYellow, "yellow": EventYellow,
	"rc": EventRed, "red": EventRed,
	"og": EventOwnGoal, "own_goal": EventOwnGoal,
	"pen_save": EventPenSave, "psave": EventPenSave,
	"pen_miss": EventPenMiss, "pmiss": EventPenMiss,
	"defcontrib": EventDefContrib, "dc": EventDefContrib,
	"minutes": EventMinutes, "mins": EventMinutes,
}

// ParseEventKind resolves a console token to an event kind.
func ParseEventKind(token string) (EventKind, error) {
	if kind, ok := eventAliases[token]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown event type %q", token)
}

// touchesPitchTime reports whether an event implies the player was on the
// pitch, forcing a nonzero minutes counter.
func touchesPitchTime(kind EventKind) bool {
	switch kind {
	case EventBonus, EventDefContrib, EventMinutes:
		return false
	default:
		return true
	}
}

// applyEventToStats folds one demo event into a copy of the raw counters.
// Pitch-time events force minutes to at least 1, a clean sheet to at least
// 60. Minutes adjustments may be negative but never drop below zero.
func applyEventToStats(s squad.LiveStats, kind EventKind, count int) squad.LiveStats {
	if count == 0 {
		count = 1
	}

	switch kind {
	case EventGoal:
		s.Goals += count
	case EventAssist:
		s.Assists += count
	case EventCleanSheet:
		s.CleanSheets += count
		if s.Minutes < 60 {
			s.Minutes = 60
		}
	case EventConcede:
		s.GoalsConceded += count
	case EventSave:
		s.Saves += count
	case EventBonus:
		s.Bonus += count
	case EventYellow:
		s.Yellow += count
	case EventRed:
		s.Red += count
	case EventOwnGoal:
		s.OwnGoals += count
	case EventPenSave:
		s.PenSaved += count
	case EventPenMiss:
		s.PenMissed += count
	case EventDefContrib:
		s.DefContrib += count
	case EventMinutes:
		s.Minutes += count
		if s.Minutes < 0 {
			s.Minutes = 0
		}
	}

	if touchesPitchTime(kind) && s.Minutes < 1 {
		s.Minutes = 1
	}

	// Negative counters never survive an edit; the scoring tables assume
	// monotone counts.
	if s.Goals < 0 {
		s.Goals = 0
	}
	if s.Assists < 0 {
		s.Assists = 0
	}
	if s.CleanSheets < 0 {
		s.CleanSheets = 0
	}
	if s.GoalsConceded < 0 {
		s.GoalsConceded = 0
	}
	if s.Saves < 0 {
		s.Saves = 0
	}
	if s.Bonus < 0 {
		s.Bonus = 0
	}
	if s.Yellow < 0 {
		s.Yellow = 0
	}
	if s.Red < 0 {
		s.Red = 0
	}
	if s.OwnGoals < 0 {
		s.OwnGoals = 0
	}
	if s.PenSaved < 0 {
		s.PenSaved = 0
	}
	if s.PenMissed < 0 {
		s.PenMissed = 0
	}
	if s.DefContrib < 0 {
		s.DefContrib = 0
	}

	return s
}

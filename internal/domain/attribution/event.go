package attribution

import (
	"time"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

// Category identifies the scoring rule an event is attributed to. The order
// of the constants is the order events are emitted in for one diff.
type Category int

const (
	CategoryAppearance Category = iota
	CategoryFullMatch
	CategoryGoal
	CategoryAssist
	CategoryCleanSheet
	CategorySaves
	CategoryPenSave
	CategoryDefContrib
	CategoryBonus
	CategoryConceded
	CategoryPenMiss
	CategoryYellow
	CategoryRed
	CategoryOwnGoal
	CategoryOther
)

var categoryLabels = map[Category]string{
	CategoryAppearance: "PLAYING!",
	CategoryFullMatch:  "60+ mins!",
	CategoryGoal:       "GOAL!",
	CategoryAssist:     "ASSIST!",
	CategoryCleanSheet: "CLEAN SHEET!",
	CategorySaves:      "SAVE BONUS!",
	CategoryPenSave:    "PEN SAVE!",
	CategoryDefContrib: "DEF CON!",
	CategoryBonus:      "BONUS PTS!",
	CategoryConceded:   "goals against",
	CategoryPenMiss:    "PEN MISS!",
	CategoryYellow:     "YELLOW!",
	CategoryRed:        "RED!",
	CategoryOwnGoal:    "OWN GOAL!",
	CategoryOther:      "other scoring rule",
}

func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "event"
}

var categoryIcons = map[Category]string{
	CategoryGoal:       "G",
	CategoryAssist:     "A",
	CategoryCleanSheet: "CS",
	CategorySaves:      "SV",
	CategoryPenSave:    "SV",
	CategoryYellow:     "YC",
	CategoryRed:        "RC",
}

// Icon returns the short ticker glyph for a category, falling back to the
// sign of the delta.
func (c Category) Icon(delta int) string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	if delta >= 0 {
		return "+"
	}
	return "-"
}

// Event is one attributed point change. Immutable once created.
type Event struct {
	Category     Category  `json:"category"`
	Icon         string    `json:"icon"`
	Label        string    `json:"label"`
	Player       string    `json:"player"`
	Team         string    `json:"team"`
	Delta        int       `json:"delta"`
	TotalBefore  int       `json:"total_before"`
	TotalAfter   int       `json:"total_after"`
	IsGoalkeeper bool      `json:"is_goalkeeper"`
	At           time.Time `json:"at"`
}

// NewEvent builds an event for one pick. totalAfter is the player's running
// total once the delta has landed; the before value is back-derived so a
// burst of events for the same poll shares one final total.
func NewEvent(pick squad.Pick, category Category, delta, totalAfter int, at time.Time) Event {
	return Event{
		Category:     category,
		Icon:         category.Icon(delta),
		Label:        squad.SanitizeASCII(category.Label()),
		Player:       squad.SanitizeASCII(pick.DisplayName()),
		Team:         pick.TeamSlug,
		Delta:        delta,
		TotalBefore:  totalAfter - delta,
		TotalAfter:   totalAfter,
		IsGoalkeeper: pick.Position == squad.PositionGoalkeeper,
		At:           at,
	}
}

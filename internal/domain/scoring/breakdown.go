package scoring

import (
	"fmt"
	"strings"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

// FormatBreakdown renders a one-line per-category summary for the squad
// view, e.g. "1 pt - appearance; 4 pts - goals". Any gap between the listed
// parts and the adjusted total shows up as a live-adjustments part.
func (r Ruleset) FormatBreakdown(pos squad.Position, s squad.LiveStats, status BonusStatus, adjusted int) string {
	var parts []string
	explained := 0

	add := func(pts int, label string) {
		if pts == 0 {
			return
		}
		unit := "pts"
		if pts == 1 || pts == -1 {
			unit = "pt"
		}
		parts = append(parts, fmt.Sprintf("%d %s - %s", pts, unit, label))
		explained += pts
	}

	if s.Minutes > 0 {
		add(r.AppearancePoints, "appearance")
	}
	if s.Minutes >= 60 {
		add(r.FullMatchPoints, "60+ mins")
	}
	add(r.GoalPoints(pos)*s.Goals, "goals")
	add(r.AssistPoints*s.Assists, "assists")
	add(r.CleanSheetPoints(pos)*s.CleanSheets, "clean sheet")
	if st := r.SavesThreshold(pos); st > 0 {
		add(s.Saves/st, "saves")
		add(r.PenSavePoints*s.PenSaved, "pen save")
	}
	if dt := r.DefContribThreshold(pos); dt > 0 {
		add(r.DefContribPoints*(s.DefContrib/dt), "defensive contrib")
	}
	if s.Bonus > 0 {
		switch status {
		case BonusProjected:
			add(s.Bonus, "bonus (projected)")
		case BonusIncluded:
			add(s.Bonus, "bonus")
		}
	}
	if r.concedesPoints(pos) {
		add(-(s.GoalsConceded / r.ConcededPerPenalty), "goals conceded")
	}
	add(r.PenMissPoints*s.PenMissed, "pen miss")
	add(r.YellowPoints*s.Yellow, "yellow card")
	add(r.RedPoints*s.Red, "red card")
	add(r.OwnGoalPoints*s.OwnGoals, "own goal")

	if len(parts) == 0 {
		return "0 pts - no returns yet"
	}

	if gap := adjusted - explained; gap != 0 {
		add(gap, "other/live adjustments")
	}

	return strings.Join(parts, "; ")
}

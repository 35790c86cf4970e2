package attribution

import (
	"time"

	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

// Diff compares two same-gameweek snapshots of one player and returns the
// attributed point events, in fixed category order, whose deltas sum to the
// raw total change. The provider breakdown drives attribution when both
// snapshots carry one; otherwise the deltas are recomputed from raw counters
// with the scoring tables. Any residual is emitted as a trailing
// unattributed event so rule drift is visible instead of silently absorbed.
func Diff(rules scoring.Ruleset, pick squad.Pick, prev, curr squad.LiveStats, at time.Time) []Event {
	pointDelta := curr.TotalPoints - prev.TotalPoints
	if pointDelta == 0 {
		return nil
	}

	var events []Event
	explained := 0
	emit := func(category Category, delta int) {
		if delta == 0 {
			return
		}
		events = append(events, NewEvent(pick, category, delta, curr.TotalPoints, at))
		explained += delta
	}

	if prev.HasBreakdown() && curr.HasBreakdown() {
		diffBreakdown(prev, curr, emit)
	} else {
		diffHeuristic(rules, pick.Position, prev, curr, emit)
	}

	if residual := pointDelta - explained; residual != 0 {
		emit(CategoryOther, residual)
	}

	return events
}

// diffBreakdown attributes from the provider's per-category point values.
// The minutes category is split locally into appearance and 60-minute events
// because the provider reports it as one combined value.
func diffBreakdown(prev, curr squad.LiveStats, emit func(Category, int)) {
	pb, cb := prev.Breakdown, curr.Breakdown

	minutesDiff := cb.Minutes - pb.Minutes
	if minutesDiff > 0 {
		left := minutesDiff
		if prev.Minutes < 1 && curr.Minutes >= 1 && left > 0 {
			emit(CategoryAppearance, 1)
			left--
		}
		if prev.Minutes < 60 && curr.Minutes >= 60 && left > 0 {
			emit(CategoryFullMatch, 1)
			left--
		}
		if left != 0 {
			emit(CategoryFullMatch, left)
		}
	} else if minutesDiff < 0 {
		emit(CategoryFullMatch, minutesDiff)
	}

	emit(CategoryGoal, cb.Goals-pb.Goals)
	emit(CategoryAssist, cb.Assists-pb.Assists)
	emit(CategoryCleanSheet, cb.CleanSheets-pb.CleanSheets)
	emit(CategorySaves, cb.Saves-pb.Saves)
	emit(CategoryPenSave, cb.PenSaved-pb.PenSaved)
	emit(CategoryDefContrib, cb.DefContrib-pb.DefContrib)
	emit(CategoryBonus, cb.Bonus-pb.Bonus)
	emit(CategoryConceded, cb.GoalsConceded-pb.GoalsConceded)
	emit(CategoryPenMiss, cb.PenMissed-pb.PenMissed)
	emit(CategoryYellow, cb.Yellow-pb.Yellow)
	emit(CategoryRed, cb.Red-pb.Red)
	emit(CategoryOwnGoal, cb.OwnGoals-pb.OwnGoals)
	emit(CategoryOther, cb.Other-pb.Other)
}

// diffHeuristic recomputes category deltas from raw counter changes using
// the position-weighted tables. Counter decreases are not re-attributed
// here; they surface through the residual event.
func diffHeuristic(rules scoring.Ruleset, pos squad.Position, prev, curr squad.LiveStats, emit func(Category, int)) {
	if prev.Minutes < 1 && curr.Minutes >= 1 {
		emit(CategoryAppearance, 1)
	}
	if prev.Minutes < 60 && curr.Minutes >= 60 {
		emit(CategoryFullMatch, 1)
	}

	if d := curr.Goals - prev.Goals; d > 0 {
		emit(CategoryGoal, rules.GoalPoints(pos)*d)
	}
	if d := curr.Assists - prev.Assists; d > 0 {
		emit(CategoryAssist, rules.AssistPoints*d)
	}
	if d := curr.CleanSheets - prev.CleanSheets; d > 0 {
		emit(CategoryCleanSheet, rules.CleanSheetPoints(pos)*d)
	}

	if st := rules.SavesThreshold(pos); st > 0 {
		if d := curr.Saves/st - prev.Saves/st; d > 0 {
			emit(CategorySaves, d)
		}
	}
	if d := curr.PenSaved - prev.PenSaved; d > 0 {
		emit(CategoryPenSave, rules.PenSavePoints*d)
	}
	if dt := rules.DefContribThreshold(pos); dt > 0 {
		if d := curr.DefContrib/dt - prev.DefContrib/dt; d > 0 {
			emit(CategoryDefContrib, rules.DefContribPoints*d)
		}
	}
	if d := curr.Bonus - prev.Bonus; d > 0 {
		emit(CategoryBonus, d)
	}

	if pos == squad.PositionGoalkeeper || pos == squad.PositionDefender {
		if d := curr.GoalsConceded/rules.ConcededPerPenalty - prev.GoalsConceded/rules.ConcededPerPenalty; d > 0 {
			emit(CategoryConceded, -d)
		}
	}

	if d := curr.PenMissed - prev.PenMissed; d > 0 {
		emit(CategoryPenMiss, rules.PenMissPoints*d)
	}
	if d := curr.Yellow - prev.Yellow; d > 0 {
		emit(CategoryYellow, rules.YellowPoints*d)
	}
	if d := curr.Red - prev.Red; d > 0 {
		emit(CategoryRed, rules.RedPoints*d)
	}
	if d := curr.OwnGoals - prev.OwnGoals; d > 0 {
		emit(CategoryOwnGoal, rules.OwnGoalPoints*d)
	}
}

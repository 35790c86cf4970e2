package scoring

import "github.com/fplbuddy/scoreboard/internal/domain/squad"

// BonusStatus classifies whether the provider's raw total already contains
// provisional bonus points.
type BonusStatus int

const (
	// BonusUnknown means the position was unrecognized; the raw total is
	// used unmodified and attribution must not be attempted.
	BonusUnknown BonusStatus = iota
	// BonusIncluded means the raw total already carries the bonus.
	BonusIncluded
	// BonusProjected means the bonus was absent from the raw total and has
	// been added locally.
	BonusProjected
)

func (s BonusStatus) String() string {
	switch s {
	case BonusIncluded:
		return "included"
	case BonusProjected:
		return "projected"
	default:
		return "unknown"
	}
}

// PointsWithoutBonus recomputes a player's points from raw counters, leaving
// the bonus term out. ok is false only for an unrecognized position.
func (r Ruleset) PointsWithoutBonus(pos squad.Position, s squad.LiveStats) (int, bool) {
	w, ok := r.weights(pos)
	if !ok {
		return 0, false
	}

	pts := 0
	if s.Minutes > 0 {
		pts += r.AppearancePoints
	}
	if s.Minutes >= 60 {
		pts += r.FullMatchPoints
	}

	pts += w.GoalPoints * s.Goals
	pts += r.AssistPoints * s.Assists
	pts += w.CleanSheetPoints * s.CleanSheets

	if w.SavesThreshold > 0 {
		pts += s.Saves / w.SavesThreshold
		pts += r.PenSavePoints * s.PenSaved
	}

	if r.concedesPoints(pos) {
		pts -= s.GoalsConceded / r.ConcededPerPenalty
	}

	pts += r.PenMissPoints * s.PenMissed
	pts += r.YellowPoints * s.Yellow
	pts += r.RedPoints * s.Red
	pts += r.OwnGoalPoints * s.OwnGoals

	if w.DefContribThreshold > 0 {
		pts += r.DefContribPoints * (s.DefContrib / w.DefContribThreshold)
	}

	return pts, true
}

// CanonicalPoints is the locally recomputed ground-truth total including the
// bonus term. ok is false only for an unrecognized position; callers must
// then fall back to the provider's raw total, never guess.
func (r Ruleset) CanonicalPoints(pos squad.Position, s squad.LiveStats) (int, bool) {
	noBonus, ok := r.PointsWithoutBonus(pos, s)
	if !ok {
		return s.TotalPoints, false
	}
	return noBonus + s.Bonus, true
}

// AdjustedPoints resolves the bonus-inclusion ambiguity in the provider's raw
// total: the total sometimes already includes provisional bonus and sometimes
// does not, with no flag. Exact matches against the recomputed score decide
// outright; otherwise whichever interpretation sits numerically closer wins,
// with a tie treated as bonus-not-yet-included. The result is re-derived from
// stats alone on every call.
func (r Ruleset) AdjustedPoints(pos squad.Position, s squad.LiveStats) (int, BonusStatus) {
	if s.Bonus <= 0 {
		return s.TotalPoints, BonusIncluded
	}

	noBonus, ok := r.PointsWithoutBonus(pos, s)
	if !ok {
		// Unknown position: prefer raw points to avoid double counting.
		return s.TotalPoints, BonusUnknown
	}

	withBonus := noBonus + s.Bonus
	if s.TotalPoints == withBonus {
		return s.TotalPoints, BonusIncluded
	}
	if s.TotalPoints == noBonus {
		return s.TotalPoints + s.Bonus, BonusProjected
	}

	distNoBonus := abs(s.TotalPoints - noBonus)
	distWithBonus := abs(s.TotalPoints - withBonus)
	if distNoBonus <= distWithBonus {
		return s.TotalPoints + s.Bonus, BonusProjected
	}
	return s.TotalPoints, BonusIncluded
}

// GameweekPoints sums adjusted points weighted by multiplier over the whole
// squad. Bench and non-playing slots contribute zero through multiplier 0.
func (r Ruleset) GameweekPoints(picks []squad.Pick) int {
	total := 0
	for i := range picks {
		adjusted, _ := r.AdjustedPoints(picks[i].Position, picks[i].Live)
		total += adjusted * picks[i].Multiplier
	}
	return total
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package scoring

import "github.com/fplbuddy/scoreboard/internal/domain/squad"

// PositionWeights holds the per-position scoring parameters. A zero threshold
// disables the corresponding count-based bonus for that position.
type PositionWeights struct {
	GoalPoints         int
	CleanSheetPoints   int
	DefContribThreshold int
	SavesThreshold     int
}

// Ruleset is the provider scoring table. Providers revise weights between
// seasons, so everything lives here as data rather than scattered constants.
type Ruleset struct {
	ByPosition map[squad.Position]PositionWeights

	AppearancePoints  int
	FullMatchPoints   int
	AssistPoints      int
	PenSavePoints     int
	PenMissPoints     int
	YellowPoints      int
	RedPoints         int
	OwnGoalPoints     int
	DefContribPoints  int
	ConcededPerPenalty int
}

// DefaultRuleset returns the current season's table.
func DefaultRuleset() Ruleset {
	return Ruleset{
		ByPosition: map[squad.Position]PositionWeights{
			squad.PositionGoalkeeper: {GoalPoints: 10, CleanSheetPoints: 4, DefContribThreshold: 0, SavesThreshold: 3},
			squad.PositionDefender:   {GoalPoints: 6, CleanSheetPoints: 4, DefContribThreshold: 10},
			squad.PositionMidfielder: {GoalPoints: 5, CleanSheetPoints: 1, DefContribThreshold: 12},
			squad.PositionForward:    {GoalPoints: 4, CleanSheetPoints: 0, DefContribThreshold: 12},
		},
		AppearancePoints:   1,
		FullMatchPoints:    1,
		AssistPoints:       3,
		PenSavePoints:      5,
		PenMissPoints:      -2,
		YellowPoints:       -1,
		RedPoints:          -3,
		OwnGoalPoints:      -2,
		DefContribPoints:   2,
		ConcededPerPenalty: 2,
	}
}

func (r Ruleset) weights(pos squad.Position) (PositionWeights, bool) {
	w, ok := r.ByPosition[pos]
	return w, ok
}

// GoalPoints returns the goal weight for a position, zero when unknown.
func (r Ruleset) GoalPoints(pos squad.Position) int {
	w, _ := r.weights(pos)
	return w.GoalPoints
}

// CleanSheetPoints returns the clean-sheet weight for a position.
func (r Ruleset) CleanSheetPoints(pos squad.Position) int {
	w, _ := r.weights(pos)
	return w.CleanSheetPoints
}

// DefContribThreshold returns the defensive-contribution chunk size, zero
// when the bonus is disabled for the position.
func (r Ruleset) DefContribThreshold(pos squad.Position) int {
	w, _ := r.weights(pos)
	return w.DefContribThreshold
}

// SavesThreshold returns the saves-per-point chunk size, zero for outfielders.
func (r Ruleset) SavesThreshold(pos squad.Position) int {
	w, _ := r.weights(pos)
	return w.SavesThreshold
}

func (r Ruleset) concedesPoints(pos squad.Position) bool {
	return pos == squad.PositionGoalkeeper || pos == squad.PositionDefender
}

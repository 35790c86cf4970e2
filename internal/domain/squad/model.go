package squad

import "fmt"

// Position is the provider's element type code.
type Position int

const (
	PositionGoalkeeper Position = 1
	PositionDefender   Position = 2
	PositionMidfielder Position = 3
	PositionForward    Position = 4
)

var positionNames = map[Position]string{
	PositionGoalkeeper: "Goalkeeper",
	PositionDefender:   "Defender",
	PositionMidfielder: "Midfielder",
	PositionForward:    "Forward",
}

func (p Position) Valid() bool {
	_, ok := positionNames[p]
	return ok
}

func (p Position) String() string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Position(%d)", int(p))
}

// Breakdown holds the provider's per-category point contributions from the
// live "explain" payload. When present it is ground truth for attribution.
type Breakdown struct {
	Minutes       int
	Goals         int
	Assists       int
	CleanSheets   int
	GoalsConceded int
	OwnGoals      int
	PenSaved      int
	PenMissed     int
	Yellow        int
	Red           int
	Saves         int
	Bonus         int
	DefContrib    int
	Other         int
}

// AddByIdentifier folds one provider stat row into the breakdown. Unknown
// identifiers land in Other so nothing is silently dropped.
func (b *Breakdown) AddByIdentifier(identifier string, points int) {
	switch identifier {
	case "minutes":
		b.Minutes += points
	case "goals_scored":
		b.Goals += points
	case "assists":
		b.Assists += points
	case "clean_sheets":
		b.CleanSheets += points
	case "goals_conceded":
		b.GoalsConceded += points
	case "own_goals":
		b.OwnGoals += points
	case "penalties_saved":
		b.PenSaved += points
	case "penalties_missed":
		b.PenMissed += points
	case "yellow_cards":
		b.Yellow += points
	case "red_cards":
		b.Red += points
	case "saves":
		b.Saves += points
	case "bonus":
		b.Bonus += points
	case "defensive_contribution", "defensive_contributions":
		b.DefContrib += points
	default:
		b.Other += points
	}
}

// LiveStats is one player's raw in-gameweek counters, replaced wholesale on
// each poll. Breakdown is nil when the provider sent no explain payload.
type LiveStats struct {
	TotalPoints   int
	Minutes       int
	Goals         int
	Assists       int
	CleanSheets   int
	GoalsConceded int
	OwnGoals      int
	PenSaved      int
	PenMissed     int
	Yellow        int
	Red           int
	Saves         int
	Bonus         int
	DefContrib    int

	Breakdown *Breakdown
}

func (s LiveStats) HasBreakdown() bool {
	return s.Breakdown != nil
}

// Pick is one squad member for one gameweek. Slots 1-11 are the starting XI,
// 12-15 the bench. Multiplier 0 means not playing, 2 captain, 3 triple captain.
type Pick struct {
	ElementID     int
	SquadSlot     int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
	Position      Position
	PlayerName    string
	TeamID        int
	TeamSlug      string
	TeamName      string

	Live LiveStats
}

func (p Pick) DisplayName() string {
	if p.PlayerName != "" {
		return p.PlayerName
	}
	return fmt.Sprintf("element %d", p.ElementID)
}

// Snapshot is the full squad view assembled from one poll.
type Snapshot struct {
	Gameweek      int
	OverallRank   int
	OverallPoints int
	GWPoints      int
	ActiveChip    string
	Picks         []Pick
}

// FindBySlot returns the pick occupying a squad slot. When slot numbers are
// missing from the provider payload the one-based index stands in, matching
// how the squad list is rendered.
func FindBySlot(picks []Pick, slot int) *Pick {
	for i := range picks {
		if picks[i].SquadSlot == slot {
			return &picks[i]
		}
	}
	if slot >= 1 && slot <= len(picks) {
		return &picks[slot-1]
	}
	return nil
}

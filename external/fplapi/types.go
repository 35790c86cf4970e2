package fplapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
)

// EntrySummary is the filtered entry document: current gameweek plus the
// overall rank and points headline numbers.
type EntrySummary struct {
	CurrentEvent         int `json:"current_event"`
	SummaryOverallRank   int `json:"summary_overall_rank"`
	SummaryOverallPoints int `json:"summary_overall_points"`
}

// HistoryEntry is one per-gameweek row from the entry history document.
type HistoryEntry struct {
	Event       int `json:"event"`
	OverallRank int `json:"overall_rank"`
}

type entryHistoryResponse struct {
	Current []HistoryEntry `json:"current"`
}

type pickDTO struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
}

type picksResponse struct {
	ActiveChip *string   `json:"active_chip"`
	Picks      []pickDTO `json:"picks"`
}

// PicksResult carries the squad skeleton for one gameweek. Player metadata
// is joined in separately from bootstrap.
type PicksResult struct {
	ActiveChip string
	Picks      []squad.Pick
}

type liveStatsDTO struct {
	TotalPoints            int `json:"total_points"`
	Minutes                int `json:"minutes"`
	GoalsScored            int `json:"goals_scored"`
	Assists                int `json:"assists"`
	CleanSheets            int `json:"clean_sheets"`
	GoalsConceded          int `json:"goals_conceded"`
	OwnGoals               int `json:"own_goals"`
	PenaltiesSaved         int `json:"penalties_saved"`
	PenaltiesMissed        int `json:"penalties_missed"`
	YellowCards            int `json:"yellow_cards"`
	RedCards               int `json:"red_cards"`
	Saves                  int `json:"saves"`
	Bonus                  int `json:"bonus"`
	DefensiveContributions int `json:"defensive_contributions"`
	DefensiveContribution  int `json:"defensive_contribution"`
}

type liveElementDTO struct {
	ID      int               `json:"id"`
	Stats   liveStatsDTO      `json:"stats"`
	Explain []json.RawMessage `json:"explain"`
}

type liveResponse struct {
	Elements []liveElementDTO `json:"elements"`
}

type explainStat struct {
	Identifier string `json:"identifier"`
	Points     int    `json:"points"`
	Value      int    `json:"value"`
}

type explainFixture struct {
	Stats []explainStat `json:"stats"`
}

// parseExplain normalizes both explain payload shapes into one breakdown:
// shape A is an array of fixture objects each holding a stats array, shape B
// is an array of stat arrays. Returns nil when no stat rows were found.
func parseExplain(items []json.RawMessage) *squad.Breakdown {
	if len(items) == 0 {
		return nil
	}

	var breakdown squad.Breakdown
	found := false
	for _, raw := range items {
		trimmed := strings.TrimLeft(string(raw), " \t\r\n")
		switch {
		case strings.HasPrefix(trimmed, "{"):
			var fixture explainFixture
			if err := sonic.Unmarshal(raw, &fixture); err != nil {
				continue
			}
			for _, stat := range fixture.Stats {
				breakdown.AddByIdentifier(stat.Identifier, stat.Points)
				found = true
			}
		case strings.HasPrefix(trimmed, "["):
			var stats []explainStat
			if err := sonic.Unmarshal(raw, &stats); err != nil {
				continue
			}
			for _, stat := range stats {
				breakdown.AddByIdentifier(stat.Identifier, stat.Points)
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	return &breakdown
}

func (d liveElementDTO) toLiveStats() squad.LiveStats {
	defContrib := d.Stats.DefensiveContributions
	if defContrib == 0 {
		defContrib = d.Stats.DefensiveContribution
	}
	return squad.LiveStats{
		TotalPoints:   d.Stats.TotalPoints,
		Minutes:       d.Stats.Minutes,
		Goals:         d.Stats.GoalsScored,
		Assists:       d.Stats.Assists,
		CleanSheets:   d.Stats.CleanSheets,
		GoalsConceded: d.Stats.GoalsConceded,
		OwnGoals:      d.Stats.OwnGoals,
		PenSaved:      d.Stats.PenaltiesSaved,
		PenMissed:     d.Stats.PenaltiesMissed,
		Yellow:        d.Stats.YellowCards,
		Red:           d.Stats.RedCards,
		Saves:         d.Stats.Saves,
		Bonus:         d.Stats.Bonus,
		DefContrib:    defContrib,
		Breakdown:     parseExplain(d.Explain),
	}
}

// GameweekEvent is one filtered bootstrap event row.
type GameweekEvent struct {
	ID                int    `json:"id"`
	IsCurrent         bool   `json:"is_current"`
	IsNext            bool   `json:"is_next"`
	Finished          bool   `json:"finished"`
	DeadlineTime      string `json:"deadline_time"`
	DeadlineTimeEpoch int64  `json:"deadline_time_epoch"`
}

type bootstrapElementDTO struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	Team        int    `json:"team"`
}

type bootstrapTeamDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type bootstrapResponse struct {
	Events   []GameweekEvent       `json:"events"`
	Elements []bootstrapElementDTO `json:"elements"`
	Teams    []bootstrapTeamDTO    `json:"teams"`
}

// PlayerMeta is the display metadata for one element.
type PlayerMeta struct {
	Name     string
	Position squad.Position
	TeamID   int
}

// TeamMeta is the display metadata for one club.
type TeamMeta struct {
	Name      string
	ShortName string
	Slug      string
}

// Bootstrap is the normalized bootstrap-static document.
type Bootstrap struct {
	Events  []GameweekEvent
	Players map[int]PlayerMeta
	Teams   map[int]TeamMeta
}

// GameweekState is the lifecycle view derived from bootstrap events.
type GameweekState struct {
	IsLive      bool
	NextGW      int
	HasNextGW   bool
	Deadline    time.Time
	HasDeadline bool
}

// State derives the gameweek lifecycle from the event flags: the gameweek
// counts as live while a current event exists and is not finished.
func (b Bootstrap) State() (GameweekState, bool) {
	var (
		out             GameweekState
		foundCurrent    bool
		foundNext       bool
		currentFinished bool
	)

	for _, ev := range b.Events {
		if ev.IsCurrent {
			foundCurrent = true
			currentFinished = ev.Finished
		}
		if ev.IsNext {
			foundNext = true
			out.NextGW = ev.ID
			if deadline, ok := ParseDeadline(ev.DeadlineTime, ev.DeadlineTimeEpoch); ok {
				out.Deadline = deadline
				out.HasDeadline = true
			}
		}
	}

	if !foundCurrent && !foundNext {
		return GameweekState{}, false
	}

	out.IsLive = foundCurrent && !currentFinished
	out.HasNextGW = foundNext
	return out, true
}

var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseDeadline accepts the provider's ISO-8601 deadline with optional zone
// or fractional seconds, falling back to the numeric epoch field.
func ParseDeadline(iso string, epoch int64) (time.Time, bool) {
	iso = strings.TrimSpace(iso)
	if iso != "" {
		for _, layout := range deadlineLayouts {
			if t, err := time.Parse(layout, iso); err == nil {
				return t.UTC(), true
			}
		}
	}
	if epoch > 0 {
		return time.Unix(epoch, 0).UTC(), true
	}
	return time.Time{}, false
}

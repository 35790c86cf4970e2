package render

import (
	"github.com/fplbuddy/scoreboard/internal/mode"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
)

// LogRenderer is the headless renderer: it logs mode and headline number
// transitions instead of driving a panel. Useful on hosts without the
// display attached and in development.
type LogRenderer struct {
	logger *logging.Logger

	lastMode     mode.Mode
	lastGWPoints int
	seen         bool
}

func NewLogRenderer(logger *logging.Logger) *LogRenderer {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(frame Frame) error {
	if !r.seen || frame.Mode != r.lastMode {
		r.logger.Info("display mode",
			"mode", frame.Mode.String(),
			"gw", frame.State.CurrentGW,
			"status", frame.State.StatusText,
		)
	}
	if !r.seen || frame.State.GWPoints != r.lastGWPoints {
		r.logger.Info("gameweek points",
			"points", frame.State.GWPoints,
			"total", frame.State.TotalPoints,
			"rank", frame.State.OverallRank,
			"rank_diff", frame.State.RankDiff,
		)
	}
	if frame.Popup != nil && frame.Mode == mode.ModeEventPopup {
		r.logger.Info("event popup",
			"label", frame.Popup.Label,
			"player", frame.Popup.Player,
			"delta", frame.Popup.Delta,
			"total", frame.Popup.TotalAfter,
		)
	}

	r.seen = true
	r.lastMode = frame.Mode
	r.lastGWPoints = frame.State.GWPoints
	return nil
}

package demo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fplbuddy/scoreboard/internal/domain/attribution"
	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/domain/squad"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/uistate"
	"github.com/fplbuddy/scoreboard/internal/usecase"
)

const statusColorDemo uint32 = 0xB10DC9

// Seeder produces one real fetch-and-score pass to use as the demo baseline.
type Seeder interface {
	Fetch(ctx context.Context) (usecase.PollSnapshot, error)
}

// Poller is the live loop the demo pauses while it owns the display.
type Poller interface {
	Suspend()
	Resume()
}

// Controller owns demo mode: a frozen baseline squad plus a mutable working
// copy that console commands edit. While enabled it fully replaces the
// poller as the engine input; scoring, attribution and notification run
// through the same paths as live data.
type Controller struct {
	rules  scoring.Ruleset
	store  *uistate.Store
	events *uistate.EventLog
	seeder Seeder
	poller Poller
	logger *logging.Logger
	now    func() time.Time

	mu      sync.Mutex
	seeded  bool
	enabled bool

	baseline usecase.PollSnapshot
	working  []squad.Pick

	seededGWPoints int
	seededTotal    int

	gwLive      bool
	currentGW   int
	nextGW      int
	hasNextGW   bool
	deadline    time.Time
	hasDeadline bool
}

type ControllerConfig struct {
	Rules  scoring.Ruleset
	Store  *uistate.Store
	Events *uistate.EventLog
	Seeder Seeder
	Poller Poller
	Logger *logging.Logger
}

func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Store == nil || cfg.Events == nil {
		return nil, fmt.Errorf("state store and event log are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Controller{
		rules:  cfg.Rules,
		store:  cfg.Store,
		events: cfg.Events,
		seeder: cfg.Seeder,
		poller: cfg.Poller,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Seed captures the baseline from one real fetch. Re-seeding replaces any
// previous baseline and drops accumulated demo events.
func (c *Controller) Seed(ctx context.Context) error {
	if c.seeder == nil {
		return fmt.Errorf("no seed source configured")
	}
	snap, err := c.seeder.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("seed fetch: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.baseline = snap
	c.working = clonePicks(snap.Squad.Picks)
	c.seededGWPoints = snap.Squad.GWPoints
	c.seededTotal = snap.Squad.OverallPoints
	c.seeded = true

	c.gwLive = snap.GWState.IsLive
	c.currentGW = snap.Squad.Gameweek
	c.nextGW = snap.GWState.NextGW
	c.hasNextGW = snap.GWState.HasNextGW
	c.deadline = snap.GWState.Deadline
	c.hasDeadline = snap.GWState.HasDeadline

	c.events.Clear()
	if c.enabled {
		c.publishLocked()
	}
	return nil
}

// On enables demo mode and pauses the live poller.
func (c *Controller) On() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return fmt.Errorf("demo is not seeded, run 'demo seed' first")
	}
	if c.enabled {
		return nil
	}
	c.enabled = true
	if c.poller != nil {
		c.poller.Suspend()
	}
	c.publishLocked()
	return nil
}

// Off hands the display back to the live poller.
func (c *Controller) Off() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	c.enabled = false
	if c.poller != nil {
		c.poller.Resume()
	}
}

// Reset rewinds the working squad to the seeded baseline and drops demo
// events. The baseline itself is kept.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return fmt.Errorf("demo is not seeded")
	}
	c.working = clonePicks(c.baseline.Squad.Picks)
	c.gwLive = c.baseline.GWState.IsLive
	c.currentGW = c.baseline.Squad.Gameweek
	c.nextGW = c.baseline.GWState.NextGW
	c.hasNextGW = c.baseline.GWState.HasNextGW
	c.deadline = c.baseline.GWState.Deadline
	c.hasDeadline = c.baseline.GWState.HasDeadline

	c.events.Clear()
	if c.enabled {
		c.publishLocked()
	}
	return nil
}

func (c *Controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// StatusLine summarizes demo state for the console.
func (c *Controller) StatusLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return "demo: not seeded"
	}
	state := "off"
	if c.enabled {
		state = "on"
	}
	gwPoints := c.rules.GameweekPoints(c.working)
	total := c.seededTotal + (gwPoints - c.seededGWPoints)
	return fmt.Sprintf("demo: %s | gw %d live=%t | gw points %d | total %d | picks %d",
		state, c.currentGW, c.gwLive, gwPoints, total, len(c.working))
}

// SquadLines renders the working squad for the console, one pick per line.
func (c *Controller) SquadLines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded {
		return []string{"demo: not seeded"}
	}
	lines := make([]string, 0, len(c.working))
	for i := range c.working {
		p := c.working[i]
		adjusted, _ := c.rules.AdjustedPoints(p.Position, p.Live)
		marker := ""
		if p.IsCaptain {
			marker = " (C)"
		} else if p.IsViceCaptain {
			marker = " (V)"
		}
		lines = append(lines, fmt.Sprintf("%2d. %s%s [%s] x%d = %d pts",
			p.SquadSlot, p.DisplayName(), marker, p.TeamName, p.Multiplier, adjusted))
	}
	return lines
}

// ApplyEvent mutates one working pick's raw counters and feeds the resulting
// point delta through the attribution path exactly as a live poll would.
func (c *Controller) ApplyEvent(slot int, kind EventKind, count int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded || !c.enabled {
		return fmt.Errorf("demo must be seeded and on")
	}
	pick := squad.FindBySlot(c.working, slot)
	if pick == nil {
		return fmt.Errorf("no pick in slot %d", slot)
	}

	prev := pick.Live
	next := applyEventToStats(prev, kind, count)

	// Demo stats carry locally recomputed totals so the diff engine sees
	// consistent numbers; raw provider totals are meaningless once edited.
	prev.Breakdown = nil
	next.Breakdown = nil
	if canonical, ok := c.rules.CanonicalPoints(pick.Position, prev); ok {
		prev.TotalPoints = canonical
	}
	if canonical, ok := c.rules.CanonicalPoints(pick.Position, next); ok {
		next.TotalPoints = canonical
	}

	pick.Live = next

	at := c.now()
	for _, ev := range attribution.Diff(c.rules, *pick, prev, next, at) {
		c.events.Push(ev)
	}
	c.publishLocked()
	return nil
}

// SetLive overrides the gameweek live flag.
func (c *Controller) SetLive(live bool) error {
	return c.override(func() { c.gwLive = live })
}

// SetCurrentGW overrides the current gameweek number.
func (c *Controller) SetCurrentGW(gw int) error {
	if gw < 1 {
		return fmt.Errorf("gameweek must be at least 1")
	}
	return c.override(func() { c.currentGW = gw })
}

// SetNextGW overrides the upcoming gameweek number.
func (c *Controller) SetNextGW(gw int) error {
	if gw < 1 {
		return fmt.Errorf("gameweek must be at least 1")
	}
	return c.override(func() {
		c.nextGW = gw
		c.hasNextGW = true
	})
}

// DeadlineIn places the next deadline the given number of seconds from now,
// which is how the pre-deadline and final-hour screens are exercised.
func (c *Controller) DeadlineIn(seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("seconds must not be negative")
	}
	return c.override(func() {
		c.deadline = c.now().Add(time.Duration(seconds) * time.Second)
		c.hasDeadline = true
	})
}

// DeadlineClear removes the deadline, degrading the idle screens.
func (c *Controller) DeadlineClear() error {
	return c.override(func() {
		c.deadline = time.Time{}
		c.hasDeadline = false
	})
}

func (c *Controller) override(fn func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seeded || !c.enabled {
		return fmt.Errorf("demo must be seeded and on")
	}
	fn()
	c.publishLocked()
	return nil
}

// publishLocked pushes the demo view into shared state. Overall total moves
// with the gameweek delta so the headline stays plausible.
func (c *Controller) publishLocked() {
	gwPoints := c.rules.GameweekPoints(c.working)
	total := c.seededTotal + (gwPoints - c.seededGWPoints)

	c.store.SetGameweekContext(c.gwLive, c.currentGW, c.nextGW, c.hasNextGW, c.deadline, c.hasDeadline)
	c.store.SetGWStateText(usecase.GWStateText(c.gwLive, c.nextGW, c.hasNextGW))
	c.store.SetGWPoints(gwPoints)
	c.store.SetTotalPoints(total, total > 0)
	c.store.SetRankData(c.baseline.Squad.OverallRank, c.baseline.RankDiff, c.baseline.HasRank)
	c.store.SetFreshness(false, c.now())
	c.store.SetStatus(fmt.Sprintf("DEMO GW%d", c.currentGW), statusColorDemo)

	c.events.SetSquad(usecase.SquadRows(c.rules, c.working))
}

func clonePicks(picks []squad.Pick) []squad.Pick {
	out := make([]squad.Pick, len(picks))
	copy(out, picks)
	return out
}

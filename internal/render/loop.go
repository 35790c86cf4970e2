package render

import (
	"context"
	"sync"
	"time"

	"github.com/fplbuddy/scoreboard/internal/domain/attribution"
	"github.com/fplbuddy/scoreboard/internal/mode"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/uistate"
)

// Frame is everything a renderer needs for one draw.
type Frame struct {
	Mode    mode.Mode
	State   uistate.SharedState
	Runtime uistate.Runtime
	Popup   *attribution.Event
	At      time.Time
}

// Renderer consumes frames. The display hardware lives behind this
// interface; the shipped implementation logs transitions.
type Renderer interface {
	Render(frame Frame) error
}

// Loop drives the renderer at a fixed tick. It owns the mode machine: all
// machine transitions happen either on the tick goroutine or under the same
// lock, so a gesture can never race a tick.
type Loop struct {
	store    *uistate.Store
	events   *uistate.EventLog
	renderer Renderer
	logger   *logging.Logger
	tick     time.Duration
	now      func() time.Time

	mu      sync.Mutex
	machine *mode.Machine
	popup   *attribution.Event

	lastMode         mode.Mode
	lastStateVersion uint64
	lastEventVersion uint64
	lastSquadVersion uint64
	rendered         bool
}

type LoopConfig struct {
	Store    *uistate.Store
	Events   *uistate.EventLog
	Renderer Renderer
	Logger   *logging.Logger
	Tick     time.Duration
}

func NewLoop(cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	return &Loop{
		store:    cfg.Store,
		events:   cfg.Events,
		renderer: cfg.Renderer,
		logger:   logger,
		tick:     tick,
		now:      time.Now,
		machine:  mode.NewMachine(),
	}
}

// Run ticks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Step(ctx)
		}
	}
}

// Step runs one renderer cycle: snapshot, mode evaluation, popup promotion,
// and a draw when anything changed. A failed snapshot skips the cycle.
func (l *Loop) Step(ctx context.Context) {
	state, ok := l.store.Snapshot()
	if !ok {
		return
	}

	l.mu.Lock()
	now := l.now()
	current := l.machine.Tick(state, now)

	if current == mode.ModeLive {
		l.popup = nil
		if ev, ok := l.events.PopPopup(); ok && l.machine.ShowPopup(now) {
			l.popup = &ev
			current = l.machine.Current()
		}
	}
	popup := l.popup
	l.mu.Unlock()

	runtime, ok := l.events.Snapshot()
	if !ok {
		return
	}

	changed := !l.rendered ||
		current != l.lastMode ||
		state.Version != l.lastStateVersion ||
		runtime.EventVersion != l.lastEventVersion ||
		runtime.SquadVersion != l.lastSquadVersion
	if !changed {
		return
	}

	frame := Frame{Mode: current, State: state, Runtime: runtime, Popup: popup, At: now}
	if err := l.renderer.Render(frame); err != nil {
		l.logger.WarnContext(ctx, "render failed", "mode", current.String(), "error", err)
		return
	}

	l.rendered = true
	l.lastMode = current
	l.lastStateVersion = state.Version
	l.lastEventVersion = runtime.EventVersion
	l.lastSquadVersion = runtime.SquadVersion
}

// Back forwards the back gesture to the mode machine.
func (l *Loop) Back() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.popup = nil
	return l.machine.Back()
}

// HoldSquad forwards the long-press gesture.
func (l *Loop) HoldSquad() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.machine.EnterSquad()
}

// TapTicker forwards the ticker tap gesture.
func (l *Loop) TapTicker() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.machine.EnterEventsList()
}

// Mode reports the machine's current mode.
func (l *Loop) Mode() mode.Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.machine.Current()
}

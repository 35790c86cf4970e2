package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fplbuddy/scoreboard/external/fplapi"
	"github.com/fplbuddy/scoreboard/internal/domain/attribution"
	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/domain/squad"
	"github.com/fplbuddy/scoreboard/internal/platform/cache"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/uistate"
)

// Provider is the read side of the fantasy API consumed by the poll cycle.
type Provider interface {
	EntrySummary(ctx context.Context) (fplapi.EntrySummary, error)
	History(ctx context.Context) ([]fplapi.HistoryEntry, error)
	Picks(ctx context.Context, gameweek int) (fplapi.PicksResult, error)
	Live(ctx context.Context, gameweek int) (map[int]squad.LiveStats, error)
	Bootstrap(ctx context.Context) (fplapi.Bootstrap, error)
}

// Status line colors, packed RGB.
const (
	statusColorLive  uint32 = 0x2ECC40
	statusColorIdle  uint32 = 0x7F8C8D
	statusColorStale uint32 = 0xFF851B
)

type PollServiceConfig struct {
	Provider Provider
	Store    *uistate.Store
	Events   *uistate.EventLog
	Cache    *cache.Store
	Logger   *logging.Logger
	Rules    scoring.Ruleset

	PollInterval       time.Duration
	StalenessThreshold time.Duration
}

// PollSnapshot is one complete, joined view of the entry as of a single poll:
// the squad with live stats attached plus the gameweek lifecycle and rank
// movement.
type PollSnapshot struct {
	Squad      squad.Snapshot
	GWState    fplapi.GameweekState
	HasGWState bool
	RankDiff   int
	HasRank    bool
	FetchedAt  time.Time
}

// PollService drives the fetch-score-publish cycle. One cycle fetches the
// provider documents, recomputes points, diffs against the previous
// observation for attribution events, and publishes everything to the shared
// state the renderer reads.
type PollService struct {
	provider Provider
	store    *uistate.Store
	events   *uistate.EventLog
	cache    *cache.Store
	logger   *logging.Logger
	rules    scoring.Ruleset
	tracker  *attribution.Tracker

	pollInterval time.Duration
	staleness    time.Duration
	now          func() time.Time

	running   atomic.Bool
	suspended atomic.Bool

	mu           sync.Mutex
	lastSuccess  time.Time
	firstFailure time.Time
}

func NewPollService(cfg PollServiceConfig) (*PollService, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("%w: provider is required", ErrDependencyUnavailable)
	}
	if cfg.Store == nil || cfg.Events == nil {
		return nil, fmt.Errorf("%w: state store and event log are required", ErrDependencyUnavailable)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = 5 * time.Minute
	}

	return &PollService{
		provider:     cfg.Provider,
		store:        cfg.Store,
		events:       cfg.Events,
		cache:        cfg.Cache,
		logger:       logger,
		rules:        cfg.Rules,
		tracker:      attribution.NewTracker(cfg.Rules),
		pollInterval: cfg.PollInterval,
		staleness:    cfg.StalenessThreshold,
		now:          time.Now,
	}, nil
}

// Suspend stops publishing to shared state while demo mode owns the display.
// Fetching continues so the tracker baseline stays warm.
func (s *PollService) Suspend() { s.suspended.Store(true) }

// Resume re-enables publishing after demo mode exits.
func (s *PollService) Resume() { s.suspended.Store(false) }

// RunLoop polls until the context is cancelled. The first poll happens
// immediately so the display never waits a full interval on startup.
func (s *PollService) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	if err := s.Poll(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Poll(ctx); err != nil {
				s.logger.WarnContext(ctx, "poll cycle failed", "error", err)
			}
		}
	}
}

// Poll runs one full cycle. Overlapping cycles are skipped rather than
// queued; a slow provider must never stack requests.
func (s *PollService) Poll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.Poll")
	defer span.End()

	if !s.running.CompareAndSwap(false, true) {
		s.logger.DebugContext(ctx, "poll already in flight, skipping cycle")
		return nil
	}
	defer s.running.Store(false)

	snap, err := s.Fetch(ctx)
	if err != nil {
		s.markFailure()
		return err
	}

	s.mu.Lock()
	s.lastSuccess = snap.FetchedAt
	s.mu.Unlock()

	if s.suspended.Load() {
		// Demo mode owns the display, but the diff baseline keeps moving so
		// the first live publish after demo does not replay a catch-up burst.
		s.observeBaseline(snap)
		return nil
	}

	s.publish(snap)
	return nil
}

// observeBaseline advances the last-observed stats without touching shared
// state; events produced by the advance are discarded.
func (s *PollService) observeBaseline(snap PollSnapshot) {
	for i := range snap.Squad.Picks {
		s.tracker.Observe(snap.Squad.Gameweek, snap.Squad.Picks[i], snap.FetchedAt)
	}
}

// Fetch assembles one PollSnapshot without touching shared state. Demo mode
// seeds from the same path the poll cycle uses.
func (s *PollService) Fetch(ctx context.Context) (PollSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollService.Fetch")
	defer span.End()

	var (
		entry   fplapi.EntrySummary
		boot    fplapi.Bootstrap
		history []fplapi.HistoryEntry

		entryErr, bootErr, historyErr error
	)

	// Phase one: the three entry-independent documents in parallel.
	if err := s.runParallel(
		func() { entry, entryErr = s.provider.EntrySummary(ctx) },
		func() { boot, bootErr = s.provider.Bootstrap(ctx) },
		func() { history, historyErr = s.cachedHistory(ctx) },
	); err != nil {
		return PollSnapshot{}, err
	}
	if entryErr != nil {
		return PollSnapshot{}, fmt.Errorf("fetch entry summary: %w", entryErr)
	}
	if bootErr != nil {
		return PollSnapshot{}, fmt.Errorf("fetch bootstrap: %w", bootErr)
	}
	if historyErr != nil {
		// Rank movement is decoration; a missing history document must not
		// fail the cycle.
		s.logger.WarnContext(ctx, "fetch history failed, rank delta unavailable", "error", historyErr)
		history = nil
	}

	gw := entry.CurrentEvent
	if gw <= 0 {
		return PollSnapshot{}, ErrNoCurrentGameweek
	}

	var (
		picks    fplapi.PicksResult
		live     map[int]squad.LiveStats
		picksErr error
		liveErr  error
	)

	// Phase two: gameweek-scoped documents.
	if err := s.runParallel(
		func() { picks, picksErr = s.cachedPicks(ctx, gw) },
		func() { live, liveErr = s.provider.Live(ctx, gw) },
	); err != nil {
		return PollSnapshot{}, err
	}
	if picksErr != nil {
		return PollSnapshot{}, fmt.Errorf("fetch picks for gameweek %d: %w", gw, picksErr)
	}
	if liveErr != nil {
		return PollSnapshot{}, fmt.Errorf("fetch live stats for gameweek %d: %w", gw, liveErr)
	}

	joined := joinPicks(picks.Picks, boot, live)
	snap := PollSnapshot{
		Squad: squad.Snapshot{
			Gameweek:      gw,
			OverallRank:   entry.SummaryOverallRank,
			OverallPoints: entry.SummaryOverallPoints,
			GWPoints:      s.rules.GameweekPoints(joined),
			ActiveChip:    picks.ActiveChip,
			Picks:         joined,
		},
		FetchedAt: s.now(),
	}
	snap.GWState, snap.HasGWState = boot.State()
	snap.RankDiff, snap.HasRank = rankDelta(entry.SummaryOverallRank, gw, history)
	return snap, nil
}

// runParallel executes the fns on a sized worker pool and waits for all.
func (s *PollService) runParallel(fns ...func()) error {
	pool, err := ants.NewPool(len(fns))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, fn := range fns {
		fn := fn
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			fn()
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit fetch to worker pool: %w", err)
		}
	}
	workers.Wait()
	return nil
}

func (s *PollService) cachedPicks(ctx context.Context, gw int) (fplapi.PicksResult, error) {
	if s.cache == nil {
		return s.provider.Picks(ctx, gw)
	}
	key := fmt.Sprintf("picks:%d", gw)
	val, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.provider.Picks(ctx, gw)
	})
	if err != nil {
		return fplapi.PicksResult{}, err
	}
	picks, ok := val.(fplapi.PicksResult)
	if !ok {
		return fplapi.PicksResult{}, fmt.Errorf("%w: unexpected cached picks type", ErrDependencyUnavailable)
	}
	return picks, nil
}

func (s *PollService) cachedHistory(ctx context.Context) ([]fplapi.HistoryEntry, error) {
	if s.cache == nil {
		return s.provider.History(ctx)
	}
	val, err := s.cache.GetOrLoad(ctx, "history", func(ctx context.Context) (any, error) {
		return s.provider.History(ctx)
	})
	if err != nil {
		return nil, err
	}
	history, ok := val.([]fplapi.HistoryEntry)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected cached history type", ErrDependencyUnavailable)
	}
	return history, nil
}

// joinPicks attaches player metadata and live stats to the raw pick rows.
// Missing metadata leaves the element-id fallback name in place.
func joinPicks(picks []squad.Pick, boot fplapi.Bootstrap, live map[int]squad.LiveStats) []squad.Pick {
	out := make([]squad.Pick, len(picks))
	for i, p := range picks {
		if meta, ok := boot.Players[p.ElementID]; ok {
			p.PlayerName = squad.SanitizeASCII(meta.Name)
			p.Position = meta.Position
			p.TeamID = meta.TeamID
			if team, ok := boot.Teams[meta.TeamID]; ok {
				p.TeamSlug = team.Slug
				p.TeamName = team.ShortName
			}
		}
		if stats, ok := live[p.ElementID]; ok {
			p.Live = stats
		}
		out[i] = p
	}
	return out
}

// rankDelta computes overall rank movement against the previous gameweek.
// The row for gameweek-1 is preferred; when absent the latest earlier
// gameweek with a recorded rank stands in. Positive means the rank improved.
func rankDelta(currentRank, gameweek int, history []fplapi.HistoryEntry) (int, bool) {
	if currentRank <= 0 || gameweek <= 1 {
		return 0, currentRank > 0
	}

	previous := 0
	bestEvent := 0
	for _, row := range history {
		if row.OverallRank <= 0 || row.Event >= gameweek {
			continue
		}
		if row.Event == gameweek-1 {
			previous = row.OverallRank
			bestEvent = row.Event
			break
		}
		if row.Event > bestEvent {
			bestEvent = row.Event
			previous = row.OverallRank
		}
	}

	if previous <= 0 {
		return 0, true
	}
	return previous - currentRank, true
}

// markFailure flips the display to stale once failures have persisted past
// the threshold, measured from the last good poll, or from the first failure
// when no poll has ever succeeded. Failures inside that window stay invisible.
func (s *PollService) markFailure() {
	s.mu.Lock()
	if s.firstFailure.IsZero() {
		s.firstFailure = s.now()
	}
	last := s.lastSuccess
	ref := last
	if ref.IsZero() {
		ref = s.firstFailure
	}
	s.mu.Unlock()

	if s.suspended.Load() {
		return
	}
	if s.now().Sub(ref) > s.staleness {
		s.store.SetFreshness(true, last)
		s.store.SetStatus("DATA STALE", statusColorStale)
	}
}

// publish pushes one snapshot into shared state: headline numbers, gameweek
// context, squad rows, and any attribution events produced by the diff.
func (s *PollService) publish(snap PollSnapshot) {
	st := snap.GWState

	s.store.SetGameweekContext(st.IsLive, snap.Squad.Gameweek, st.NextGW, st.HasNextGW, st.Deadline, st.HasDeadline)
	s.store.SetGWStateText(GWStateText(st.IsLive, st.NextGW, st.HasNextGW))
	s.store.SetGWPoints(snap.Squad.GWPoints)
	s.store.SetTotalPoints(snap.Squad.OverallPoints, snap.Squad.OverallPoints > 0)
	s.store.SetRankData(snap.Squad.OverallRank, snap.RankDiff, snap.HasRank)
	s.store.SetFreshness(false, snap.FetchedAt)

	if st.IsLive {
		s.store.SetStatus(fmt.Sprintf("GW%d LIVE", snap.Squad.Gameweek), statusColorLive)
	} else {
		s.store.SetStatus(fmt.Sprintf("GW%d", snap.Squad.Gameweek), statusColorIdle)
	}

	s.events.SetSquad(SquadRows(s.rules, snap.Squad.Picks))

	for i := range snap.Squad.Picks {
		for _, ev := range s.tracker.Observe(snap.Squad.Gameweek, snap.Squad.Picks[i], snap.FetchedAt) {
			s.events.Push(ev)
		}
	}
}

// GWStateText renders the one-line gameweek lifecycle summary.
func GWStateText(isLive bool, nextGW int, hasNextGW bool) string {
	live := "no"
	if isLive {
		live = "yes"
	}
	if hasNextGW {
		return fmt.Sprintf("GW live: %s | next: %d", live, nextGW)
	}
	return fmt.Sprintf("GW live: %s", live)
}

// SquadRows renders the starting XI plus bench into display rows, capped at
// the squad view capacity.
func SquadRows(rules scoring.Ruleset, picks []squad.Pick) []uistate.SquadRow {
	rows := make([]uistate.SquadRow, 0, len(picks))
	for i := range picks {
		p := picks[i]
		adjusted, status := rules.AdjustedPoints(p.Position, p.Live)
		rows = append(rows, uistate.SquadRow{
			Slot:       p.SquadSlot,
			Player:     p.DisplayName(),
			Team:       squad.SanitizeASCII(p.TeamName),
			Points:     adjusted,
			Multiplier: p.Multiplier,
			IsCaptain:  p.IsCaptain,
			IsVice:     p.IsViceCaptain,
			Breakdown:  rules.FormatBreakdown(p.Position, p.Live, status, adjusted),
		})
		if len(rows) == uistate.SquadCapacity {
			break
		}
	}
	return rows
}

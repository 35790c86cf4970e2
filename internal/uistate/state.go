package uistate

import "time"

// Bounded lock waits. A missed refresh beats priority inversion, so writers
// give up after writeWait and the renderer's snapshot after readWait.
const (
	writeWait = 100 * time.Millisecond
	readWait  = 30 * time.Millisecond
)

// timedLock is a mutex whose acquisition is bounded. A failed acquire means
// the caller skips its cycle; it never retries inline.
type timedLock struct {
	ch chan struct{}
}

func newTimedLock() timedLock {
	l := timedLock{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{}
	return l
}

func (l timedLock) acquire(wait time.Duration) bool {
	select {
	case <-l.ch:
		return true
	default:
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-l.ch:
		return true
	case <-timer.C:
		return false
	}
}

func (l timedLock) release() {
	l.ch <- struct{}{}
}

// SharedState is the single snapshot the renderer consumes. The version
// counter increments once per write; the renderer re-renders only when it
// changes and never sees a partial update.
type SharedState struct {
	Version uint64 `json:"version"`

	StatusText  string `json:"status_text"`
	StatusColor uint32 `json:"status_color"`
	GWStateText string `json:"gw_state_text"`

	CurrentGW int `json:"current_gw"`
	GWPoints  int `json:"gw_points"`

	TotalPoints    int  `json:"total_points"`
	HasTotalPoints bool `json:"has_total_points"`

	OverallRank int  `json:"overall_rank"`
	RankDiff    int  `json:"rank_diff"`
	HasRankData bool `json:"has_rank_data"`

	IsLiveGW        bool      `json:"is_live_gw"`
	NextGW          int       `json:"next_gw"`
	HasNextGW       bool      `json:"has_next_gw"`
	NextDeadline    time.Time `json:"next_deadline"`
	HasNextDeadline bool      `json:"has_next_deadline"`

	IsStale       bool      `json:"is_stale"`
	LastSuccessAt time.Time `json:"last_success_at"`
}

// Store owns the shared state. All access is copy-in/copy-out under a
// bounded lock; the state is never handed out by reference.
type Store struct {
	lock  timedLock
	state SharedState
}

func NewStore() *Store {
	return &Store{lock: newTimedLock()}
}

// Snapshot copies the current state. ok is false when the lock could not be
// taken within the read wait, in which case the renderer skips this tick.
func (s *Store) Snapshot() (SharedState, bool) {
	if !s.lock.acquire(readWait) {
		return SharedState{}, false
	}
	state := s.state
	s.lock.release()
	return state, true
}

func (s *Store) update(fn func(*SharedState)) bool {
	if !s.lock.acquire(writeWait) {
		return false
	}
	fn(&s.state)
	s.state.Version++
	s.lock.release()
	return true
}

func (s *Store) SetStatus(text string, color uint32) bool {
	return s.update(func(st *SharedState) {
		st.StatusText = text
		st.StatusColor = color
	})
}

func (s *Store) SetGWStateText(text string) bool {
	return s.update(func(st *SharedState) {
		st.GWStateText = text
	})
}

func (s *Store) SetGWPoints(points int) bool {
	return s.update(func(st *SharedState) {
		st.GWPoints = points
	})
}

func (s *Store) SetTotalPoints(points int, has bool) bool {
	return s.update(func(st *SharedState) {
		st.TotalPoints = points
		st.HasTotalPoints = has
	})
}

func (s *Store) SetRankData(rank, diff int, has bool) bool {
	return s.update(func(st *SharedState) {
		st.OverallRank = rank
		st.RankDiff = diff
		st.HasRankData = has
	})
}

func (s *Store) SetGameweekContext(isLive bool, currentGW, nextGW int, hasNextGW bool, deadline time.Time, hasDeadline bool) bool {
	return s.update(func(st *SharedState) {
		st.IsLiveGW = isLive
		st.CurrentGW = currentGW
		st.NextGW = nextGW
		st.HasNextGW = hasNextGW
		st.NextDeadline = deadline
		st.HasNextDeadline = hasDeadline
	})
}

// SetFreshness records staleness explicitly. A failed poll still advances
// wall-clock time and must surface as stale, not as a stuck version counter.
func (s *Store) SetFreshness(stale bool, lastSuccessAt time.Time) bool {
	return s.update(func(st *SharedState) {
		st.IsStale = stale
		st.LastSuccessAt = lastSuccessAt
	})
}

package fplapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{
		BaseURL: srv.URL,
		EntryID: 4242,
		Timeout: 2 * time.Second,
		Logger:  logging.NewNop(),
	})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresEntryID(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{BaseURL: "http://localhost"})
	require.Error(t, err)
}

func TestEntrySummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    EntrySummary
	}{
		{
			name: "happy path",
			body: `{"current_event":7,"summary_overall_rank":123456,"summary_overall_points":411}`,
			want: EntrySummary{CurrentEvent: 7, SummaryOverallRank: 123456, SummaryOverallPoints: 411},
		},
		{
			name:    "missing current event",
			body:    `{"summary_overall_rank":123456,"summary_overall_points":411}`,
			wantErr: true,
		},
		{
			name:    "null current event",
			body:    `{"current_event":null,"summary_overall_rank":1,"summary_overall_points":2}`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/entry/4242/", r.URL.Path)
				_, _ = w.Write([]byte(tc.body))
			}))

			got, err := client.EntrySummary(context.Background())
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFetchJSON_RetriesOnceOnEmptyBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			return // empty 200 body
		}
		_, _ = w.Write([]byte(`{"current_event":3}`))
	}))

	got, err := client.EntrySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentEvent)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchJSON_RetriesOnceOnTruncatedJSON(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"current_event":`))
			return
		}
		_, _ = w.Write([]byte(`{"current_event":3}`))
	}))

	_, err := client.EntrySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchJSON_MalformedJSONIsTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "broken syntax", body: `{"current_event": oops}`},
		{name: "wrong value type", body: `{"current_event": "seven"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(tc.body))
			}))

			_, err := client.EntrySummary(context.Background())
			require.Error(t, err)
			assert.Equal(t, int32(1), calls.Load(), "a complete bad document earns no retry")
		})
	}
}

func TestFetchJSON_SecondTransientFailureIsTerminal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	_, err := client.EntrySummary(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load(), "exactly one retry, never more")
}

func TestFetchJSON_NonOKStatusIsTerminal(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.EntrySummary(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "status errors must not retry")
}

func TestFetchJSON_PayloadOverBudgetIsTerminal(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", defaultByteBudget+64)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"current_event":1,"pad":"` + big + `"}`))
	}))

	_, err := client.EntrySummary(context.Background())
	require.Error(t, err)
	assert.True(t, crerr.Is(err, ErrPayloadTooLarge))
}

func TestPicks(t *testing.T) {
	t.Parallel()

	t.Run("defaults chip to none", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/entry/4242/event/7/picks/", r.URL.Path)
			_, _ = w.Write([]byte(`{"active_chip":null,"picks":[
				{"element":101,"position":1,"multiplier":1,"is_captain":false,"is_vice_captain":false},
				{"element":202,"position":2,"multiplier":2,"is_captain":true,"is_vice_captain":false}
			]}`))
		}))

		got, err := client.Picks(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "none", got.ActiveChip)
		require.Len(t, got.Picks, 2)
		assert.Equal(t, 101, got.Picks[0].ElementID)
		assert.Equal(t, 1, got.Picks[0].SquadSlot)
		assert.True(t, got.Picks[1].IsCaptain)
		assert.Equal(t, 2, got.Picks[1].Multiplier)
	})

	t.Run("keeps active chip", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"active_chip":"3xc","picks":[{"element":1,"position":1,"multiplier":3}]}`))
		}))

		got, err := client.Picks(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "3xc", got.ActiveChip)
	})

	t.Run("empty picks is an error", func(t *testing.T) {
		t.Parallel()

		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"active_chip":null,"picks":[]}`))
		}))

		_, err := client.Picks(context.Background(), 7)
		require.Error(t, err)
	})
}

func TestLive_ParsesBothExplainShapes(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/event/7/live/", r.URL.Path)
		_, _ = w.Write([]byte(`{"elements":[
			{"id":10,"stats":{"total_points":9,"minutes":90,"goals_scored":1,"bonus":2},
			 "explain":[{"fixture":123,"stats":[
				{"identifier":"minutes","points":2,"value":90},
				{"identifier":"goals_scored","points":5,"value":1},
				{"identifier":"bonus","points":2,"value":2}
			 ]}]},
			{"id":20,"stats":{"total_points":3,"minutes":61,"defensive_contribution":10},
			 "explain":[[
				{"identifier":"minutes","points":2,"value":61},
				{"identifier":"defensive_contribution","points":2,"value":10}
			 ]]},
			{"id":30,"stats":{"total_points":0},"explain":[]}
		]}`))
	}))

	got, err := client.Live(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 3)

	mid := got[10]
	require.True(t, mid.HasBreakdown())
	assert.Equal(t, 2, mid.Breakdown.Minutes)
	assert.Equal(t, 5, mid.Breakdown.Goals)
	assert.Equal(t, 2, mid.Breakdown.Bonus)

	def := got[20]
	require.True(t, def.HasBreakdown())
	assert.Equal(t, 2, def.Breakdown.DefContrib)
	assert.Equal(t, 10, def.DefContrib, "counter falls back to singular field")

	bench := got[30]
	assert.False(t, bench.HasBreakdown())
}

func TestBootstrap(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bootstrap-static/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"events":[
				{"id":7,"is_current":true,"is_next":false,"finished":false,"deadline_time":"2026-08-15T10:00:00Z"},
				{"id":8,"is_current":false,"is_next":true,"finished":false,"deadline_time":"2026-08-22T10:00:00Z","deadline_time_epoch":1787479200}
			],
			"elements":[{"id":10,"web_name":"Haaland","element_type":4,"team":13}],
			"teams":[{"id":13,"name":"Manchester City","short_name":"MCI"}]
		}`))
	}))

	boot, err := client.Bootstrap(context.Background())
	require.NoError(t, err)

	player, ok := boot.Players[10]
	require.True(t, ok)
	assert.Equal(t, "Haaland", player.Name)
	assert.Equal(t, squad.PositionForward, player.Position)

	team, ok := boot.Teams[13]
	require.True(t, ok)
	assert.Equal(t, "man_city", team.Slug)
	assert.Equal(t, "MCI", team.ShortName)

	state, ok := boot.State()
	require.True(t, ok)
	assert.True(t, state.IsLive)
	assert.True(t, state.HasNextGW)
	assert.Equal(t, 8, state.NextGW)
	require.True(t, state.HasDeadline)
	assert.Equal(t, time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC), state.Deadline)
}

func TestBootstrapState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		events   []GameweekEvent
		wantOK   bool
		wantLive bool
	}{
		{
			name:     "current unfinished is live",
			events:   []GameweekEvent{{ID: 7, IsCurrent: true}},
			wantOK:   true,
			wantLive: true,
		},
		{
			name:     "current finished is not live",
			events:   []GameweekEvent{{ID: 7, IsCurrent: true, Finished: true}},
			wantOK:   true,
			wantLive: false,
		},
		{
			name:     "next only still resolves",
			events:   []GameweekEvent{{ID: 1, IsNext: true, DeadlineTimeEpoch: 1755252000}},
			wantOK:   true,
			wantLive: false,
		},
		{
			name:   "neither current nor next",
			events: []GameweekEvent{{ID: 38, Finished: true}},
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			state, ok := Bootstrap{Events: tc.events}.State()
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.wantLive, state.IsLive)
			}
		})
	}
}

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		iso    string
		epoch  int64
		want   time.Time
		wantOK bool
	}{
		{
			name:   "rfc3339",
			iso:    "2026-08-15T10:00:00Z",
			want:   time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "no zone",
			iso:    "2026-08-15T10:00:00",
			want:   time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "fractional seconds no zone",
			iso:    "2026-08-15T10:00:00.500000",
			want:   time.Date(2026, 8, 15, 10, 0, 0, 500000000, time.UTC),
			wantOK: true,
		},
		{
			name:   "epoch fallback",
			iso:    "not-a-time",
			epoch:  1755252000,
			want:   time.Unix(1755252000, 0).UTC(),
			wantOK: true,
		},
		{
			name: "nothing usable",
			iso:  "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseDeadline(tc.iso, tc.epoch)
			require.Equal(t, tc.wantOK, ok)
			if ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

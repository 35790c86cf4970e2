package fplapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fplbuddy/scoreboard/internal/domain/squad"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/platform/resilience"
)

const (
	defaultBaseURL   = "https://fantasy.premierleague.com/api"
	defaultUserAgent = "fpl-scoreboard/1.0"

	defaultByteBudget   = 256 << 10
	bootstrapByteBudget = 3 << 20
	liveByteBudget      = 2 << 20
)

var (
	// ErrPayloadTooLarge marks a response that exceeded the endpoint's
	// byte budget. Terminal: the document is never partially processed.
	ErrPayloadTooLarge = crerr.New("fpl payload exceeds byte budget")
	// errTransientBody marks the known-transient shapes (empty body,
	// truncated JSON) that earn exactly one retry.
	errTransientBody = crerr.New("fpl transient body failure")
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	EntryID    int
	Timeout    time.Duration
	UserAgent  string
	Logger     *logging.Logger

	CircuitBreaker resilience.CircuitBreakerConfig

	BootstrapByteBudget int
	LiveByteBudget      int
	DefaultByteBudget   int
}

// Client talks to the fantasy provider's read-only JSON API. Every endpoint
// decodes only the fields the engine uses, bounding memory independent of
// upstream payload growth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	entryID    int
	userAgent  string
	logger     *logging.Logger

	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight

	bootstrapBudget int
	liveBudget      int
	defaultBudget   int
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.EntryID <= 0 {
		return nil, fmt.Errorf("entry id must be greater than zero")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 12 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:      httpClient,
		baseURL:         baseURL,
		entryID:         cfg.EntryID,
		userAgent:       userAgent,
		logger:          logger,
		breaker:         resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled:  breakerCfg.Enabled,
		bootstrapBudget: positiveOr(cfg.BootstrapByteBudget, bootstrapByteBudget),
		liveBudget:      positiveOr(cfg.LiveByteBudget, liveByteBudget),
		defaultBudget:   positiveOr(cfg.DefaultByteBudget, defaultByteBudget),
	}, nil
}

// EntrySummary fetches the entry headline document. A missing current
// gameweek id is a data error; the engine cannot poll without one.
func (c *Client) EntrySummary(ctx context.Context) (EntrySummary, error) {
	var out EntrySummary
	path := fmt.Sprintf("/entry/%d/", c.entryID)
	if err := c.fetchJSON(ctx, path, c.defaultBudget, &out); err != nil {
		return EntrySummary{}, err
	}
	if out.CurrentEvent <= 0 {
		return EntrySummary{}, crerr.Newf("entry response missing current_event")
	}
	return out, nil
}

// History fetches the per-gameweek overall rank rows.
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var out entryHistoryResponse
	path := fmt.Sprintf("/entry/%d/history/", c.entryID)
	if err := c.fetchJSON(ctx, path, c.defaultBudget, &out); err != nil {
		return nil, err
	}
	return out.Current, nil
}

// Picks fetches the squad selection for one gameweek.
func (c *Client) Picks(ctx context.Context, gameweek int) (PicksResult, error) {
	var out picksResponse
	path := fmt.Sprintf("/entry/%d/event/%d/picks/", c.entryID, gameweek)
	if err := c.fetchJSON(ctx, path, c.defaultBudget, &out); err != nil {
		return PicksResult{}, err
	}
	if len(out.Picks) == 0 {
		return PicksResult{}, crerr.Newf("picks response missing picks array")
	}

	result := PicksResult{ActiveChip: "none"}
	if out.ActiveChip != nil && *out.ActiveChip != "" {
		result.ActiveChip = *out.ActiveChip
	}
	result.Picks = make([]squad.Pick, 0, len(out.Picks))
	for _, p := range out.Picks {
		result.Picks = append(result.Picks, squad.Pick{
			ElementID:     p.Element,
			SquadSlot:     p.Position,
			Multiplier:    p.Multiplier,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	return result, nil
}

// Live fetches per-element raw counters and, when present, the explain
// breakdown for one gameweek, keyed by element id.
func (c *Client) Live(ctx context.Context, gameweek int) (map[int]squad.LiveStats, error) {
	var out liveResponse
	path := fmt.Sprintf("/event/%d/live/", gameweek)
	if err := c.fetchJSON(ctx, path, c.liveBudget, &out); err != nil {
		return nil, err
	}
	if len(out.Elements) == 0 {
		return nil, crerr.Newf("live response missing elements array")
	}

	stats := make(map[int]squad.LiveStats, len(out.Elements))
	for _, el := range out.Elements {
		stats[el.ID] = el.toLiveStats()
	}
	return stats, nil
}

// Bootstrap fetches the static metadata document: gameweek events plus the
// player and team display metadata, with team slugs pre-derived.
func (c *Client) Bootstrap(ctx context.Context) (Bootstrap, error) {
	var out bootstrapResponse
	if err := c.fetchJSON(ctx, "/bootstrap-static/", c.bootstrapBudget, &out); err != nil {
		return Bootstrap{}, err
	}
	if len(out.Events) == 0 {
		return Bootstrap{}, crerr.Newf("bootstrap response missing events")
	}

	boot := Bootstrap{
		Events:  out.Events,
		Players: make(map[int]PlayerMeta, len(out.Elements)),
		Teams:   make(map[int]TeamMeta, len(out.Teams)),
	}
	for _, t := range out.Teams {
		boot.Teams[t.ID] = TeamMeta{
			Name:      t.Name,
			ShortName: t.ShortName,
			Slug:      squad.SlugifyTeamName(t.Name),
		}
	}
	for _, el := range out.Elements {
		boot.Players[el.ID] = PlayerMeta{
			Name:     el.WebName,
			Position: squad.Position(el.ElementType),
			TeamID:   el.Team,
		}
	}
	return boot, nil
}

// fetchJSON performs one provider GET behind the breaker and singleflight,
// streaming the body into a pooled buffer capped at byteBudget and decoding
// with field-level filtering via the target struct. Empty bodies and
// truncated JSON are retried exactly once; anything else is terminal.
func (c *Client) fetchJSON(ctx context.Context, path string, byteBudget int, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return err
		}
	}

	fullURL := c.baseURL + path
	raw, err, shared := c.flight.Do(path, func() (any, error) {
		body, reqErr := c.executeRequest(ctx, fullURL, byteBudget, target)
		if c.circuitEnabled {
			if reqErr != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return body, reqErr
	})
	if err != nil {
		return err
	}

	// Shared singleflight results still need a local decode: only the
	// winning caller decoded into its own target.
	if shared {
		body, ok := raw.([]byte)
		if !ok || body == nil {
			return crerr.New("shared provider payload missing")
		}
		if err := sonic.Unmarshal(body, target); err != nil {
			return crerr.Wrap(err, "decode shared provider payload")
		}
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, byteBudget int, target any) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := c.readOnce(ctx, fullURL, byteBudget)
		if err == nil {
			switch decodeErr := sonic.Unmarshal(raw, target); {
			case decodeErr == nil:
				return raw, nil
			case truncatedJSON(decodeErr):
				err = crerr.Mark(crerr.Wrap(decodeErr, "incomplete provider payload"), errTransientBody)
			default:
				// Complete but malformed documents will not improve on a
				// second read.
				err = crerr.Wrap(decodeErr, "decode provider payload")
			}
		}
		lastErr = err

		if !crerr.Is(err, errTransientBody) {
			break
		}
		if attempt == 1 {
			c.logger.WarnContext(ctx, "fpl transient fetch failure, retrying once", "url", fullURL, "error", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// readOnce performs a single GET and returns the raw body, capped at the
// byte budget. Exceeding the cap is terminal, never silently truncated.
func (c *Client) readOnce(ctx context.Context, fullURL string, byteBudget int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		return nil, crerr.Newf("provider status=%d url=%s", resp.StatusCode, fullURL)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, int64(byteBudget)+1)); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), errTransientBody)
	}
	if buf.Len() > byteBudget {
		return nil, crerr.Wrapf(ErrPayloadTooLarge, "url=%s budget=%d", fullURL, byteBudget)
	}
	if buf.Len() == 0 {
		return nil, crerr.Mark(crerr.New("empty response body"), errTransientBody)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// truncatedJSON reports whether a decode failure looks like a document cut
// off mid-transfer rather than malformed JSON. Only the former is transient.
// Covers both the native decoder's eof code and the stdlib-shaped fallback.
func truncatedJSON(err error) bool {
	if crerr.Is(err, io.ErrUnexpectedEOF) || crerr.Is(err, io.EOF) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "eof") || strings.Contains(msg, "unexpected end")
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

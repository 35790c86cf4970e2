// Package statehttp exposes the engine's shared state over a small
// read-only JSON endpoint, mainly for debugging a headless host.
package statehttp

import (
	"context"
	"fmt"
	"net"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/uistate"
)

type Server struct {
	store  *uistate.Store
	events *uistate.EventLog
	logger *logging.Logger
	addr   string

	srv *fasthttp.Server
}

type ServerConfig struct {
	Store  *uistate.Store
	Events *uistate.EventLog
	Logger *logging.Logger
	Addr   string
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil || cfg.Events == nil {
		return nil, fmt.Errorf("state store and event log are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8090"
	}

	s := &Server{
		store:  cfg.Store,
		events: cfg.Events,
		logger: logger,
		addr:   addr,
	}
	s.srv = &fasthttp.Server{
		Handler:          s.handle,
		Name:             "scoreboard-state",
		DisableKeepalive: false,
	}
	return s, nil
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("state endpoint listening", "addr", s.addr)
	return s.srv.ListenAndServe(s.addr)
}

// Serve serves on an existing listener, used by tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.srv.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.ShutdownWithContext(ctx)
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	switch string(ctx.Path()) {
	case "/healthz":
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"ok"}`)
	case "/state":
		state, ok := s.store.Snapshot()
		if !ok {
			s.writeBusy(ctx)
			return
		}
		s.writeJSON(ctx, state)
	case "/events":
		runtime, ok := s.events.Snapshot()
		if !ok {
			s.writeBusy(ctx)
			return
		}
		s.writeJSON(ctx, runtime)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, payload any) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		s.logger.Warn("encode state payload failed", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

// writeBusy maps a missed snapshot lock to a retryable status instead of
// blocking the render path.
func (s *Server) writeBusy(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	ctx.Response.Header.Set("Retry-After", "1")
}

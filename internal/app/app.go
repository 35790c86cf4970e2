package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/fplbuddy/scoreboard/external/fplapi"
	"github.com/fplbuddy/scoreboard/internal/config"
	"github.com/fplbuddy/scoreboard/internal/demo"
	"github.com/fplbuddy/scoreboard/internal/domain/scoring"
	"github.com/fplbuddy/scoreboard/internal/interfaces/console"
	"github.com/fplbuddy/scoreboard/internal/interfaces/statehttp"
	"github.com/fplbuddy/scoreboard/internal/observability"
	"github.com/fplbuddy/scoreboard/internal/platform/cache"
	"github.com/fplbuddy/scoreboard/internal/platform/logging"
	"github.com/fplbuddy/scoreboard/internal/platform/resilience"
	"github.com/fplbuddy/scoreboard/internal/render"
	"github.com/fplbuddy/scoreboard/internal/uistate"
	"github.com/fplbuddy/scoreboard/internal/usecase"
)

// App owns the wired engine: fetch, score, attribute, publish, render.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	store  *uistate.Store
	events *uistate.EventLog
	poll   *usecase.PollService
	loop   *render.Loop
	demo   *demo.Controller

	stateSrv *statehttp.Server
	console  *console.Console
	pprofSrv *http.Server

	uptraceShutdown   func(context.Context) error
	pyroscopeShutdown func() error
}

// New wires every component from configuration. Nothing starts running
// until Run.
func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	uptraceShutdown, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	pyroscopeShutdown, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init pyroscope: %w", err)
	}
	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("start pprof: %w", err)
	}

	client, err := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL: cfg.FPLBaseURL,
		EntryID: cfg.EntryID,
		Timeout: cfg.FPLTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FPLCircuitEnabled,
			FailureThreshold: cfg.FPLCircuitFailures,
			OpenTimeout:      cfg.FPLCircuitOpenWait,
			HalfOpenMaxReq:   cfg.FPLCircuitHalfOpen,
		},
		BootstrapByteBudget: cfg.BootstrapByteBudget,
		LiveByteBudget:      cfg.LiveByteBudget,
		DefaultByteBudget:   cfg.DefaultByteBudget,
	})
	if err != nil {
		return nil, fmt.Errorf("build fpl client: %w", err)
	}

	var docCache *cache.Store
	if cfg.CacheEnabled {
		docCache = cache.NewStore(cfg.CacheTTL)
	}

	store := uistate.NewStore()
	events := uistate.NewEventLog()
	rules := scoring.DefaultRuleset()

	poll, err := usecase.NewPollService(usecase.PollServiceConfig{
		Provider:           client,
		Store:              store,
		Events:             events,
		Cache:              docCache,
		Logger:             logger,
		Rules:              rules,
		PollInterval:       cfg.PollInterval,
		StalenessThreshold: cfg.StalenessThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("build poll service: %w", err)
	}

	demoCtrl, err := demo.NewController(demo.ControllerConfig{
		Rules:  rules,
		Store:  store,
		Events: events,
		Seeder: poll,
		Poller: poll,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build demo controller: %w", err)
	}

	loop := render.NewLoop(render.LoopConfig{
		Store:    store,
		Events:   events,
		Renderer: render.NewLogRenderer(logger),
		Logger:   logger,
		Tick:     cfg.RenderTick,
	})

	a := &App{
		cfg:               cfg,
		logger:            logger,
		store:             store,
		events:            events,
		poll:              poll,
		loop:              loop,
		demo:              demoCtrl,
		pprofSrv:          pprofSrv,
		uptraceShutdown:   uptraceShutdown,
		pyroscopeShutdown: pyroscopeShutdown,
	}

	if cfg.StateHTTPEnabled {
		a.stateSrv, err = statehttp.NewServer(statehttp.ServerConfig{
			Store:  store,
			Events: events,
			Logger: logger,
			Addr:   cfg.StateHTTPAddr,
		})
		if err != nil {
			return nil, fmt.Errorf("build state endpoint: %w", err)
		}
	}

	if cfg.ConsoleEnabled {
		a.console = console.New(os.Stdin, os.Stdout, demoCtrl, logger)
	}

	return a, nil
}

// Run starts every loop and blocks until the context is cancelled, then
// shuts everything down.
func (a *App) Run(ctx context.Context) error {
	var wg conc.WaitGroup

	wg.Go(func() { a.poll.RunLoop(ctx) })
	wg.Go(func() { a.loop.Run(ctx) })

	if a.stateSrv != nil {
		wg.Go(func() {
			if err := a.stateSrv.ListenAndServe(); err != nil {
				a.logger.ErrorContext(ctx, "state endpoint failed", "error", err)
			}
		})
	}
	if a.console != nil {
		// Detached on purpose: a blocked stdin read must not hold up
		// shutdown.
		go func() {
			if err := a.console.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.WarnContext(ctx, "console stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	a.shutdown()
	wg.Wait()
	return nil
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.stateSrv != nil {
		if err := a.stateSrv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("state endpoint shutdown failed", "error", err)
		}
	}
	if err := observability.StopPprofServer(a.pprofSrv, a.logger, 5*time.Second); err != nil {
		a.logger.Warn("pprof shutdown failed", "error", err)
	}
	if a.pyroscopeShutdown != nil {
		if err := a.pyroscopeShutdown(); err != nil {
			a.logger.Warn("pyroscope shutdown failed", "error", err)
		}
	}
	if a.uptraceShutdown != nil {
		if err := a.uptraceShutdown(shutdownCtx); err != nil {
			a.logger.Warn("uptrace shutdown failed", "error", err)
		}
	}
	_ = a.logger.Sync()
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fplbuddy/scoreboard/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the scoreboard process.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string `validate:"required"`
	LogLevel       logging.Level

	// FPL provider.
	EntryID             int           `validate:"required,gt=0"`
	FPLBaseURL          string        `validate:"required,url"`
	FPLTimeout          time.Duration `validate:"required,gt=0"`
	FPLCircuitEnabled   bool
	FPLCircuitFailures  int           `validate:"gte=1"`
	FPLCircuitOpenWait  time.Duration `validate:"gt=0"`
	FPLCircuitHalfOpen  int           `validate:"gte=1"`
	BootstrapByteBudget int           `validate:"gt=0"`
	LiveByteBudget      int           `validate:"gt=0"`
	DefaultByteBudget   int           `validate:"gt=0"`

	// Engine cadence.
	PollInterval       time.Duration `validate:"required,gt=0"`
	RenderTick         time.Duration `validate:"required,gt=0"`
	StalenessThreshold time.Duration `validate:"required,gt=0"`

	// Slow-changing document cache (picks, rank history).
	CacheEnabled bool
	CacheTTL     time.Duration `validate:"gt=0"`

	// Read-only state endpoint.
	StateHTTPEnabled bool
	StateHTTPAddr    string

	// Demo command console on stdin.
	ConsoleEnabled bool

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	entryID, err := getEnvAsInt("FPL_ENTRY_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_ENTRY_ID: %w", err)
	}
	if entryID <= 0 {
		return Config{}, fmt.Errorf("FPL_ENTRY_ID is required and must be > 0")
	}

	fplTimeout, err := time.ParseDuration(getEnv("FPL_TIMEOUT", "12s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_TIMEOUT: %w", err)
	}
	circuitEnabled, err := strconv.ParseBool(getEnv("FPL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailures, err := getEnvAsInt("FPL_CIRCUIT_FAILURE_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	circuitOpenWait, err := time.ParseDuration(getEnv("FPL_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	circuitHalfOpen, err := getEnvAsInt("FPL_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	bootstrapBudget, err := getEnvAsInt("FPL_BOOTSTRAP_BYTE_BUDGET", 3<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_BOOTSTRAP_BYTE_BUDGET: %w", err)
	}
	liveBudget, err := getEnvAsInt("FPL_LIVE_BYTE_BUDGET", 2<<20)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_LIVE_BYTE_BUDGET: %w", err)
	}
	defaultBudget, err := getEnvAsInt("FPL_DEFAULT_BYTE_BUDGET", 256<<10)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_DEFAULT_BYTE_BUDGET: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_INTERVAL: %w", err)
	}
	renderTick, err := time.ParseDuration(getEnv("RENDER_TICK", "250ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RENDER_TICK: %w", err)
	}
	stalenessThreshold, err := time.ParseDuration(getEnv("STALENESS_THRESHOLD", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STALENESS_THRESHOLD: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}

	stateHTTPEnabled, err := strconv.ParseBool(getEnv("STATE_HTTP_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATE_HTTP_ENABLED: %w", err)
	}
	stateHTTPAddr := strings.TrimSpace(getEnv("STATE_HTTP_ADDR", ":8090"))
	if stateHTTPEnabled && stateHTTPAddr == "" {
		return Config{}, fmt.Errorf("STATE_HTTP_ADDR is required when STATE_HTTP_ENABLED=true")
	}

	consoleEnabled, err := strconv.ParseBool(getEnv("CONSOLE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CONSOLE_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "fpl-scoreboard"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		EntryID:             entryID,
		FPLBaseURL:          strings.TrimRight(strings.TrimSpace(getEnv("FPL_BASE_URL", "https://fantasy.premierleague.com/api")), "/"),
		FPLTimeout:          fplTimeout,
		FPLCircuitEnabled:   circuitEnabled,
		FPLCircuitFailures:  circuitFailures,
		FPLCircuitOpenWait:  circuitOpenWait,
		FPLCircuitHalfOpen:  circuitHalfOpen,
		BootstrapByteBudget: bootstrapBudget,
		LiveByteBudget:      liveBudget,
		DefaultByteBudget:   defaultBudget,

		PollInterval:       pollInterval,
		RenderTick:         renderTick,
		StalenessThreshold: stalenessThreshold,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		StateHTTPEnabled: stateHTTPEnabled,
		StateHTTPAddr:    stateHTTPAddr,

		ConsoleEnabled: consoleEnabled,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         uptraceDSN,
		UptraceLogsEnabled: uptraceLogsEnabled,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

// Package config provides centralized configuration management.
// Defaults live here; environment variables (optionally loaded from .env)
// override them, and an optional YAML file overrides the gameplay tuning.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"
)

// =============================================================================
// DISPLAY CONFIGURATION
// =============================================================================

// DisplayConfig holds the play field size and the simulation rate.
type DisplayConfig struct {
	Width  int // Field width in pixels
	Height int // Field height in pixels
	TPS    int // Simulation ticks per second
}

// DefaultDisplay returns the default display configuration.
func DefaultDisplay() DisplayConfig {
	return DisplayConfig{
		Width:  800,
		Height: 600,
		TPS:    60,
	}
}

// DisplayFromEnv returns display configuration with environment variable overrides.
func DisplayFromEnv() DisplayConfig {
	cfg := DefaultDisplay()

	if w := getEnvInt("WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if tps := getEnvInt("TPS", 0); tps > 0 {
		cfg.TPS = tps
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	DebugAddr    string   // pprof, /metrics and /health; empty disables
	CORSOrigins  []string // Allowed browser origins
	ScoresAPIKey string   // Guards /rest/v1; empty leaves it open
	StateHz      int      // WebSocket state broadcasts per second
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:        3000,
		DebugAddr:   "127.0.0.1:6060",
		CORSOrigins: []string{"*"},
		StateHz:     20,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if v, ok := os.LookupEnv("DEBUG_ADDR"); ok {
		cfg.DebugAddr = v
	}
	if origins := getEnvList("CORS_ORIGINS"); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}
	cfg.ScoresAPIKey = os.Getenv("SCORES_API_KEY")
	if hz := getEnvInt("STATE_HZ", 0); hz > 0 {
		cfg.StateHz = hz
	}

	return cfg
}

// =============================================================================
// LEADERBOARD CONFIGURATION
// =============================================================================

// Leaderboard backends.
const (
	LeaderboardRemote = "remote" // PostgREST / Supabase over HTTP
	LeaderboardMemory = "memory" // In-process table
	LeaderboardOff    = "off"    // Always unavailable (placeholder ranking)
)

// LeaderboardConfig selects and configures the score table backend.
type LeaderboardConfig struct {
	Mode    string
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
	Workers int
}

// DefaultLeaderboard returns the default leaderboard configuration.
func DefaultLeaderboard() LeaderboardConfig {
	return LeaderboardConfig{
		Table:   "scores",
		Timeout: 5 * time.Second,
		Workers: 2,
	}
}

// LeaderboardFromEnv returns leaderboard configuration with environment
// variable overrides. Without LEADERBOARD_MODE the backend is remote when
// both SUPABASE_URL and SUPABASE_KEY are set, and off otherwise.
func LeaderboardFromEnv() LeaderboardConfig {
	cfg := DefaultLeaderboard()

	cfg.URL = os.Getenv("SUPABASE_URL")
	cfg.Key = os.Getenv("SUPABASE_KEY")
	if t := os.Getenv("LEADERBOARD_TABLE"); t != "" {
		cfg.Table = t
	}
	if ms := getEnvInt("LEADERBOARD_TIMEOUT_MS", 0); ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if w := getEnvInt("LEADERBOARD_WORKERS", 0); w > 0 {
		cfg.Workers = w
	}

	cfg.Mode = strings.ToLower(strings.TrimSpace(os.Getenv("LEADERBOARD_MODE")))
	if cfg.Mode == "" {
		cfg.Mode = LeaderboardOff
		if cfg.URL != "" && cfg.Key != "" {
			cfg.Mode = LeaderboardRemote
		}
	}

	return cfg
}

// Store builds the configured backend. An unknown mode is an error.
func (c LeaderboardConfig) Store() (leaderboard.Store, error) {
	switch c.Mode {
	case LeaderboardRemote:
		return leaderboard.NewRESTStore(leaderboard.RESTConfig{
			BaseURL: c.URL,
			APIKey:  c.Key,
			Table:   c.Table,
			Timeout: c.Timeout,
		}), nil
	case LeaderboardMemory:
		return leaderboard.NewMemoryStore(), nil
	case LeaderboardOff, "":
		return leaderboard.Offline{}, nil
	}
	return nil, fmt.Errorf("config: unknown LEADERBOARD_MODE %q", c.Mode)
}

// Gateway returns the gateway sizing for this backend.
func (c LeaderboardConfig) Gateway() leaderboard.GatewayConfig {
	cfg := leaderboard.DefaultGatewayConfig()
	cfg.Workers = c.Workers
	cfg.Timeout = c.Timeout
	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig holds the JSONL event log settings.
type EventLogConfig struct {
	Path string // Empty disables the file (events are still counted)
}

// EventLogFromEnv reads EVENT_LOG_PATH.
func EventLogFromEnv() EventLogConfig {
	return EventLogConfig{Path: os.Getenv("EVENT_LOG_PATH")}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Display     DisplayConfig
	Server      ServerConfig
	Leaderboard LeaderboardConfig
	EventLog    EventLogConfig
	Limits      game.ResourceLimits
	TuningPath  string
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Display:     DisplayFromEnv(),
		Server:      ServerFromEnv(),
		Leaderboard: LeaderboardFromEnv(),
		EventLog:    EventLogFromEnv(),
		Limits:      game.DefaultLimits,
		TuningPath:  os.Getenv("TUNING_FILE"),
	}
}

// Tuning applies the display settings to the default tuning, then the
// tuning file (if any) on top.
func (c AppConfig) Tuning() (game.Tuning, error) {
	t := game.DefaultTuning()
	t.Width = float64(c.Display.Width)
	t.Height = float64(c.Display.Height)
	t.TickRate = c.Display.TPS
	return decodeTuning(c.TuningPath, t)
}

// =============================================================================
// TUNING FILE
// =============================================================================

// LoadTuning reads a YAML tuning file over game.DefaultTuning(). Keys not
// present keep their defaults; unknown keys are an error. An empty path
// returns the defaults.
func LoadTuning(path string) (game.Tuning, error) {
	return decodeTuning(path, game.DefaultTuning())
}

func decodeTuning(path string, base game.Tuning) (game.Tuning, error) {
	if path == "" {
		return base.Normalize(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return game.Tuning{}, fmt.Errorf("config: open tuning file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&base); err != nil && !errors.Is(err, io.EOF) {
		return game.Tuning{}, fmt.Errorf("config: parse tuning file %s: %w", path, err)
	}
	return base.Normalize(), nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

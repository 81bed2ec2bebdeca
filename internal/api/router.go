package api

import (
	"io"
	"net/http"

	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the game engine methods used by the API.
// Keep this minimal - only include methods the API layer actually calls.
type EngineInterface interface {
	// GetSnapshot returns the latest lock-free snapshot
	GetSnapshot() *game.GameSnapshot
	// SubmitInput latches input for the next tick
	SubmitInput(in game.Input)
	// Stats returns a point-in-time summary
	Stats() game.EngineStats
	// GetEventLogStats returns event log counters
	GetEventLogStats() map[string]interface{}
}

// FrameRenderer turns a snapshot into a PNG. *render.Renderer implements it.
type FrameRenderer interface {
	WritePNG(w io.Writer, snap *game.GameSnapshot) error
}

// GatewayStatser reports leaderboard gateway counters.
type GatewayStatser interface {
	Stats() leaderboard.GatewayStats
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	cfg := api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{
//	        RequestsPerSecond: 1000, // High limit for tests
//	        Burst:             1000,
//	    },
//	}
//	router := api.NewRouter(cfg)
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the game engine (required)
	Engine EngineInterface

	// Renderer serves /api/frame.png. Without one the endpoint answers 503.
	Renderer FrameRenderer

	// Gateway adds leaderboard counters to /api/stats.
	Gateway GatewayStatser

	// Scores, if set, is served as a PostgREST table under /rest/v1.
	Scores      ScoreTable
	ScoresTable string // defaults to "scores"
	// ScoresAPIKey guards /rest/v1 when non-empty.
	ScoresAPIKey string

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is optional configuration for the rate limiter.
	// Only used if RateLimiter is nil. If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed CORS origins.
	// If nil, only localhost origins are allowed.
	CORSOrigins []string

	// WSClients reports connected WebSocket clients for /api/stats.
	WSClients func() int

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// defaultCORSOrigins is used when RouterConfig.CORSOrigins is nil.
var defaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// routerHandlers holds the handler functions for the router.
type routerHandlers struct {
	engine      EngineInterface
	renderer    FrameRenderer
	gateway     GatewayStatser
	rateLimiter *IPRateLimiter
	wsClients   func() int
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// Apart from the rate limiter's cleanup goroutine (stopped with
// RateLimiter.Stop), no goroutines are started and no listeners are opened,
// so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Rate limiting (BEFORE CORS to reject early and save CPU)
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = defaultCORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	h := &routerHandlers{
		engine:      cfg.Engine,
		renderer:    cfg.Renderer,
		gateway:     cfg.Gateway,
		rateLimiter: rateLimiter,
		wsClients:   cfg.WSClients,
	}

	r.Route("/api", func(r chi.Router) {
		// Game state
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/leaderboard", h.handleGetLeaderboard)
		r.Get("/frame.png", h.handleGetFrame)

		// Input
		r.Post("/input", h.handleInput)
		r.Post("/session/start", h.handleSessionStart)
	})

	// Self-hosted score table
	if cfg.Scores != nil {
		table := cfg.ScoresTable
		if table == "" {
			table = "scores"
		}
		scores := &scoresHandler{table: table, store: cfg.Scores}
		auth := NewAPIKeyAuth(cfg.ScoresAPIKey)
		r.Route("/rest/v1", func(r chi.Router) {
			r.Use(auth.Middleware)
			scores.mount(r)
		})
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/state", http.StatusFound)
	})

	return r
}

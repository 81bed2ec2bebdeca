package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerConfig wires the HTTP server. Everything but Engine is optional.
type ServerConfig struct {
	Engine       EngineInterface
	Renderer     FrameRenderer
	Gateway      GatewayStatser
	Scores       ScoreTable
	ScoresTable  string
	ScoresAPIKey string
	CORSOrigins  []string
	StateHz      int // WebSocket snapshot rate (default: 20)
}

// Server is the HTTP API server with WebSocket support.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	stateHz     int

	mu         sync.Mutex
	httpServer *http.Server
	cancel     context.CancelFunc
}

// NewServer creates a server. Background workers do not start until Start,
// so Router() can be used with httptest right away.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		engine:      cfg.Engine,
		wsHub:       NewWebSocketHub(cfg.Engine, cfg.CORSOrigins),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
		stateHz:     cfg.StateHz,
	}

	s.router = NewRouter(RouterConfig{
		Engine:       cfg.Engine,
		Renderer:     cfg.Renderer,
		Gateway:      cfg.Gateway,
		Scores:       cfg.Scores,
		ScoresTable:  cfg.ScoresTable,
		ScoresAPIKey: cfg.ScoresAPIKey,
		RateLimiter:  s.rateLimiter,
		CORSOrigins:  cfg.CORSOrigins,
		WSClients:    s.wsHub.ClientCount,
	})

	// WebSocket route needs the hub instance
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start runs the hub and broadcast loop, then serves addr until Shutdown.
// It returns nil after a clean shutdown.
func (s *Server) Start(addr string) error {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.cancel = cancel
	s.httpServer = srv
	s.mu.Unlock()

	go s.wsHub.Run(ctx)
	go s.wsHub.BroadcastLoop(ctx, s.stateHz)

	log.Printf("🌐 API server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, closes WebSocket clients and stops the
// rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, cancel := s.httpServer, s.cancel
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	if cancel != nil {
		cancel()
	}
	s.rateLimiter.Stop()
	return err
}

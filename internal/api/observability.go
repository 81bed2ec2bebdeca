package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"time"

	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (labels are fixed enums or route patterns)
var (
	// Game engine metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "game_tick_duration_seconds",
		Help:    "Time spent in game tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "frame_render_duration_seconds",
		Help:    "Time spent rendering a PNG frame",
		Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "game_entities",
		Help: "Live entities by kind",
	}, []string{"kind"}) // Bounded: "hostile", "projectile", "collectible"

	waveGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "game_wave",
		Help: "Current wave number",
	})

	gameOversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_overs_total",
		Help: "Games that ended with the player dying",
	})

	// Leaderboard gateway metrics
	leaderboardResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaderboard_requests_total",
		Help: "Completed leaderboard requests",
	}, []string{"kind", "outcome"}) // kind: fetch|submit, outcome: ok|offline|invalid|rejected|error

	leaderboardLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leaderboard_request_duration_seconds",
		Help:    "Leaderboard backend latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter, origin check or API key",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "apikey", "ws_total_limit", "ws_ip_limit"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is path pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages by direction",
	}, []string{"direction"}) // Bounded: "out", "in"
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // Loopback only unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugHandler serves pprof, /metrics and /health.
func DebugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	// pprof endpoints for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// StartDebugServer starts the internal observability server and returns it
// so the caller can shut it down. A disabled config returns nil.
func StartDebugServer(cfg ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	// SECURITY: pprof stays on loopback unless explicitly allowed
	if !isLoopbackAddr(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		cfg.ListenAddr = "127.0.0.1:6060"
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           DebugHandler(cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv
}

// ShutdownDebugServer stops a server returned by StartDebugServer.
func ShutdownDebugServer(ctx context.Context, srv *http.Server) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Debug server shutdown: %v", err)
	}
}

func isLoopbackAddr(addr string) bool {
	for _, prefix := range []string{"127.0.0.1:", "localhost:", "[::1]:"} {
		if len(addr) > len(prefix) && addr[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records latency and status per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// RecordTick records one engine tick. Wire it to game.Engine.OnTick.
func RecordTick(info game.TickInfo) {
	tickDuration.Observe(info.Duration.Seconds())
	entityCount.WithLabelValues("hostile").Set(float64(info.Hostiles))
	entityCount.WithLabelValues("projectile").Set(float64(info.Projectiles))
	entityCount.WithLabelValues("collectible").Set(float64(info.Collectibles))
	waveGauge.Set(float64(info.Wave))
}

// TickObserver returns an OnTick hook that records every tick and counts
// transitions from playing to game over. It runs on the tick goroutine only.
func TickObserver() func(game.TickInfo) {
	last := game.ModeTitle
	return func(info game.TickInfo) {
		RecordTick(info)
		if last == game.ModePlaying && info.Mode == game.ModeGameOver {
			gameOversTotal.Inc()
		}
		last = info.Mode
	}
}

// RecordRender records render timing for metrics
func RecordRender(duration time.Duration) {
	renderDuration.Observe(duration.Seconds())
}

// RecordLeaderboardResult counts one gateway completion. Wire it to
// leaderboard.Gateway.OnResult.
func RecordLeaderboardResult(res leaderboard.Result) {
	kind := res.Kind.String()
	leaderboardResults.WithLabelValues(kind, resultOutcome(res.Err)).Inc()
	leaderboardLatency.WithLabelValues(kind).Observe(res.Latency.Seconds())
}

func resultOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if _, ok := leaderboard.IsRejected(err); ok {
		return "rejected"
	}
	switch {
	case errors.Is(err, leaderboard.ErrConnectionUnavailable):
		return "offline"
	case errors.Is(err, leaderboard.ErrInvalidInput):
		return "invalid"
	}
	return "error"
}

// EventLogCounters turns cumulative event log totals into counter deltas.
type EventLogCounters struct {
	total, dropped uint64
}

// Update adds whatever grew since the previous call.
func (c *EventLogCounters) Update(total, dropped uint64) {
	if total > c.total {
		eventLogTotal.Add(float64(total - c.total))
		c.total = total
	}
	if dropped > c.dropped {
		eventLogDropped.Add(float64(dropped - c.dropped))
		c.dropped = dropped
	}
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments the WebSocket message counter for a
// direction ("out" or "in").
func IncrementWSMessages(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

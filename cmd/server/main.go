package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"zombie-shooter/internal/api"
	"zombie-shooter/internal/config"
	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"
	"zombie-shooter/internal/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🧟 ================================")
	log.Println("🧟  ZOMBIE SHOOTER - GAME SERVER")
	log.Println("🧟 ================================")

	appConfig := config.Load()
	serverCfg := appConfig.Server
	boardCfg := appConfig.Leaderboard

	tuning, err := appConfig.Tuning()
	if err != nil {
		log.Fatalf("❌ Tuning: %v", err)
	}
	if appConfig.TuningPath != "" {
		log.Printf("🎛️ Tuning file: %s", appConfig.TuningPath)
	}
	log.Printf("🎮 Config: %d TPS, %.0fx%.0f field", tuning.TickRate, tuning.Width, tuning.Height)

	// Leaderboard backend and the async gateway in front of it
	store, err := boardCfg.Store()
	if err != nil {
		log.Fatalf("❌ Leaderboard: %v", err)
	}
	gateway := leaderboard.NewGateway(store, boardCfg.Gateway())
	gateway.OnResult = api.RecordLeaderboardResult
	gateway.Start()
	log.Printf("🏆 Leaderboard: %s", describeBoard(boardCfg))

	// The in-process table is also served over /rest/v1 so other instances
	// can use this server as their remote backend.
	var scores api.ScoreTable
	if ms, ok := store.(*leaderboard.MemoryStore); ok {
		scores = ms
		if serverCfg.ScoresAPIKey == "" {
			log.Println("⚠️ SCORES_API_KEY not set - /rest/v1 is open")
		}
	}

	engine := game.NewEngine(game.EngineConfig{
		Tuning: tuning,
		Limits: appConfig.Limits,
	}, gateway)
	engine.OnTick = api.TickObserver()

	if err := engine.StartEventLog(appConfig.EventLog.Path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	renderer, err := render.New(render.Config{
		Width:    appConfig.Display.Width,
		Height:   appConfig.Display.Height,
		FontPath: os.Getenv("FONT_PATH"),
	})
	if err != nil {
		log.Printf("⚠️ Frame renderer disabled: %v", err)
	} else {
		log.Printf("🖼️ Frame renderer font: %s", renderer.Stats().Font)
	}

	debugCfg := api.DefaultObservabilityConfig()
	debugCfg.Enabled = serverCfg.DebugAddr != ""
	debugCfg.ListenAddr = serverCfg.DebugAddr
	debugCfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	debugCfg.BasicAuthPass = os.Getenv("DEBUG_PASS")
	debugServer := api.StartDebugServer(debugCfg)

	serverConfig := api.ServerConfig{
		Engine:       engine,
		Gateway:      gateway,
		Scores:       scores,
		ScoresTable:  boardCfg.Table,
		ScoresAPIKey: serverCfg.ScoresAPIKey,
		CORSOrigins:  serverCfg.CORSOrigins,
		StateHz:      serverCfg.StateHz,
	}
	if renderer != nil {
		serverConfig.Renderer = renderer
	}
	server := api.NewServer(serverConfig)

	engine.Start()
	log.Printf("✅ Game engine started (run %s)", engine.RunID())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go exportEventLogMetrics(ctx, engine)

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		log.Printf("🖼️ Live frame: http://localhost%s/api/frame.png", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	api.ShutdownDebugServer(shutdownCtx, debugServer)
	engine.Stop()
	gateway.Stop()
	engine.StopEventLog()
	log.Println("👋 Goodbye!")
}

// exportEventLogMetrics mirrors the event log counters into Prometheus.
func exportEventLogMetrics(ctx context.Context, engine *game.Engine) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var counters api.EventLogCounters
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := engine.GetEventLogStats()
			total, _ := stats["total"].(uint64)
			dropped, _ := stats["dropped"].(uint64)
			counters.Update(total, dropped)
		}
	}
}

func describeBoard(cfg config.LeaderboardConfig) string {
	switch cfg.Mode {
	case config.LeaderboardRemote:
		return "remote " + cfg.URL + " (table " + cfg.Table + ")"
	case config.LeaderboardMemory:
		return "in-memory (served at /rest/v1/" + cfg.Table + ")"
	}
	return "offline (placeholder ranking)"
}

// =============================================================================
// ZOMBIE SHOOTER - TERMINAL CLIENT
// =============================================================================
// Plays the game in a terminal. The client steps its own engine once per
// frame, so nothing else needs to be running; the leaderboard uses the same
// backend settings as the server (LEADERBOARD_MODE, SUPABASE_URL, ...).
//
// USAGE:
//   go run ./cmd/zombies
//
// Arrows/WASD move, space or mouse click fires, Enter starts, L shows the
// leaderboard, Esc goes back. Logs go to ZOMBIES_LOG (discarded if unset).
// =============================================================================
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"zombie-shooter/internal/config"
	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"
	"zombie-shooter/internal/render"
	"zombie-shooter/internal/terminal"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "zombies:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load("../.env"); err != nil {
		godotenv.Load(".env")
	}

	// The screen owns stdout, so logs go to a file or nowhere.
	if path := os.Getenv("ZOMBIES_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	appConfig := config.Load()
	tuning, err := appConfig.Tuning()
	if err != nil {
		return err
	}

	store, err := appConfig.Leaderboard.Store()
	if err != nil {
		return err
	}
	gateway := leaderboard.NewGateway(store, appConfig.Leaderboard.Gateway())
	gateway.Start()
	defer gateway.Stop()

	seed, _ := strconv.ParseInt(os.Getenv("SEED"), 10, 64)
	engine := game.NewEngine(game.EngineConfig{
		Tuning: tuning,
		Seed:   seed,
		Limits: appConfig.Limits,
	}, gateway)

	if err := engine.StartEventLog(appConfig.EventLog.Path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	}
	defer engine.StopEventLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := terminal.NewClient(screen, engine, tuning.TickRate, tuning.Width, tuning.Height)
	log.Printf("🎮 Terminal client started (run %s, seed %d)", engine.RunID(), engine.GetSnapshot().RNGSeed)

	err = client.Run(ctx)
	log.Printf("👋 %d frames drawn", client.Frames())

	if path := os.Getenv("SCREENSHOT_PATH"); path != "" {
		saveScreenshot(path, engine.GetSnapshot(), appConfig.Display)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// saveScreenshot writes the final snapshot as a PNG.
func saveScreenshot(path string, snap *game.GameSnapshot, display config.DisplayConfig) {
	r, err := render.New(render.Config{
		Width:    display.Width,
		Height:   display.Height,
		FontPath: os.Getenv("FONT_PATH"),
	})
	if err != nil {
		log.Printf("⚠️ Screenshot skipped: %v", err)
		return
	}
	if err := r.SavePNG(path, snap); err != nil {
		log.Printf("⚠️ Screenshot failed: %v", err)
		return
	}
	log.Printf("🖼️ Screenshot saved to %s", path)
}

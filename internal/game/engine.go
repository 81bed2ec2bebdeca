package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EngineConfig configures a real-time engine.
type EngineConfig struct {
	TickRate int            // Ticks per second (default: Tuning.TickRate)
	Tuning   Tuning         // Gameplay numbers (zero value: defaults)
	Seed     int64          // RNG seed (0: time-based)
	Limits   ResourceLimits // Snapshot caps (zero value: DefaultLimits)
}

// EngineStats is the engine's view for /api/stats.
type EngineStats struct {
	RunID        string  `json:"runId"`
	Running      bool    `json:"running"`
	TickRate     int     `json:"tickRate"`
	Ticks        uint64  `json:"ticks"`
	Mode         string  `json:"mode"`
	Wave         int     `json:"wave"`
	Score        int     `json:"score"`
	Hostiles     int     `json:"hostiles"`
	Projectiles  int     `json:"projectiles"`
	Collectibles int     `json:"collectibles"`
	GameOvers    int     `json:"gameOvers"`
	AvgTickMs    float64 `json:"avgTickMs"`
}

// TickInfo is handed to the OnTick hook after every tick.
type TickInfo struct {
	Duration     time.Duration
	Mode         Mode
	Wave         int
	Hostiles     int
	Projectiles  int
	Collectibles int
}

// Engine runs a Session on a ticker. Input arrives from any goroutine and is
// latched until the next tick; readers get lock-free snapshots.
type Engine struct {
	mu      sync.Mutex
	session *Session
	pending Input

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	runID    string

	// Snapshot system for lock-free render separation
	snapshotPool *SnapshotPool

	// Event sourcing for replay and debugging
	eventLog *EventLog

	// Stats
	avgTick time.Duration

	// OnTick, if set, runs on the tick goroutine after each snapshot is
	// published. Set it before Start.
	OnTick func(TickInfo)
}

// NewEngine creates an engine on the title screen. board may be nil for an
// offline leaderboard.
func NewEngine(cfg EngineConfig, board ScoreBoard) *Engine {
	t := cfg.Tuning.Normalize()
	if cfg.TickRate <= 0 {
		cfg.TickRate = t.TickRate
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Limits == (ResourceLimits{}) {
		cfg.Limits = DefaultLimits
	}

	e := &Engine{
		tickRate:     cfg.TickRate,
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
		runID:        uuid.NewString(),
		snapshotPool: NewSnapshotPool(cfg.Limits),
		eventLog:     NewEventLog(),
	}
	e.session = NewSession(t, cfg.Seed, board, e.eventLog)
	e.session.SetSource(e.runID)
	e.publish()
	return e
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS (run %s)", e.tickRate, e.runID)
}

// Stop stops the game loop and waits for the current tick to finish.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.ticker.Stop()
	close(e.stopChan)
	e.mu.Unlock()

	<-e.done
	log.Println("🛑 Game engine stopped")
}

// tick is called at tickRate times per second
func (e *Engine) tick() {
	start := time.Now()

	e.mu.Lock()
	in := e.pending
	e.pending = Input{}
	e.session.Advance(in)
	e.publish()
	info := e.tickInfo()
	info.Duration = time.Since(start)
	e.avgTick = (e.avgTick*9 + info.Duration) / 10
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(info)
	}
}

// Step advances one tick synchronously. Used by tests and the terminal
// client when it drives the engine itself.
func (e *Engine) Step(in Input) *GameSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Advance(e.pending.Merge(in))
	e.pending = Input{}
	e.publish()
	return e.snapshotPool.AcquireRead()
}

// publish copies the session into the next snapshot slot. Caller holds mu
// (or is the constructor).
func (e *Engine) publish() {
	snap := e.snapshotPool.AcquireWrite()
	e.session.Fill(snap)
	e.snapshotPool.PublishWrite()
}

func (e *Engine) tickInfo() TickInfo {
	s := e.session
	return TickInfo{
		Mode:         s.Mode,
		Wave:         s.Waves.Wave,
		Hostiles:     len(s.Hostiles),
		Projectiles:  len(s.Projectiles),
		Collectibles: len(s.Collectibles),
	}
}

// SubmitInput latches input for the next tick. Inputs arriving between two
// ticks are merged so typed text and one-shot actions are not lost.
func (e *Engine) SubmitInput(in Input) {
	e.mu.Lock()
	e.pending = e.pending.Merge(in)
	e.mu.Unlock()
}

// GetSnapshot returns the latest published snapshot (lock-free).
func (e *Engine) GetSnapshot() *GameSnapshot {
	return e.snapshotPool.AcquireRead()
}

// RunID identifies this engine's events and snapshots.
func (e *Engine) RunID() string {
	return e.runID
}

// StartEventLog begins writing events to filePath (JSONL).
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog flushes and closes the event log.
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log counters.
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// GetLimits returns the snapshot caps.
func (e *Engine) GetLimits() ResourceLimits {
	return e.snapshotPool.GetLimits()
}

// Stats returns a point-in-time summary.
func (e *Engine) Stats() EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	return EngineStats{
		RunID:        e.runID,
		Running:      e.running,
		TickRate:     e.tickRate,
		Ticks:        s.Frames,
		Mode:         s.Mode.String(),
		Wave:         s.Waves.Wave,
		Score:        s.Player.Score,
		Hostiles:     len(s.Hostiles),
		Projectiles:  len(s.Projectiles),
		Collectibles: len(s.Collectibles),
		GameOvers:    s.gameOvers,
		AvgTickMs:    float64(e.avgTick) / float64(time.Millisecond),
	}
}

package game

import (
	"sync/atomic"
	"time"

	"zombie-shooter/internal/leaderboard"
)

// ResourceLimits caps how many entities of each kind a snapshot carries.
// The simulation itself is never truncated; only what is published is.
type ResourceLimits struct {
	MaxHostiles     int
	MaxProjectiles  int
	MaxCollectibles int
	MaxEffects      int // Per kind: splatters and explosions
	MaxObstacles    int
	MaxBoardRows    int
}

// DefaultLimits comfortably exceeds anything the wave scheduler can produce.
var DefaultLimits = ResourceLimits{
	MaxHostiles:     256,
	MaxProjectiles:  512,
	MaxCollectibles: 64,
	MaxEffects:      128,
	MaxObstacles:    64,
	MaxBoardRows:    leaderboard.DefaultTopN,
}

// GameSnapshot is a complete copy of session state for rendering and the
// API. Entities are stored by value so the renderer never shares memory
// with the simulation.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"` // When snapshot was created
	TickNumber uint64    `json:"tick"`      // Playing tick this represents
	Frame      uint64    `json:"frame"`     // Advance calls in any mode
	RunID      string    `json:"runId,omitempty"`
	RNGSeed    int64     `json:"seed"`

	Mode   Mode    `json:"mode"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Player       Player          `json:"player"`
	Waves        WaveScheduler   `json:"waves"`
	Hostiles     []Hostile       `json:"hostiles"`
	Projectiles  []Projectile    `json:"projectiles"`
	Collectibles []Collectible   `json:"collectibles"`
	Splatters    []BloodSplatter `json:"splatters"`
	Explosions   []Explosion     `json:"explosions"`
	Obstacles    []Obstacle      `json:"obstacles"`
	Message      Message         `json:"message"`

	Entry NameEntry `json:"nameEntry"`
	Board BoardView `json:"leaderboard"`

	// Aggregate stats
	Kills     int `json:"kills"`
	GameOvers int `json:"gameOvers"`

	waveDuration int
}

// NewGameSnapshot allocates a snapshot with capacity for limits.
func NewGameSnapshot(limits ResourceLimits) *GameSnapshot {
	return &GameSnapshot{
		Hostiles:     make([]Hostile, 0, limits.MaxHostiles),
		Projectiles:  make([]Projectile, 0, limits.MaxProjectiles),
		Collectibles: make([]Collectible, 0, limits.MaxCollectibles),
		Splatters:    make([]BloodSplatter, 0, limits.MaxEffects),
		Explosions:   make([]Explosion, 0, limits.MaxEffects),
		Obstacles:    make([]Obstacle, 0, limits.MaxObstacles),
		Board:        BoardView{Entries: make([]leaderboard.Entry, 0, limits.MaxBoardRows)},
	}
}

// reset empties every slice but keeps capacity.
func (g *GameSnapshot) reset() {
	g.Hostiles = g.Hostiles[:0]
	g.Projectiles = g.Projectiles[:0]
	g.Collectibles = g.Collectibles[:0]
	g.Splatters = g.Splatters[:0]
	g.Explosions = g.Explosions[:0]
	g.Obstacles = g.Obstacles[:0]
	g.Board.Entries = g.Board.Entries[:0]
}

// WaveProgress is the fraction of the current wave already elapsed.
func (g *GameSnapshot) WaveProgress() float64 {
	if g.waveDuration <= 0 {
		return 0
	}
	return float64(g.Waves.Timer) / float64(g.waveDuration)
}

// Fill copies the session into snap, respecting the capacity snap was
// allocated with. Slices are appended up to their capacity and no further.
func (s *Session) Fill(snap *GameSnapshot) {
	snap.reset()

	snap.TickNumber = s.Tick
	snap.Frame = s.Frames
	snap.RunID = s.source
	snap.RNGSeed = s.seed
	snap.Mode = s.Mode
	snap.Width = s.tuning.Width
	snap.Height = s.tuning.Height
	snap.waveDuration = s.tuning.WaveDuration

	snap.Player = *s.Player
	snap.Waves = *s.Waves
	snap.Message = s.Message
	snap.Entry = s.Entry
	snap.Kills = s.kills
	snap.GameOvers = s.gameOvers

	snap.Hostiles = appendValues(snap.Hostiles, s.Hostiles)
	snap.Projectiles = appendValues(snap.Projectiles, s.Projectiles)
	snap.Collectibles = appendValues(snap.Collectibles, s.Collectibles)
	snap.Splatters = appendValues(snap.Splatters, s.Splatters)
	snap.Explosions = appendValues(snap.Explosions, s.Explosions)
	snap.Obstacles = appendValues(snap.Obstacles, s.Obstacles)

	// Published rows carry masked emails only.
	entries := snap.Board.Entries
	snap.Board = s.Board
	snap.Board.Entries = entries
	limit := cap(entries)
	for _, e := range s.Board.Entries {
		if limit > 0 && len(snap.Board.Entries) == limit {
			break
		}
		e.Email = e.MaskedEmail()
		snap.Board.Entries = append(snap.Board.Entries, e)
	}
}

// appendValues copies pointed-to values into dst without growing it past
// its capacity. A zero-capacity dst grows freely.
func appendValues[T any](dst []T, src []*T) []T {
	limit := cap(dst)
	for _, v := range src {
		if limit > 0 && len(dst) == limit {
			break
		}
		dst = append(dst, *v)
	}
	return dst
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure
// Uses triple buffering for lock-free producer/consumer
type SnapshotPool struct {
	snapshots [3]*GameSnapshot // Triple buffer
	limits    ResourceLimits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
	published atomic.Bool
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := range pool.snapshots {
		pool.snapshots[i] = NewGameSnapshot(limits)
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from game tick)
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := p.snapshots[idx]

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances read pointer
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
	p.published.Store(true)
}

// AcquireRead gets the latest complete snapshot (consumer only). The slot
// stays untouched for the next two publishes. Returns nil before the first
// publish.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	if !p.published.Load() {
		return nil
	}
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return p.snapshots[idx]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() ResourceLimits {
	return p.limits
}

package game

import (
	"errors"
	"log"
	"math"
	"math/rand"

	"zombie-shooter/internal/game/spatial"
	"zombie-shooter/internal/leaderboard"
)

// Mode is the screen the session is on. Only ModePlaying runs the simulation.
type Mode uint8

const (
	ModeTitle Mode = iota
	ModePlaying
	ModeGameOver
	ModeNameEntry
	ModeLeaderboard
)

func (m Mode) String() string {
	switch m {
	case ModeTitle:
		return "title"
	case ModePlaying:
		return "playing"
	case ModeGameOver:
		return "game_over"
	case ModeNameEntry:
		return "name_entry"
	case ModeLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BoardStatus tracks the leaderboard connection as last observed.
type BoardStatus uint8

const (
	BoardUnknown BoardStatus = iota
	BoardLoading
	BoardConnected
	BoardOffline
	BoardError
)

func (s BoardStatus) String() string {
	switch s {
	case BoardLoading:
		return "loading"
	case BoardConnected:
		return "connected"
	case BoardOffline:
		return "offline"
	case BoardError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s BoardStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// BoardView is the leaderboard as the session currently shows it.
type BoardView struct {
	Status     BoardStatus         `json:"status"`
	Entries    []leaderboard.Entry `json:"entries"`
	Message    string              `json:"message,omitempty"`
	Generation uint64              `json:"generation"`
}

// ScoreBoard is the async leaderboard boundary. *leaderboard.Gateway
// implements it; requests return immediately and completions are drained by
// Poll at the start of every tick.
type ScoreBoard interface {
	RequestTop(n int) uint64
	Submit(e leaderboard.Entry) (uint64, error)
	Poll() []leaderboard.Result
}

// offlineBoard answers every request with ErrConnectionUnavailable on the
// next Poll. It needs no workers.
type offlineBoard struct {
	gen     uint64
	results []leaderboard.Result
}

func (b *offlineBoard) RequestTop(n int) uint64 {
	b.gen++
	b.results = append(b.results, leaderboard.Result{
		Kind:       leaderboard.JobFetch,
		Generation: b.gen,
		Err:        leaderboard.ErrConnectionUnavailable,
	})
	return b.gen
}

func (b *offlineBoard) Submit(e leaderboard.Entry) (uint64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	b.gen++
	b.results = append(b.results, leaderboard.Result{
		Kind:       leaderboard.JobSubmit,
		Generation: b.gen,
		Entry:      e.Normalized(),
		Err:        leaderboard.ErrConnectionUnavailable,
	})
	return b.gen, nil
}

func (b *offlineBoard) Poll() []leaderboard.Result {
	out := b.results
	b.results = nil
	return out
}

// EventSink receives domain events. *EventLog implements it.
type EventSink interface {
	EmitSimple(eventType EventType, tickNum uint64, source string, payload interface{}) bool
}

type discardEvents struct{}

func (discardEvents) EmitSimple(EventType, uint64, string, interface{}) bool { return false }

// Session owns the whole game state and advances it one tick at a time.
// It is not safe for concurrent use; Engine serializes access.
type Session struct {
	tuning Tuning
	rng    *rand.Rand
	seed   int64
	board  ScoreBoard
	events EventSink
	source string

	Mode   Mode
	Tick   uint64 // Playing ticks since the current game started
	Frames uint64 // Advance calls in any mode

	Player       *Player
	Waves        *WaveScheduler
	Hostiles     []*Hostile
	Projectiles  []*Projectile
	Collectibles []*Collectible
	Splatters    []*BloodSplatter
	Explosions   []*Explosion
	Obstacles    []*Obstacle
	Message      Message

	Entry NameEntry
	Board BoardView

	grid *spatial.Grid // Hostile broad phase, rebuilt per tick

	fetchGen  uint64 // Latest issued fetch; older results are stale
	submitGen uint64 // In-flight submit, 0 if none
	kills     int
	gameOvers int
}

// NewSession creates a session on the title screen. A nil board behaves as
// an unreachable leaderboard; a nil sink discards events.
func NewSession(t Tuning, seed int64, board ScoreBoard, events EventSink) *Session {
	t = t.Normalize()
	if board == nil {
		board = &offlineBoard{}
	}
	if events == nil {
		events = discardEvents{}
	}
	s := &Session{
		tuning: t,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		board:  board,
		events: events,
		Mode:   ModeTitle,
		Player: NewPlayer(t),
		Waves:  NewWaveScheduler(t),
		grid:   spatial.NewGrid(t.Width, t.Height, gridCellSize),
	}
	s.Obstacles = GenerateObstacles(s.rng, t)
	return s
}

// SetSource tags every emitted event with a run identifier.
func (s *Session) SetSource(id string) { s.source = id }

// Tuning returns the normalized tuning the session runs with.
func (s *Session) Tuning() Tuning { return s.tuning }

// Seed returns the seed the session's RNG started from.
func (s *Session) Seed() int64 { return s.seed }

// Kills returns hostiles destroyed by projectiles in the current game.
func (s *Session) Kills() int { return s.kills }

// GameOvers returns how many games have ended since the session was created.
func (s *Session) GameOvers() int { return s.gameOvers }

// Advance runs one tick: leaderboard completions are applied first, then
// the current mode handles the input. It never fails; a zero Input is a
// tick with no input.
func (s *Session) Advance(in Input) {
	s.Frames++
	s.pollBoard()

	switch s.Mode {
	case ModeTitle:
		switch in.Action {
		case ActionStart, ActionSubmit:
			s.Start()
		case ActionShowLeaderboard:
			s.openLeaderboard()
		}

	case ModePlaying:
		s.simulate(in)

	case ModeGameOver:
		switch in.Action {
		case ActionStart:
			s.Start()
		case ActionSubmit:
			s.Entry = NameEntry{}
			s.Mode = ModeNameEntry
		case ActionSkip, ActionBack:
			s.Mode = ModeTitle
		case ActionShowLeaderboard:
			s.openLeaderboard()
		}

	case ModeNameEntry:
		s.updateNameEntry(in)

	case ModeLeaderboard:
		switch in.Action {
		case ActionBack, ActionSkip:
			s.Mode = ModeTitle
		case ActionRefresh:
			s.requestTop()
		case ActionStart:
			s.Start()
		}
	}
}

// Step advances one tick and returns a fresh snapshot of the result.
func (s *Session) Step(in Input) *GameSnapshot {
	s.Advance(in)
	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)
	return snap
}

// Start begins a new game, discarding any previous one.
func (s *Session) Start() {
	t := s.tuning
	s.Player = NewPlayer(t)
	s.Waves = NewWaveScheduler(t)
	s.Hostiles = s.Hostiles[:0]
	s.Projectiles = s.Projectiles[:0]
	s.Collectibles = s.Collectibles[:0]
	s.Splatters = s.Splatters[:0]
	s.Explosions = s.Explosions[:0]
	s.Obstacles = GenerateObstacles(s.rng, t)
	s.Message = Message{}
	s.Tick = 0
	s.kills = 0
	s.Mode = ModePlaying

	s.emit(EventTypeSessionStart, SessionStartPayload{Seed: s.seed, Obstacles: len(s.Obstacles)})
}

// simulate is the fixed per-tick order of the playing mode.
func (s *Session) simulate(in Input) {
	s.Tick++

	s.applyInput(in)
	s.advanceWaves()
	s.updateHostiles()
	s.updateProjectiles()
	s.updateCollectibles()
	s.tickPowerUps()
	s.updateEffects()
	s.assist()

	s.Hostiles = sweep(s.Hostiles)
	s.Projectiles = sweep(s.Projectiles)
	s.Collectibles = sweep(s.Collectibles)
	s.Splatters = sweep(s.Splatters)
	s.Explosions = sweep(s.Explosions)

	if rate := uint64(s.tuning.TickRate); rate > 0 && s.Tick%rate == 0 {
		s.emit(EventTypeTick, TickPayload{
			RNGSeed:      s.seed,
			Hostiles:     len(s.Hostiles),
			Projectiles:  len(s.Projectiles),
			Collectibles: len(s.Collectibles),
			Wave:         s.Waves.Wave,
		})
	}
}

func (s *Session) applyInput(in Input) {
	p := s.Player
	p.Move(in.Up, in.Down, in.Left, in.Right)
	if in.HasPointer {
		p.AimAt(in.PointerX, in.PointerY)
	}

	if in.Fire && p.Cooldown == 0 {
		s.fire()
	}
	if p.Cooldown > 0 {
		p.Cooldown--
	}
}

// fire shoots from the player's center along its aim. Rapid Fire spreads
// three shots and halves the cooldown.
func (s *Session) fire() {
	p := s.Player
	cx, cy := p.Center()

	if p.Active(RapidFire) {
		spread := s.tuning.RapidFireSpread
		for _, a := range [3]float64{p.Angle - spread, p.Angle, p.Angle + spread} {
			s.Projectiles = append(s.Projectiles, NewProjectile(cx, cy, a, ShooterPlayer, s.tuning))
		}
		p.Cooldown = s.tuning.RapidFireCooldown
		return
	}

	s.Projectiles = append(s.Projectiles, NewProjectile(cx, cy, p.Angle, ShooterPlayer, s.tuning))
	p.Cooldown = s.tuning.FireCooldown
}

func (s *Session) advanceWaves() {
	spawn, rolled := s.Waves.Advance(s.Tick, len(s.Hostiles))
	if rolled {
		s.emit(EventTypeWaveStart, WavePayload{
			Wave:     s.Waves.Wave,
			PerWave:  s.Waves.PerWave,
			Capacity: s.Waves.Capacity(),
		})
	}
	if spawn {
		h := SpawnHostile(s.rng, s.tuning)
		s.Hostiles = append(s.Hostiles, h)
		s.emit(EventTypeHostileSpawn, SpawnPayload{Edge: h.Edge, X: h.X, Y: h.Y, Live: len(s.Hostiles)})
	}
}

// updateHostiles walks every hostile toward the player and resolves contact.
// A hostile touching the player is always removed, shield or not.
func (s *Session) updateHostiles() {
	p := s.Player
	tx, ty := p.Center()

	for _, h := range s.Hostiles {
		h.Chase(tx, ty)
		if !h.Bounds().Overlaps(p.Bounds()) {
			continue
		}

		h.Kill()
		hx, hy := h.Center()
		s.Splatters = append(s.Splatters, NewBloodSplatter(hx, hy, s.rng))

		if p.Active(Shield) {
			s.emit(EventTypeShieldBlock, HitPayload{Health: p.Health, X: hx, Y: hy})
			continue
		}

		p.TakeDamage(s.tuning.ContactDamage)
		s.emit(EventTypePlayerHit, HitPayload{Damage: s.tuning.ContactDamage, Health: p.Health, X: hx, Y: hy})
		if p.IsDead() {
			s.gameOver()
		}
	}
}

// gameOver fires once per game; the rest of the tick still completes.
func (s *Session) gameOver() {
	if s.Mode != ModePlaying {
		return
	}
	s.Mode = ModeGameOver
	s.gameOvers++
	s.emit(EventTypeGameOver, GameOverPayload{Score: s.Player.Score, Wave: s.Waves.Wave, Ticks: int(s.Tick)})
	log.Printf("💀 Game over: score %d, wave %d", s.Player.Score, s.Waves.Wave)
}

// gridCellSize is about the size of the largest hostile.
const gridCellSize = 64

// indexHostiles rebuilds the broad-phase grid and returns the largest half
// extent of any live hostile, the margin a query must add.
func (s *Session) indexHostiles() float64 {
	s.grid.Reset()
	reach := 0.0
	for i, h := range s.Hostiles {
		if !h.Alive() {
			continue
		}
		b := h.Bounds()
		cx, cy := b.Center()
		s.grid.Insert(uint32(i), cx, cy)
		reach = math.Max(reach, math.Max(b.W, b.H)/2)
	}
	return reach
}

// firstHit returns the first live hostile, in slice order, overlapping box.
func (s *Session) firstHit(box Hitbox, reach float64) *Hostile {
	for _, i := range s.grid.Query(box.X-reach, box.Y-reach, box.X+box.W+reach, box.Y+box.H+reach) {
		h := s.Hostiles[i]
		if h.Alive() && box.Overlaps(h.Bounds()) {
			return h
		}
	}
	return nil
}

// updateProjectiles moves every projectile and lets each one destroy at most
// one hostile: the earliest in spawn order among those it overlaps.
func (s *Session) updateProjectiles() {
	reach := s.indexHostiles()

	for _, pr := range s.Projectiles {
		if !pr.Update() {
			continue
		}
		h := s.firstHit(pr.Bounds(), reach)
		if h == nil {
			continue
		}

		pr.Kill()
		h.Kill()
		s.kills++
		s.Player.Score += s.tuning.KillScore

		hx, hy := h.Center()
		s.Splatters = append(s.Splatters, NewBloodSplatter(hx, hy, s.rng))
		s.Explosions = append(s.Explosions, NewExplosion(hx, hy))
		s.emit(EventTypeHostileKilled, KillPayload{Shooter: pr.Shooter, X: hx, Y: hy, Score: s.Player.Score})

		if s.rng.Float64() < s.tuning.DropChance {
			kind := RandomPowerUp(s.rng)
			s.Collectibles = append(s.Collectibles, NewCollectible(hx, hy, kind))
			s.emit(EventTypePowerUpDrop, PowerUpPayload{Kind: kind, X: hx, Y: hy})
		}
	}
}

func (s *Session) updateCollectibles() {
	p := s.Player
	reach := p.Bounds().Expand(s.tuning.PickupMargin)

	for _, c := range s.Collectibles {
		c.Update()
		if !reach.Overlaps(c.Bounds()) {
			continue
		}

		c.Kill()
		p.Activate(c.Kind)
		s.say(c.Kind.String()+" activated!", s.tuning.ActivatedMessageTicks)
		s.emit(EventTypePowerUpActivated, PowerUpPayload{Kind: c.Kind, X: c.X, Y: c.Y})
	}
}

func (s *Session) tickPowerUps() {
	for _, kind := range s.Player.TickPowerUps() {
		s.say(kind.String()+" expired", s.tuning.ExpiredMessageTicks)
		s.emit(EventTypePowerUpExpired, PowerUpPayload{Kind: kind})
	}
}

func (s *Session) updateEffects() {
	for _, b := range s.Splatters {
		b.Update()
	}
	for _, e := range s.Explosions {
		e.Update()
	}
	if !s.Message.Update() {
		s.Message = Message{}
	}
}

// assist auto-fires at the nearest hostile every AssistInterval ticks while
// the AI Assistant is active. It ignores the manual cooldown.
func (s *Session) assist() {
	p := s.Player
	interval := uint64(s.tuning.AssistInterval)
	if !p.Active(AiAssistant) || interval == 0 || s.Tick%interval != 0 {
		return
	}

	target := s.nearestHostile()
	if target == nil {
		return
	}

	cx, cy := p.Center()
	hx, hy := target.Center()
	s.Projectiles = append(s.Projectiles, NewProjectile(cx, cy, angleTo(cx, cy, hx, hy), ShooterAssist, s.tuning))
}

// nearestHostile returns the live hostile whose center is closest to the
// player's center. Ties go to the earlier hostile.
func (s *Session) nearestHostile() *Hostile {
	cx, cy := s.Player.Center()
	var best *Hostile
	bestDist := math.Inf(1)
	for _, h := range s.Hostiles {
		if !h.Alive() {
			continue
		}
		hx, hy := h.Center()
		if d := distanceSq(cx, cy, hx, hy); d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// say replaces the single HUD message.
func (s *Session) say(text string, ticks int) {
	s.Message = Message{Text: text, Ticks: ticks}
}

func (s *Session) updateNameEntry(in Input) {
	e := &s.Entry
	switch in.Action {
	case ActionSkip, ActionBack:
		s.submitGen = 0
		s.Entry = NameEntry{}
		s.Mode = ModeTitle
		return
	}
	if e.Pending {
		return
	}

	if in.Action == ActionFocusNext {
		e.ToggleFocus()
	}
	if in.Text != "" {
		e.Apply(in.Text)
	}
	if in.Action == ActionSubmit {
		s.submitScore()
	}
}

// submitScore validates locally, then hands the row to the gateway and
// waits in name entry until the result arrives.
func (s *Session) submitScore() {
	e := &s.Entry
	row := leaderboard.Entry{Name: e.Name, Email: e.Email, Score: s.Player.Score}

	gen, err := s.board.Submit(row)
	if err != nil {
		e.Notice = leaderboard.Reason(err)
		return
	}
	s.submitGen = gen
	e.Pending = true
	e.Notice = "Saving score..."
}

func (s *Session) openLeaderboard() {
	s.Mode = ModeLeaderboard
	s.requestTop()
}

// requestTop issues a fetch. Entries already shown stay visible while it is
// outstanding.
func (s *Session) requestTop() {
	s.fetchGen = s.board.RequestTop(leaderboard.DefaultTopN)
	s.Board.Status = BoardLoading
	s.Board.Message = ""
}

// pollBoard applies every completed leaderboard request.
func (s *Session) pollBoard() {
	for _, res := range s.board.Poll() {
		switch res.Kind {
		case leaderboard.JobFetch:
			s.applyFetch(res)
		case leaderboard.JobSubmit:
			s.applySubmit(res)
		}
	}
}

func (s *Session) applyFetch(res leaderboard.Result) {
	if res.Generation < s.fetchGen {
		return
	}

	switch {
	case res.Err == nil:
		s.Board = BoardView{Status: BoardConnected, Entries: res.Entries, Generation: res.Generation}
	case errors.Is(res.Err, leaderboard.ErrConnectionUnavailable):
		s.Board = BoardView{
			Status:     BoardOffline,
			Entries:    leaderboard.Placeholder(),
			Message:    "Leaderboard offline, showing sample scores",
			Generation: res.Generation,
		}
	default:
		entries := s.Board.Entries
		if len(entries) == 0 {
			entries = leaderboard.Placeholder()
		}
		s.Board = BoardView{
			Status:     BoardError,
			Entries:    entries,
			Message:    "Error loading leaderboard: " + leaderboard.Reason(res.Err),
			Generation: res.Generation,
		}
	}

	s.emit(EventTypeLeaderboardLoaded, LeaderboardPayload{
		Generation: res.Generation,
		Rows:       len(s.Board.Entries),
		Status:     s.Board.Status.String(),
	})
}

func (s *Session) applySubmit(res leaderboard.Result) {
	if res.Generation != s.submitGen || s.submitGen == 0 {
		return
	}
	s.submitGen = 0
	s.Entry.Pending = false

	if res.Err != nil {
		s.Entry.Notice = "Error saving score: " + leaderboard.Reason(res.Err)
		return
	}

	s.emit(EventTypeScoreSubmitted, ScorePayload{
		Name:  res.Entry.Name,
		Email: res.Entry.MaskedEmail(),
		Score: res.Entry.Score,
	})
	s.Entry = NameEntry{}
	s.openLeaderboard()
}

func (s *Session) emit(t EventType, payload interface{}) {
	s.events.EmitSimple(t, s.Tick, s.source, payload)
}

// sweep drops dead entities in place, keeping order.
func sweep[T interface{ Alive() bool }](items []T) []T {
	n := 0
	for _, it := range items {
		if it.Alive() {
			items[n] = it
			n++
		}
	}
	clear(items[n:])
	return items[:n]
}

package game

import (
	"fmt"
	"math"
)

// Player is the single survivor controlled by input. X and Y are the
// top-left corner of its box.
type Player struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Angle     float64 `json:"angle"` // Aim heading in radians
	BaseSpeed float64 `json:"baseSpeed"`
	Speed     float64 `json:"speed"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Score     int     `json:"score"`
	Cooldown  int     `json:"cooldown"` // Ticks until the next manual shot

	// Remaining ticks per power-up kind; 0 means inactive.
	PowerUps [powerUpKindCount]int `json:"powerUps"`

	boostFactor float64
	fieldW      float64
	fieldH      float64
}

// NewPlayer creates a player centered in the play field.
func NewPlayer(t Tuning) *Player {
	return &Player{
		X:           t.Width/2 - t.PlayerSize/2,
		Y:           t.Height/2 - t.PlayerSize/2,
		Size:        t.PlayerSize,
		BaseSpeed:   t.PlayerSpeed,
		Speed:       t.PlayerSpeed,
		Health:      t.MaxHealth,
		MaxHealth:   t.MaxHealth,
		boostFactor: t.SpeedBoostFactor,
		fieldW:      t.Width,
		fieldH:      t.Height,
	}
}

// Bounds returns the player's hitbox.
func (p *Player) Bounds() Hitbox {
	return Hitbox{X: p.X, Y: p.Y, W: p.Size, H: p.Size}
}

// Center returns the midpoint of the player's box.
func (p *Player) Center() (float64, float64) {
	return p.X + p.Size/2, p.Y + p.Size/2
}

// Move steps the player along each pressed axis at the current speed and
// keeps the box inside the play field.
func (p *Player) Move(up, down, left, right bool) {
	if left {
		p.X -= p.Speed
	}
	if right {
		p.X += p.Speed
	}
	if up {
		p.Y -= p.Speed
	}
	if down {
		p.Y += p.Speed
	}
	p.X = clamp(p.X, 0, p.fieldW-p.Size)
	p.Y = clamp(p.Y, 0, p.fieldH-p.Size)
}

// AimAt turns the player toward a point. NaN or infinite coordinates are
// ignored.
func (p *Player) AimAt(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	cx, cy := p.Center()
	p.Angle = angleTo(cx, cy, x, y)
}

// TakeDamage reduces health, clamped to [0, MaxHealth]. A dead player
// takes no further damage.
func (p *Player) TakeDamage(amount int) {
	if amount <= 0 || p.IsDead() {
		return
	}
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
}

// IsDead reports whether the player has no health left.
func (p *Player) IsDead() bool {
	return p.Health <= 0
}

// Active reports whether a power-up currently has time left.
func (p *Player) Active(kind PowerUpKind) bool {
	return kind < powerUpKindCount && p.PowerUps[kind] > 0
}

// Remaining returns the ticks left on a power-up.
func (p *Player) Remaining(kind PowerUpKind) int {
	if kind >= powerUpKindCount {
		return 0
	}
	return p.PowerUps[kind]
}

// Activate sets a power-up to its full duration and runs its activation
// hook. Picking up an active kind restarts it; durations never stack.
func (p *Player) Activate(kind PowerUpKind) {
	if kind >= powerUpKindCount {
		return
	}
	row := powerUpTable[kind]
	p.PowerUps[kind] = row.Duration
	if row.onActivate != nil {
		row.onActivate(p)
	}
}

// TickPowerUps decrements every active power-up by one tick and returns the
// kinds that reached zero on this tick, after running their expiry hooks.
func (p *Player) TickPowerUps() []PowerUpKind {
	var expired []PowerUpKind
	for _, kind := range AllPowerUps {
		if p.PowerUps[kind] <= 0 {
			continue
		}
		p.PowerUps[kind]--
		if p.PowerUps[kind] == 0 {
			if hook := powerUpTable[kind].onExpire; hook != nil {
				hook(p)
			}
			expired = append(expired, kind)
		}
	}
	return expired
}

// String implements fmt.Stringer for log lines.
func (p *Player) String() string {
	return fmt.Sprintf("player(hp=%d score=%d at %.0f,%.0f)", p.Health, p.Score, p.X, p.Y)
}

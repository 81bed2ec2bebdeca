package game

import (
	"image/color"
	"math/rand"
)

// PowerUpKind enumerates the timed modifiers a collectible can grant.
type PowerUpKind uint8

const (
	AiAssistant PowerUpKind = iota
	SpeedBoost
	Shield
	RapidFire

	powerUpKindCount
)

// AllPowerUps lists every kind in display order.
var AllPowerUps = [powerUpKindCount]PowerUpKind{AiAssistant, SpeedBoost, Shield, RapidFire}

// powerUpRow is one row of the power-up table.
type powerUpRow struct {
	Name       string
	Duration   int // ticks
	Color      color.RGBA
	onActivate func(p *Player)
	onExpire   func(p *Player)
}

// powerUpTable maps each kind to its data and hooks. Kinds without a player
// modifier leave the hooks nil; their effect is read by the session each tick.
var powerUpTable = [powerUpKindCount]powerUpRow{
	AiAssistant: {
		Name:     "AI Assistant",
		Duration: 300,
		Color:    color.RGBA{0, 200, 255, 255},
	},
	SpeedBoost: {
		Name:     "Speed Boost",
		Duration: 180,
		Color:    color.RGBA{255, 200, 0, 255},
		onActivate: func(p *Player) {
			p.Speed = p.BaseSpeed * p.boostFactor
		},
		onExpire: func(p *Player) {
			p.Speed = p.BaseSpeed
		},
	},
	Shield: {
		Name:     "Shield",
		Duration: 240,
		Color:    color.RGBA{200, 0, 255, 255},
	},
	RapidFire: {
		Name:     "Rapid Fire",
		Duration: 200,
		Color:    color.RGBA{255, 50, 50, 255},
	},
}

// String returns the display name.
func (k PowerUpKind) String() string {
	if k >= powerUpKindCount {
		return "unknown"
	}
	return powerUpTable[k].Name
}

// Duration returns the full duration in ticks.
func (k PowerUpKind) Duration() int {
	if k >= powerUpKindCount {
		return 0
	}
	return powerUpTable[k].Duration
}

// Color returns the kind's color tag.
func (k PowerUpKind) Color() color.RGBA {
	if k >= powerUpKindCount {
		return color.RGBA{255, 255, 255, 255}
	}
	return powerUpTable[k].Color
}

// MarshalText encodes the kind by name for JSON snapshots.
func (k PowerUpKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// RandomPowerUp picks a kind uniformly.
func RandomPowerUp(rng *rand.Rand) PowerUpKind {
	return PowerUpKind(rng.Intn(int(powerUpKindCount)))
}

// Collectible is a power-up lying on the field. Its position is the center
// point; pickup uses the player's box grown by the pickup margin.
type Collectible struct {
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Kind     PowerUpKind `json:"kind"`
	Pulse    float64     `json:"pulse"` // 0..1
	pulseDir float64
	dead     bool
}

// NewCollectible places a collectible of the given kind at (x, y).
func NewCollectible(x, y float64, kind PowerUpKind) *Collectible {
	return &Collectible{X: x, Y: y, Kind: kind, pulseDir: 1}
}

// Update advances the pulse animation. Collectibles never expire on their own.
func (c *Collectible) Update() bool {
	c.Pulse += 0.1 * c.pulseDir
	if c.Pulse >= 1.0 {
		c.pulseDir = -1
	} else if c.Pulse <= 0.0 {
		c.pulseDir = 1
	}
	return !c.dead
}

// Bounds is the collectible's point box.
func (c *Collectible) Bounds() Hitbox {
	return Hitbox{X: c.X, Y: c.Y}
}

// Kill removes the collectible at the next sweep.
func (c *Collectible) Kill() { c.dead = true }

// Alive reports whether the collectible is still on the field.
func (c *Collectible) Alive() bool { return !c.dead }

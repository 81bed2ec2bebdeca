package game

import (
	"image/color"
	"math"
)

// Shooter tags who fired a projectile; it selects the projectile color.
type Shooter uint8

const (
	ShooterPlayer Shooter = iota
	ShooterAssist
)

// MarshalText encodes the shooter by name.
func (s Shooter) MarshalText() ([]byte, error) {
	if s == ShooterAssist {
		return []byte("assist"), nil
	}
	return []byte("player"), nil
}

// Projectile is a bullet traveling in a straight line at fixed speed.
// X and Y are the top-left corner of its box.
type Projectile struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	Speed   float64 `json:"speed"`
	Size    float64 `json:"size"`
	Shooter Shooter `json:"shooter"`

	fieldW float64
	fieldH float64
	dead   bool
}

// NewProjectile creates a projectile whose box is centered on (cx, cy).
func NewProjectile(cx, cy, angle float64, shooter Shooter, t Tuning) *Projectile {
	return &Projectile{
		X:       cx - t.ProjectileSize/2,
		Y:       cy - t.ProjectileSize/2,
		Angle:   angle,
		Speed:   t.ProjectileSpeed,
		Size:    t.ProjectileSize,
		Shooter: shooter,
		fieldW:  t.Width,
		fieldH:  t.Height,
	}
}

// Update moves the projectile one tick along its heading.
// Returns false once it has left the play field.
func (p *Projectile) Update() bool {
	p.X += math.Cos(p.Angle) * p.Speed
	p.Y += math.Sin(p.Angle) * p.Speed

	if !Inside(p.X, p.Y, p.fieldW, p.fieldH) {
		p.dead = true
	}
	return !p.dead
}

// Bounds returns the projectile's hitbox.
func (p *Projectile) Bounds() Hitbox {
	return Hitbox{X: p.X, Y: p.Y, W: p.Size, H: p.Size}
}

// Color distinguishes manual fire from assist fire.
func (p *Projectile) Color() color.RGBA {
	if p.Shooter == ShooterAssist {
		return AiAssistant.Color()
	}
	return color.RGBA{255, 100, 50, 255}
}

// Kill marks the projectile for removal.
func (p *Projectile) Kill() { p.dead = true }

// Alive reports whether the projectile is still in flight.
func (p *Projectile) Alive() bool { return !p.dead }

package game

import (
	"math"
	"math/rand"
)

// SpawnEdge is the screen edge a hostile entered from.
type SpawnEdge uint8

const (
	EdgeTop SpawnEdge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

func (e SpawnEdge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	default:
		return "unknown"
	}
}

// MarshalText encodes the edge by name.
func (e SpawnEdge) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Facing is the dominant axis of a hostile's last step.
type Facing uint8

const (
	FacingRight Facing = iota
	FacingDown
	FacingLeft
	FacingUp
)

// Hostile is a zombie walking straight at the player's center.
type Hostile struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Size   float64   `json:"size"`
	Speed  float64   `json:"speed"`
	Edge   SpawnEdge `json:"edge"`
	Facing Facing    `json:"facing"`
	dead   bool
}

// NewHostile places a hostile just outside the given edge. along is a 0..1
// fraction selecting the position on that edge.
func NewHostile(edge SpawnEdge, along float64, t Tuning) *Hostile {
	h := &Hostile{
		Size:  t.HostileSize,
		Speed: t.HostileSpeed,
		Edge:  edge,
	}
	along = clamp(along, 0, 1)
	switch edge {
	case EdgeTop:
		h.X = along * (t.Width - h.Size)
		h.Y = -h.Size
	case EdgeRight:
		h.X = t.Width
		h.Y = along * (t.Height - h.Size)
	case EdgeBottom:
		h.X = along * (t.Width - h.Size)
		h.Y = t.Height
	default:
		h.Edge = EdgeLeft
		h.X = -h.Size
		h.Y = along * (t.Height - h.Size)
	}
	return h
}

// SpawnHostile picks a random edge and position.
func SpawnHostile(rng *rand.Rand, t Tuning) *Hostile {
	return NewHostile(SpawnEdge(rng.Intn(4)), rng.Float64(), t)
}

// Chase moves the hostile one step toward (tx, ty) and updates its facing.
func (h *Hostile) Chase(tx, ty float64) {
	cx, cy := h.Center()
	dx := tx - cx
	dy := ty - cy
	length := math.Max(0.1, math.Hypot(dx, dy))
	dx /= length
	dy /= length

	h.X += dx * h.Speed
	h.Y += dy * h.Speed

	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			h.Facing = FacingRight
		} else {
			h.Facing = FacingLeft
		}
	} else if dy > 0 {
		h.Facing = FacingDown
	} else {
		h.Facing = FacingUp
	}
}

// Bounds returns the hostile's hitbox.
func (h *Hostile) Bounds() Hitbox {
	return Hitbox{X: h.X, Y: h.Y, W: h.Size, H: h.Size}
}

// Center returns the midpoint of the hostile's box.
func (h *Hostile) Center() (float64, float64) {
	return h.X + h.Size/2, h.Y + h.Size/2
}

// Kill marks the hostile for removal at the next sweep.
func (h *Hostile) Kill() { h.dead = true }

// Alive reports whether the hostile is still in play.
func (h *Hostile) Alive() bool { return !h.dead }

package game

import "math"

// Hitbox is an axis-aligned bounding box. Every collision in the game is an
// overlap test between two of these; there is no polygon or radius math.
type Hitbox struct {
	X, Y float64 // Top-left corner
	W, H float64
}

// Overlaps reports strict interior overlap. Boxes that only share an edge do
// not collide. A zero-sized box acts as a point.
func (h Hitbox) Overlaps(o Hitbox) bool {
	return h.X < o.X+o.W &&
		h.X+h.W > o.X &&
		h.Y < o.Y+o.H &&
		h.Y+h.H > o.Y
}

// Expand grows the box by margin on every side.
func (h Hitbox) Expand(margin float64) Hitbox {
	return Hitbox{
		X: h.X - margin,
		Y: h.Y - margin,
		W: h.W + 2*margin,
		H: h.H + 2*margin,
	}
}

// Center returns the midpoint of the box.
func (h Hitbox) Center() (float64, float64) {
	return h.X + h.W/2, h.Y + h.H/2
}

// Inside reports whether point (x, y) lies within [0,w] x [0,h].
func Inside(x, y, w, h float64) bool {
	return x >= 0 && x <= w && y >= 0 && y <= h
}

// distanceSq avoids the sqrt for nearest-target comparisons.
func distanceSq(ax, ay, bx, by float64) float64 {
	dx := bx - ax
	dy := by - ay
	return dx*dx + dy*dy
}

// angleTo returns the heading from (ax, ay) toward (bx, by).
func angleTo(ax, ay, bx, by float64) float64 {
	return math.Atan2(by-ay, bx-ax)
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

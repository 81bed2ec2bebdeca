package game

import (
	"math"
	"math/rand"
)

// Point is a polygon vertex relative to its owner's center.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Obstacle is a decorative rock. It is drawn but never collides with the
// player, hostiles or projectiles.
type Obstacle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Vertices []Point `json:"vertices"`
}

// NewObstacle builds a jagged polygon of 5..7 vertices whose radius varies
// between 70% and 100% of half the size. Vertices are never mutated after
// construction, so snapshots may share them.
func NewObstacle(x, y, size float64, rng *rand.Rand) *Obstacle {
	n := 5 + rng.Intn(3)
	verts := make([]Point, n)
	for i := range verts {
		angle := float64(i) / float64(n) * 2 * math.Pi
		radius := size / 2 * (0.7 + rng.Float64()*0.3)
		verts[i] = Point{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
	}
	return &Obstacle{X: x, Y: y, Size: size, Vertices: verts}
}

// Center returns the polygon's center in field coordinates.
func (o *Obstacle) Center() (float64, float64) {
	return o.X + o.Size/2, o.Y + o.Size/2
}

// GenerateObstacles scatters medium (25..40) and small (10..20) rocks over
// the field.
func GenerateObstacles(rng *rand.Rand, t Tuning) []*Obstacle {
	rocks := make([]*Obstacle, 0, t.MediumObstacles+t.SmallObstacles)
	place := func(minSize, maxSize float64) {
		size := minSize + rng.Float64()*(maxSize-minSize)
		x := rng.Float64() * (t.Width - size)
		y := rng.Float64() * (t.Height - size)
		rocks = append(rocks, NewObstacle(x, y, size, rng))
	}
	for i := 0; i < t.MediumObstacles; i++ {
		place(25, 40)
	}
	for i := 0; i < t.SmallObstacles; i++ {
		place(10, 20)
	}
	return rocks
}

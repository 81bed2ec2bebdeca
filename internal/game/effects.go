package game

import "math/rand"

// Particle is one droplet of a blood splatter, positioned relative to the
// splatter's origin.
type Particle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Alpha int     `json:"alpha"`
}

// BloodSplatter is a short-lived spray left where a hostile hit something.
// Uses a fixed-size particle array to avoid allocations.
type BloodSplatter struct {
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Frame     int         `json:"frame"`
	MaxFrames int         `json:"maxFrames"`
	Particles [8]Particle `json:"particles"`
	delay     int
	counter   int
}

// NewBloodSplatter creates a splatter centered on (x, y).
func NewBloodSplatter(x, y float64, rng *rand.Rand) *BloodSplatter {
	b := &BloodSplatter{
		X:         x,
		Y:         y,
		MaxFrames: 10,
		delay:     3,
	}
	for i := range b.Particles {
		b.Particles[i] = Particle{
			X:     rng.Float64()*20 - 10,
			Y:     rng.Float64()*20 - 10,
			Size:  3 + rng.Float64()*5,
			Alpha: 255,
		}
	}
	return b
}

// Update advances the animation one tick and fades particles on each frame
// step. Returns false once the frame budget is spent.
func (b *BloodSplatter) Update() bool {
	b.counter++
	if b.counter >= b.delay {
		b.Frame++
		b.counter = 0
		for i := range b.Particles {
			b.Particles[i].Alpha = max(0, b.Particles[i].Alpha-25)
		}
	}
	return b.Frame < b.MaxFrames
}

// Alive reports whether the splatter still has frames left.
func (b *BloodSplatter) Alive() bool { return b.Frame < b.MaxFrames }

// Explosion is the flash drawn where a projectile kills a hostile.
type Explosion struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Frame     int     `json:"frame"`
	MaxFrames int     `json:"maxFrames"`
	delay     int
	counter   int
}

// NewExplosion creates an explosion centered on (x, y).
func NewExplosion(x, y float64) *Explosion {
	return &Explosion{X: x, Y: y, MaxFrames: 10, delay: 2}
}

// Update advances the animation one tick.
func (e *Explosion) Update() bool {
	e.counter++
	if e.counter >= e.delay {
		e.Frame++
		e.counter = 0
	}
	return e.Frame < e.MaxFrames
}

// Alive reports whether the explosion still has frames left.
func (e *Explosion) Alive() bool { return e.Frame < e.MaxFrames }

// Progress returns 0 at the first frame and approaches 1 at the last.
func (e *Explosion) Progress() float64 {
	return float64(e.Frame) / float64(e.MaxFrames)
}

// Message is the single transient HUD line ("Shield activated!").
type Message struct {
	Text  string `json:"text"`
	Ticks int    `json:"ticks"`
}

// Update counts the message down. Returns false once it should vanish.
func (m *Message) Update() bool {
	if m.Ticks > 0 {
		m.Ticks--
	}
	return m.Ticks > 0
}

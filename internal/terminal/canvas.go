// Package terminal plays the game in a text terminal with tcell: a cell
// rasterizer for the shared drawing code, key and mouse mapping, and the
// client loop.
package terminal

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"zombie-shooter/internal/game"
)

var _ game.Canvas = (*Canvas)(nil)

// minAlpha hides shapes too faint to show as a solid cell.
const minAlpha = 40

type shapeKind uint8

const (
	shapeRect shapeKind = iota
	shapeCircle
	shapeLine
	shapePolygon
)

type point struct{ x, y float64 }

type shape struct {
	kind   shapeKind
	points []point // rect: corner and size; circle: center and (r, 0)
}

// Canvas rasterizes game.Canvas calls onto terminal cells. Field
// coordinates are scaled to the screen; filled shapes paint cell
// backgrounds and text keeps whatever background is underneath.
type Canvas struct {
	screen tcell.Screen
	cols   int
	rows   int
	sx, sy float64 // cells per field unit

	color   tcell.Color
	visible bool
	shapes  []shape
	path    []point
}

// NewCanvas maps a fieldW x fieldH play field onto the whole screen.
func NewCanvas(screen tcell.Screen, fieldW, fieldH float64) *Canvas {
	c := &Canvas{screen: screen, color: tcell.ColorWhite, visible: true}
	c.Resize(fieldW, fieldH)
	return c
}

// Resize re-reads the screen size.
func (c *Canvas) Resize(fieldW, fieldH float64) {
	c.cols, c.rows = c.screen.Size()
	if fieldW <= 0 || fieldH <= 0 {
		fieldW, fieldH = 800, 600
	}
	c.sx = float64(c.cols) / fieldW
	c.sy = float64(c.rows) / fieldH
}

// ToField converts a cell position to field coordinates (cell center).
func (c *Canvas) ToField(col, row int) (float64, float64) {
	return (float64(col) + 0.5) / c.sx, (float64(row) + 0.5) / c.sy
}

func (c *Canvas) SetColor(col color.Color) {
	r, g, b, a := col.RGBA()
	if a == 0 {
		c.visible = false
		return
	}
	// Un-premultiply, then drop alpha.
	c.color = tcell.NewRGBColor(int32(r*0xff/a), int32(g*0xff/a), int32(b*0xff/a))
	c.visible = a>>8 >= minAlpha
}

// SetLineWidth is accepted for compatibility; strokes are one cell wide.
func (c *Canvas) SetLineWidth(float64) {}

func (c *Canvas) DrawRectangle(x, y, w, h float64) {
	c.shapes = append(c.shapes, shape{kind: shapeRect, points: []point{{x, y}, {w, h}}})
}

func (c *Canvas) DrawCircle(x, y, r float64) {
	c.shapes = append(c.shapes, shape{kind: shapeCircle, points: []point{{x, y}, {r, 0}}})
}

func (c *Canvas) DrawLine(x1, y1, x2, y2 float64) {
	c.shapes = append(c.shapes, shape{kind: shapeLine, points: []point{{x1, y1}, {x2, y2}}})
}

func (c *Canvas) MoveTo(x, y float64) {
	c.flushPath()
	c.path = append(c.path, point{x, y})
}

func (c *Canvas) LineTo(x, y float64) {
	c.path = append(c.path, point{x, y})
}

func (c *Canvas) ClosePath() {
	c.flushPath()
}

func (c *Canvas) flushPath() {
	if len(c.path) >= 2 {
		pts := make([]point, len(c.path))
		copy(pts, c.path)
		c.shapes = append(c.shapes, shape{kind: shapePolygon, points: pts})
	}
	c.path = c.path[:0]
}

// Fill paints every pending shape and clears the path.
func (c *Canvas) Fill() {
	c.flushPath()
	if c.visible {
		for _, s := range c.shapes {
			c.fillShape(s)
		}
	}
	c.shapes = c.shapes[:0]
}

// Stroke outlines every pending shape and clears the path.
func (c *Canvas) Stroke() {
	c.flushPath()
	if c.visible {
		for _, s := range c.shapes {
			c.strokeShape(s)
		}
	}
	c.shapes = c.shapes[:0]
}

// DrawStringAnchored writes s so that the anchor (ax, ay) of its cell box
// lands on (x, y).
func (c *Canvas) DrawStringAnchored(s string, x, y, ax, ay float64) {
	if !c.visible {
		return
	}
	runes := []rune(s)
	col := int(math.Round(x*c.sx - ax*float64(len(runes))))
	row := int(math.Floor(y * c.sy))

	for i, r := range runes {
		cx := col + i
		if cx < 0 || cx >= c.cols || row < 0 || row >= c.rows {
			continue
		}
		_, _, style, _ := c.screen.GetContent(cx, row)
		c.screen.SetContent(cx, row, r, nil, style.Foreground(c.color))
	}
}

// cell paints one background cell.
func (c *Canvas) cell(col, row int) {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}
	c.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(c.color))
}

func (c *Canvas) fillShape(s shape) {
	switch s.kind {
	case shapeRect:
		x, y, w, h := s.points[0].x, s.points[0].y, s.points[1].x, s.points[1].y
		c0, r0 := int(math.Floor(x*c.sx)), int(math.Floor(y*c.sy))
		c1, r1 := int(math.Ceil((x+w)*c.sx)), int(math.Ceil((y+h)*c.sy))
		for row := r0; row < r1; row++ {
			for col := c0; col < c1; col++ {
				c.cell(col, row)
			}
		}

	case shapeCircle:
		cx, cy, r := s.points[0].x, s.points[0].y, s.points[1].x
		c0, r0 := int(math.Floor((cx-r)*c.sx)), int(math.Floor((cy-r)*c.sy))
		c1, r1 := int(math.Ceil((cx+r)*c.sx)), int(math.Ceil((cy+r)*c.sy))
		hit := false
		for row := r0; row < r1; row++ {
			for col := c0; col < c1; col++ {
				fx, fy := c.ToField(col, row)
				if (fx-cx)*(fx-cx)+(fy-cy)*(fy-cy) <= r*r {
					c.cell(col, row)
					hit = true
				}
			}
		}
		// Circles smaller than a cell still show up.
		if !hit {
			c.cell(int(cx*c.sx), int(cy*c.sy))
		}

	case shapeLine:
		c.strokeShape(s)

	case shapePolygon:
		minX, minY, maxX, maxY := bounds(s.points)
		for row := int(math.Floor(minY * c.sy)); row < int(math.Ceil(maxY*c.sy)); row++ {
			for col := int(math.Floor(minX * c.sx)); col < int(math.Ceil(maxX*c.sx)); col++ {
				fx, fy := c.ToField(col, row)
				if insidePolygon(s.points, fx, fy) {
					c.cell(col, row)
				}
			}
		}
	}
}

func (c *Canvas) strokeShape(s shape) {
	switch s.kind {
	case shapeRect:
		x, y, w, h := s.points[0].x, s.points[0].y, s.points[1].x, s.points[1].y
		c.line(x, y, x+w, y)
		c.line(x+w, y, x+w, y+h)
		c.line(x+w, y+h, x, y+h)
		c.line(x, y+h, x, y)
	case shapeCircle:
		cx, cy, r := s.points[0].x, s.points[0].y, s.points[1].x
		const steps = 24
		for i := 0; i < steps; i++ {
			a0 := 2 * math.Pi * float64(i) / steps
			a1 := 2 * math.Pi * float64(i+1) / steps
			c.line(cx+r*math.Cos(a0), cy+r*math.Sin(a0), cx+r*math.Cos(a1), cy+r*math.Sin(a1))
		}
	case shapeLine:
		c.line(s.points[0].x, s.points[0].y, s.points[1].x, s.points[1].y)
	case shapePolygon:
		for i := range s.points {
			a, b := s.points[i], s.points[(i+1)%len(s.points)]
			c.line(a.x, a.y, b.x, b.y)
		}
	}
}

// line walks a Bresenham line between two field points.
func (c *Canvas) line(x1, y1, x2, y2 float64) {
	c0, r0 := int(x1*c.sx), int(y1*c.sy)
	c1, r1 := int(x2*c.sx), int(y2*c.sy)
	dx, dy := abs(c1-c0), -abs(r1-r0)
	stepX, stepY := sign(c1-c0), sign(r1-r0)
	e := dx + dy
	for {
		c.cell(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			c0 += stepX
		}
		if e2 <= dx {
			e += dx
			r0 += stepY
		}
	}
}

func bounds(pts []point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	return
}

// insidePolygon is the even-odd ray casting test.
func insidePolygon(pts []point, x, y float64) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.y > y) != (b.y > y) && x < (b.x-a.x)*(y-a.y)/(b.y-a.y)+a.x {
			in = !in
		}
	}
	return in
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

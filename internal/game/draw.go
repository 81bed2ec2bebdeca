package game

import (
	"fmt"
	"image/color"
	"math"
)

// Canvas is the drawing surface entities paint on. *gg.Context satisfies it
// directly; the terminal client rasterizes the same calls onto cells.
type Canvas interface {
	SetColor(c color.Color)
	SetLineWidth(w float64)
	DrawRectangle(x, y, w, h float64)
	DrawCircle(x, y, r float64)
	DrawLine(x1, y1, x2, y2 float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Fill()
	Stroke()
	DrawStringAnchored(s string, x, y, ax, ay float64)
}

// Drawable is anything that can paint itself.
type Drawable interface {
	Draw(c Canvas)
}

// Updatable advances one tick and reports whether it is still alive.
type Updatable interface {
	Update() bool
}

var (
	_ Drawable = Player{}
	_ Drawable = Hostile{}
	_ Drawable = Projectile{}
	_ Drawable = Collectible{}
	_ Drawable = Obstacle{}
	_ Drawable = BloodSplatter{}
	_ Drawable = Explosion{}

	_ Updatable = (*Projectile)(nil)
	_ Updatable = (*Collectible)(nil)
	_ Updatable = (*BloodSplatter)(nil)
	_ Updatable = (*Explosion)(nil)
	_ Updatable = (*Message)(nil)
)

// Palette
var (
	colorBackground = color.RGBA{10, 10, 20, 255}
	colorWhite      = color.RGBA{255, 255, 255, 255}
	colorBarBack    = color.RGBA{60, 60, 60, 255}
	colorAccent     = color.RGBA{0, 200, 255, 255}
	colorButton     = color.RGBA{0, 100, 200, 255}
	colorGold       = color.RGBA{255, 215, 0, 255}
	colorDim        = color.RGBA{180, 180, 180, 255}
	colorRock       = color.RGBA{40, 80, 120, 255}
	colorRockShine  = color.RGBA{100, 150, 200, 50}
	colorPlayer     = color.RGBA{40, 90, 180, 255}
	colorVisor      = color.RGBA{0, 255, 255, 255}
	colorZombie     = color.RGBA{60, 120, 60, 255}
	colorZombieEye  = color.RGBA{255, 0, 0, 255}
)

func withAlpha(c color.RGBA, a int) color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, uint8(max(0, min(255, a)))}
}

// Draw paints the rock polygon with a soft highlight.
func (o Obstacle) Draw(c Canvas) {
	if len(o.Vertices) == 0 {
		return
	}
	cx, cy := o.Center()
	c.SetColor(colorRock)
	c.MoveTo(cx+o.Vertices[0].X, cy+o.Vertices[0].Y)
	for _, v := range o.Vertices[1:] {
		c.LineTo(cx+v.X, cy+v.Y)
	}
	c.ClosePath()
	c.Fill()

	c.SetColor(colorRockShine)
	c.DrawCircle(cx-o.Size/4, cy-o.Size/4, o.Size/6)
	c.Fill()
}

// Draw paints a glowing orb with a symbol for the kind.
func (col Collectible) Draw(c Canvas) {
	tint := col.Kind.Color()
	glow := 15 + 5*col.Pulse

	c.SetLineWidth(1)
	for r := glow; r > glow-10; r -= 2 {
		c.SetColor(withAlpha(tint, int(150-(glow-r)*30)))
		c.DrawCircle(col.X, col.Y, r)
		c.Stroke()
	}

	c.SetColor(colorWhite)
	c.DrawCircle(col.X, col.Y, 6)
	c.Fill()

	c.SetColor(tint)
	c.SetLineWidth(2)
	switch col.Kind {
	case AiAssistant:
		c.DrawLine(col.X-4, col.Y, col.X+4, col.Y)
		c.DrawLine(col.X, col.Y-4, col.X, col.Y+4)
		c.Stroke()
	case SpeedBoost:
		c.MoveTo(col.X-3, col.Y-5)
		c.LineTo(col.X+1, col.Y-1)
		c.LineTo(col.X-1, col.Y+1)
		c.LineTo(col.X+3, col.Y+5)
		c.Stroke()
	case Shield:
		c.DrawCircle(col.X, col.Y, 5)
		c.Stroke()
	case RapidFire:
		for dx := -2.0; dx <= 2; dx += 2 {
			c.DrawCircle(col.X+dx, col.Y, 1)
		}
		c.Fill()
	}
	c.SetLineWidth(1)
}

// Draw paints the survivor with its aim line and any shield ring.
func (p Player) Draw(c Canvas) {
	cx, cy := p.Center()
	r := p.Size / 2

	c.SetColor(colorPlayer)
	c.DrawCircle(cx, cy, r)
	c.Fill()

	c.SetColor(colorVisor)
	c.SetLineWidth(3)
	c.DrawLine(cx, cy, cx+math.Cos(p.Angle)*r*1.5, cy+math.Sin(p.Angle)*r*1.5)
	c.Stroke()
	c.SetLineWidth(1)

	if p.Active(Shield) {
		c.SetColor(withAlpha(Shield.Color(), 160))
		c.SetLineWidth(2)
		c.DrawCircle(cx, cy, r+6)
		c.Stroke()
		c.SetLineWidth(1)
	}
	if p.Active(AiAssistant) {
		c.SetColor(withAlpha(AiAssistant.Color(), 200))
		c.DrawCircle(cx+r, cy-r, 4)
		c.Fill()
	}
}

// Draw paints the zombie body with eyes on the side it is facing.
func (h Hostile) Draw(c Canvas) {
	c.SetColor(colorZombie)
	c.DrawRectangle(h.X, h.Y, h.Size, h.Size)
	c.Fill()

	cx, cy := h.Center()
	off := h.Size / 4
	var ex1, ey1, ex2, ey2 float64
	switch h.Facing {
	case FacingRight:
		ex1, ey1, ex2, ey2 = cx+off, cy-off/2, cx+off, cy+off/2
	case FacingLeft:
		ex1, ey1, ex2, ey2 = cx-off, cy-off/2, cx-off, cy+off/2
	case FacingUp:
		ex1, ey1, ex2, ey2 = cx-off/2, cy-off, cx+off/2, cy-off
	default:
		ex1, ey1, ex2, ey2 = cx-off/2, cy+off, cx+off/2, cy+off
	}
	c.SetColor(colorZombieEye)
	c.DrawCircle(ex1, ey1, 2)
	c.DrawCircle(ex2, ey2, 2)
	c.Fill()
}

// Draw paints the bullet in its shooter's color.
func (p Projectile) Draw(c Canvas) {
	c.SetColor(p.Color())
	c.DrawRectangle(p.X, p.Y, p.Size, p.Size)
	c.Fill()
}

// Draw paints the fading droplets.
func (b BloodSplatter) Draw(c Canvas) {
	if !b.Alive() {
		return
	}
	for _, pt := range b.Particles {
		if pt.Alpha <= 0 {
			continue
		}
		c.SetColor(color.NRGBA{200, 0, 0, uint8(pt.Alpha)})
		c.DrawCircle(b.X+pt.X, b.Y+pt.Y, pt.Size/2)
		c.Fill()
	}
}

// Draw paints an expanding flash.
func (e Explosion) Draw(c Canvas) {
	if !e.Alive() {
		return
	}
	t := e.Progress()
	c.SetColor(color.NRGBA{255, 200, 50, uint8(200 * (1 - t))})
	c.DrawCircle(e.X, e.Y, 8+20*t)
	c.Fill()
	c.SetColor(color.NRGBA{255, 100, 0, uint8(150 * (1 - t))})
	c.DrawCircle(e.X, e.Y, 4+10*t)
	c.Fill()
}

// DrawFrame paints the whole snapshot for its mode.
func DrawFrame(c Canvas, snap *GameSnapshot) {
	c.SetColor(colorBackground)
	c.DrawRectangle(0, 0, snap.Width, snap.Height)
	c.Fill()

	switch snap.Mode {
	case ModePlaying:
		drawField(c, snap)
		drawHUD(c, snap)
	case ModeGameOver:
		drawField(c, snap)
		drawGameOver(c, snap)
	case ModeNameEntry:
		drawNameEntry(c, snap)
	case ModeLeaderboard:
		drawLeaderboard(c, snap)
	default:
		drawTitle(c, snap)
	}
}

// drawField paints entities back to front.
func drawField(c Canvas, snap *GameSnapshot) {
	for _, o := range snap.Obstacles {
		o.Draw(c)
	}
	for _, col := range snap.Collectibles {
		col.Draw(c)
	}
	snap.Player.Draw(c)
	for _, h := range snap.Hostiles {
		h.Draw(c)
	}
	for _, p := range snap.Projectiles {
		p.Draw(c)
	}
	for _, b := range snap.Splatters {
		b.Draw(c)
	}
	for _, e := range snap.Explosions {
		e.Draw(c)
	}
}

func healthColor(frac float64) color.RGBA {
	switch {
	case frac > 0.6:
		return color.RGBA{0, 200, 0, 255}
	case frac > 0.3:
		return color.RGBA{200, 200, 0, 255}
	default:
		return color.RGBA{200, 0, 0, 255}
	}
}

// bar draws a background track with a filled fraction on top.
func bar(c Canvas, x, y, w, h, frac float64, fill color.Color) {
	c.SetColor(colorBarBack)
	c.DrawRectangle(x, y, w, h)
	c.Fill()
	if frac > 0 {
		c.SetColor(fill)
		c.DrawRectangle(x, y, w*math.Min(1, frac), h)
		c.Fill()
	}
}

func drawHUD(c Canvas, snap *GameSnapshot) {
	p := snap.Player
	frac := 0.0
	if p.MaxHealth > 0 {
		frac = float64(p.Health) / float64(p.MaxHealth)
	}
	bar(c, 10, 10, 200, 20, frac, healthColor(frac))
	c.SetColor(colorWhite)
	c.DrawStringAnchored(fmt.Sprintf("%d/%d", p.Health, p.MaxHealth), 110, 20, 0.5, 0.5)

	right := snap.Width - 150
	c.DrawStringAnchored(fmt.Sprintf("Score: %d", p.Score), right, 20, 0, 0.5)
	c.SetColor(color.RGBA{200, 200, 255, 255})
	c.DrawStringAnchored(fmt.Sprintf("Wave: %d", snap.Waves.Wave), right, 50, 0, 0.5)
	bar(c, right, 75, 100, 10, snap.WaveProgress(), color.RGBA{100, 100, 255, 255})

	y := 100.0
	for _, kind := range AllPowerUps {
		left := p.Remaining(kind)
		if left <= 0 {
			continue
		}
		bar(c, right, y, 100, 15, float64(left)/float64(kind.Duration()), kind.Color())
		c.SetColor(colorWhite)
		c.DrawStringAnchored(kind.String(), right+5, y+7.5, 0, 0.5)
		y += 20
	}

	if t := snap.Waves.BannerTicks; t > 0 {
		alpha := 255
		if t <= 60 {
			alpha = int(float64(t) * 4.25)
		}
		c.SetColor(withAlpha(colorWhite, alpha))
		c.DrawStringAnchored(fmt.Sprintf("Wave %d incoming!", snap.Waves.Wave), snap.Width/2, snap.Height/4, 0.5, 0.5)
	}

	if m := snap.Message; m.Ticks > 0 && m.Text != "" {
		alpha := 255
		if m.Ticks <= 30 {
			alpha = int(float64(m.Ticks) * 8.5)
		}
		c.SetColor(withAlpha(colorAccent, alpha))
		c.DrawStringAnchored(m.Text, snap.Width/2, snap.Height/3, 0.5, 0.5)
	}
}

// button draws a labelled box centered at (cx, cy).
func button(c Canvas, label string, cx, cy float64) {
	c.SetColor(colorButton)
	c.DrawRectangle(cx-100, cy-25, 200, 50)
	c.Fill()
	c.SetColor(colorWhite)
	c.DrawStringAnchored(label, cx, cy, 0.5, 0.5)
}

func drawTitle(c Canvas, snap *GameSnapshot) {
	cx := snap.Width / 2
	for _, o := range snap.Obstacles {
		o.Draw(c)
	}

	c.SetColor(colorAccent)
	c.DrawStringAnchored("ZOMBIE SURVIVAL", cx, 140, 0.5, 0.5)
	c.SetColor(colorWhite)
	c.DrawStringAnchored("Can your AI assistant save humanity?", cx, 220, 0.5, 0.5)
	c.SetColor(colorDim)
	c.DrawStringAnchored("WASD or Arrow Keys to move", cx, 280, 0.5, 0.5)
	c.DrawStringAnchored("Mouse to aim and shoot", cx, 310, 0.5, 0.5)
	c.DrawStringAnchored("Collect AI power-ups for automated assistance", cx, 340, 0.5, 0.5)
	c.DrawStringAnchored("Survive the zombie horde as long as possible", cx, 370, 0.5, 0.5)

	button(c, "Start Game [Enter]", cx, 450)
	button(c, "Leaderboard [L]", cx, 520)
}

func drawGameOver(c Canvas, snap *GameSnapshot) {
	cx := snap.Width / 2
	c.SetColor(color.NRGBA{0, 0, 0, 180})
	c.DrawRectangle(0, 0, snap.Width, snap.Height)
	c.Fill()

	c.SetColor(colorAccent)
	c.DrawStringAnchored("GAME OVER", cx, 120, 0.5, 0.5)
	c.SetColor(colorWhite)
	c.DrawStringAnchored(fmt.Sprintf("Your Score: %d", snap.Player.Score), cx, 200, 0.5, 0.5)
	c.SetColor(colorDim)
	c.DrawStringAnchored(fmt.Sprintf("Wave %d  |  %d kills", snap.Waves.Wave, snap.Kills), cx, 240, 0.5, 0.5)

	button(c, "Submit Score [Enter]", cx, 320)
	button(c, "Play Again [R]", cx, 390)
	button(c, "Main Menu [Esc]", cx, 460)
}

func drawNameEntry(c Canvas, snap *GameSnapshot) {
	cx := snap.Width / 2
	e := snap.Entry

	c.SetColor(colorAccent)
	c.DrawStringAnchored("SUBMIT YOUR SCORE", cx, 50, 0.5, 0.5)
	c.SetColor(colorGold)
	c.DrawStringAnchored(fmt.Sprintf("Score: %d", snap.Player.Score), cx, 120, 0.5, 0.5)

	field := func(label, value string, y float64, focused bool) {
		c.SetColor(color.RGBA{30, 30, 50, 255})
		c.DrawRectangle(cx-150, y-20, 300, 40)
		c.Fill()
		if focused {
			c.SetColor(colorAccent)
			c.SetLineWidth(2)
			c.DrawRectangle(cx-150, y-20, 300, 40)
			c.Stroke()
			c.SetLineWidth(1)
			value += "_"
		}
		c.SetColor(colorWhite)
		c.DrawStringAnchored(label, cx-160, y, 1, 0.5)
		c.DrawStringAnchored(value, cx-140, y, 0, 0.5)
	}
	field("Name:", e.Name, 200, e.Focus == FieldName)
	field("Email:", e.Email, 270, e.Focus == FieldEmail)

	if e.Notice != "" {
		c.SetColor(color.RGBA{255, 120, 120, 255})
		if e.Pending {
			c.SetColor(colorDim)
		}
		c.DrawStringAnchored(e.Notice, cx, 330, 0.5, 0.5)
	}

	button(c, "Submit [Enter]", cx, 400)
	c.SetColor(colorDim)
	c.DrawStringAnchored("Tab switches field, Esc returns to the menu", cx, 460, 0.5, 0.5)
	c.DrawStringAnchored("Your email will be partially hidden on the leaderboard", cx, 490, 0.5, 0.5)
}

var medalColors = [3]color.RGBA{
	{255, 215, 0, 200},
	{192, 192, 192, 200},
	{205, 127, 50, 200},
}

func drawLeaderboard(c Canvas, snap *GameSnapshot) {
	cx := snap.Width / 2
	b := snap.Board

	c.SetColor(colorAccent)
	c.DrawStringAnchored("LEADERBOARD", cx, 50, 0.5, 0.5)

	status := b.Status.String()
	if b.Status == BoardLoading {
		status = "loading..."
	}
	c.SetColor(colorDim)
	c.DrawStringAnchored("Status: "+status, cx, 85, 0.5, 0.5)

	const rowH = 35.0
	tableX, tableW := cx-250, 500.0
	if len(b.Entries) == 0 {
		c.SetColor(color.RGBA{200, 200, 200, 255})
		c.DrawStringAnchored("No leaderboard data available", cx, 200, 0.5, 0.5)
	}
	for i, e := range b.Entries {
		y := 110 + float64(i)*rowH
		if i < len(medalColors) {
			c.SetColor(medalColors[i])
		} else {
			c.SetColor(color.NRGBA{20, 40, 80, 150})
		}
		c.DrawRectangle(tableX, y, tableW, rowH-5)
		c.Fill()

		c.SetColor(colorWhite)
		c.DrawStringAnchored(fmt.Sprint(i+1), tableX+25, y+(rowH-5)/2, 0.5, 0.5)
		c.DrawStringAnchored(e.Name+"  "+e.MaskedEmail(), tableX+60, y+(rowH-5)/2, 0, 0.5)
		c.SetColor(colorGold)
		c.DrawStringAnchored(fmt.Sprint(e.Score), tableX+tableW-20, y+(rowH-5)/2, 1, 0.5)
	}

	if b.Message != "" {
		c.SetColor(color.RGBA{255, 160, 120, 255})
		c.DrawStringAnchored(b.Message, cx, snap.Height-110, 0.5, 0.5)
	}
	button(c, "Main Menu [Esc]", cx-110, snap.Height-50)
	button(c, "Refresh [R]", cx+110, snap.Height-50)
}

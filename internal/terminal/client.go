package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"zombie-shooter/internal/game"
)

// Stepper advances a game one tick. *game.Engine satisfies it.
type Stepper interface {
	Step(in game.Input) *game.GameSnapshot
}

// Client drives an engine from a terminal: it steps the engine itself at
// the tick rate, so the engine must not also be started.
type Client struct {
	screen   tcell.Screen
	engine   Stepper
	controls *Controls
	canvas   *Canvas
	tickRate int

	fieldW, fieldH float64
	mode           game.Mode
	frames         uint64
}

// NewClient prepares a client over an initialized screen.
func NewClient(screen tcell.Screen, engine Stepper, tickRate int, fieldW, fieldH float64) *Client {
	if tickRate <= 0 {
		tickRate = 60
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	return &Client{
		screen:   screen,
		engine:   engine,
		controls: NewControls(),
		canvas:   NewCanvas(screen, fieldW, fieldH),
		tickRate: tickRate,
		fieldW:   fieldW,
		fieldH:   fieldH,
	}
}

// Frames returns how many frames have been drawn.
func (c *Client) Frames() uint64 {
	return c.frames
}

// Run plays until the player quits or ctx is cancelled. It does not Fini
// the screen.
func (c *Client) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(c.tickRate))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if c.handle(ev, time.Now()) {
				return nil
			}

		case now := <-ticker.C:
			snap := c.engine.Step(c.controls.Input(now))
			c.draw(snap)
		}
	}
}

// handle applies one terminal event. Returns true to quit.
func (c *Client) handle(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.controls.HandleKey(ev, c.mode, now)
	case *tcell.EventMouse:
		c.controls.HandleMouse(ev, c.canvas.ToField)
	case *tcell.EventResize:
		c.screen.Sync()
		c.canvas.Resize(c.fieldW, c.fieldH)
	}
	return false
}

func (c *Client) draw(snap *game.GameSnapshot) {
	if snap == nil {
		return
	}
	c.mode = snap.Mode
	c.screen.Clear()
	game.DrawFrame(c.canvas, snap)
	c.screen.Show()
	c.frames++
}

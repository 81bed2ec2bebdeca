package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"zombie-shooter/internal/game"
)

// DefaultHold is how long a movement or fire key counts as held after its
// last press. Terminals report presses and auto-repeats, never releases.
const DefaultHold = 150 * time.Millisecond

type heldKey uint8

const (
	heldUp heldKey = iota
	heldDown
	heldLeft
	heldRight
	heldFire
	heldCount
)

// Controls turns terminal events into one game.Input per tick.
type Controls struct {
	Hold time.Duration

	until [heldCount]time.Time

	mouseFire  bool
	hasPointer bool
	pointerX   float64
	pointerY   float64

	action game.Action
	text   []rune
}

// NewControls creates controls with the default hold window.
func NewControls() *Controls {
	return &Controls{Hold: DefaultHold}
}

// HandleKey applies a key press in the context of the current mode. It
// returns true when the player asked to quit.
func (c *Controls) HandleKey(ev *tcell.EventKey, mode game.Mode, now time.Time) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}

	if mode == game.ModeNameEntry {
		switch ev.Key() {
		case tcell.KeyEnter:
			c.act(game.ActionSubmit)
		case tcell.KeyTab, tcell.KeyBacktab:
			c.act(game.ActionFocusNext)
		case tcell.KeyEscape:
			c.act(game.ActionBack)
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			c.text = append(c.text, '\b')
		case tcell.KeyRune:
			c.text = append(c.text, ev.Rune())
		}
		return false
	}

	switch ev.Key() {
	case tcell.KeyUp:
		c.hold(heldUp, now)
	case tcell.KeyDown:
		c.hold(heldDown, now)
	case tcell.KeyLeft:
		c.hold(heldLeft, now)
	case tcell.KeyRight:
		c.hold(heldRight, now)
	case tcell.KeyEnter:
		switch mode {
		case game.ModeGameOver:
			c.act(game.ActionSubmit)
		default:
			c.act(game.ActionStart)
		}
	case tcell.KeyEscape:
		switch mode {
		case game.ModeTitle:
			return true
		case game.ModeGameOver:
			c.act(game.ActionSkip)
		default:
			c.act(game.ActionBack)
		}
	case tcell.KeyRune:
		return c.handleRune(ev.Rune(), mode, now)
	}
	return false
}

func (c *Controls) handleRune(r rune, mode game.Mode, now time.Time) bool {
	if mode == game.ModePlaying {
		switch r {
		case 'w', 'W':
			c.hold(heldUp, now)
		case 's', 'S':
			c.hold(heldDown, now)
		case 'a', 'A':
			c.hold(heldLeft, now)
		case 'd', 'D':
			c.hold(heldRight, now)
		case ' ':
			c.hold(heldFire, now)
		}
		return false
	}

	switch r {
	case 'q', 'Q':
		return mode == game.ModeTitle
	case 'l', 'L':
		c.act(game.ActionShowLeaderboard)
	case 'r', 'R':
		if mode == game.ModeLeaderboard {
			c.act(game.ActionRefresh)
		} else {
			c.act(game.ActionStart)
		}
	case 'b', 'B':
		c.act(game.ActionBack)
	}
	return false
}

// HandleMouse aims at the pointer and fires while the primary button is
// down. toField converts a cell to field coordinates.
func (c *Controls) HandleMouse(ev *tcell.EventMouse, toField func(col, row int) (float64, float64)) {
	col, row := ev.Position()
	c.pointerX, c.pointerY = toField(col, row)
	c.hasPointer = true
	c.mouseFire = ev.Buttons()&tcell.Button1 != 0
}

// Input builds the input for the next tick. Actions and typed text are
// consumed; held keys persist until their window lapses.
func (c *Controls) Input(now time.Time) game.Input {
	in := game.Input{
		Up:         c.held(heldUp, now),
		Down:       c.held(heldDown, now),
		Left:       c.held(heldLeft, now),
		Right:      c.held(heldRight, now),
		Fire:       c.mouseFire || c.held(heldFire, now),
		HasPointer: c.hasPointer,
		PointerX:   c.pointerX,
		PointerY:   c.pointerY,
		Action:     c.action,
		Text:       string(c.text),
	}
	c.action = game.ActionNone
	c.text = c.text[:0]
	return in
}

func (c *Controls) act(a game.Action) {
	c.action = a
}

func (c *Controls) hold(k heldKey, now time.Time) {
	c.until[k] = now.Add(c.Hold)
}

func (c *Controls) held(k heldKey, now time.Time) bool {
	return now.Before(c.until[k])
}

package game

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Action is a discrete UI event that moves the session between modes.
type Action uint8

const (
	ActionNone Action = iota
	ActionStart
	ActionSubmit
	ActionSkip
	ActionBack
	ActionRefresh
	ActionShowLeaderboard
	ActionFocusNext
)

var actionNames = map[string]Action{
	"":            ActionNone,
	"none":        ActionNone,
	"start":       ActionStart,
	"submit":      ActionSubmit,
	"skip":        ActionSkip,
	"back":        ActionBack,
	"refresh":     ActionRefresh,
	"leaderboard": ActionShowLeaderboard,
	"focus_next":  ActionFocusNext,
}

// ParseAction maps a wire name to an Action. Unknown names yield ActionNone.
func ParseAction(name string) Action {
	return actionNames[strings.ToLower(strings.TrimSpace(name))]
}

// String returns the wire name.
func (a Action) String() string {
	for name, v := range actionNames {
		if v == a && name != "" && (a != ActionNone || name == "none") {
			return name
		}
	}
	return "none"
}

// MarshalText encodes the action by wire name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts the wire names used by the HTTP and WebSocket APIs.
func (a *Action) UnmarshalText(b []byte) error {
	*a = ParseAction(string(b))
	return nil
}

// Input is everything the player did since the previous tick. A zero Input
// is valid and means "nothing happened".
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`

	// Pointer position in field coordinates; ignored unless HasPointer.
	HasPointer bool    `json:"hasPointer"`
	PointerX   float64 `json:"pointerX"`
	PointerY   float64 `json:"pointerY"`
	Fire       bool    `json:"fire"`

	Action Action `json:"action"`
	// Typed characters for the focused field, in order. A '\b' deletes the
	// character before it.
	Text string `json:"text"`
}

// Merge folds a later input into an earlier one that has not been consumed
// yet. Movement and pointer take the latest value. Fire, actions and text
// accumulate, so a press released before the next tick still fires once.
func (in Input) Merge(later Input) Input {
	out := later
	out.Fire = in.Fire || later.Fire
	if out.Action == ActionNone {
		out.Action = in.Action
	}
	out.Text = in.Text + later.Text
	return out
}

// Field identifies a text box on the name-entry screen.
type Field uint8

const (
	FieldName Field = iota
	FieldEmail
)

// Text field limits.
const (
	MaxNameLength  = 20
	MaxEmailLength = 50
)

// NameEntry holds the two text boxes shown after a game ends.
type NameEntry struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Focus   Field  `json:"focus"`
	Pending bool   `json:"pending"` // A submit is in flight
	Notice  string `json:"notice"`  // Validation or submit feedback
}

// Apply replays typed characters on the focused field. '\b' removes the
// last character, other non-printable runes are dropped and each field is
// capped at its maximum length.
func (e *NameEntry) Apply(text string) {
	target, limit := &e.Name, MaxNameLength
	if e.Focus == FieldEmail {
		target, limit = &e.Email, MaxEmailLength
	}

	for _, r := range text {
		switch {
		case r == '\b':
			if *target != "" {
				_, size := utf8.DecodeLastRuneInString(*target)
				*target = (*target)[:len(*target)-size]
			}
		case !unicode.IsPrint(r):
			continue
		case utf8.RuneCountInString(*target) < limit:
			*target += string(r)
		}
	}
}

// ToggleFocus moves focus to the other field.
func (e *NameEntry) ToggleFocus() {
	if e.Focus == FieldName {
		e.Focus = FieldEmail
	} else {
		e.Focus = FieldName
	}
}

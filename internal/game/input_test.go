package game

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestNameEntryApply covers typing, backspace and field caps
func TestNameEntryApply(t *testing.T) {
	tests := []struct {
		name  string
		focus Field
		text  string
		want  string
	}{
		{"plain", FieldName, "Ana", "Ana"},
		{"backspace", FieldName, "Anx\ba", "Ana"},
		{"backspace on empty", FieldName, "\b\bA", "A"},
		{"control runes dropped", FieldName, "A\tn\x00a", "Ana"},
		{"unicode", FieldName, "Zoë\b\bé", "Zé"},
		{"name cap", FieldName, strings.Repeat("x", 30), strings.Repeat("x", MaxNameLength)},
		{"email field", FieldEmail, "a@b.com", "a@b.com"},
		{"email cap", FieldEmail, strings.Repeat("e", 60), strings.Repeat("e", MaxEmailLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NameEntry{Focus: tt.focus}
			e.Apply(tt.text)

			got := e.Name
			if tt.focus == FieldEmail {
				got = e.Email
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestNameEntryToggleFocus alternates between the two fields
func TestNameEntryToggleFocus(t *testing.T) {
	var e NameEntry
	e.ToggleFocus()
	if e.Focus != FieldEmail {
		t.Errorf("Expected email focus, got %d", e.Focus)
	}
	e.ToggleFocus()
	if e.Focus != FieldName {
		t.Errorf("Expected name focus, got %d", e.Focus)
	}
}

// TestInputMerge keeps edge events and the latest held state
func TestInputMerge(t *testing.T) {
	first := Input{Left: true, Action: ActionSubmit, Text: "ab"}
	second := Input{Right: true, Text: "c"}

	got := first.Merge(second)
	if got.Left || !got.Right {
		t.Errorf("Expected latest movement, got left=%v right=%v", got.Left, got.Right)
	}
	if got.Action != ActionSubmit {
		t.Errorf("Expected earlier action kept, got %s", got.Action)
	}
	if got.Text != "abc" {
		t.Errorf("Expected accumulated text, got %q", got.Text)
	}

	got = first.Merge(Input{Action: ActionBack})
	if got.Action != ActionBack {
		t.Errorf("Expected later action to win, got %s", got.Action)
	}
}

// TestInputMergeKeepsFire fires once for a press and release between ticks
func TestInputMergeKeepsFire(t *testing.T) {
	tests := []struct {
		name          string
		first, second bool
		want          bool
	}{
		{"press then release", true, false, true},
		{"release then press", false, true, true},
		{"held", true, true, true},
		{"idle", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Input{Fire: tt.first}.Merge(Input{Fire: tt.second})
			if got.Fire != tt.want {
				t.Errorf("Expected fire %v, got %v", tt.want, got.Fire)
			}
		})
	}
}

// TestParseAction maps wire names
func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"start":       ActionStart,
		" Submit ":    ActionSubmit,
		"leaderboard": ActionShowLeaderboard,
		"focus_next":  ActionFocusNext,
		"":            ActionNone,
		"jump":        ActionNone,
	}
	for in, want := range tests {
		if got := ParseAction(in); got != want {
			t.Errorf("ParseAction(%q): expected %s, got %s", in, want, got)
		}
	}

	if ActionShowLeaderboard.String() != "leaderboard" || ActionNone.String() != "none" {
		t.Errorf("Unexpected names %q %q", ActionShowLeaderboard, ActionNone)
	}
}

// TestInputJSON decodes the wire form used by the API
func TestInputJSON(t *testing.T) {
	var in Input
	raw := `{"up":true,"fire":true,"hasPointer":true,"pointerX":10,"pointerY":20,"action":"refresh","text":"hi"}`
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !in.Up || !in.Fire || !in.HasPointer || in.PointerX != 10 || in.PointerY != 20 {
		t.Errorf("Unexpected held state %+v", in)
	}
	if in.Action != ActionRefresh || in.Text != "hi" {
		t.Errorf("Expected refresh with text, got %s %q", in.Action, in.Text)
	}
}

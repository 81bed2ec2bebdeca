// Package leaderboard is the boundary to the remote high-score table: the row
// model, the error taxonomy, the stores that talk to a backend, and the async
// gateway the game loop polls.
package leaderboard

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTopN is how many rows the leaderboard screen shows.
const DefaultTopN = 10

// Entry is one row of the scores table.
type Entry struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"player_name"`
	Email string `json:"email"`
	Score int    `json:"score"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate checks a submission before it is dispatched. Failures wrap
// ErrInvalidInput.
func (e Entry) Validate() error {
	name := strings.TrimSpace(e.Name)
	email := strings.TrimSpace(e.Email)
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	case !emailPattern.MatchString(email):
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidInput, email)
	case e.Score < 0:
		return fmt.Errorf("%w: score must not be negative", ErrInvalidInput)
	}
	return nil
}

// Normalized trims surrounding whitespace from the text fields.
func (e Entry) Normalized() Entry {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	return e
}

// MaskedEmail is the email as shown on the leaderboard screen.
func (e Entry) MaskedEmail() string {
	return MaskEmail(e.Email)
}

// MaskEmail keeps the first character of the local part and stars out the
// rest: "alice@example.com" becomes "a****@example.com". Strings without an
// "@" and single-character local parts are returned unchanged.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	n := utf8.RuneCountInString(local)
	if n <= 1 {
		return email
	}
	first, _ := utf8.DecodeRuneInString(local)
	return string(first) + strings.Repeat("*", n-1) + "@" + domain
}

// Placeholder is the fixed ranking shown when the backend is unreachable,
// so the leaderboard screen is never empty.
func Placeholder() []Entry {
	scores := []int{40, 30, 20, 10, 5}
	out := make([]Entry, len(scores))
	for i, s := range scores {
		out[i] = Entry{
			Name:  fmt.Sprintf("player%d", i+1),
			Email: "p***@example.com",
			Score: s,
		}
	}
	return out
}

package leaderboard

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrConnectionUnavailable means the backend is unreachable or not
	// configured. Callers recover by showing the placeholder ranking.
	ErrConnectionUnavailable = errors.New("leaderboard: connection unavailable")

	// ErrInvalidInput means a submission failed local validation and was
	// never dispatched.
	ErrInvalidInput = errors.New("leaderboard: invalid input")

	// ErrQueueFull means the gateway dropped a request under backpressure.
	ErrQueueFull = fmt.Errorf("%w: request queue full", ErrConnectionUnavailable)
)

// RejectedError is an application-level refusal from the backend.
type RejectedError struct {
	Status int    // HTTP status, 0 if not applicable
	Reason string // Backend message shown to the player
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("leaderboard: rejected (%d %s)", e.Status, http.StatusText(e.Status))
	}
	return "leaderboard: rejected: " + e.Reason
}

// IsRejected reports whether err is a RejectedError and returns it.
func IsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// Reason extracts a short human-readable explanation from any gateway error.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	if rej, ok := IsRejected(err); ok {
		if rej.Reason != "" {
			return rej.Reason
		}
		return http.StatusText(rej.Status)
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	case errors.Is(err, ErrConnectionUnavailable):
		return "leaderboard offline"
	}
	return err.Error()
}

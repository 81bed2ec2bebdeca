package leaderboard

import "context"

// Store is a remote ordered score table with a read path and an append path.
// There is no update or delete.
type Store interface {
	// FetchTop returns at most n rows ordered by score descending.
	FetchTop(ctx context.Context, n int) ([]Entry, error)
	// Submit appends one row.
	Submit(ctx context.Context, e Entry) error
}

// Offline is the Store used when no backend is configured. Every call fails
// with ErrConnectionUnavailable.
type Offline struct{}

// FetchTop always reports the backend as unavailable.
func (Offline) FetchTop(context.Context, int) ([]Entry, error) {
	return nil, ErrConnectionUnavailable
}

// Submit always reports the backend as unavailable.
func (Offline) Submit(context.Context, Entry) error {
	return ErrConnectionUnavailable
}

package leaderboard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process score table ranked by a skip list. The server
// serves it over a PostgREST-compatible endpoint so a RESTStore can use it as
// a self-hosted backend.
type MemoryStore struct {
	ranking *SkipList
}

// NewMemoryStore creates an empty table.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ranking: NewSkipList(time.Now().UnixNano())}
}

// FetchTop returns the n best rows.
func (m *MemoryStore) FetchTop(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = DefaultTopN
	}
	return m.ranking.Range(1, n), nil
}

// Submit appends a row.
func (m *MemoryStore) Submit(ctx context.Context, e Entry) error {
	_, err := m.Insert(ctx, e)
	return err
}

// Insert appends a row and returns it with its new ID. Rows missing a name
// or email are refused the way a NOT NULL column would refuse them.
func (m *MemoryStore) Insert(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	e = e.Normalized()
	if e.Name == "" || e.Email == "" {
		return Entry{}, &RejectedError{
			Status: http.StatusBadRequest,
			Reason: `null value in column "` + missingColumn(e) + `" violates not-null constraint`,
		}
	}
	if e.Score < 0 {
		return Entry{}, &RejectedError{Status: http.StatusBadRequest, Reason: "score must not be negative"}
	}

	e.ID = uuid.NewString()
	m.ranking.Insert(e)
	return e, nil
}

// Rank returns the 1-indexed position of a row ID, or 0 if unknown.
func (m *MemoryStore) Rank(id string) int {
	return m.ranking.Rank(strings.TrimSpace(id))
}

// Len returns the number of stored rows.
func (m *MemoryStore) Len() int {
	return m.ranking.Len()
}

func missingColumn(e Entry) string {
	if e.Name == "" {
		return "player_name"
	}
	return "email"
}

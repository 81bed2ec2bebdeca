package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREST(t *testing.T, h http.HandlerFunc) *RESTStore {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewRESTStore(RESTConfig{BaseURL: ts.URL + "/", APIKey: "anon", Table: "scores"})
}

func TestRESTStoreFetchTop(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/scores", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "score.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","player_name":"ana","email":"ana@example.com","score":90},
			{"id":"2","player_name":"bo","email":"bo@example.com","score":40}]`))
	})

	rows, err := s.FetchTop(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ana", rows[0].Name)
	assert.Equal(t, 90, rows[0].Score)
}

func TestRESTStoreSubmit(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rows []map[string]interface{}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&rows)) || !assert.Len(t, rows, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "ana", rows[0]["player_name"])
		assert.Equal(t, "ana@example.com", rows[0]["email"])
		assert.EqualValues(t, 75, rows[0]["score"])
		assert.NotContains(t, rows[0], "id")

		w.WriteHeader(http.StatusCreated)
	})

	err := s.Submit(context.Background(), Entry{ID: "ignored", Name: " ana ", Email: "ana@example.com", Score: 75})
	assert.NoError(t, err)
}

func TestRESTStoreErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		reason      string
	}{
		{"bad gateway", http.StatusBadGateway, "", true, ""},
		{"unavailable", http.StatusServiceUnavailable, "", true, ""},
		{"gateway timeout", http.StatusGatewayTimeout, "", true, ""},
		{"postgrest message", http.StatusConflict, `{"code":"23505","message":"duplicate key value"}`, false, "duplicate key value"},
		{"plain text", http.StatusUnauthorized, "invalid api key", false, "invalid api key"},
		{"empty body", http.StatusForbidden, "", false, "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, fetchErr := s.FetchTop(context.Background(), 5)
			submitErr := s.Submit(context.Background(), Entry{Name: "ana", Email: "ana@example.com", Score: 10})

			for op, err := range map[string]error{"fetch": fetchErr, "submit": submitErr} {
				require.Error(t, err, op)
				if tt.unavailable {
					assert.ErrorIs(t, err, ErrConnectionUnavailable, op)
					continue
				}
				rej, ok := IsRejected(err)
				require.True(t, ok, op)
				assert.Equal(t, tt.status, rej.Status, op)
				assert.Equal(t, tt.reason, Reason(err), op)
			}
		})
	}
}

func TestRESTStoreTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	s := NewRESTStore(RESTConfig{BaseURL: url, APIKey: "anon", Timeout: time.Second})
	_, err := s.FetchTop(context.Background(), 5)
	assert.ErrorIs(t, err, ErrConnectionUnavailable)
	assert.ErrorIs(t, s.Submit(context.Background(), Entry{Name: "a", Email: "a@example.com"}), ErrConnectionUnavailable)
}

func TestRESTStoreUnconfigured(t *testing.T) {
	s := NewRESTStore(RESTConfig{BaseURL: "https://example.supabase.co"})
	assert.False(t, s.Configured())

	_, err := s.FetchTop(context.Background(), 5)
	assert.ErrorIs(t, err, ErrConnectionUnavailable)
}

func TestRESTStoreMalformedResponse(t *testing.T) {
	s := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	})

	_, err := s.FetchTop(context.Background(), 5)
	_, ok := IsRejected(err)
	assert.True(t, ok)
}

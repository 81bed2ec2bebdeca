package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"zombie-shooter/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "anon-test-key"

func newScoresServer(t *testing.T, key string) (string, *leaderboard.MemoryStore) {
	t.Helper()
	store := leaderboard.NewMemoryStore()
	ts := newTestServer(t, RouterConfig{
		Engine:       newMockEngine(),
		Scores:       store,
		ScoresAPIKey: key,
	})
	return ts.URL, store
}

func TestRESTStoreRoundTrip(t *testing.T) {
	url, store := newScoresServer(t, testKey)
	client := leaderboard.NewRESTStore(leaderboard.RESTConfig{BaseURL: url, APIKey: testKey})
	ctx := context.Background()

	for _, e := range []leaderboard.Entry{
		{Name: "low", Email: "low@example.com", Score: 3},
		{Name: "high", Email: "high@example.com", Score: 90},
		{Name: "mid", Email: "mid@example.com", Score: 40},
	} {
		require.NoError(t, client.Submit(ctx, e))
	}
	assert.Equal(t, 3, store.Len())

	rows, err := client.FetchTop(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].Name)
	assert.Equal(t, "mid", rows[1].Name)
	assert.NotEmpty(t, rows[0].ID)
}

func TestRESTStoreThroughGateway(t *testing.T) {
	url, _ := newScoresServer(t, testKey)
	gw := leaderboard.NewGateway(
		leaderboard.NewRESTStore(leaderboard.RESTConfig{BaseURL: url, APIKey: testKey}),
		leaderboard.GatewayConfig{},
	)
	gw.Start()
	defer gw.Stop()

	_, err := gw.Submit(leaderboard.Entry{Name: "gw", Email: "gw@example.com", Score: 5})
	require.NoError(t, err)

	var results []leaderboard.Result
	assert.Eventually(t, func() bool {
		results = append(results, gw.Poll()...)
		return len(results) == 1
	}, testWait, testPoll)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestScoresRequireAPIKey(t *testing.T) {
	url, store := newScoresServer(t, testKey)

	wrong := leaderboard.NewRESTStore(leaderboard.RESTConfig{BaseURL: url, APIKey: "nope"})
	err := wrong.Submit(context.Background(), leaderboard.Entry{Name: "x", Email: "x@example.com", Score: 1})
	rej, ok := leaderboard.IsRejected(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, rej.Status)
	assert.Equal(t, "Invalid API key", rej.Reason)
	assert.Zero(t, store.Len())

	resp, err := http.Get(url + "/rest/v1/scores")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestScoresOpenWithoutKey(t *testing.T) {
	url, _ := newScoresServer(t, "")

	resp, err := http.Get(url + "/rest/v1/scores?select=*&order=score.desc&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []leaderboard.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestScoresRejectMissingColumns(t *testing.T) {
	url, _ := newScoresServer(t, testKey)
	client := leaderboard.NewRESTStore(leaderboard.RESTConfig{BaseURL: url, APIKey: testKey})

	err := client.Submit(context.Background(), leaderboard.Entry{Name: "  ", Email: "a@example.com", Score: 1})
	rej, ok := leaderboard.IsRejected(err)
	require.True(t, ok, "expected rejection, got %v", err)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Contains(t, leaderboard.Reason(err), `"player_name"`)
}

func TestScoresInsertRepresentation(t *testing.T) {
	url, store := newScoresServer(t, testKey)

	req, err := http.NewRequest(http.MethodPost, url+"/rest/v1/scores",
		strings.NewReader(`{"player_name":"solo","email":"solo@example.com","score":8,"id":"forged"}`))
	require.NoError(t, err)
	req.Header.Set(APIKeyHeader, testKey)
	req.Header.Set("Prefer", "return=representation")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(RankHeader))

	var rows []leaderboard.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.NotEqual(t, "forged", rows[0].ID)
	assert.Equal(t, 1, store.Rank(rows[0].ID))
}

func TestScoresBadRequests(t *testing.T) {
	url, _ := newScoresServer(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown table", http.MethodGet, "/rest/v1/players", "", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/rest/v1/scores?limit=-1", "", http.StatusBadRequest},
		{"bad order", http.MethodGet, "/rest/v1/scores?order=email.asc", "", http.StatusBadRequest},
		{"column select", http.MethodGet, "/rest/v1/scores?select=email", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/rest/v1/scores", "{", http.StatusBadRequest},
		{"empty array", http.MethodPost, "/rest/v1/scores", "[]", http.StatusBadRequest},
		{"negative score", http.MethodPost, "/rest/v1/scores", `[{"player_name":"n","email":"n@example.com","score":-1}]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, url+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)

			var pe map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&pe))
			assert.NotEmpty(t, pe["message"])
		})
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEngine implements EngineInterface for testing
type mockEngine struct {
	mu     sync.Mutex
	snap   *game.GameSnapshot
	inputs []game.Input
}

func newMockEngine() *mockEngine {
	snap := game.NewGameSnapshot(game.DefaultLimits)
	snap.Sequence = 1
	snap.Mode = game.ModeLeaderboard
	snap.Board = game.BoardView{
		Status:  game.BoardConnected,
		Entries: []leaderboard.Entry{{Name: "ada", Email: "a**@example.com", Score: 12}},
	}
	return &mockEngine{snap: snap}
}

func (m *mockEngine) GetSnapshot() *game.GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockEngine) SubmitInput(in game.Input) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()
}

func (m *mockEngine) Inputs() []game.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]game.Input(nil), m.inputs...)
}

func (m *mockEngine) Stats() game.EngineStats {
	return game.EngineStats{RunID: "run-test", TickRate: 60, Mode: "leaderboard"}
}

func (m *mockEngine) GetEventLogStats() map[string]interface{} {
	return map[string]interface{}{"total": 3}
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) WritePNG(w io.Writer, snap *game.GameSnapshot) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("\x89PNG fake"))
	return err
}

type fakeGateway struct{}

func (fakeGateway) Stats() leaderboard.GatewayStats {
	return leaderboard.GatewayStats{Processed: 7}
}

// testLimits keeps the limiter out of the way.
var testLimits = &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000, CleanupInterval: time.Hour}

func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()
	if cfg.RateLimitConfig == nil && cfg.RateLimiter == nil {
		cfg.RateLimiter = NewIPRateLimiter(*testLimits)
	}
	if cfg.RateLimiter != nil {
		t.Cleanup(cfg.RateLimiter.Stop)
	}
	cfg.DisableLogging = true
	ts := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetState(t *testing.T) {
	ts := newTestServer(t, RouterConfig{Engine: newMockEngine()})

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decodeBody(t, resp)
	assert.Equal(t, "leaderboard", body["mode"])
	assert.EqualValues(t, 1, body["sequence"])
}

func TestGetStateBeforeFirstSnapshot(t *testing.T) {
	engine := newMockEngine()
	engine.snap = nil
	ts := newTestServer(t, RouterConfig{Engine: engine})

	resp, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetLeaderboard(t *testing.T) {
	ts := newTestServer(t, RouterConfig{Engine: newMockEngine()})

	resp, err := http.Get(ts.URL + "/api/leaderboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Mode        string `json:"mode"`
		Leaderboard struct {
			Status  string              `json:"status"`
			Entries []leaderboard.Entry `json:"entries"`
		} `json:"leaderboard"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	assert.Equal(t, "leaderboard", body.Mode)
	assert.Equal(t, "connected", body.Leaderboard.Status)
	require.Len(t, body.Leaderboard.Entries, 1)
	assert.Equal(t, "ada", body.Leaderboard.Entries[0].Name)
	assert.Equal(t, 12, body.Leaderboard.Entries[0].Score)
}

func TestPostInput(t *testing.T) {
	engine := newMockEngine()
	ts := newTestServer(t, RouterConfig{Engine: engine})

	payload := `{"left":true,"fire":true,"action":"submit","text":"ab"}`
	resp, err := http.Post(ts.URL+"/api/input", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	inputs := engine.Inputs()
	require.Len(t, inputs, 1)
	assert.True(t, inputs[0].Left)
	assert.True(t, inputs[0].Fire)
	assert.Equal(t, game.ActionSubmit, inputs[0].Action)
	assert.Equal(t, "ab", inputs[0].Text)
}

func TestPostInputValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "left"},
		{"empty", ""},
		{"wrong type", `{"left":"yes"}`},
	}

	engine := newMockEngine()
	ts := newTestServer(t, RouterConfig{Engine: engine})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/input", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Empty(t, engine.Inputs())
}

func TestSessionStart(t *testing.T) {
	engine := newMockEngine()
	ts := newTestServer(t, RouterConfig{Engine: engine})

	resp, err := http.Post(ts.URL+"/api/session/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	inputs := engine.Inputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, game.ActionStart, inputs[0].Action)
}

func TestSessionStartWithRealEngine(t *testing.T) {
	engine := game.NewEngine(game.EngineConfig{Seed: 5}, nil)
	ts := newTestServer(t, RouterConfig{Engine: engine})

	resp, err := http.Post(ts.URL+"/api/session/start", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	engine.Step(game.Input{})

	resp, err = http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, "playing", body["mode"])
}

func TestGetStats(t *testing.T) {
	ts := newTestServer(t, RouterConfig{
		Engine:    newMockEngine(),
		Gateway:   fakeGateway{},
		WSClients: func() int { return 2 },
	})

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	engine, ok := body["engine"].(map[string]interface{})
	require.True(t, ok, "engine stats missing")
	assert.Equal(t, "run-test", engine["runId"])
	assert.Contains(t, body, "eventLog")
	assert.Contains(t, body, "rateLimit")
	assert.EqualValues(t, 2, body["wsClients"])

	board, ok := body["leaderboard"].(map[string]interface{})
	require.True(t, ok, "leaderboard stats missing")
	assert.EqualValues(t, 7, board["processed"])
}

func TestGetFrame(t *testing.T) {
	t.Run("rendered", func(t *testing.T) {
		ts := newTestServer(t, RouterConfig{Engine: newMockEngine(), Renderer: fakeRenderer{}})

		resp, err := http.Get(ts.URL + "/api/frame.png")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		data, _ := io.ReadAll(resp.Body)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	})

	t.Run("no renderer", func(t *testing.T) {
		ts := newTestServer(t, RouterConfig{Engine: newMockEngine()})

		resp, err := http.Get(ts.URL + "/api/frame.png")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("render error", func(t *testing.T) {
		ts := newTestServer(t, RouterConfig{Engine: newMockEngine(), Renderer: fakeRenderer{err: errors.New("boom")}})

		resp, err := http.Get(ts.URL + "/api/frame.png")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestCORSHeaders(t *testing.T) {
	ts := newTestServer(t, RouterConfig{
		Engine:      newMockEngine(),
		CORSOrigins: []string{"http://game.example.com"},
	})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/state", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://game.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://game.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRateLimiting(t *testing.T) {
	ts := newTestServer(t, RouterConfig{
		Engine:      newMockEngine(),
		RateLimiter: NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 3, CleanupInterval: time.Hour}),
	})

	statuses := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		resp, err := http.Get(ts.URL + "/api/state")
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{200, 200, 200}, statuses[:3])
	assert.Contains(t, statuses[3:], http.StatusTooManyRequests)
}

func TestRootRedirects(t *testing.T) {
	ts := newTestServer(t, RouterConfig{Engine: newMockEngine()})

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/state", resp.Header.Get("Location"))
}

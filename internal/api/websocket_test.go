package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"zombie-shooter/internal/game"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWait = 2 * time.Second
	testPoll = 10 * time.Millisecond
)

// startHub serves a Server's router with the hub and broadcast loop running.
func startHub(t *testing.T, engine EngineInterface, origins []string) (*Server, string) {
	t.Helper()
	srv := NewServer(ServerConfig{Engine: engine, CORSOrigins: origins, StateHz: 50})
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Hub().Run(ctx)
	go srv.Hub().BroadcastLoop(ctx, 50)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		cancel()
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestWebSocketStreamsState(t *testing.T) {
	srv, url := startHub(t, newMockEngine(), nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, testWait, testPoll)

	conn.SetReadDeadline(time.Now().Add(testWait))
	var msg struct {
		Event string `json:"event"`
		Data  struct {
			Mode string `json:"mode"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, EventState, msg.Event)
	assert.Equal(t, "leaderboard", msg.Data.Mode)
}

func TestWebSocketForwardsInput(t *testing.T) {
	engine := newMockEngine()
	_, url := startHub(t, engine, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"event": EventInput,
		"data":  map[string]interface{}{"up": true, "text": "z"},
	}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"event": EventStart}))

	assert.Eventually(t, func() bool { return len(engine.Inputs()) == 2 }, testWait, testPoll)
	inputs := engine.Inputs()
	require.Len(t, inputs, 2)
	assert.True(t, inputs[0].Up)
	assert.Equal(t, "z", inputs[0].Text)
	assert.Equal(t, game.ActionStart, inputs[1].Action)
}

func TestWebSocketRejectsOrigin(t *testing.T) {
	_, url := startHub(t, newMockEngine(), []string{"http://game.example.com"})

	header := http.Header{}
	header.Set("Origin", "http://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://game.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestWebSocketDisconnectReleasesSlot(t *testing.T) {
	srv, url := startHub(t, newMockEngine(), nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, testWait, testPoll)

	conn.Close()
	assert.Eventually(t, func() bool { return srv.Hub().ClientCount() == 0 }, testWait, testPoll)
	assert.Equal(t, 0, srv.Hub().wsLimiter.GetConnectionCount("127.0.0.1"))
}

func TestBroadcastEnvelope(t *testing.T) {
	hub := NewWebSocketHub(newMockEngine(), nil)
	hub.Broadcast("custom", map[string]int{"n": 1})

	select {
	case raw := <-hub.broadcast:
		var msg wsMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "custom", msg.Event)
		assert.JSONEq(t, `{"n":1}`, string(msg.Data))
	default:
		t.Fatal("nothing queued")
	}
}

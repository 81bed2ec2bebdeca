package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"zombie-shooter/internal/game"
)

// maxInputBodySize bounds POST /api/input. Typed text is tiny.
const maxInputBodySize = 16 * 1024

func (h *routerHandlers) snapshot(w http.ResponseWriter) *game.GameSnapshot {
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "No snapshot yet", http.StatusServiceUnavailable)
	}
	return snap
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	if snap := h.snapshot(w); snap != nil {
		writeJSON(w, snap)
	}
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"mode":        snap.Mode,
		"leaderboard": snap.Board,
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"engine":    h.engine.Stats(),
		"eventLog":  h.engine.GetEventLogStats(),
		"rateLimit": h.rateLimiter.GetStats(),
	}
	if h.gateway != nil {
		stats["leaderboard"] = h.gateway.Stats()
	}
	if h.wsClients != nil {
		stats["wsClients"] = h.wsClients()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		writeError(w, "Renderer disabled", http.StatusServiceUnavailable)
		return
	}
	snap := h.snapshot(w)
	if snap == nil {
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.WritePNG(&buf, snap); err != nil {
		log.Printf("❌ Frame render failed: %v", err)
		writeError(w, "Render failed", http.StatusInternalServerError)
		return
	}
	RecordRender(time.Since(start))

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleInput(w http.ResponseWriter, r *http.Request) {
	var in game.Input
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInputBodySize)).Decode(&in); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	h.engine.SubmitInput(in)
	writeAccepted(w)
}

func (h *routerHandlers) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	h.engine.SubmitInput(game.Input{Action: game.ActionStart})
	writeAccepted(w)
}

// Helper functions (package-level for reuse)

// writeJSON encodes before writing so a slow client never holds a snapshot
// slot while the response drains.
func writeJSON(w http.ResponseWriter, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		writeError(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
	w.Write([]byte{'\n'})
}

func writeAccepted(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]bool{"accepted": true})
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

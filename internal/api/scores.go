package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"zombie-shooter/internal/leaderboard"

	"github.com/go-chi/chi/v5"
)

const (
	maxScoreRows     = 1000
	maxScoreBodySize = 64 * 1024
)

// ScoreTable is the storage behind the self-hosted score endpoint.
// *leaderboard.MemoryStore implements it.
type ScoreTable interface {
	leaderboard.Store
	Insert(ctx context.Context, e leaderboard.Entry) (leaderboard.Entry, error)
	Rank(id string) int
}

// RankHeader carries the 1-based rank of a single inserted row.
const RankHeader = "X-Score-Rank"

// scoresHandler serves /rest/v1/{table} with the subset of PostgREST that
// leaderboard.RESTStore speaks: ordered selects with a limit, and inserts.
type scoresHandler struct {
	table string
	store ScoreTable
}

// mount registers the table routes on r.
func (h *scoresHandler) mount(r chi.Router) {
	r.Get("/{table}", h.handleSelect)
	r.Post("/{table}", h.handleInsert)
}

func (h *scoresHandler) checkTable(w http.ResponseWriter, r *http.Request) bool {
	name := chi.URLParam(r, "table")
	if name == h.table {
		return true
	}
	writePostgrestError(w, http.StatusNotFound,
		fmt.Sprintf("relation \"public.%s\" does not exist", name), "42P01")
	return false
}

func (h *scoresHandler) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !h.checkTable(w, r) {
		return
	}

	q := r.URL.Query()
	if sel := q.Get("select"); sel != "" && sel != "*" {
		writePostgrestError(w, http.StatusBadRequest, "only select=* is supported", "PGRST100")
		return
	}
	if order := q.Get("order"); order != "" && order != "score.desc" {
		writePostgrestError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported order %q", order), "PGRST100")
		return
	}

	limit := leaderboard.DefaultTopN
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writePostgrestError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid limit %q", raw), "PGRST100")
			return
		}
		limit = n
	}
	if limit > maxScoreRows {
		limit = maxScoreRows
	}

	rows := []leaderboard.Entry{}
	if limit > 0 {
		top, err := h.store.FetchTop(r.Context(), limit)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		rows = append(rows, top...)
	}
	writeJSON(w, rows)
}

func (h *scoresHandler) handleInsert(w http.ResponseWriter, r *http.Request) {
	if !h.checkTable(w, r) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxScoreBodySize))
	if err != nil {
		writePostgrestError(w, http.StatusRequestEntityTooLarge, "request body too large", "PGRST102")
		return
	}
	rows, err := decodeRows(body)
	if err != nil {
		writePostgrestError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error(), "PGRST102")
		return
	}
	if len(rows) == 0 {
		writePostgrestError(w, http.StatusBadRequest, "empty insert", "PGRST102")
		return
	}

	inserted := make([]leaderboard.Entry, 0, len(rows))
	for _, row := range rows {
		row.ID = ""
		e, err := h.store.Insert(r.Context(), row)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		inserted = append(inserted, e)
	}

	if len(inserted) == 1 {
		rank := h.store.Rank(inserted[0].ID)
		w.Header().Set(RankHeader, strconv.Itoa(rank))
		log.Printf("🏆 %s scored %d (rank %d)", inserted[0].Name, inserted[0].Score, rank)
	}

	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(inserted)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// decodeRows accepts a single object or an array of objects.
func decodeRows(body []byte) ([]leaderboard.Entry, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if body[0] == '[' {
		var rows []leaderboard.Entry
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var row leaderboard.Entry
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, err
	}
	return []leaderboard.Entry{row}, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if rej, ok := leaderboard.IsRejected(err); ok {
		status := rej.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		writePostgrestError(w, status, rej.Reason, "23502")
		return
	}
	writePostgrestError(w, http.StatusInternalServerError, err.Error(), "XX000")
}

// writePostgrestError writes the error body PostgREST clients parse.
func writePostgrestError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"code":    code,
		"details": nil,
		"hint":    nil,
	})
}

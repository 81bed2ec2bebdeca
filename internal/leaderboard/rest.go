package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RESTConfig points a RESTStore at a PostgREST endpoint (Supabase exposes
// one under /rest/v1).
type RESTConfig struct {
	BaseURL string        // e.g. https://xyz.supabase.co
	APIKey  string        // anon key, sent as apikey and bearer token
	Table   string        // defaults to "scores"
	Timeout time.Duration // per request, defaults to 5s
}

// RESTStore reads and appends rows through the PostgREST HTTP API.
type RESTStore struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
}

// NewRESTStore creates a store. An empty URL or key yields a store whose
// calls fail with ErrConnectionUnavailable, mirroring an unconfigured client.
func NewRESTStore(cfg RESTConfig) *RESTStore {
	if cfg.Table == "" {
		cfg.Table = "scores"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &RESTStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		table:   cfg.Table,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Configured reports whether both URL and key are set.
func (s *RESTStore) Configured() bool {
	return s.baseURL != "" && s.apiKey != ""
}

func (s *RESTStore) tableURL() string {
	return s.baseURL + "/rest/v1/" + url.PathEscape(s.table)
}

// FetchTop runs "select * order by score desc limit n".
func (s *RESTStore) FetchTop(ctx context.Context, n int) ([]Entry, error) {
	if !s.Configured() {
		return nil, ErrConnectionUnavailable
	}
	if n <= 0 {
		n = DefaultTopN
	}

	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "score.desc")
	q.Set("limit", strconv.Itoa(n))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tableURL()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: build request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var rows []Entry
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &RejectedError{Status: resp.StatusCode, Reason: "malformed response: " + err.Error()}
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

// Submit inserts one row.
func (s *RESTStore) Submit(ctx context.Context, e Entry) error {
	if !s.Configured() {
		return ErrConnectionUnavailable
	}

	row := e.Normalized()
	row.ID = ""
	body, err := json.Marshal([]Entry{row})
	if err != nil {
		return fmt.Errorf("leaderboard: encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tableURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("leaderboard: build request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

func (s *RESTStore) authorize(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

// postgrestError is the error body PostgREST returns on failures.
type postgrestError struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Code    string `json:"code"`
}

// checkStatus maps gateway failures to ErrConnectionUnavailable and every
// other non-2xx answer to a RejectedError.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: backend answered %d", ErrConnectionUnavailable, resp.StatusCode)
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var pe postgrestError
	reason := ""
	if err := json.Unmarshal(data, &pe); err == nil && pe.Message != "" {
		reason = pe.Message
	} else if text := strings.TrimSpace(string(data)); text != "" {
		reason = text
	}
	return &RejectedError{Status: resp.StatusCode, Reason: reason}
}

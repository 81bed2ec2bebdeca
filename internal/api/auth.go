package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const (
	// APIKeyHeader carries the table key, as Supabase clients send it.
	APIKeyHeader = "apikey"

	bearerPrefix = "Bearer "
)

// APIKeyAuth guards the score table. Requests must present key either in
// the apikey header or as a bearer token. An empty key disables the check.
type APIKeyAuth struct {
	key []byte
}

// NewAPIKeyAuth creates a guard for key.
func NewAPIKeyAuth(key string) *APIKeyAuth {
	return &APIKeyAuth{key: []byte(key)}
}

// Enabled reports whether a key is required.
func (a *APIKeyAuth) Enabled() bool {
	return a != nil && len(a.key) > 0
}

// Valid checks the request's credentials in constant time.
func (a *APIKeyAuth) Valid(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}
	presented := r.Header.Get(APIKeyHeader)
	if presented == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
			presented = strings.TrimSpace(auth[len(bearerPrefix):])
		}
	}
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), a.key) == 1
}

// Middleware rejects unauthenticated requests with a PostgREST-shaped 401.
func (a *APIKeyAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Valid(r) {
			RecordConnectionRejected("apikey")
			writePostgrestError(w, http.StatusUnauthorized, "Invalid API key", "PGRST301")
			return
		}
		next.ServeHTTP(w, r)
	})
}

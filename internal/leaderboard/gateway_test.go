package leaderboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore records calls and can block until released.
type stubStore struct {
	mu        sync.Mutex
	rows      []Entry
	submitted []Entry
	fetchErr  error
	submitErr error
	gate      chan struct{}
}

func (s *stubStore) wait(ctx context.Context) error {
	if s.gate == nil {
		return nil
	}
	select {
	case <-s.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *stubStore) FetchTop(ctx context.Context, n int) ([]Entry, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return append([]Entry(nil), s.rows...), nil
}

func (s *stubStore) Submit(ctx context.Context, e Entry) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitErr != nil {
		return s.submitErr
	}
	s.submitted = append(s.submitted, e)
	return nil
}

// collect polls the gateway until n results arrived.
func collect(t *testing.T, g *Gateway, n int) []Result {
	t.Helper()
	var out []Result
	require.Eventually(t, func() bool {
		out = append(out, g.Poll()...)
		return len(out) >= n
	}, 2*time.Second, 5*time.Millisecond)
	return out
}

func TestGatewayFetch(t *testing.T) {
	store := &stubStore{rows: []Entry{{Name: "ana", Score: 10}}}
	g := NewGateway(store, GatewayConfig{Workers: 1})
	g.Start()
	defer g.Stop()

	gen := g.RequestTop(5)
	assert.Equal(t, uint64(1), gen)

	results := collect(t, g, 1)
	require.Len(t, results, 1)
	assert.Equal(t, JobFetch, results[0].Kind)
	assert.Equal(t, gen, results[0].Generation)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "ana", results[0].Entries[0].Name)
	assert.Nil(t, g.Poll())
}

func TestGatewaySubmitValidatesFirst(t *testing.T) {
	store := &stubStore{}
	g := NewGateway(store, GatewayConfig{Workers: 1})
	g.Start()
	defer g.Stop()

	gen, err := g.Submit(Entry{Name: "ana", Email: "broken"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, gen)
	assert.Zero(t, g.Stats().Generation)

	gen, err = g.Submit(Entry{Name: " ana ", Email: "ana@example.com", Score: 30})
	require.NoError(t, err)

	results := collect(t, g, 1)
	assert.Equal(t, gen, results[0].Generation)
	assert.Equal(t, JobSubmit, results[0].Kind)
	assert.NoError(t, results[0].Err)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.submitted, 1)
	assert.Equal(t, "ana", store.submitted[0].Name)
}

func TestGatewayPropagatesStoreErrors(t *testing.T) {
	store := &stubStore{
		fetchErr:  ErrConnectionUnavailable,
		submitErr: &RejectedError{Status: 409, Reason: "duplicate"},
	}
	g := NewGateway(store, GatewayConfig{Workers: 1})
	g.Start()
	defer g.Stop()

	g.RequestTop(5)
	_, err := g.Submit(Entry{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)

	results := collect(t, g, 2)
	var sawFetch, sawSubmit bool
	for _, r := range results {
		switch r.Kind {
		case JobFetch:
			sawFetch = true
			assert.ErrorIs(t, r.Err, ErrConnectionUnavailable)
		case JobSubmit:
			sawSubmit = true
			assert.Equal(t, "duplicate", Reason(r.Err))
		}
	}
	assert.True(t, sawFetch && sawSubmit)
	assert.Equal(t, uint64(2), g.Stats().Failed)
}

func TestGatewayTimeoutIsConnectionUnavailable(t *testing.T) {
	store := &stubStore{gate: make(chan struct{})}
	g := NewGateway(store, GatewayConfig{Workers: 1, Timeout: 20 * time.Millisecond})
	g.Start()
	defer g.Stop()

	g.RequestTop(5)
	results := collect(t, g, 1)
	assert.ErrorIs(t, results[0].Err, ErrConnectionUnavailable)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
}

func TestGatewayQueueFull(t *testing.T) {
	store := &stubStore{gate: make(chan struct{})}
	g := NewGateway(store, GatewayConfig{Workers: 1, BufferSize: 1, Timeout: time.Minute})
	g.Start()
	defer func() {
		close(store.gate)
		g.Stop()
	}()

	// First request occupies the worker, second fills the buffer.
	g.RequestTop(5)
	require.Eventually(t, func() bool { return len(g.jobs) == 0 }, time.Second, time.Millisecond)
	g.RequestTop(5)
	third := g.RequestTop(5)

	results := g.Poll()
	require.Len(t, results, 1)
	assert.Equal(t, third, results[0].Generation)
	assert.ErrorIs(t, results[0].Err, ErrQueueFull)
	assert.Equal(t, uint64(1), g.Stats().Dropped)
}

func TestGatewayNotStarted(t *testing.T) {
	g := NewGateway(nil, GatewayConfig{})
	gen := g.RequestTop(0)

	results := g.Poll()
	require.Len(t, results, 1)
	assert.Equal(t, gen, results[0].Generation)
	assert.ErrorIs(t, results[0].Err, ErrConnectionUnavailable)
}

func TestGatewayGenerationsIncrease(t *testing.T) {
	g := NewGateway(&stubStore{}, GatewayConfig{})
	g.Start()
	defer g.Stop()

	a := g.RequestTop(5)
	b, err := g.Submit(Entry{Name: "a", Email: "a@example.com"})
	require.NoError(t, err)
	c := g.RequestTop(5)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.Equal(t, c, g.Stats().Generation)

	collect(t, g, 3)
}

func TestGatewayOnResultHook(t *testing.T) {
	var mu sync.Mutex
	var kinds []JobKind

	g := NewGateway(&stubStore{}, GatewayConfig{Workers: 1})
	g.OnResult = func(r Result) {
		mu.Lock()
		kinds = append(kinds, r.Kind)
		mu.Unlock()
	}
	g.Start()
	defer g.Stop()

	g.RequestTop(3)
	collect(t, g, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []JobKind{JobFetch}, kinds)
}

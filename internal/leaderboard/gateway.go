package leaderboard

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// JobKind distinguishes the two gateway operations.
type JobKind uint8

const (
	JobFetch JobKind = iota
	JobSubmit
)

func (k JobKind) String() string {
	if k == JobSubmit {
		return "submit"
	}
	return "fetch"
}

// Result is the completion of one gateway request. Generation is the value
// returned when the request was issued.
type Result struct {
	Kind       JobKind
	Generation uint64
	Entries    []Entry // fetch only
	Entry      Entry   // submit only
	Err        error
	Latency    time.Duration
}

type job struct {
	kind       JobKind
	generation uint64
	n          int
	entry      Entry
	enqueuedAt time.Time
}

// GatewayConfig sizes the worker pool.
type GatewayConfig struct {
	BufferSize int           // Pending requests before new ones are refused (default: 32)
	Workers    int           // Concurrent backend calls (default: 2)
	Timeout    time.Duration // Per-request deadline (default: 5s)
}

// DefaultGatewayConfig returns defaults sized for one interactive player.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		BufferSize: 32,
		Workers:    2,
		Timeout:    5 * time.Second,
	}
}

// Gateway runs leaderboard calls off the game loop. Requests return a
// monotonically increasing generation immediately; completions are collected
// and handed back by Poll, so the caller applies them on its own goroutine
// and can discard superseded responses.
type Gateway struct {
	store    Store
	jobs     chan job
	workers  int
	timeout  time.Duration
	wg       sync.WaitGroup
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	generation atomic.Uint64

	resultsMu sync.Mutex
	results   []Result

	// OnResult, if set, is called from the worker for every completion.
	OnResult func(Result)

	// Metrics
	enqueued   atomic.Uint64
	processed  atomic.Uint64
	dropped    atomic.Uint64
	failed     atomic.Uint64
	avgLatency atomic.Int64 // nanoseconds, exponential moving average
}

// NewGateway creates a gateway over store. Workers do not run until Start.
func NewGateway(store Store, cfg GatewayConfig) *Gateway {
	def := DefaultGatewayConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if store == nil {
		store = Offline{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Gateway{
		store:   store,
		jobs:    make(chan job, cfg.BufferSize),
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker pool.
func (g *Gateway) Start() {
	if g.running.Swap(true) {
		return
	}

	log.Printf("🏆 Leaderboard gateway starting with %d workers, buffer size %d", g.workers, cap(g.jobs))

	for i := 0; i < g.workers; i++ {
		g.wg.Add(1)
		go g.worker()
	}
}

// Stop cancels in-flight calls and waits for the workers to exit.
func (g *Gateway) Stop() {
	g.stopOnce.Do(func() {
		g.running.Store(false)
		g.cancel()
		g.wg.Wait()

		log.Printf("📊 Leaderboard gateway stopped - enqueued: %d, processed: %d, failed: %d, dropped: %d",
			g.enqueued.Load(), g.processed.Load(), g.failed.Load(), g.dropped.Load())
	})
}

// RequestTop asks for the n best rows and returns the request generation.
func (g *Gateway) RequestTop(n int) uint64 {
	if n <= 0 {
		n = DefaultTopN
	}
	gen := g.generation.Add(1)
	g.enqueue(job{kind: JobFetch, generation: gen, n: n})
	return gen
}

// Submit validates and dispatches a new row. Invalid input is reported
// synchronously and never reaches the backend.
func (g *Gateway) Submit(e Entry) (uint64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	gen := g.generation.Add(1)
	g.enqueue(job{kind: JobSubmit, generation: gen, entry: e.Normalized()})
	return gen, nil
}

// enqueue never blocks. A full queue or a stopped gateway completes the job
// immediately with ErrQueueFull.
func (g *Gateway) enqueue(j job) {
	j.enqueuedAt = time.Now()
	if !g.running.Load() {
		g.complete(Result{Kind: j.kind, Generation: j.generation, Entry: j.entry, Err: ErrQueueFull})
		return
	}

	select {
	case g.jobs <- j:
		g.enqueued.Add(1)
	default:
		g.dropped.Add(1)
		log.Printf("⚠️ Leaderboard queue full, dropped %s request (total dropped: %d)", j.kind, g.dropped.Load())
		g.complete(Result{Kind: j.kind, Generation: j.generation, Entry: j.entry, Err: ErrQueueFull})
	}
}

// Poll drains completed results without blocking.
func (g *Gateway) Poll() []Result {
	g.resultsMu.Lock()
	defer g.resultsMu.Unlock()

	if len(g.results) == 0 {
		return nil
	}
	out := g.results
	g.results = nil
	return out
}

func (g *Gateway) worker() {
	defer g.wg.Done()

	for {
		select {
		case <-g.ctx.Done():
			return
		case j := <-g.jobs:
			g.complete(g.run(j))
		}
	}
}

func (g *Gateway) run(j job) Result {
	ctx, cancel := context.WithTimeout(g.ctx, g.timeout)
	defer cancel()

	start := time.Now()
	res := Result{Kind: j.kind, Generation: j.generation, Entry: j.entry}
	switch j.kind {
	case JobFetch:
		res.Entries, res.Err = g.store.FetchTop(ctx, j.n)
	case JobSubmit:
		res.Err = g.store.Submit(ctx, j.entry)
	}

	// Deadlines and cancellations are transport failures from the caller's
	// point of view.
	if errors.Is(res.Err, context.DeadlineExceeded) || errors.Is(res.Err, context.Canceled) {
		res.Err = errors.Join(ErrConnectionUnavailable, res.Err)
	}

	res.Latency = time.Since(start)
	g.updateAvgLatency(time.Since(j.enqueuedAt))
	g.processed.Add(1)
	return res
}

func (g *Gateway) complete(res Result) {
	if res.Err != nil {
		g.failed.Add(1)
	}

	g.resultsMu.Lock()
	g.results = append(g.results, res)
	g.resultsMu.Unlock()

	if g.OnResult != nil {
		g.OnResult(res)
	}
}

// updateAvgLatency updates the exponential moving average.
func (g *Gateway) updateAvgLatency(d time.Duration) {
	current := g.avgLatency.Load()
	g.avgLatency.Store((current*9 + d.Nanoseconds()) / 10)
}

// Stats returns current gateway statistics.
func (g *Gateway) Stats() GatewayStats {
	return GatewayStats{
		Enqueued:     g.enqueued.Load(),
		Processed:    g.processed.Load(),
		Failed:       g.failed.Load(),
		Dropped:      g.dropped.Load(),
		Pending:      uint64(len(g.jobs)),
		Generation:   g.generation.Load(),
		AvgLatencyMs: float64(g.avgLatency.Load()) / 1e6,
	}
}

// GatewayStats holds gateway metrics.
type GatewayStats struct {
	Enqueued     uint64  `json:"enqueued"`
	Processed    uint64  `json:"processed"`
	Failed       uint64  `json:"failed"`
	Dropped      uint64  `json:"dropped"`
	Pending      uint64  `json:"pending"`
	Generation   uint64  `json:"generation"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

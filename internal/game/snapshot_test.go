package game

import (
	"encoding/json"
	"testing"

	"zombie-shooter/internal/leaderboard"
)

// TestSnapshotCopiesByValue keeps the snapshot independent of the session
func TestSnapshotCopiesByValue(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	s.Start()
	s.Hostiles = append(s.Hostiles, parked(10, 10))

	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)

	s.Hostiles[0].X = 99
	s.Player.Score = 1000

	if snap.Hostiles[0].X != 10 {
		t.Errorf("Expected snapshot hostile unchanged, got X %v", snap.Hostiles[0].X)
	}
	if snap.Player.Score != 0 {
		t.Errorf("Expected snapshot score 0, got %d", snap.Player.Score)
	}
	if snap.Mode != ModePlaying || snap.RNGSeed != 5 {
		t.Errorf("Unexpected header mode=%s seed=%d", snap.Mode, snap.RNGSeed)
	}
}

// TestSnapshotRespectsLimits truncates published slices only
func TestSnapshotRespectsLimits(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	s.Start()
	for i := 0; i < 5; i++ {
		s.Hostiles = append(s.Hostiles, parked(float64(i*40), 10))
	}
	s.Board = BoardView{Status: BoardOffline, Entries: leaderboard.Placeholder()}

	limits := DefaultLimits
	limits.MaxHostiles = 3
	limits.MaxBoardRows = 2
	snap := NewGameSnapshot(limits)
	s.Fill(snap)

	if len(snap.Hostiles) != 3 {
		t.Errorf("Expected 3 published hostiles, got %d", len(snap.Hostiles))
	}
	if len(s.Hostiles) != 5 {
		t.Errorf("Expected session untouched, got %d", len(s.Hostiles))
	}
	if len(snap.Board.Entries) != 2 {
		t.Errorf("Expected 2 board rows, got %d", len(snap.Board.Entries))
	}
}

// TestSnapshotMasksEmails never publishes a full address
func TestSnapshotMasksEmails(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	s.Board = BoardView{Status: BoardConnected, Entries: []leaderboard.Entry{
		{Name: "alice", Email: "alice@example.com", Score: 9},
	}}

	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)

	if got := snap.Board.Entries[0].Email; got != "a****@example.com" {
		t.Errorf("Expected masked email, got %q", got)
	}
	if s.Board.Entries[0].Email != "alice@example.com" {
		t.Errorf("Expected session rows unmasked, got %q", s.Board.Entries[0].Email)
	}
}

// TestSnapshotReuseClearsSlices refills a slot without stale entities
func TestSnapshotReuseClearsSlices(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	s.Start()
	s.Hostiles = append(s.Hostiles, parked(10, 10), parked(50, 10))

	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)
	s.Hostiles = s.Hostiles[:1]
	s.Fill(snap)

	if len(snap.Hostiles) != 1 {
		t.Errorf("Expected 1 hostile after refill, got %d", len(snap.Hostiles))
	}
}

// TestSnapshotWaveProgress is the elapsed fraction of the wave
func TestSnapshotWaveProgress(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	s.Start()
	s.Waves.Timer = 900

	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)

	if got := snap.WaveProgress(); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}
	if got := (&GameSnapshot{}).WaveProgress(); got != 0 {
		t.Errorf("Expected 0 for an empty snapshot, got %v", got)
	}
}

// TestSnapshotPool hands out the latest publish
func TestSnapshotPool(t *testing.T) {
	pool := NewSnapshotPool(DefaultLimits)
	if pool.AcquireRead() != nil {
		t.Fatal("Expected nil before the first publish")
	}

	var last *GameSnapshot
	for i := 0; i < 4; i++ {
		last = pool.AcquireWrite()
		last.Frame = uint64(i)
		pool.PublishWrite()
	}

	got := pool.AcquireRead()
	if got != last {
		t.Error("Expected the most recent slot")
	}
	if got.Sequence != 4 {
		t.Errorf("Expected sequence 4, got %d", got.Sequence)
	}
	if pool.GetLimits() != DefaultLimits {
		t.Error("Expected default limits")
	}
}

// TestSnapshotJSON uses wire names for enums
func TestSnapshotJSON(t *testing.T) {
	s := NewSession(DefaultTuning(), 5, &fakeBoard{}, nil)
	snap := NewGameSnapshot(DefaultLimits)
	s.Fill(snap)

	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["mode"] != "title" {
		t.Errorf("Expected mode title, got %v", decoded["mode"])
	}
	if _, ok := decoded["leaderboard"]; !ok {
		t.Error("Expected leaderboard key")
	}
}

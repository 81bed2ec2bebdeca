package game

import "testing"

// TestZombiesPerWave checks min(20, floor(wave*1.5))
func TestZombiesPerWave(t *testing.T) {
	tests := []struct {
		wave, want int
	}{
		{1, 1},
		{2, 3},
		{3, 4},
		{4, 6},
		{10, 15},
		{13, 19},
		{14, 20},
		{100, 20},
	}

	for _, tt := range tests {
		if got := ZombiesPerWave(tt.wave, 20); got != tt.want {
			t.Errorf("Wave %d: expected %d, got %d", tt.wave, tt.want, got)
		}
	}
}

// TestWaveRollover increments exactly once per wave duration
func TestWaveRollover(t *testing.T) {
	w := NewWaveScheduler(DefaultTuning())

	rolls := 0
	for tick := uint64(1); tick <= 1799; tick++ {
		if _, rolled := w.Advance(tick, 100); rolled {
			rolls++
		}
	}
	if w.Wave != 1 || rolls != 0 {
		t.Fatalf("Expected wave 1 with no rollover, got wave %d (%d rolls)", w.Wave, rolls)
	}

	_, rolled := w.Advance(1800, 100)
	if !rolled || w.Wave != 2 {
		t.Fatalf("Expected rollover to wave 2 at tick 1800, got wave %d", w.Wave)
	}
	if w.Timer != 0 {
		t.Errorf("Expected timer reset, got %d", w.Timer)
	}
	if w.PerWave != 3 {
		t.Errorf("Expected 3 per wave, got %d", w.PerWave)
	}
	if w.BannerTicks != 180 {
		t.Errorf("Expected banner 180, got %d", w.BannerTicks)
	}

	w.Advance(1801, 100)
	if w.BannerTicks != 179 {
		t.Errorf("Expected banner to count down to 179, got %d", w.BannerTicks)
	}

	for tick := uint64(1802); tick <= 1800*5; tick++ {
		w.Advance(tick, 100)
	}
	if w.Wave != 5 {
		t.Errorf("Expected wave 5 after 5 durations, got %d", w.Wave)
	}
}

// TestWaveSpawnGate spawns on the interval only while under capacity
func TestWaveSpawnGate(t *testing.T) {
	w := NewWaveScheduler(DefaultTuning())

	if spawn, _ := w.Advance(59, 0); spawn {
		t.Error("Expected no spawn off the interval")
	}
	if spawn, _ := w.Advance(60, 0); !spawn {
		t.Error("Expected spawn at tick 60 with no hostiles")
	}
	// Wave 1 capacity is 1 + 1/3 = 1
	if spawn, _ := w.Advance(120, 1); spawn {
		t.Error("Expected no spawn at capacity")
	}
	if w.Capacity() != 1 {
		t.Errorf("Expected capacity 1, got %d", w.Capacity())
	}

	w.Wave = 6
	w.PerWave = ZombiesPerWave(6, 20)
	if w.Capacity() != 11 {
		t.Errorf("Expected capacity 9+2=11, got %d", w.Capacity())
	}
}

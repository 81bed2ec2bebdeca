package game

// WaveScheduler ramps difficulty over fixed-length waves and decides when a
// new hostile enters.
type WaveScheduler struct {
	Wave        int `json:"wave"`
	Timer       int `json:"timer"`       // Ticks elapsed in the current wave
	PerWave     int `json:"perWave"`     // Derived: min(MaxWaveSize, floor(wave*1.5))
	BannerTicks int `json:"bannerTicks"` // Remaining ticks of the "Wave N" banner

	duration      int
	spawnInterval int
	bannerLength  int
	maxWaveSize   int
}

// NewWaveScheduler starts at wave 1.
func NewWaveScheduler(t Tuning) *WaveScheduler {
	w := &WaveScheduler{
		Wave:          1,
		duration:      t.WaveDuration,
		spawnInterval: t.SpawnInterval,
		bannerLength:  t.WaveBannerTicks,
		maxWaveSize:   t.MaxWaveSize,
	}
	w.PerWave = ZombiesPerWave(w.Wave, w.maxWaveSize)
	return w
}

// ZombiesPerWave is min(limit, floor(wave * 1.5)).
func ZombiesPerWave(wave, limit int) int {
	return min(limit, wave*3/2)
}

// Capacity is the live-hostile ceiling for the current wave.
func (w *WaveScheduler) Capacity() int {
	return w.PerWave + w.Wave/3
}

// Advance runs one tick. tick is the session's playing-tick counter and live
// is the number of hostiles currently on the field. It reports whether a
// hostile should spawn and whether a new wave began on this tick.
func (w *WaveScheduler) Advance(tick uint64, live int) (spawn, rolled bool) {
	w.Timer++
	if w.Timer >= w.duration {
		w.Wave++
		w.Timer = 0
		w.PerWave = ZombiesPerWave(w.Wave, w.maxWaveSize)
		w.BannerTicks = w.bannerLength
		rolled = true
	}

	if w.spawnInterval > 0 && tick%uint64(w.spawnInterval) == 0 && live < w.Capacity() {
		spawn = true
	}

	if w.BannerTicks > 0 && !rolled {
		w.BannerTicks--
	}
	return spawn, rolled
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombie-shooter/internal/game"
	"zombie-shooter/internal/leaderboard"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	for _, k := range []string{"WIDTH", "HEIGHT", "TPS", "PORT", "SUPABASE_URL", "SUPABASE_KEY", "LEADERBOARD_MODE", "TUNING_FILE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, DefaultDisplay(), cfg.Display)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, LeaderboardOff, cfg.Leaderboard.Mode)
	assert.Equal(t, "scores", cfg.Leaderboard.Table)
	assert.Equal(t, game.DefaultLimits, cfg.Limits)
	assert.Empty(t, cfg.TuningPath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WIDTH", "1024")
	t.Setenv("TPS", "30")
	t.Setenv("HEIGHT", "not-a-number")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LEADERBOARD_TIMEOUT_MS", "250")
	t.Setenv("LEADERBOARD_WORKERS", "4")

	cfg := Load()
	assert.Equal(t, 1024, cfg.Display.Width)
	assert.Equal(t, 600, cfg.Display.Height, "malformed values fall back to the default")
	assert.Equal(t, 30, cfg.Display.TPS)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.Leaderboard.Timeout)

	gw := cfg.Leaderboard.Gateway()
	assert.Equal(t, 4, gw.Workers)
	assert.Equal(t, 250*time.Millisecond, gw.Timeout)
}

func TestLeaderboardModeSelection(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		mode    string
		store   interface{}
		wantErr bool
	}{
		{"unset is off", map[string]string{}, LeaderboardOff, leaderboard.Offline{}, false},
		{"credentials imply remote", map[string]string{"SUPABASE_URL": "https://x.test", "SUPABASE_KEY": "k"}, LeaderboardRemote, &leaderboard.RESTStore{}, false},
		{"url alone stays off", map[string]string{"SUPABASE_URL": "https://x.test"}, LeaderboardOff, leaderboard.Offline{}, false},
		{"explicit memory", map[string]string{"LEADERBOARD_MODE": " Memory "}, LeaderboardMemory, &leaderboard.MemoryStore{}, false},
		{"unknown", map[string]string{"LEADERBOARD_MODE": "redis"}, "redis", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"SUPABASE_URL", "SUPABASE_KEY", "LEADERBOARD_MODE"} {
				t.Setenv(k, tt.env[k])
			}

			cfg := LeaderboardFromEnv()
			assert.Equal(t, tt.mode, cfg.Mode)

			store, err := cfg.Store()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.store, store)
		})
	}
}

func TestLoadTuningEmptyPath(t *testing.T) {
	tn, err := LoadTuning("")
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTuning(), tn)
}

func TestLoadTuningPartialOverride(t *testing.T) {
	path := writeFile(t, "max_health: 80\ndrop_chance: 0\nhostile_speed: 3.5\n")

	tn, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 80, tn.MaxHealth)
	assert.Equal(t, 0.0, tn.DropChance)
	assert.Equal(t, 3.5, tn.HostileSpeed)
	assert.Equal(t, 10, tn.ContactDamage, "unlisted keys keep defaults")
}

func TestLoadTuningNormalizes(t *testing.T) {
	path := writeFile(t, "fire_cooldown: -3\ndrop_chance: 2\n")

	tn, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 10, tn.FireCooldown)
	assert.Equal(t, 1.0, tn.DropChance)
}

func TestLoadTuningEmptyFile(t *testing.T) {
	tn, err := LoadTuning(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, game.DefaultTuning(), tn)
}

func TestLoadTuningErrors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadTuning(writeFile(t, "max_health: [1, 2\n"))
	assert.Error(t, err)

	_, err = LoadTuning(writeFile(t, "max_hp: 10\n"))
	assert.ErrorContains(t, err, "max_hp")
}

func TestAppConfigTuningLayers(t *testing.T) {
	cfg := AppConfig{
		Display:    DisplayConfig{Width: 1000, Height: 700, TPS: 30},
		TuningPath: writeFile(t, "tick_rate: 50\n"),
	}

	tn, err := cfg.Tuning()
	require.NoError(t, err)
	assert.Equal(t, 1000.0, tn.Width)
	assert.Equal(t, 700.0, tn.Height)
	assert.Equal(t, 50, tn.TickRate, "the tuning file wins over the display settings")
}

package game

// Tuning holds every gameplay number. All durations are in ticks at TickRate.
// Field names double as YAML keys so a tuning file can override any subset.
type Tuning struct {
	Width    float64 `yaml:"width" json:"width"`
	Height   float64 `yaml:"height" json:"height"`
	TickRate int     `yaml:"tick_rate" json:"tickRate"`

	// Player
	PlayerSize        float64 `yaml:"player_size" json:"playerSize"`
	PlayerSpeed       float64 `yaml:"player_speed" json:"playerSpeed"`
	MaxHealth         int     `yaml:"max_health" json:"maxHealth"`
	ContactDamage     int     `yaml:"contact_damage" json:"contactDamage"`
	FireCooldown      int     `yaml:"fire_cooldown" json:"fireCooldown"`
	RapidFireCooldown int     `yaml:"rapid_fire_cooldown" json:"rapidFireCooldown"`
	RapidFireSpread   float64 `yaml:"rapid_fire_spread" json:"rapidFireSpread"`
	SpeedBoostFactor  float64 `yaml:"speed_boost_factor" json:"speedBoostFactor"`

	// Hostiles
	HostileSize  float64 `yaml:"hostile_size" json:"hostileSize"`
	HostileSpeed float64 `yaml:"hostile_speed" json:"hostileSpeed"`

	// Projectiles
	ProjectileSize  float64 `yaml:"projectile_size" json:"projectileSize"`
	ProjectileSpeed float64 `yaml:"projectile_speed" json:"projectileSpeed"`

	// Scoring and drops
	KillScore      int     `yaml:"kill_score" json:"killScore"`
	DropChance     float64 `yaml:"drop_chance" json:"dropChance"`
	PickupMargin   float64 `yaml:"pickup_margin" json:"pickupMargin"`
	AssistInterval int     `yaml:"assist_interval" json:"assistInterval"`

	// Waves
	WaveDuration    int `yaml:"wave_duration" json:"waveDuration"`
	SpawnInterval   int `yaml:"spawn_interval" json:"spawnInterval"`
	WaveBannerTicks int `yaml:"wave_banner_ticks" json:"waveBannerTicks"`
	MaxWaveSize     int `yaml:"max_wave_size" json:"maxWaveSize"`

	// Scenery
	MediumObstacles int `yaml:"medium_obstacles" json:"mediumObstacles"`
	SmallObstacles  int `yaml:"small_obstacles" json:"smallObstacles"`

	// UI message lifetimes
	ActivatedMessageTicks int `yaml:"activated_message_ticks" json:"activatedMessageTicks"`
	ExpiredMessageTicks   int `yaml:"expired_message_ticks" json:"expiredMessageTicks"`
}

// DefaultTuning returns the arcade defaults (800x600 at 60 ticks per second).
func DefaultTuning() Tuning {
	return Tuning{
		Width:    800,
		Height:   600,
		TickRate: 60,

		PlayerSize:        32,
		PlayerSpeed:       5,
		MaxHealth:         40,
		ContactDamage:     10,
		FireCooldown:      10,
		RapidFireCooldown: 5,
		RapidFireSpread:   0.1,
		SpeedBoostFactor:  1.5,

		HostileSize:  32,
		HostileSpeed: 2,

		ProjectileSize:  4,
		ProjectileSpeed: 10,

		KillScore:      10,
		DropChance:     0.15,
		PickupMargin:   20,
		AssistInterval: 10,

		WaveDuration:    1800,
		SpawnInterval:   60,
		WaveBannerTicks: 180,
		MaxWaveSize:     20,

		MediumObstacles: 8,
		SmallObstacles:  15,

		ActivatedMessageTicks: 120,
		ExpiredMessageTicks:   60,
	}
}

// Normalize replaces non-positive fields with their defaults so a partial
// tuning file never produces a degenerate game.
func (t Tuning) Normalize() Tuning {
	d := DefaultTuning()
	fixF := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	fixI := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}

	fixF(&t.Width, d.Width)
	fixF(&t.Height, d.Height)
	fixI(&t.TickRate, d.TickRate)
	fixF(&t.PlayerSize, d.PlayerSize)
	fixF(&t.PlayerSpeed, d.PlayerSpeed)
	fixI(&t.MaxHealth, d.MaxHealth)
	fixI(&t.ContactDamage, d.ContactDamage)
	fixI(&t.FireCooldown, d.FireCooldown)
	fixI(&t.RapidFireCooldown, d.RapidFireCooldown)
	fixF(&t.RapidFireSpread, d.RapidFireSpread)
	fixF(&t.SpeedBoostFactor, d.SpeedBoostFactor)
	fixF(&t.HostileSize, d.HostileSize)
	fixF(&t.HostileSpeed, d.HostileSpeed)
	fixF(&t.ProjectileSize, d.ProjectileSize)
	fixF(&t.ProjectileSpeed, d.ProjectileSpeed)
	fixI(&t.KillScore, d.KillScore)
	fixF(&t.PickupMargin, d.PickupMargin)
	fixI(&t.AssistInterval, d.AssistInterval)
	fixI(&t.WaveDuration, d.WaveDuration)
	fixI(&t.SpawnInterval, d.SpawnInterval)
	fixI(&t.WaveBannerTicks, d.WaveBannerTicks)
	fixI(&t.MaxWaveSize, d.MaxWaveSize)
	fixI(&t.ActivatedMessageTicks, d.ActivatedMessageTicks)
	fixI(&t.ExpiredMessageTicks, d.ExpiredMessageTicks)

	// Zero is a legal drop chance and obstacle count; only clamp nonsense.
	if t.DropChance < 0 {
		t.DropChance = 0
	}
	if t.DropChance > 1 {
		t.DropChance = 1
	}
	if t.MediumObstacles < 0 {
		t.MediumObstacles = 0
	}
	if t.SmallObstacles < 0 {
		t.SmallObstacles = 0
	}
	return t
}

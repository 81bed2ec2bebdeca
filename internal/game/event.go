package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Sampled tick boundary with RNG seed
	EventTypeSessionStart
	EventTypeWaveStart
	EventTypeHostileSpawn
	EventTypePlayerHit
	EventTypeShieldBlock
	EventTypeHostileKilled
	EventTypePowerUpDrop
	EventTypePowerUpActivated
	EventTypePowerUpExpired
	EventTypeGameOver
	EventTypeScoreSubmitted
	EventTypeLeaderboardLoaded
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 2

// Event is the core event structure for the event log
type Event struct {
	Version   uint8           `json:"version"`   // Schema version
	Type      EventType       `json:"type"`      // Event type
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`  // Monotonic sequence
	TickNum   uint64          `json:"tickNum"`   // Session tick this occurred in
	Source    string          `json:"source"`    // Emitting run (for rate limiting)
	Payload   json.RawMessage `json:"payload"`   // JSON-encoded payload
}

var eventTypeNames = [...]string{
	EventTypeUnknown:           "unknown",
	EventTypeTick:              "tick",
	EventTypeSessionStart:      "session_start",
	EventTypeWaveStart:         "wave_start",
	EventTypeHostileSpawn:      "hostile_spawn",
	EventTypePlayerHit:         "player_hit",
	EventTypeShieldBlock:       "shield_block",
	EventTypeHostileKilled:     "hostile_killed",
	EventTypePowerUpDrop:       "powerup_drop",
	EventTypePowerUpActivated:  "powerup_activated",
	EventTypePowerUpExpired:    "powerup_expired",
	EventTypeGameOver:          "game_over",
	EventTypeScoreSubmitted:    "score_submitted",
	EventTypeLeaderboardLoaded: "leaderboard_loaded",
}

// String returns human-readable event type
func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MarshalText writes the type by name so the JSONL log is greppable.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText reads a type written by MarshalText.
func (t *EventType) UnmarshalText(b []byte) error {
	for i, name := range eventTypeNames {
		if name == string(b) {
			*t = EventType(i)
			return nil
		}
	}
	*t = EventTypeUnknown
	return nil
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed      int64 `json:"rngSeed"`
	Hostiles     int   `json:"hostiles"`
	Projectiles  int   `json:"projectiles"`
	Collectibles int   `json:"collectibles"`
	Wave         int   `json:"wave"`
}

// SessionStartPayload marks a new game.
type SessionStartPayload struct {
	Seed      int64 `json:"seed"`
	Obstacles int   `json:"obstacles"`
}

// WavePayload is emitted when a wave begins.
type WavePayload struct {
	Wave     int `json:"wave"`
	PerWave  int `json:"perWave"`
	Capacity int `json:"capacity"`
}

// SpawnPayload describes a hostile entering the field.
type SpawnPayload struct {
	Edge SpawnEdge `json:"edge"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	Live int       `json:"live"`
}

// HitPayload contains contact details between a hostile and the player.
type HitPayload struct {
	Damage int     `json:"damage"`
	Health int     `json:"health"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// KillPayload contains projectile kill details
type KillPayload struct {
	Shooter Shooter `json:"shooter"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Score   int     `json:"score"`
}

// PowerUpPayload is shared by drop, activation and expiry events.
type PowerUpPayload struct {
	Kind PowerUpKind `json:"kind"`
	X    float64     `json:"x,omitempty"`
	Y    float64     `json:"y,omitempty"`
}

// GameOverPayload summarises a finished run.
type GameOverPayload struct {
	Score int `json:"score"`
	Wave  int `json:"wave"`
	Ticks int `json:"ticks"`
}

// ScorePayload records a leaderboard submission.
type ScorePayload struct {
	Name  string `json:"name"`
	Email string `json:"email"` // Masked
	Score int    `json:"score"`
}

// LeaderboardPayload records a completed fetch.
type LeaderboardPayload struct {
	Generation uint64 `json:"generation"`
	Rows       int    `json:"rows"`
	Status     string `json:"status"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) json.RawMessage {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, source string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		Source:    source,
		Payload:   EncodePayload(payload),
	}
}

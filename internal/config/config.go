// Package config provides YAML-based configuration loading, speed presets
// and live reloading for snakepilot.
package config

import "time"

// Config is the full snakepilot configuration.
type Config struct {
	Board     BoardConfig               `yaml:"board"`
	Loop      LoopConfig                `yaml:"loop"`
	Planner   PlannerConfig             `yaml:"planner"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	Storage   StorageConfig             `yaml:"storage"`
	Spectate  SpectateConfig            `yaml:"spectate"`
}

// BoardConfig defines the playfield geometry, in board units.
type BoardConfig struct {
	Bound           int     `yaml:"bound"`            // Playfield spans [-bound, bound] on both axes
	Step            int     `yaml:"step"`             // Distance the head moves per tick
	CaptureRadius   float64 `yaml:"capture_radius"`   // Head-to-food distance that counts as eating
	CollisionRadius float64 `yaml:"collision_radius"` // Head-to-body distance that counts as a bite
	FoodMargin      int     `yaml:"food_margin"`      // Food spawns within [-margin, margin]
	InitialLength   int     `yaml:"initial_length"`
}

// LoopConfig defines the game loop cadence.
type LoopConfig struct {
	Tick      time.Duration `yaml:"tick"`
	PlanEvery int           `yaml:"plan_every"` // Consult the planner every N ticks
}

// PlannerConfig selects and tunes the move planner.
type PlannerConfig struct {
	Provider       string `yaml:"provider"`
	PlanLength     int    `yaml:"plan_length"`     // Moves requested per remote call
	FallbackMargin int    `yaml:"fallback_margin"` // Minimum wall clearance for fallback moves
	BodyPreview    int    `yaml:"body_preview"`    // Body segments listed in the prompt
}

// ProviderConfig configures one remote text-completion provider.
type ProviderConfig struct {
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	BaseURL     string        `yaml:"base_url"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	Tick        time.Duration `yaml:"tick"` // Overrides loop.tick when this provider drives the game
}

// StorageConfig locates the run database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// SpectateConfig configures the spectator HTTP API.
type SpectateConfig struct {
	Addr string `yaml:"addr"`
}

// Provider returns the settings for the named provider.
func (c Config) Provider(name string) (ProviderConfig, bool) {
	p, ok := c.Providers[name]
	return p, ok
}

// TickFor returns the tick interval to use when the named provider plans.
func (c Config) TickFor(provider string) time.Duration {
	if p, ok := c.Providers[provider]; ok && p.Tick > 0 {
		return p.Tick
	}
	return c.Loop.Tick
}

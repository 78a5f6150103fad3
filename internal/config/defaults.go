package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/snakepilot.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
// It mirrors defaults/snakepilot.yaml and is used if the embed cannot be parsed.
func Default() Config {
	return Config{
		Board: BoardConfig{
			Bound:           295,
			Step:            20,
			CaptureRadius:   15,
			CollisionRadius: 10,
			FoodMargin:      280,
			InitialLength:   3,
		},
		Loop: LoopConfig{
			Tick:      100 * time.Millisecond,
			PlanEvery: 2,
		},
		Planner: PlannerConfig{
			Provider:       "openai",
			PlanLength:     10,
			FallbackMargin: 20,
			BodyPreview:    8,
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				Model:     "o4-mini",
				APIKeyEnv: "OPENAI_API_KEY",
				BaseURL:   "https://api.openai.com/v1",
				MaxTokens: 256,
				Timeout:   30 * time.Second,
			},
			"anthropic": {
				Model:       "claude-sonnet-4-20250514",
				APIKeyEnv:   "ANTHROPIC_API_KEY",
				BaseURL:     "https://api.anthropic.com",
				MaxTokens:   50,
				Temperature: 0.1,
				Timeout:     30 * time.Second,
				Tick:        250 * time.Millisecond,
			},
		},
		Storage: StorageConfig{
			DBPath: "~/.snakepilot/runs.db",
		},
		Spectate: SpectateConfig{
			Addr: ":8090",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}

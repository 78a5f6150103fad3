package config

import (
	"fmt"
	"time"
)

// SpeedPreset is a named game speed.
type SpeedPreset string

const (
	SpeedEasy   SpeedPreset = "easy"
	SpeedNormal SpeedPreset = "normal"
	SpeedHard   SpeedPreset = "hard"
	SpeedFixed  SpeedPreset = "fixed" // keep the configured tick
)

// ParseSpeedPreset validates a preset name. Empty means fixed.
func ParseSpeedPreset(s string) (SpeedPreset, error) {
	switch SpeedPreset(s) {
	case "":
		return SpeedFixed, nil
	case SpeedEasy, SpeedNormal, SpeedHard, SpeedFixed:
		return SpeedPreset(s), nil
	default:
		return "", fmt.Errorf("config: unknown speed preset %q", s)
	}
}

// TickForPreset returns the tick interval of a preset.
// SpeedFixed returns base unchanged.
func TickForPreset(preset SpeedPreset, base time.Duration) time.Duration {
	switch preset {
	case SpeedEasy:
		return 150 * time.Millisecond
	case SpeedNormal:
		return 100 * time.Millisecond
	case SpeedHard:
		return 60 * time.Millisecond
	default:
		return base
	}
}

// ApplySpeedPreset rewrites the loop tick and every provider tick override.
func ApplySpeedPreset(cfg *Config, preset SpeedPreset) {
	if preset == SpeedFixed {
		return
	}
	cfg.Loop.Tick = TickForPreset(preset, cfg.Loop.Tick)
	for name, p := range cfg.Providers {
		p.Tick = 0
		cfg.Providers[name] = p
	}
}

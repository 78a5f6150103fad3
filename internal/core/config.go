package core

import "time"

// RuntimeConfig is handed to a game on Reset.
// Games use it to adapt to the terminal size and to seed their RNG.
type RuntimeConfig struct {
	ScreenW int           // Screen width in characters
	ScreenH int           // Screen height in characters
	Tick    time.Duration // Interval between simulation ticks
	Seed    int64         // RNG seed, 0 means the platform picks one
}

// DefaultConfig returns a RuntimeConfig sized for a classic terminal.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
		Tick:    100 * time.Millisecond,
	}
}

// TickRate returns ticks per second for the configured interval.
func (c RuntimeConfig) TickRate() int {
	if c.Tick <= 0 {
		return 10
	}
	rate := int(time.Second / c.Tick)
	if rate < 1 {
		return 1
	}
	return rate
}

// GameState is the platform-facing summary of a game.
type GameState struct {
	Score    int    // Current score
	GameOver bool   // Whether the game has ended
	Paused   bool   // Whether the game is paused
	Cause    string // Why the game ended, empty while running
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration.
// Search order: customPath -> ~/.snakepilot/config.yaml -> ./configs/snakepilot.yaml -> embedded default.
// Files are layered over the defaults, so a partial file only overrides what it names.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		cfg, err := Parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath("config.yaml"), filepath.Join("configs", "snakepilot.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := Parse(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := Parse(defaultYAML)
	if err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// Parse decodes YAML over the built-in defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the game loop cannot run with.
func (c Config) Validate() error {
	b := c.Board
	switch {
	case b.Bound <= 0:
		return fmt.Errorf("config: board.bound must be positive, got %d", b.Bound)
	case b.Step <= 0:
		return fmt.Errorf("config: board.step must be positive, got %d", b.Step)
	case b.FoodMargin <= 0 || b.FoodMargin > b.Bound:
		return fmt.Errorf("config: board.food_margin must be in (0, %d], got %d", b.Bound, b.FoodMargin)
	case b.InitialLength < 1:
		return fmt.Errorf("config: board.initial_length must be at least 1, got %d", b.InitialLength)
	case c.Loop.Tick <= 0:
		return fmt.Errorf("config: loop.tick must be positive, got %s", c.Loop.Tick)
	case c.Loop.PlanEvery < 1:
		return fmt.Errorf("config: loop.plan_every must be at least 1, got %d", c.Loop.PlanEvery)
	case c.Planner.PlanLength < 1:
		return fmt.Errorf("config: planner.plan_length must be at least 1, got %d", c.Planner.PlanLength)
	}
	return nil
}

// LoadEnv loads KEY=value pairs from .env files into the process environment.
// Missing files are skipped; variables already set are left alone.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
		if p := userConfigPath(".env"); p != "" {
			paths = append(paths, p)
		}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: failed to load %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the provider's key from the environment.
func (p ProviderConfig) APIKey() (string, error) {
	if p.APIKeyEnv == "" {
		return "", errors.New("config: provider has no api_key_env")
	}
	key := os.Getenv(p.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("config: %s not found in environment", p.APIKeyEnv)
	}
	return key, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// userConfigPath returns a path under ~/.snakepilot, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snakepilot", filename)
}

package planner

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// GreedyName selects the offline planner.
const GreedyName = "greedy"

// New builds the planner named by provider: the greedy planner, or a
// buffered planner over the registered provider of that name.
func New(cfg config.Config, provider string, logger *log.Logger) (snake.Planner, error) {
	if provider == GreedyName {
		return NewGreedy(cfg.Planner.FallbackMargin), nil
	}

	pc, ok := cfg.Provider(provider)
	if !ok {
		return nil, fmt.Errorf("planner: no config section for provider %q", provider)
	}
	p, err := registry.Create(provider, pc)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger = logger.With("provider", provider)
	}
	return NewBuffered(p, Options{
		PlanLength:     cfg.Planner.PlanLength,
		BodyPreview:    cfg.Planner.BodyPreview,
		FallbackMargin: cfg.Planner.FallbackMargin,
		MaxTokens:      pc.MaxTokens,
		Temperature:    pc.Temperature,
	}, logger), nil
}

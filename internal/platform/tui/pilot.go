package tui

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/planner"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// ManualPilot is the pilot name of keyboard-steered games.
const ManualPilot = "manual"

// Pilot is a selectable way of steering the snake.
type Pilot struct {
	Name  string
	Title string
}

// Pilots lists the manual pilot, the greedy planner and every registered
// provider. When remote is false only local pilots are returned.
func Pilots(remote bool) []Pilot {
	pilots := []Pilot{
		{Name: ManualPilot, Title: "Manual"},
		{Name: planner.GreedyName, Title: "Greedy autopilot"},
	}
	if !remote {
		return pilots
	}
	for _, p := range registry.List() {
		pilots = append(pilots, Pilot{Name: p.Name, Title: p.Title})
	}
	return pilots
}

// GameFactory builds a fresh game steered by the named pilot.
type GameFactory func(pilot string) (*snake.Game, error)

// NewGameFactory returns a factory over cfg. Manual games still carry the
// greedy planner so the autopilot key can hand over control.
func NewGameFactory(cfg config.Config, logger *log.Logger) GameFactory {
	return func(pilot string) (*snake.Game, error) {
		name := pilot
		if pilot == ManualPilot {
			name = planner.GreedyName
		}
		p, err := planner.New(cfg, name, logger)
		if err != nil {
			return nil, err
		}
		return snake.New(snake.BoardFromConfig(cfg.Board), snake.Options{
			PlanEvery: cfg.Loop.PlanEvery,
			Autopilot: pilot != ManualPilot,
		}, p), nil
	}
}

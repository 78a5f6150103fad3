package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakepilot/internal/planner"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List planner providers",
	Long: `Shows every planner that can steer the snake, and whether the API key
it needs is present in the environment (or a .env file).`,
	Run: runProviders,
}

func runProviders(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	providers := registry.List()

	maxNameLen := len(planner.GreedyName)
	for _, p := range providers {
		if len(p.Name) > maxNameLen {
			maxNameLen = len(p.Name)
		}
	}

	fmt.Println("Available providers:")
	fmt.Println()
	fmt.Printf("  %-*s  %-20s  %s\n", maxNameLen, "Name", "Title", "Status")
	fmt.Printf("  %-*s  %-20s  %s\n", maxNameLen, "----", "-----", "------")
	fmt.Printf("  %-*s  %-20s  %s\n", maxNameLen, planner.GreedyName, "Greedy (offline)", "ready")

	for _, p := range providers {
		status := "ready"
		pc, ok := cfg.Provider(p.Name)
		switch {
		case !ok:
			status = "no config section"
		default:
			if _, err := pc.APIKey(); err != nil {
				status = fmt.Sprintf("missing %s", pc.APIKeyEnv)
			} else if pc.Model != "" {
				status = "ready (" + pc.Model + ")"
			}
		}
		if p.Name == cfg.Planner.Provider {
			status += ", default"
		}
		fmt.Printf("  %-*s  %-20s  %s\n", maxNameLen, p.Name, p.Title, status)
	}

	fmt.Println()
	fmt.Println("Run 'snakepilot run --provider <name>' to watch it play.")
}

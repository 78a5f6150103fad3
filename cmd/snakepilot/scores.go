package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakepilot/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [provider]",
	Short: "Show the best runs",
	Long: `Display the best runs, for one provider or across all of them, followed
by per-provider totals including the planner success rate.

Examples:
  snakepilot scores
  snakepilot scores anthropic
  snakepilot scores greedy --limit 20
  snakepilot scores manual --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every run of the given provider")
}

func runScores(_ *cobra.Command, args []string) {
	cfg := mustLoadConfig()

	provider := ""
	if len(args) == 1 {
		provider = args[0]
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening run database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if provider == "" {
			fmt.Fprintln(os.Stderr, "Error: --clear needs a provider")
			os.Exit(1)
		}
		if err := store.ClearRuns(provider); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared runs of %s.\n", provider)
		return
	}

	runs, err := store.TopRuns(provider, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	title := "all providers"
	if provider != "" {
		title = provider
	}
	fmt.Printf("Best runs - %s\n\n", title)

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snakepilot run' or 'snakepilot play' to record the first one!")
		return
	}

	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-6s  %-8s  %s\n", "Rank", "Provider", "Score", "Cause", "Ticks", "Success", "Date")
	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-6s  %-8s  %s\n", "----", "--------", "-----", "-----", "-----", "-------", "----")
	for i, r := range runs {
		success := "-"
		if r.Decisions > 0 {
			success = fmt.Sprintf("%.1f%%", r.SuccessRate())
		}
		fmt.Printf("  %-4d  %-10s  %-5d  %-5s  %-6d  %-8s  %s\n",
			i+1, r.Provider, r.Score, r.Cause, r.Ticks, success, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	stats, err := store.AllProviderStats()
	if err != nil || len(stats) == 0 {
		return
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		if provider == "" || name == provider {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		s := stats[name]
		fmt.Printf("%s: %d runs, best %d, avg %.1f", name, s.Runs, s.HighScore, s.AvgScore)
		if s.Decisions > 0 {
			fmt.Printf(", AI success rate %.1f%%", s.SuccessRate())
		}
		fmt.Println()
	}
}

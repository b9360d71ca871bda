package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout-backend/internal/config"
	"github.com/oppscout/oppscout-backend/internal/infrastructure/container"
)

var rootCmd = &cobra.Command{
	Use:   "oppscout",
	Short: "Find and rank income opportunities from the command line",
	Long: `oppscout searches for income opportunities (jobs, freelance work,
grants, funding) matching your profile, ranks them by income potential,
effort, and fit, and remembers what you have already seen.`,
	SilenceUsage: true,
}

// newApp builds the full container the same way the server does, so
// the CLI and the HTTP API share identical wiring and degraded modes.
func newApp(ctx context.Context) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return container.NewContainer(ctx, cfg)
}

func main() {
	rootCmd.AddCommand(findCommand())
	rootCmd.AddCommand(researchCommand())
	rootCmd.AddCommand(statsCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

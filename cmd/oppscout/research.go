package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout-backend/internal/domain"
)

func researchCommand() *cobra.Command {
	var (
		title   string
		company string
	)

	cmd := &cobra.Command{
		Use:   "research [url]",
		Short: "Deep research on a single opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			opp := &domain.Opportunity{
				Title: title,
				URL:   args[0],
			}
			if company != "" {
				opp.Company = &company
			}

			report, err := app.Finder.Research(cmd.Context(), opp)
			if err != nil {
				if errors.Is(err, domain.ErrNotConfigured) {
					return fmt.Errorf("research requires PERPLEXITY_API_KEY")
				}
				return fmt.Errorf("research failed: %w", err)
			}

			fmt.Fprintln(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Unknown", "Opportunity title")
	cmd.Flags().StringVar(&company, "company", "", "Company or organization name")

	return cmd
}

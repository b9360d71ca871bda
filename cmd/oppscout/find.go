package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/oppscout/oppscout-backend/internal/domain"
	"github.com/oppscout/oppscout-backend/internal/usecase/finder"
)

const titlePreviewLength = 60

func findCommand() *cobra.Command {
	var (
		minIncome   int
		maxHours    int
		skills      []string
		remote      bool
		quick       bool
		includeSeen bool
	)

	cmd := &cobra.Command{
		Use:   "find [query]",
		Short: "Search and rank opportunities",
		Long: `Run the discovery workflow for a query and print the ranked results.

Examples:
  # Full workflow with research and summary
  oppscout find "remote golang contract work"

  # Skip the LLM stages for a faster answer
  oppscout find -q "technical writing gigs" --quick
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			profile := domain.DefaultProfile()
			if minIncome > 0 {
				profile.MinIncome = minIncome
			}
			if maxHours > 0 {
				profile.MaxHoursWeekly = maxHours
			}
			if len(skills) > 0 {
				profile.Skills = skills
			}
			profile.RemoteOnly = remote

			if quick {
				ranked, err := app.Finder.QuickSearch(cmd.Context(), args[0], profile)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
				recommendations := make([]finder.Recommendation, 0, len(ranked))
				for _, opp := range ranked {
					recommendations = append(recommendations, finder.Recommendation{
						Opportunity: opp,
						Scores:      finder.Scores{Overall: opp.OverallScore},
					})
				}
				renderResults(recommendations)
				return nil
			}

			resp, err := app.Finder.Find(cmd.Context(), args[0], profile, includeSeen)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			renderResults(resp.Recommendations)
			if resp.Summary != "" {
				fmt.Fprintf(os.Stdout, "\n%s\n", resp.Summary)
			}
			fmt.Fprintf(os.Stdout, "\nSearched %s, %d found\n",
				strings.Join(resp.SourcesSearched, ", "), resp.TotalFound)
			return nil
		},
	}

	cmd.Flags().IntVar(&minIncome, "min-income", 0, "Target annual income in USD")
	cmd.Flags().IntVar(&maxHours, "max-hours", 0, "Max hours per week")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "Skills to match against")
	cmd.Flags().BoolVar(&remote, "remote", true, "Remote opportunities only")
	cmd.Flags().BoolVar(&quick, "quick", false, "Skip LLM understanding, research, and summary")
	cmd.Flags().BoolVar(&includeSeen, "include-seen", false, "Keep opportunities you have already seen")

	return cmd
}

func renderResults(recommendations []finder.Recommendation) {
	if len(recommendations) == 0 {
		fmt.Fprintln(os.Stdout, "No opportunities found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Company", "Score", "$/hr", "Hours/wk"})

	for i, rec := range recommendations {
		opp := rec.Opportunity

		company := "-"
		if opp.Company != nil && *opp.Company != "" {
			company = *opp.Company
		}
		perHour := "-"
		if rec.Efficiency != nil {
			perHour = fmt.Sprintf("%.0f", *rec.Efficiency)
		}
		hours := "-"
		if opp.HoursPerWeek != nil {
			hours = fmt.Sprintf("%d", *opp.HoursPerWeek)
		}

		t.AppendRow(table.Row{
			i + 1,
			truncate(opp.Title, titlePreviewLength),
			company,
			fmt.Sprintf("%.2f", rec.Scores.Overall),
			perHour,
			hours,
		})
	}
	t.Render()

	// URLs below the table so they stay copyable at full length.
	fmt.Fprintln(os.Stdout)
	limit := 3
	if len(recommendations) < limit {
		limit = len(recommendations)
	}
	for i := 0; i < limit; i++ {
		fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, recommendations[i].Opportunity.URL)
	}
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/workerlist/internal/clock"
	"github.com/JakeFAU/workerlist/internal/page"
	"github.com/JakeFAU/workerlist/internal/workers"
)

func newListCmd() *cobra.Command {
	var (
		category string
		sortRaw  string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the workers of one category",
		Long: `Fetches the worker collection once, keeps the workers of the requested
category and prints them in the chosen order. The category accepts the
same short tokens as the page URL (e.g. oldcare, cook).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			opt, err := workers.ParseSortOption(sortRaw)
			if err != nil {
				return err
			}

			ctrl := page.NewController(appInstance.GetSource(), nil, clock.System{}, appInstance.GetLogger())
			ctrl.SetSort(opt)
			query := url.Values{}
			if category != "" {
				query.Set("category", category)
			}
			ctrl.Load(cmd.Context(), query)
			view := ctrl.View()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(view); err != nil {
					return fmt.Errorf("encode view: %w", err)
				}
			} else {
				printView(out, view)
			}
			if view.Branch == page.BranchError {
				// The message is already part of the output; only the exit status remains.
				cmd.SilenceErrors = true
				return errors.New(view.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category token or exact category name")
	cmd.Flags().StringVarP(&sortRaw, "sort", "s", "", "ordering: popular, highest_review or oldest")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rendered view as JSON")
	return cmd
}

// printView writes the human-readable listing. Only the branch chosen by the
// view is printed.
func printView(w io.Writer, view page.View) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	switch view.Branch {
	case page.BranchError:
		fmt.Fprintf(w, "%s\n", red(view.Message))
		return
	case page.BranchLoading:
		fmt.Fprintf(w, "%s\n", gray("Loading..."))
		return
	}

	fmt.Fprintf(w, "%s %s\n", cyan(view.Category), gray(fmt.Sprintf("(%d results)", view.Count)))
	if view.Branch == page.BranchEmpty {
		fmt.Fprintf(w, "%s\n", yellow(view.Message))
		return
	}
	for _, card := range view.Cards {
		wk := card.Worker
		fmt.Fprintf(w, "\n%s  %s\n", cyan(wk.Name), gray(wk.ID))
		fmt.Fprintf(w, "  Location:   %s\n", wk.Location)
		fmt.Fprintf(w, "  Experience: %d years\n", wk.Experience)
		fmt.Fprintf(w, "  Rating:     %s (%d reviews)\n", yellow(fmt.Sprintf("%.1f", wk.Rating)), wk.Reviews)
		if wk.Phone != "" {
			fmt.Fprintf(w, "  Phone:      %s\n", wk.Phone)
		}
		fmt.Fprintf(w, "  Details:    %s\n", card.DetailPath)
	}
}

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/workerlist/internal/workers"
)

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category tokens and sort options",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			yellow := color.New(color.FgYellow).SprintFunc()
			gray := color.New(color.FgHiBlack).SprintFunc()

			fmt.Fprintf(out, "%s\n", yellow("Categories:"))
			for _, alias := range workers.Aliases() {
				fmt.Fprintf(out, "  %-14s %s\n", alias.Token, alias.Category)
			}
			fmt.Fprintf(out, "  %s\n", gray("any other value is matched verbatim"))

			fmt.Fprintf(out, "\n%s\n", yellow("Sort options:"))
			for _, choice := range workers.SortChoices() {
				if choice.Value == workers.SortNone {
					continue
				}
				fmt.Fprintf(out, "  %-14s %s\n", choice.Value, choice.Label)
			}
		},
	}
}

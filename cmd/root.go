/*
Copyright © 2026 Glossopoeia
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hazard",
	Short: "Exact dice and deck probability calculator",
	Long: `Hazard computes exact probability distributions for dice pools,
keep/drop rules, sorted-match duels, and deck draws. All arithmetic is
integer-exact; probabilities are printed as reduced fractions of the
denominator alongside decimal approximations.`,
}

// Execute runs the root command; called once from main.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

/*
Copyright © 2026 Glossopoeia
*/
package cmd

import (
	"github.com/glossopoeia/hazard/engine/eval"
	"github.com/glossopoeia/hazard/engine/expr"
	"github.com/glossopoeia/hazard/engine/pool"
	"github.com/spf13/cobra"
)

var (
	dealRanks  int
	dealCopies int
	dealDraw   int
)

var dealCmd = &cobra.Command{
	Use:   "deal",
	Short: "Longest run of consecutive ranks in a hand drawn from a deck",
	Long: `Draws a hand without replacement from a deck of consecutive ranks,
each rank present in a fixed number of copies, and reports the exact
distribution of the longest run of consecutive ranks in the hand. The
defaults model a five-card hand from a standard 52-card deck, where a
longest run of five is a straight.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cards := make(map[int]int64, dealRanks)
		for r := 1; r <= dealRanks; r++ {
			cards[r] = int64(dealCopies)
		}
		deck, err := pool.NewDeck(cards, dealDraw)
		if err != nil {
			return err
		}
		// The straight detector needs a gapless walk even through ranks the
		// hand skipped entirely.
		res, err := eval.Evaluate(
			eval.LargestStraight(),
			[]expr.Expression[int]{expr.Variable[int](0), expr.Variable[int](0)},
			[]pool.Source[int]{deck, pool.AlignRange(1, dealRanks)},
		)
		if err != nil {
			return err
		}
		printDistribution(cmd, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dealCmd)
	dealCmd.Flags().IntVar(&dealRanks, "ranks", 13, "number of consecutive ranks in the deck")
	dealCmd.Flags().IntVar(&dealCopies, "copies", 4, "copies of each rank")
	dealCmd.Flags().IntVar(&dealDraw, "draw", 5, "cards drawn")
}

/*
Copyright © 2026 Glossopoeia
*/
package cmd

import (
	"github.com/glossopoeia/hazard/dice"
	"github.com/glossopoeia/hazard/engine/eval"
	"github.com/glossopoeia/hazard/engine/expr"
	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/pool"
	"github.com/spf13/cobra"
)

var (
	duelAttackers int
	duelDefenders int
)

var duelCmd = &cobra.Command{
	Use:   "duel",
	Short: "Attacker hits when opposing d6 pools pair off highest-to-highest",
	Long: `Both sides roll a pool of d6. The dice pair off highest against
highest; each pair where the attacker's die is strictly greater is one
hit. Unpaired attacker dice score nothing. The printed distribution is
over the number of hits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d6 := dice.D(6)
		hits := expr.SortMatch(
			order.Gt,
			expr.Variable[int](0),
			expr.Variable[int](1),
			false,
		)
		res, err := eval.Evaluate(
			eval.Count[int](),
			[]expr.Expression[int]{hits},
			[]pool.Source[int]{d6.Pool(duelAttackers), d6.Pool(duelDefenders)},
		)
		if err != nil {
			return err
		}
		printDistribution(cmd, res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(duelCmd)
	duelCmd.Flags().IntVarP(&duelAttackers, "attackers", "a", 3, "attacker dice")
	duelCmd.Flags().IntVarP(&duelDefenders, "defenders", "d", 2, "defender dice")
}

/*
Copyright © 2026 Glossopoeia
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/glossopoeia/hazard/dice"
	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/eval"
	"github.com/glossopoeia/hazard/engine/expr"
	"github.com/glossopoeia/hazard/engine/pool"
	"github.com/rjNemo/underscore"
	"github.com/spf13/cobra"
)

var (
	rollSides       int
	rollCount       int
	rollKeepHighest int
	rollKeepLowest  int
	rollDropHighest int
	rollDropLowest  int
	rollExplode     int
)

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Sum distribution of a dice pool with keep/drop rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		die := dice.D(rollSides)
		if rollExplode > 0 {
			exploded, err := dice.Explode(die, rollExplode)
			if err != nil {
				return err
			}
			die = exploded
		}
		p := die.Pool(rollCount)
		var err error
		if rollKeepHighest > 0 {
			p, err = p.KeepHighest(rollKeepHighest)
		}
		if err == nil && rollKeepLowest > 0 {
			p, err = p.KeepLowest(rollKeepLowest)
		}
		if err == nil && rollDropHighest > 0 {
			p, err = p.DropHighest(rollDropHighest)
		}
		if err == nil && rollDropLowest > 0 {
			p, err = p.DropLowest(rollDropLowest)
		}
		if err != nil {
			return err
		}
		res, err := eval.Evaluate(
			eval.Sum[int](),
			[]expr.Expression[int]{expr.Variable[int](0)},
			[]pool.Source[int]{p},
		)
		if err != nil {
			return err
		}
		printDistribution(cmd, res)
		d := dice.FromCounts(res)
		mean, err := dice.Mean(d)
		if err != nil {
			return err
		}
		cmd.Printf("mean: %s\n", mean.FloatString(4))
		return nil
	},
}

// printDistribution writes one line per outcome with its weight and
// decimal probability.
func printDistribution(cmd *cobra.Command, res *counts.Counts[int]) {
	total := res.Total()
	lines := underscore.Map(res.Outcomes(), func(o int) string {
		w := res.Get(o)
		prob := dice.FromCounts(res)
		p, err := prob.Probability(o)
		if err != nil {
			return fmt.Sprintf("%4d  %s", o, w)
		}
		return fmt.Sprintf("%4d  %s/%s  %s", o, w, total, p.FloatString(6))
	})
	cmd.Println(strings.Join(lines, "\n"))
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rollCmd.Flags().IntVarP(&rollSides, "sides", "s", 6, "sides per die")
	rollCmd.Flags().IntVarP(&rollCount, "count", "n", 1, "number of dice")
	rollCmd.Flags().IntVar(&rollKeepHighest, "keep-highest", 0, "keep only the k highest dice")
	rollCmd.Flags().IntVar(&rollKeepLowest, "keep-lowest", 0, "keep only the k lowest dice")
	rollCmd.Flags().IntVar(&rollDropHighest, "drop-highest", 0, "drop the k highest dice")
	rollCmd.Flags().IntVar(&rollDropLowest, "drop-lowest", 0, "drop the k lowest dice")
	rollCmd.Flags().IntVar(&rollExplode, "explode", 0, "explode the highest face up to k extra rolls")
}

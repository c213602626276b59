package dice

import (
	"math/big"

	"golang.org/x/exp/constraints"
)

// Mean of an integer die, exact.
func Mean[T constraints.Integer](d *Die[T]) (*big.Rat, error) {
	if d.Empty() {
		return nil, ErrEmpty
	}
	sum := new(big.Int)
	for i := 0; i < d.c.Len(); i++ {
		term := big.NewInt(int64(d.c.Outcome(i)))
		sum.Add(sum, term.Mul(term, d.c.Weight(i)))
	}
	return new(big.Rat).SetFrac(sum, d.c.Total()), nil
}

// Variance of an integer die, exact.
func Variance[T constraints.Integer](d *Die[T]) (*big.Rat, error) {
	mean, err := Mean(d)
	if err != nil {
		return nil, err
	}
	sqSum := new(big.Int)
	for i := 0; i < d.c.Len(); i++ {
		o := big.NewInt(int64(d.c.Outcome(i)))
		o.Mul(o, o)
		sqSum.Add(sqSum, o.Mul(o, d.c.Weight(i)))
	}
	sqMean := new(big.Rat).SetFrac(sqSum, d.c.Total())
	return sqMean.Sub(sqMean, new(big.Rat).Mul(mean, mean)), nil
}

// Quantile returns the smallest outcome whose cumulative weight reaches
// the fraction num/den of the total.
func Quantile[T constraints.Ordered](d *Die[T], num int64, den int64) (T, error) {
	var zero T
	if d.Empty() {
		return zero, ErrEmpty
	}
	// Compare cumulative*den >= total*num without leaving the integers.
	threshold := new(big.Int).Mul(d.c.Total(), big.NewInt(num))
	cum := new(big.Int)
	den64 := big.NewInt(den)
	for i := 0; i < d.c.Len(); i++ {
		cum.Add(cum, d.c.Weight(i))
		if new(big.Int).Mul(cum, den64).Cmp(threshold) >= 0 {
			return d.c.Outcome(i), nil
		}
	}
	return d.c.Max(), nil
}

// Median is the 1/2 quantile.
func Median[T constraints.Ordered](d *Die[T]) (T, error) {
	return Quantile(d, 1, 2)
}

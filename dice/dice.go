// Package dice is the user-facing container layer over the engine: a Die
// is an exact outcome-to-weight distribution with statistics, generic
// convolution, and the usual construction shorthands.
package dice

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/glossopoeia/hazard/engine/again"
	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/pool"
	"golang.org/x/exp/constraints"
)

// A Die wraps an exact probability mass function. The zero denominator
// die — every path rerolled away — is a distinct "no data" state, not a
// distribution over zero.
type Die[T constraints.Ordered] struct {
	c *counts.Counts[T]
}

// Statistics on an empty die have no value to report.
var ErrEmpty = errors.New("dice: empty die")

func FromCounts[T constraints.Ordered](c *counts.Counts[T]) *Die[T] {
	return &Die[T]{c: c}
}

// Build a die from a weight map.
func FromMap[T constraints.Ordered](m map[T]int64) (*Die[T], error) {
	c, err := counts.FromMap(m)
	if err != nil {
		return nil, err
	}
	return &Die[T]{c: c}, nil
}

// Build a die from literal values, weighting each value by how many
// times it is listed.
func FromValues[T constraints.Ordered](values ...T) (*Die[T], error) {
	m := make(map[T]int64)
	for _, v := range values {
		m[v]++
	}
	return FromMap(m)
}

// A fair die with outcomes 1..sides.
func D(sides int) *Die[int] {
	m := make(map[int]int64, sides)
	for o := 1; o <= sides; o++ {
		m[o] = 1
	}
	d, err := FromMap(m)
	if err != nil {
		panic(fmt.Sprintf("dice: d%d: %v", sides, err))
	}
	return d
}

// A fair coin: 0 or 1.
func Coin() *Die[int] {
	d, err := FromValues(0, 1)
	if err != nil {
		panic(err)
	}
	return d
}

// A die that always shows v.
func Constant[T constraints.Ordered](v T) *Die[T] {
	return &Die[T]{c: counts.Single(v)}
}

func (d *Die[T]) Counts() *counts.Counts[T] {
	return d.c
}

func (d *Die[T]) Outcomes() []T {
	return d.c.Outcomes()
}

func (d *Die[T]) Denominator() *big.Int {
	return d.c.Total()
}

func (d *Die[T]) Empty() bool {
	return d.c.Len() == 0
}

// The exact probability of one outcome.
func (d *Die[T]) Probability(outcome T) (*big.Rat, error) {
	if d.Empty() {
		return nil, ErrEmpty
	}
	return new(big.Rat).SetFrac(d.c.Get(outcome), d.c.Total()), nil
}

// A die with the same distribution and fully reduced weights.
func (d *Die[T]) Reduce() *Die[T] {
	return &Die[T]{c: d.c.Reduce()}
}

// A pool of n copies of this die.
func (d *Die[T]) Pool(n int) *pool.Pool[T] {
	return pool.FromDie(d.c, n)
}

func (d *Die[T]) String() string {
	return d.c.String()
}

// Apply convolves two dice through an arbitrary function: every pair of
// outcomes maps through f, and colliding results merge by summing
// weights. This is the generic arithmetic underneath Add and friends.
func Apply[A, B, U constraints.Ordered](f func(A, B) U, a *Die[A], b *Die[B]) (*Die[U], error) {
	totals := make(map[U]*big.Int)
	for i := 0; i < a.c.Len(); i++ {
		for j := 0; j < b.c.Len(); j++ {
			u := f(a.c.Outcome(i), b.c.Outcome(j))
			w := new(big.Int).Mul(a.c.Weight(i), b.c.Weight(j))
			if existing, ok := totals[u]; ok {
				existing.Add(existing, w)
			} else {
				totals[u] = w
			}
		}
	}
	pairs := make([]counts.Pair[U], 0, len(totals))
	for u, w := range totals {
		pairs = append(pairs, counts.Pair[U]{Outcome: u, Weight: w})
	}
	c, err := counts.FromPairs(pairs)
	if err != nil {
		return nil, err
	}
	return &Die[U]{c: c}, nil
}

// The sum of two integer dice.
func Add(a *Die[int], b *Die[int]) (*Die[int], error) {
	return Apply(func(x, y int) int { return x + y }, a, b)
}

// Explode re-rolls the die's highest outcome up to depth extra times,
// adding the results, with exhausted markers keeping their face value.
func Explode(d *Die[int], depth int) (*Die[int], error) {
	if d.Empty() {
		return nil, ErrEmpty
	}
	return ExplodeOn(d, []int{d.c.Max()}, depth, again.Face())
}

// ExplodeOn re-rolls on the given trigger outcomes, resolving markers
// that survive the depth bound with the given limit.
func ExplodeOn(d *Die[int], triggers []int, depth int, limit again.Limit) (*Die[int], error) {
	trigger := make(map[int]bool, len(triggers))
	for _, t := range triggers {
		trigger[t] = true
	}
	var pairs []again.Pair
	for i := 0; i < d.c.Len(); i++ {
		o := d.c.Outcome(i)
		pairs = append(pairs, again.Pair{
			Outcome: again.Outcome{Add: o, Again: trigger[o]},
			Weight:  d.c.Weight(i).Int64(),
		})
	}
	c, err := again.Resolve(pairs, depth, limit)
	if err != nil {
		return nil, err
	}
	return &Die[int]{c: c}, nil
}

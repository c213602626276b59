package counts

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// A single outcome and its integer weight, the unit of construction for
// a Counts mapping.
type Pair[T constraints.Ordered] struct {
	Outcome T
	Weight  *big.Int
}

// Represents an exact probability mass function as an immutable mapping
// from outcome to non-negative integer weight. Outcomes are distinct and
// kept in ascending order; the weights share an implicit common
// denominator, which is simply their sum. New mappings are always produced
// by pure transformation, never by mutating an existing one.
type Counts[T constraints.Ordered] struct {
	keys    []T
	weights []*big.Int
}

// Build a mapping from outcome/weight pairs. Duplicate outcomes and
// negative weights are rejected; zero weights are filtered out. Weights
// are not auto-reduced.
func FromPairs[T constraints.Ordered](pairs []Pair[T]) (*Counts[T], error) {
	sorted := make([]Pair[T], len(pairs))
	copy(sorted, pairs)
	slices.SortFunc(sorted, func(a, b Pair[T]) bool { return a.Outcome < b.Outcome })

	res := &Counts[T]{}
	for i, p := range sorted {
		if p.Weight == nil {
			return nil, fmt.Errorf("counts: nil weight for outcome %v", p.Outcome)
		}
		if p.Weight.Sign() < 0 {
			return nil, fmt.Errorf("counts: negative weight %s for outcome %v", p.Weight, p.Outcome)
		}
		if i > 0 && p.Outcome == sorted[i-1].Outcome {
			return nil, fmt.Errorf("counts: duplicate outcome %v", p.Outcome)
		}
		if p.Weight.Sign() == 0 {
			continue
		}
		res.keys = append(res.keys, p.Outcome)
		res.weights = append(res.weights, new(big.Int).Set(p.Weight))
	}
	return res, nil
}

// Build a mapping from a plain outcome->weight map.
func FromMap[T constraints.Ordered](m map[T]int64) (*Counts[T], error) {
	pairs := make([]Pair[T], 0, len(m))
	for k, w := range m {
		pairs = append(pairs, Pair[T]{k, big.NewInt(w)})
	}
	return FromPairs(pairs)
}

// Create a single-outcome mapping with weight one, i.e. a constant.
func Single[T constraints.Ordered](outcome T) *Counts[T] {
	return &Counts[T]{keys: []T{outcome}, weights: []*big.Int{big.NewInt(1)}}
}

// The number of distinct outcomes.
func (c *Counts[T]) Len() int {
	return len(c.keys)
}

// The outcome at ascending position i.
func (c *Counts[T]) Outcome(i int) T {
	return c.keys[i]
}

// The weight at ascending position i.
func (c *Counts[T]) Weight(i int) *big.Int {
	return new(big.Int).Set(c.weights[i])
}

// Get the weight of an outcome. Outcomes not present have weight zero;
// absence is never an error.
func (c *Counts[T]) Get(outcome T) *big.Int {
	i, ok := slices.BinarySearch(c.keys, outcome)
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(c.weights[i])
}

// All outcomes in ascending order.
func (c *Counts[T]) Outcomes() []T {
	return slices.Clone(c.keys)
}

// The sum of all weights, i.e. the implicit common denominator.
func (c *Counts[T]) Total() *big.Int {
	res := new(big.Int)
	for _, w := range c.weights {
		res.Add(res, w)
	}
	return res
}

func (c *Counts[T]) Min() T {
	return c.keys[0]
}

func (c *Counts[T]) Max() T {
	return c.keys[len(c.keys)-1]
}

// Remove the lowest outcome, returning it, its weight, and the rest of
// the mapping. Panics on an empty mapping.
func (c *Counts[T]) PopMin() (T, *big.Int, *Counts[T]) {
	if len(c.keys) == 0 {
		panic("counts: pop on empty mapping")
	}
	rest := &Counts[T]{keys: c.keys[1:], weights: c.weights[1:]}
	return c.keys[0], new(big.Int).Set(c.weights[0]), rest
}

// Remove the highest outcome, returning it, its weight, and the rest of
// the mapping. Panics on an empty mapping.
func (c *Counts[T]) PopMax() (T, *big.Int, *Counts[T]) {
	if len(c.keys) == 0 {
		panic("counts: pop on empty mapping")
	}
	last := len(c.keys) - 1
	rest := &Counts[T]{keys: c.keys[:last], weights: c.weights[:last]}
	return c.keys[last], new(big.Int).Set(c.weights[last]), rest
}

// Divide all weights by their greatest common divisor. Returns the
// receiver unchanged when the GCD is one or less, so reducing an
// already-reduced mapping is a no-op.
func (c *Counts[T]) Reduce() *Counts[T] {
	gcd := util.GCDAll(c.weights)
	if gcd.Cmp(util.BigOne) <= 0 {
		return c
	}
	reduced := &Counts[T]{keys: c.keys, weights: make([]*big.Int, len(c.weights))}
	for i, w := range c.weights {
		reduced.weights[i] = new(big.Int).Div(w, gcd)
	}
	return reduced
}

// PrefixOf reports whether this mapping is the low end of other: the same
// outcomes with the same weights, possibly missing some of other's highest
// outcomes. Every mapping is a prefix of itself.
func (c *Counts[T]) PrefixOf(other *Counts[T]) bool {
	if c.Len() > other.Len() {
		return false
	}
	for i := range c.keys {
		if c.keys[i] != other.keys[i] || c.weights[i].Cmp(other.weights[i]) != 0 {
			return false
		}
	}
	return true
}

// SuffixOf reports whether this mapping is the high end of other.
func (c *Counts[T]) SuffixOf(other *Counts[T]) bool {
	if c.Len() > other.Len() {
		return false
	}
	off := other.Len() - c.Len()
	for i := range c.keys {
		if c.keys[i] != other.keys[off+i] || c.weights[i].Cmp(other.weights[off+i]) != 0 {
			return false
		}
	}
	return true
}

func (c *Counts[T]) Equal(other *Counts[T]) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i := range c.keys {
		if c.keys[i] != other.keys[i] || c.weights[i].Cmp(other.weights[i]) != 0 {
			return false
		}
	}
	return true
}

// A canonical encoding of the mapping, suitable as a cache key.
func (c *Counts[T]) Key() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%v:%s", k, c.weights[i])
	}
	sb.WriteByte('}')
	return sb.String()
}

func (c *Counts[T]) String() string {
	return c.Key()
}

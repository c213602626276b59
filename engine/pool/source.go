package pool

import (
	"math/big"

	"github.com/glossopoeia/hazard/engine/order"
	"golang.org/x/exp/constraints"
)

// A Source is the incremental enumeration primitive behind every
// evaluation: a configuration of dice or cards at some point of
// outcome-by-outcome consumption. Popping the current extreme outcome
// yields every way the remaining elements can show that outcome, each as
// a new immutable source. Old sources are never mutated, so branches of
// an evaluation can share them freely.
type Source[T constraints.Ordered] interface {
	// The remaining outcome domain, ascending.
	Outcomes() []T
	// The number of elements the source contributes to the multiset it
	// is bound to: kept dice for a pool, draws for a deck. Expressions
	// that pair elements by rank take operand sizes from here.
	Size() int
	// The total weight of all remaining paths.
	Denominator() *big.Int
	// False when the source can never produce a result: an empty domain,
	// a die with no outcomes, a deck drawing more than it holds.
	IsResolvable() bool
	// Pop enumerates every (next source, contributed count, weight) way
	// the given outcome can be consumed. An outcome that is not the
	// current extreme for the walk direction is a no-op triple. For each
	// popped source s with non-empty domain, the weights multiplied by
	// the popped sources' denominators sum back to s's denominator.
	Pop(ord order.Order, outcome T) []Popped[T]
	// The source's directional vote for the evaluation walk.
	Preference() order.Preference
	// A canonical encoding of the configuration, for state merging and
	// caching. Equal keys must mean interchangeable sources.
	Key() string
}

// One way of consuming an outcome from a source.
type Popped[T constraints.Ordered] struct {
	Source Source[T]
	Count  int
	Weight *big.Int
}

// The no-op pop: nothing consumed, count zero, weight one.
func noopPop[T constraints.Ordered](s Source[T]) []Popped[T] {
	return []Popped[T]{{Source: s, Count: 0, Weight: big.NewInt(1)}}
}

package pool

import (
	"fmt"
	"math/big"

	"github.com/glossopoeia/hazard/engine/order"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// An Alignment is a degenerate source that only pads the outcome domain
// of an evaluation: it yields a zero count with weight one for every
// outcome it carries, and contributes no probability mass of its own.
// Evaluators that need to see a gapless domain (a straight detector over
// contiguous integers, say) add one of these alongside the real sources.
type Alignment[T constraints.Ordered] struct {
	outcomes []T
}

// Create an alignment over the given outcomes.
func Align[T constraints.Ordered](outcomes ...T) *Alignment[T] {
	set := make(map[T]struct{})
	for _, o := range outcomes {
		set[o] = struct{}{}
	}
	sorted := maps.Keys(set)
	slices.Sort(sorted)
	return &Alignment[T]{outcomes: sorted}
}

// AlignRange pads every integer in [lo, hi].
func AlignRange(lo int, hi int) *Alignment[int] {
	var outcomes []int
	for o := lo; o <= hi; o++ {
		outcomes = append(outcomes, o)
	}
	return &Alignment[int]{outcomes: outcomes}
}

func (a *Alignment[T]) Outcomes() []T {
	return slices.Clone(a.outcomes)
}

func (a *Alignment[T]) Size() int {
	return 0
}

// An alignment carries no probability mass at all.
func (a *Alignment[T]) Denominator() *big.Int {
	return new(big.Int)
}

func (a *Alignment[T]) IsResolvable() bool {
	return true
}

func (a *Alignment[T]) Preference() order.Preference {
	return order.None()
}

func (a *Alignment[T]) Pop(ord order.Order, outcome T) []Popped[T] {
	if len(a.outcomes) == 0 {
		return noopPop[T](a)
	}
	asc := ord != order.Descending
	var next *Alignment[T]
	if asc {
		if outcome != a.outcomes[0] {
			return noopPop[T](a)
		}
		next = &Alignment[T]{outcomes: a.outcomes[1:]}
	} else {
		if outcome != a.outcomes[len(a.outcomes)-1] {
			return noopPop[T](a)
		}
		next = &Alignment[T]{outcomes: a.outcomes[:len(a.outcomes)-1]}
	}
	return []Popped[T]{{Source: next, Count: 0, Weight: big.NewInt(1)}}
}

func (a *Alignment[T]) Key() string {
	return fmt.Sprintf("align%v", a.outcomes)
}

func (a *Alignment[T]) String() string {
	return a.Key()
}

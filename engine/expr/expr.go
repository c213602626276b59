package expr

import (
	"errors"
	"fmt"

	"github.com/glossopoeia/hazard/engine/order"
	"golang.org/x/exp/constraints"
)

// An Expression is one node in a tree describing how to derive
// counts-per-outcome from bound multiset sources. Leaves are Variable
// references to source slots; inner nodes merge, scale, filter, or match
// the counts their children produce. Expressions are purely structural:
// they are composed before evaluation and never mutated, and any running
// state they need (a sort-match countdown, say) lives in a flat integer
// vector owned by the evaluation, so that live paths can be compared and
// merged cheaply.
//
// The interface is sealed: the engine's node variants are the only
// implementations, and evaluation drives them through the package-level
// InitState, NextCount, and StaticSize functions.
type Expression[T constraints.Ordered] interface {
	fmt.Stringer
	// The number of bound source slots this expression consumes, i.e.
	// one more than the highest Variable index anywhere in the tree.
	Arity() int
	// The node's directional vote for the evaluation walk.
	Preference() order.Preference
	// A canonical encoding of the tree, for caching.
	Key() string

	// The length of this subtree's state vector segment.
	stateLen() int
	// Write the subtree's initial state into dst, which has stateLen
	// entries. sizes holds the element count of each bound slot, -1 when
	// not statically known.
	initState(dst []int, sizes []int) error
	// Fold one outcome: read and update the subtree's state segment and
	// return the derived count. slot holds the per-slot source counts at
	// this outcome.
	nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error)
	// The statically known element count of the multiset this subtree
	// produces, or -1 when it depends on outcomes.
	staticSize(sizes []int) int
}

// The expression needs the static size of an operand (sort-match pairing
// does) but the operand's size depends on which outcomes roll.
var ErrUnknownSize = errors.New("expr: operand size is not statically known")

// An arity mismatch between an expression and the sources bound to it.
type ArityError struct {
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("expr: expression consumes %d source slots, %d bound", e.Expected, e.Got)
}

// InitState allocates and initializes the flat state vector for an
// expression tree. sizes holds per-slot element counts, -1 for unknown.
func InitState[T constraints.Ordered](e Expression[T], sizes []int) ([]int, error) {
	dst := make([]int, e.stateLen())
	if err := e.initState(dst, sizes); err != nil {
		return nil, err
	}
	return dst, nil
}

// NextCount folds one outcome through the tree, updating state in place.
func NextCount[T constraints.Ordered](e Expression[T], state []int, ord order.Order, outcome T, slot []int) (int, error) {
	return e.nextCount(state, ord, outcome, slot)
}

// StaticSize reports the statically known element count of the
// expression's result, or -1.
func StaticSize[T constraints.Ordered](e Expression[T], sizes []int) int {
	return e.staticSize(sizes)
}

type variable[T constraints.Ordered] struct {
	index int
}

// Variable references the multiset bound to the given source slot.
func Variable[T constraints.Ordered](index int) Expression[T] {
	if index < 0 {
		panic("expr: negative variable index")
	}
	return variable[T]{index: index}
}

func (v variable[T]) Arity() int {
	return v.index + 1
}

func (v variable[T]) Preference() order.Preference {
	return order.None()
}

func (v variable[T]) Key() string {
	return fmt.Sprintf("v%d", v.index)
}

func (v variable[T]) String() string {
	return fmt.Sprintf("v%d", v.index)
}

func (v variable[T]) stateLen() int {
	return 0
}

func (v variable[T]) initState(dst []int, sizes []int) error {
	return nil
}

func (v variable[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	return slot[v.index], nil
}

func (v variable[T]) staticSize(sizes []int) int {
	return sizes[v.index]
}

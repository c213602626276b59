package expr

import (
	"fmt"

	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
)

// The binary set operations over multiset counts.
type binOp int

const (
	opUnion binOp = iota + 1
	opIntersection
	opDifference
	opSignedDifference
	opAdditiveUnion
	opSymmetricDifference
)

func (op binOp) String() string {
	switch op {
	case opUnion:
		return "|"
	case opIntersection:
		return "&"
	case opDifference, opSignedDifference:
		return "-"
	case opAdditiveUnion:
		return "+"
	case opSymmetricDifference:
		return "^"
	default:
		panic("expr: invalid binary op encountered")
	}
}

// mergeCounts is the per-outcome fold of each binary operation.
func (op binOp) mergeCounts(l int, r int) int {
	switch op {
	case opUnion:
		return util.MaxInt(l, r)
	case opIntersection:
		return util.MinInt(l, r)
	case opDifference:
		return util.MaxInt(l-r, 0)
	case opSignedDifference:
		return l - r
	case opAdditiveUnion:
		return l + r
	case opSymmetricDifference:
		return util.AbsInt(l - r)
	default:
		panic("expr: invalid binary op encountered")
	}
}

type binary[T constraints.Ordered] struct {
	op    binOp
	left  Expression[T]
	right Expression[T]
}

// Union keeps each outcome the larger number of times it appears on
// either side.
func Union[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opUnion, left: left, right: right}
}

// Intersection keeps each outcome the smaller number of times it appears
// on either side.
func Intersection[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opIntersection, left: left, right: right}
}

// Difference removes right's copies of each outcome from left, clamping
// at zero.
func Difference[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opDifference, left: left, right: right}
}

// SignedDifference is Difference without the clamp; counts may go
// negative and it is the consumer's business whether that is allowed.
func SignedDifference[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opSignedDifference, left: left, right: right}
}

// AdditiveUnion sums the two sides' counts, the disjoint union.
func AdditiveUnion[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opAdditiveUnion, left: left, right: right}
}

// SymmetricDifference keeps each outcome as often as the two sides
// disagree about it.
func SymmetricDifference[T constraints.Ordered](left Expression[T], right Expression[T]) Expression[T] {
	return binary[T]{op: opSymmetricDifference, left: left, right: right}
}

func (b binary[T]) Arity() int {
	return util.MaxInt(b.left.Arity(), b.right.Arity())
}

func (b binary[T]) Preference() order.Preference {
	// Binary merges are order-agnostic; only the children vote. Children
	// vote at sub-mandatory priorities, so this cannot fail.
	pref, err := order.Merge(b.left.Preference(), b.right.Preference())
	if err != nil {
		panic(err)
	}
	return pref
}

func (b binary[T]) Key() string {
	tag := b.op.String()
	if b.op == opSignedDifference {
		tag = "-!"
	}
	return fmt.Sprintf("(%s%s%s)", b.left.Key(), tag, b.right.Key())
}

func (b binary[T]) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

func (b binary[T]) stateLen() int {
	return b.left.stateLen() + b.right.stateLen()
}

func (b binary[T]) initState(dst []int, sizes []int) error {
	n := b.left.stateLen()
	if err := b.left.initState(dst[:n], sizes); err != nil {
		return err
	}
	return b.right.initState(dst[n:], sizes)
}

func (b binary[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	n := b.left.stateLen()
	l, err := b.left.nextCount(state[:n], ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	r, err := b.right.nextCount(state[n:], ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	return b.op.mergeCounts(l, r), nil
}

func (b binary[T]) staticSize(sizes []int) int {
	if b.op == opAdditiveUnion {
		l := b.left.staticSize(sizes)
		r := b.right.staticSize(sizes)
		if l >= 0 && r >= 0 {
			return l + r
		}
	}
	return -1
}

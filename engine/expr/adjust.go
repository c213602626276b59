package expr

import (
	"fmt"

	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
)

// The count-adjusting operations, which rescale or gate the count a
// child produces at each outcome without combining multisets.
type adjustKind int

const (
	adjMultiply adjustKind = iota + 1
	adjFloorDiv
	adjKeepCmp
	adjUnique
)

type adjust[T constraints.Ordered] struct {
	kind    adjustKind
	child   Expression[T]
	operand int
	cmp     order.Comparison
}

// MultiplyCounts scales every count by a constant factor.
func MultiplyCounts[T constraints.Ordered](child Expression[T], factor int) Expression[T] {
	return adjust[T]{kind: adjMultiply, child: child, operand: factor}
}

// FloorDivCounts divides every count by a constant, rounding towards
// negative infinity. A zero divisor is a construction error.
func FloorDivCounts[T constraints.Ordered](child Expression[T], divisor int) Expression[T] {
	if divisor == 0 {
		panic("expr: zero divisor")
	}
	return adjust[T]{kind: adjFloorDiv, child: child, operand: divisor}
}

// KeepCounts passes a count through only when it satisfies the
// comparison against the threshold; otherwise the outcome contributes
// nothing.
func KeepCounts[T constraints.Ordered](child Expression[T], cmp order.Comparison, threshold int) Expression[T] {
	return adjust[T]{kind: adjKeepCmp, child: child, operand: threshold, cmp: cmp}
}

// UniqueCounts caps every count at the given limit; UniqueCounts(e, 1)
// deduplicates a multiset. Negative counts cannot be capped and are an
// evaluation-time error.
func UniqueCounts[T constraints.Ordered](child Expression[T], limit int) Expression[T] {
	if limit < 0 {
		panic("expr: negative unique limit")
	}
	return adjust[T]{kind: adjUnique, child: child, operand: limit}
}

func (a adjust[T]) tag() string {
	switch a.kind {
	case adjMultiply:
		return fmt.Sprintf("*%d", a.operand)
	case adjFloorDiv:
		return fmt.Sprintf("//%d", a.operand)
	case adjKeepCmp:
		return fmt.Sprintf("keep%s%d", a.cmp, a.operand)
	case adjUnique:
		return fmt.Sprintf("uniq%d", a.operand)
	default:
		panic("expr: invalid adjust kind encountered")
	}
}

func (a adjust[T]) Arity() int {
	return a.child.Arity()
}

func (a adjust[T]) Preference() order.Preference {
	return a.child.Preference()
}

func (a adjust[T]) Key() string {
	return fmt.Sprintf("%s%s", a.child.Key(), a.tag())
}

func (a adjust[T]) String() string {
	return fmt.Sprintf("%s%s", a.child, a.tag())
}

func (a adjust[T]) stateLen() int {
	return a.child.stateLen()
}

func (a adjust[T]) initState(dst []int, sizes []int) error {
	return a.child.initState(dst, sizes)
}

func (a adjust[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	c, err := a.child.nextCount(state, ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	switch a.kind {
	case adjMultiply:
		return c * a.operand, nil
	case adjFloorDiv:
		return util.DivFloor(c, a.operand), nil
	case adjKeepCmp:
		if a.cmp.Compare(c, a.operand) {
			return c, nil
		}
		return 0, nil
	case adjUnique:
		if c < 0 {
			return 0, fmt.Errorf("expr: negative count %d at outcome %v cannot be capped", c, outcome)
		}
		return util.MinInt(c, a.operand), nil
	default:
		panic("expr: invalid adjust kind encountered")
	}
}

func (a adjust[T]) staticSize(sizes []int) int {
	if a.kind == adjMultiply && a.operand >= 0 {
		if c := a.child.staticSize(sizes); c >= 0 {
			return c * a.operand
		}
	}
	return -1
}

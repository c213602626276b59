package expr

import (
	"fmt"

	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// sortMatch pairs the two operands' elements by descending rank (highest
// against highest, as Risk pairs attacker and defender dice) and keeps
// the left elements whose pair satisfies the comparison. The operands'
// total sizes must be statically known: with them, either traversal
// direction can classify every left element at the current outcome as
// winning, tying, losing, or unpaired purely from how many elements of
// each side have been consumed so far, with no lookahead or reverse
// streaming.
type sortMatch[T constraints.Ordered] struct {
	cmp       order.Comparison
	left      Expression[T]
	right     Expression[T]
	keepExtra bool
}

// SortMatch keeps the left elements whose descending-rank partner on the
// right satisfies the comparison. keepExtra decides whether left
// elements beyond the right's size (which have no partner) are kept or
// dropped.
func SortMatch[T constraints.Ordered](cmp order.Comparison, left Expression[T], right Expression[T], keepExtra bool) Expression[T] {
	return sortMatch[T]{cmp: cmp, left: left, right: right, keepExtra: keepExtra}
}

func (m sortMatch[T]) Arity() int {
	return util.MaxInt(m.left.Arity(), m.right.Arity())
}

func (m sortMatch[T]) Preference() order.Preference {
	pref, err := order.Merge(m.left.Preference(), m.right.Preference())
	if err != nil {
		panic(err)
	}
	return pref
}

func (m sortMatch[T]) Key() string {
	return fmt.Sprintf("match(%s,%s,%s,extra=%v)", m.cmp, m.left.Key(), m.right.Key(), m.keepExtra)
}

func (m sortMatch[T]) String() string {
	return fmt.Sprintf("(%s match%s %s)", m.left, m.cmp, m.right)
}

// State: consumed-left, consumed-right, left total, right total, then the
// children's segments.
func (m sortMatch[T]) stateLen() int {
	return 4 + m.left.stateLen() + m.right.stateLen()
}

func (m sortMatch[T]) initState(dst []int, sizes []int) error {
	lt := m.left.staticSize(sizes)
	if lt < 0 {
		return errors.Wrap(ErrUnknownSize, "sort-match left operand")
	}
	rt := m.right.staticSize(sizes)
	if rt < 0 {
		return errors.Wrap(ErrUnknownSize, "sort-match right operand")
	}
	dst[0], dst[1], dst[2], dst[3] = 0, 0, lt, rt
	n := m.left.stateLen()
	if err := m.left.initState(dst[4:4+n], sizes); err != nil {
		return err
	}
	return m.right.initState(dst[4+n:], sizes)
}

// overlap is the length of the intersection of [lo1, hi1) and [lo2, hi2).
func overlap(lo1, hi1, lo2, hi2 int) int {
	return util.MaxInt(0, util.MinInt(hi1, hi2)-util.MaxInt(lo1, lo2))
}

func (m sortMatch[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	n := m.left.stateLen()
	l, err := m.left.nextCount(state[4:4+n], ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	r, err := m.right.nextCount(state[4+n:], ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	if l < 0 || r < 0 {
		return 0, fmt.Errorf("expr: negative count at outcome %v cannot be sort-matched", outcome)
	}
	consumedL, consumedR, lt, rt := state[0], state[1], state[2], state[3]

	var wins, ties, losses, unpaired int
	if ord == order.Descending {
		// Ranks are counted from the top; elements consumed earlier are
		// larger. A left element whose partner rank is still unconsumed
		// beats it, since the partner can only be smaller.
		lo, hi := consumedL, consumedL+l
		unpaired = overlap(lo, hi, rt, lt)
		wins = overlap(lo, hi, consumedR+r, rt)
		ties = overlap(lo, hi, consumedR, consumedR+r)
		losses = overlap(lo, hi, 0, consumedR)
	} else {
		// Ascending ranks count from the bottom; pairing by descending
		// rank shifts the partner index by the size difference.
		d := rt - lt
		lo, hi := consumedL, consumedL+l
		unpaired = overlap(lo, hi, 0, -d)
		wins = overlap(lo, hi, -d, consumedR-d)
		ties = overlap(lo, hi, consumedR-d, consumedR+r-d)
		losses = overlap(lo, hi, consumedR+r-d, lt)
	}
	state[0] = consumedL + l
	state[1] = consumedR + r

	count := 0
	switch m.cmp {
	case order.Lt:
		count = losses
	case order.Le:
		count = losses + ties
	case order.Eq:
		count = ties
	case order.Ne:
		count = wins + losses
	case order.Ge:
		count = wins + ties
	case order.Gt:
		count = wins
	}
	if m.keepExtra {
		count += unpaired
	}
	return count, nil
}

func (m sortMatch[T]) staticSize(sizes []int) int {
	return -1
}

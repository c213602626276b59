package expr

import (
	"fmt"
	"strings"

	"github.com/glossopoeia/hazard/engine/order"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

type filterSet[T constraints.Ordered] struct {
	child   Expression[T]
	targets []T
	drop    bool
}

// KeepOutcomes keeps only the listed outcomes, whatever their counts.
func KeepOutcomes[T constraints.Ordered](child Expression[T], outcomes ...T) Expression[T] {
	targets := slices.Clone(outcomes)
	slices.Sort(targets)
	return filterSet[T]{child: child, targets: slices.Compact(targets)}
}

// DropOutcomes removes the listed outcomes, whatever their counts.
func DropOutcomes[T constraints.Ordered](child Expression[T], outcomes ...T) Expression[T] {
	targets := slices.Clone(outcomes)
	slices.Sort(targets)
	return filterSet[T]{child: child, targets: slices.Compact(targets), drop: true}
}

func (f filterSet[T]) Arity() int {
	return f.child.Arity()
}

func (f filterSet[T]) Preference() order.Preference {
	return f.child.Preference()
}

func (f filterSet[T]) tag() string {
	var sb strings.Builder
	if f.drop {
		sb.WriteString("drop[")
	} else {
		sb.WriteString("only[")
	}
	for i, t := range f.targets {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%v", t)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (f filterSet[T]) Key() string {
	return f.child.Key() + f.tag()
}

func (f filterSet[T]) String() string {
	return fmt.Sprintf("%s.%s", f.child, f.tag())
}

func (f filterSet[T]) stateLen() int {
	return f.child.stateLen()
}

func (f filterSet[T]) initState(dst []int, sizes []int) error {
	return f.child.initState(dst, sizes)
}

func (f filterSet[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	c, err := f.child.nextCount(state, ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	_, listed := slices.BinarySearch(f.targets, outcome)
	if listed == f.drop {
		return 0, nil
	}
	return c, nil
}

func (f filterSet[T]) staticSize(sizes []int) int {
	return -1
}

type filterFunc[T constraints.Ordered] struct {
	child Expression[T]
	pred  func(T) bool
	id    string
}

// FilterOutcomes keeps only outcomes satisfying the predicate. Since a
// predicate has no canonical encoding, each call produces a distinct
// cache identity; prefer KeepOutcomes/DropOutcomes when the target set is
// explicit.
func FilterOutcomes[T constraints.Ordered](child Expression[T], pred func(T) bool) Expression[T] {
	return filterFunc[T]{child: child, pred: pred, id: fmt.Sprintf("%p", any(pred))}
}

func (f filterFunc[T]) Arity() int {
	return f.child.Arity()
}

func (f filterFunc[T]) Preference() order.Preference {
	return f.child.Preference()
}

func (f filterFunc[T]) Key() string {
	return fmt.Sprintf("%sfilter[%s]", f.child.Key(), f.id)
}

func (f filterFunc[T]) String() string {
	return fmt.Sprintf("%s.filter", f.child)
}

func (f filterFunc[T]) stateLen() int {
	return f.child.stateLen()
}

func (f filterFunc[T]) initState(dst []int, sizes []int) error {
	return f.child.initState(dst, sizes)
}

func (f filterFunc[T]) nextCount(state []int, ord order.Order, outcome T, slot []int) (int, error) {
	c, err := f.child.nextCount(state, ord, outcome, slot)
	if err != nil {
		return 0, err
	}
	if !f.pred(outcome) {
		return 0, nil
	}
	return c, nil
}

func (f filterFunc[T]) staticSize(sizes []int) int {
	return -1
}

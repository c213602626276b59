package eval

import (
	"fmt"
	"strings"

	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
)

// Func builds an evaluator from plain closures, the way a caller writes
// an ad-hoc scoring rule without declaring a type. A non-empty CacheKey
// opts the evaluator into result caching; leave it empty for closures
// that are not pure or whose states never repeat.
type Func[T constraints.Ordered, S comparable, U constraints.Ordered] struct {
	Init     S
	Next     func(state S, outcome T, netCounts []int) (S, error)
	Final    func(state S) (Final[U], error)
	Pref     order.Preference
	CacheKey string
}

func (f Func[T, S, U]) InitialState() S {
	return f.Init
}

func (f Func[T, S, U]) NextState(state S, outcome T, netCounts []int) (S, error) {
	return f.Next(state, outcome, netCounts)
}

func (f Func[T, S, U]) FinalOutcome(state S) (Final[U], error) {
	return f.Final(state)
}

func (f Func[T, S, U]) Preference() order.Preference {
	return f.Pref
}

func (f Func[T, S, U]) Key() string {
	return f.CacheKey
}

type sumEvaluator[T constraints.Integer] struct{}

// Sum scores a path as the sum of outcome times count, the ordinary
// "add up the kept dice" rule. Negative counts subtract, which is what
// drop-and-negate keep tuples rely on.
func Sum[T constraints.Integer]() Evaluator[T, int, T] {
	return sumEvaluator[T]{}
}

func (sumEvaluator[T]) InitialState() int {
	return 0
}

func (sumEvaluator[T]) NextState(state int, outcome T, netCounts []int) (int, error) {
	for _, c := range netCounts {
		state += int(outcome) * c
	}
	return state, nil
}

func (sumEvaluator[T]) FinalOutcome(state int) (Final[T], error) {
	return Outcome(T(state)), nil
}

func (sumEvaluator[T]) Preference() order.Preference {
	return order.None()
}

func (sumEvaluator[T]) Key() string {
	return "sum"
}

type countEvaluator[T constraints.Ordered] struct{}

// Count scores a path as the total number of elements in the expression
// results, whatever their outcomes.
func Count[T constraints.Ordered]() Evaluator[T, int, int] {
	return countEvaluator[T]{}
}

func (countEvaluator[T]) InitialState() int {
	return 0
}

func (countEvaluator[T]) NextState(state int, outcome T, netCounts []int) (int, error) {
	for _, c := range netCounts {
		state += c
	}
	return state, nil
}

func (countEvaluator[T]) FinalOutcome(state int) (Final[int], error) {
	return Outcome(state), nil
}

func (countEvaluator[T]) Preference() order.Preference {
	return order.None()
}

func (countEvaluator[T]) Key() string {
	return "count"
}

type expandEvaluator[T constraints.Ordered] struct{}

// Expand renders the whole multiset as its canonical ascending listing,
// one result outcome per distinct multiset. Mostly useful for inspecting
// what an expression actually produces.
func Expand[T constraints.Ordered]() Evaluator[T, string, string] {
	return expandEvaluator[T]{}
}

func (expandEvaluator[T]) InitialState() string {
	return ""
}

func (expandEvaluator[T]) NextState(state string, outcome T, netCounts []int) (string, error) {
	var sb strings.Builder
	for _, c := range netCounts {
		if c < 0 {
			return "", fmt.Errorf("eval: cannot expand negative count %d at outcome %v", c, outcome)
		}
		for i := 0; i < c; i++ {
			fmt.Fprintf(&sb, "%v,", outcome)
		}
	}
	return state + sb.String(), nil
}

func (expandEvaluator[T]) FinalOutcome(state string) (Final[string], error) {
	return Outcome("(" + strings.TrimSuffix(state, ",") + ")"), nil
}

func (expandEvaluator[T]) Preference() order.Preference {
	return order.Preference{Order: order.Ascending, Priority: order.Mandatory}
}

func (expandEvaluator[T]) Key() string {
	return "expand"
}

type straightEvaluator struct{}

// LargestStraight scores a path as the length of the longest run of
// consecutive integer outcomes with at least one element each. The walk
// must be ascending and the domain gapless; pad with an Alignment when
// the sources might skip integers.
func LargestStraight() Evaluator[int, straightState, int] {
	return straightEvaluator{}
}

type straightState struct {
	run  int
	best int
}

func (straightEvaluator) InitialState() straightState {
	return straightState{}
}

func (straightEvaluator) NextState(state straightState, outcome int, netCounts []int) (straightState, error) {
	present := false
	for _, c := range netCounts {
		if c > 0 {
			present = true
		}
	}
	if present {
		state.run++
		state.best = util.MaxInt(state.best, state.run)
	} else {
		state.run = 0
	}
	return state, nil
}

func (straightEvaluator) FinalOutcome(state straightState) (Final[int], error) {
	return Outcome(state.best), nil
}

func (straightEvaluator) Preference() order.Preference {
	return order.Preference{Order: order.Ascending, Priority: order.Mandatory}
}

func (straightEvaluator) Key() string {
	return "straight"
}

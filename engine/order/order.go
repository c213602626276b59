package order

import "errors"

// Every multiset evaluation walks the union of its sources' outcome
// domains in a single direction. The direction is not chosen freely: the
// shape of a pool, the keep tuple, and the evaluator itself each express a
// preference, and those preferences are merged before the walk starts.
type Order int

const (
	// Walk outcomes from highest to lowest.
	Descending Order = -1
	// No fixed direction; the evaluation may pick either.
	Any Order = 0
	// Walk outcomes from lowest to highest.
	Ascending Order = 1
)

func (o Order) String() string {
	switch o {
	case Descending:
		return "descending"
	case Any:
		return "any"
	case Ascending:
		return "ascending"
	default:
		panic("order: invalid order encountered")
	}
}

// Reversed flips ascending and descending; Any stays Any.
func (o Order) Reversed() Order {
	return -o
}

// The strength of an order preference. Higher priorities strictly outrank
// lower ones during merging: a pool whose dice truncate from one side
// overrides a keep-tuple skip, and a component that mandates a direction
// overrides everything or fails.
type Priority int

const (
	// No opinion about the direction.
	NoPreference Priority = iota
	// Derived from leading/trailing dropped ranks in a keep tuple; popping
	// from the skipped side first is cheaper.
	Skip
	// Derived from the truncation relationship between the dice of a pool;
	// choosing the wrong direction here is the exponential case.
	PoolShape
	// The component cannot work in the other direction at all.
	Mandatory
)

func (p Priority) String() string {
	switch p {
	case NoPreference:
		return "none"
	case Skip:
		return "skip"
	case PoolShape:
		return "pool"
	case Mandatory:
		return "mandatory"
	default:
		panic("order: invalid priority encountered")
	}
}

// A directional vote with its strength.
type Preference struct {
	Order    Order
	Priority Priority
}

// The zero preference: no direction, no strength.
func None() Preference {
	return Preference{Any, NoPreference}
}

var ErrConflict = errors.New("order: conflicting mandatory orders")

// Merge resolves a set of preferences into one. The highest priority that
// casts a concrete vote wins outright. Two concrete votes of equal
// priority that disagree collapse to Any at that priority, unless that
// priority is Mandatory, in which case the merge fails. This single policy
// applies to every conflict; there is no separate soft path.
func Merge(prefs ...Preference) (Preference, error) {
	votes := make(map[Priority][]Order)
	for _, p := range prefs {
		if p.Order != Any {
			votes[p.Priority] = append(votes[p.Priority], p.Order)
		}
	}
	for pr := Mandatory; pr > NoPreference; pr-- {
		vs := votes[pr]
		if len(vs) == 0 {
			continue
		}
		agreed := vs[0]
		for _, v := range vs[1:] {
			if v != agreed {
				if pr == Mandatory {
					return None(), ErrConflict
				}
				return Preference{Any, pr}, nil
			}
		}
		return Preference{agreed, pr}, nil
	}
	return None(), nil
}

package pool

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Dice inside a pool are grouped by identity: a group is one die shape
// together with how many physical dice currently share it. Grouping is
// what lets evaluation branches that differ only in which physical die
// rolled what collapse into a single state.
type group[T constraints.Ordered] struct {
	die *counts.Counts[T]
	n   int
}

// A Pool is a fixed multiset of dice rolled together, with a keep tuple
// selecting which sorted ranks count. Pools are immutable; popping an
// outcome produces new pools.
type Pool[T constraints.Ordered] struct {
	groups []group[T]
	keep   KeepTuple
}

// Create a pool from individual dice, all ranks kept once.
func New[T constraints.Ordered](dice ...*counts.Counts[T]) *Pool[T] {
	byKey := make(map[string]group[T])
	for _, d := range dice {
		k := d.Key()
		g := byKey[k]
		g.die = d
		g.n++
		byKey[k] = g
	}
	return &Pool[T]{
		groups: canonical(maps.Values(byKey)),
		keep:   keepAllOnes(len(dice)),
	}
}

// Create a pool of n copies of one die.
func FromDie[T constraints.Ordered](die *counts.Counts[T], n int) *Pool[T] {
	return &Pool[T]{
		groups: canonical([]group[T]{{die: die, n: n}}),
		keep:   keepAllOnes(n),
	}
}

// Create a pool of fixed values, one constant die per value. Useful for
// set operations over literal multisets.
func FromValues[T constraints.Ordered](values ...T) *Pool[T] {
	dice := make([]*counts.Counts[T], len(values))
	for i, v := range values {
		dice[i] = counts.Single(v)
	}
	return New(dice...)
}

// canonical sorts groups by die encoding and merges groups that share a
// die. Pop relies on this so that residual pools reachable along
// different branches compare equal.
func canonical[T constraints.Ordered](groups []group[T]) []group[T] {
	byKey := make(map[string]group[T])
	for _, g := range groups {
		k := g.die.Key()
		if existing, ok := byKey[k]; ok {
			existing.n += g.n
			byKey[k] = existing
		} else {
			byKey[k] = g
		}
	}
	byKey = util.MapFilterValue(byKey, func(g group[T]) bool { return g.n > 0 })
	keys := maps.Keys(byKey)
	slices.Sort(keys)
	res := make([]group[T], len(keys))
	for i, k := range keys {
		res[i] = byKey[k]
	}
	return res
}

// Apply a keep spec on top of whatever this pool already keeps, the way
// nested slicing composes. Fails when the spec requests a rank the pool
// cannot produce.
func (p *Pool[T]) Keep(spec KeepSpec) (*Pool[T], error) {
	t, err := p.keep.Compose(spec)
	if err != nil {
		return nil, err
	}
	return &Pool[T]{groups: p.groups, keep: t}, nil
}

// keptCount is the number of elements the pool currently contributes,
// i.e. the sum of its keep multipliers.
func (p *Pool[T]) keptCount() int {
	return p.keep.sum(0, len(p.keep))
}

// Keep only the k highest ranks.
func (p *Pool[T]) KeepHighest(k int) (*Pool[T], error) {
	if k < 0 || k > p.keptCount() {
		return nil, &RankError{Index: -k, Size: p.keptCount()}
	}
	return p.Keep(KeepFrom(p.keptCount() - k))
}

// Keep only the k lowest ranks.
func (p *Pool[T]) KeepLowest(k int) (*Pool[T], error) {
	if k < 0 || k > p.keptCount() {
		return nil, &RankError{Index: k, Size: p.keptCount()}
	}
	return p.Keep(KeepUpTo(k))
}

// Drop the k lowest ranks, keeping the rest.
func (p *Pool[T]) DropLowest(k int) (*Pool[T], error) {
	return p.KeepHighest(p.keptCount() - k)
}

// Drop the k highest ranks, keeping the rest.
func (p *Pool[T]) DropHighest(k int) (*Pool[T], error) {
	return p.KeepLowest(p.keptCount() - k)
}

func (p *Pool[T]) Outcomes() []T {
	set := make(map[T]struct{})
	for _, g := range p.groups {
		for _, o := range g.die.Outcomes() {
			set[o] = struct{}{}
		}
	}
	res := maps.Keys(set)
	slices.Sort(res)
	return res
}

// diceCount is the number of physical dice still in the pool, kept or
// not.
func (p *Pool[T]) diceCount() int {
	total := 0
	for _, g := range p.groups {
		total += g.n
	}
	return total
}

// Size is the number of elements the pool contributes to its bound
// multiset: the sum of its keep multipliers, not the raw dice count.
// Sorted matching relies on this being the element total.
func (p *Pool[T]) Size() int {
	return p.keptCount()
}

func (p *Pool[T]) Denominator() *big.Int {
	pows := make([]*big.Int, len(p.groups))
	for i, g := range p.groups {
		pows[i] = util.BigPow(g.die.Total(), g.n)
	}
	return util.Product(pows...)
}

func (p *Pool[T]) IsResolvable() bool {
	if p.diceCount() == 0 {
		return false
	}
	for _, g := range p.groups {
		if g.die.Len() == 0 {
			return false
		}
	}
	return true
}

// CanTruncate reports the truncation relationship between a set of dice:
// sharedHead is true when every die is a prefix of the largest (the dice
// agree on their low outcomes and differ only at the top), sharedTail
// when every die is a suffix of the largest. Popping from the end where
// the dice differ lets residual dice merge into shared groups, which is
// what keeps enumeration polynomial.
func CanTruncate[T constraints.Ordered](dice []*counts.Counts[T]) (sharedHead bool, sharedTail bool) {
	if len(dice) == 0 {
		return true, true
	}
	base := dice[0]
	for _, d := range dice[1:] {
		if d.Len() > base.Len() {
			base = d
		}
	}
	sharedHead, sharedTail = true, true
	for _, d := range dice {
		sharedHead = sharedHead && d.PrefixOf(base)
		sharedTail = sharedTail && d.SuffixOf(base)
	}
	return sharedHead, sharedTail
}

func (p *Pool[T]) dice() []*counts.Counts[T] {
	var res []*counts.Counts[T]
	for _, g := range p.groups {
		res = append(res, g.die)
	}
	return res
}

// truncationPreference votes for popping from the end where the dice
// differ; identical dice or an untruncatable mix vote for nothing.
func (p *Pool[T]) truncationPreference() order.Preference {
	sharedHead, sharedTail := CanTruncate(p.dice())
	switch {
	case sharedHead && !sharedTail:
		return order.Preference{Order: order.Descending, Priority: order.PoolShape}
	case sharedTail && !sharedHead:
		return order.Preference{Order: order.Ascending, Priority: order.PoolShape}
	default:
		return order.None()
	}
}

// skipPreference votes for consuming the more heavily dropped end first.
func (p *Pool[T]) skipPreference() order.Preference {
	lo, hi := p.keep.LoSkip(), p.keep.HiSkip()
	switch {
	case lo > hi:
		return order.Preference{Order: order.Ascending, Priority: order.Skip}
	case hi > lo:
		return order.Preference{Order: order.Descending, Priority: order.Skip}
	default:
		return order.None()
	}
}

func (p *Pool[T]) Preference() order.Preference {
	// The two votes carry different priorities, so merging cannot fail.
	pref, _ := order.Merge(p.truncationPreference(), p.skipPreference())
	return pref
}

// EstimateCost is the heuristic behind order selection: walking towards
// the dice's differing end costs on the order of the sum of the remaining
// die sizes after skipped ranks, while walking an untruncatable pool
// costs the full combinatorial product of die sizes.
func (p *Pool[T]) EstimateCost(ord order.Order) *big.Int {
	sharedHead, sharedTail := CanTruncate(p.dice())
	cheap := (ord == order.Descending && sharedHead) || (ord == order.Ascending && sharedTail)
	if cheap {
		total := 0
		for _, g := range p.groups {
			total += g.die.Len() * g.n
		}
		skip := p.keep.HiSkip()
		if ord == order.Ascending {
			skip = p.keep.LoSkip()
		}
		return big.NewInt(int64(util.MaxInt(total-skip, 1)))
	}
	res := big.NewInt(1)
	for _, g := range p.groups {
		res.Mul(res, util.BigPow(big.NewInt(int64(g.die.Len())), g.n))
	}
	return res
}

// One way some dice of a single group can show the popped outcome.
type groupPop[T constraints.Ordered] struct {
	rest   *counts.Counts[T]
	kept   int
	popped int
	weight *big.Int
}

// Pop enumerates every way the pool can consume the given outcome. For
// each group whose extreme outcome matches, every possible number of its
// dice may show the outcome, weighted by the binomial choice of which
// dice do times the outcome weight raised to that number. The keep tuple
// is consumed from the walked end, and its multipliers for the popped
// ranks form the contributed count.
func (p *Pool[T]) Pop(ord order.Order, outcome T) []Popped[T] {
	if p.diceCount() == 0 || len(p.Outcomes()) == 0 {
		return noopPop[T](p)
	}
	asc := ord != order.Descending
	domain := p.Outcomes()
	extreme := domain[0]
	if !asc {
		extreme = domain[len(domain)-1]
	}
	if outcome != extreme {
		return noopPop[T](p)
	}

	var fixed []group[T]
	var matched []group[T]
	for _, g := range p.groups {
		ext := g.die.Min()
		if !asc {
			ext = g.die.Max()
		}
		if ext == outcome {
			matched = append(matched, g)
		} else {
			fixed = append(fixed, g)
		}
	}
	if len(matched) == 0 {
		return noopPop[T](p)
	}

	options := make([][]groupPop[T], len(matched))
	for i, g := range matched {
		var w *big.Int
		var rest *counts.Counts[T]
		if asc {
			_, w, rest = g.die.PopMin()
		} else {
			_, w, rest = g.die.PopMax()
		}
		kmin := 0
		if rest.Len() == 0 {
			// A die with nothing left below/above must show the outcome.
			kmin = g.n
		}
		for k := kmin; k <= g.n; k++ {
			weight := util.Binomial(g.n, k)
			weight.Mul(weight, util.BigPow(w, k))
			options[i] = append(options[i], groupPop[T]{
				rest:   rest,
				kept:   g.n - k,
				popped: k,
				weight: weight,
			})
		}
	}

	var results []Popped[T]
	chosen := make([]groupPop[T], len(matched))
	var expand func(i int)
	expand = func(i int) {
		if i == len(matched) {
			popped := 0
			weight := big.NewInt(1)
			gs := slices.Clone(fixed)
			for _, c := range chosen {
				popped += c.popped
				weight.Mul(weight, c.weight)
				gs = append(gs, group[T]{die: c.rest, n: c.kept})
			}
			var count int
			var keep KeepTuple
			if asc {
				count = p.keep.sum(0, popped)
				keep = p.keep[popped:]
			} else {
				count = p.keep.sum(len(p.keep)-popped, len(p.keep))
				keep = p.keep[:len(p.keep)-popped]
			}
			next := &Pool[T]{groups: canonical(gs), keep: keep}
			results = append(results, Popped[T]{Source: next, Count: count, Weight: weight})
			return
		}
		for _, opt := range options[i] {
			chosen[i] = opt
			expand(i + 1)
		}
	}
	expand(0)
	return results
}

func (p *Pool[T]) Key() string {
	var sb strings.Builder
	sb.WriteString("pool[")
	for i, k := range p.keep {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", k)
	}
	sb.WriteByte('|')
	for i, g := range p.groups {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%s^%d", g.die.Key(), g.n)
	}
	sb.WriteByte(']')
	return sb.String()
}

func (p *Pool[T]) String() string {
	return p.Key()
}

package eval

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/expr"
	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/pool"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// The result of folding one terminal path: either a concrete outcome or
// Reroll, which discards the path's weight entirely. Dropping weight
// conditions the distribution on the path not happening; nothing is
// redistributed.
type Final[U constraints.Ordered] struct {
	Outcome U
	Reroll  bool
}

func Outcome[U constraints.Ordered](u U) Final[U] {
	return Final[U]{Outcome: u}
}

func Reroll[U constraints.Ordered]() Final[U] {
	return Final[U]{Reroll: true}
}

// An Evaluator folds the per-outcome counts of one or more multiset
// expressions into a final outcome. The state type must be comparable:
// live paths whose states and residual sources coincide are merged by
// summing weights, which is what keeps evaluation polynomial where the
// raw fan-out would be exponential.
type Evaluator[T constraints.Ordered, S comparable, U constraints.Ordered] interface {
	InitialState() S
	// Fold one outcome with one derived count per evaluated expression.
	NextState(state S, outcome T, netCounts []int) (S, error)
	// Map a terminal state to a result, or Reroll to discard the path.
	FinalOutcome(state S) (Final[U], error)
	// The evaluator's directional vote for the walk.
	Preference() order.Preference
}

// Evaluators that wish their results cached across calls identify
// themselves with a stable key. Evaluators without a key are never
// cached; that is the escape hatch for fold functions whose state space
// never repeats or whose closures are not pure.
type Keyed interface {
	Key() string
}

var ErrBudgetExceeded = errors.New("eval: path budget exceeded")

type config struct {
	budget int
	cache  any
}

type Option func(*config)

// WithBudget bounds the number of live paths processed across the whole
// walk. Untruncatable pools are genuinely exponential; a budget turns a
// pathological evaluation into ErrBudgetExceeded instead of unbounded
// work. Zero means unbounded.
func WithBudget(paths int) Option {
	return func(c *config) {
		c.budget = paths
	}
}

// WithCache reuses final results across Evaluate calls with the same
// keyed evaluator, expressions, sources, and order. The cache must be
// owned by one evaluation at a time.
func WithCache[U constraints.Ordered](cache *Cache[U]) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// A live path of the walk: the evaluator's state, each expression's flat
// state vector, the residual source configurations, and the accumulated
// weight of every way of reaching this exact configuration.
type path[T constraints.Ordered, S comparable] struct {
	state   S
	estates [][]int
	sources []pool.Source[T]
	weight  *big.Int
}

type pathKey[S comparable] struct {
	state S
	aux   string
}

func auxKey[T constraints.Ordered](estates [][]int, sources []pool.Source[T]) string {
	var sb strings.Builder
	for _, es := range estates {
		for _, v := range es {
			fmt.Fprintf(&sb, "%d,", v)
		}
		sb.WriteByte('|')
	}
	for _, s := range sources {
		sb.WriteString(s.Key())
		sb.WriteByte('|')
	}
	return sb.String()
}

// Evaluate folds the expressions over the bound sources and collects the
// exact distribution of the evaluator's final outcomes. Each expression
// consumes its own arity's worth of source slots, in order; the slot
// partition must use every source exactly.
func Evaluate[T constraints.Ordered, S comparable, U constraints.Ordered](
	ev Evaluator[T, S, U],
	exprs []expr.Expression[T],
	sources []pool.Source[T],
	opts ...Option,
) (*counts.Counts[U], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	totalArity := 0
	for _, e := range exprs {
		totalArity += e.Arity()
	}
	if totalArity != len(sources) {
		return nil, &expr.ArityError{Expected: totalArity, Got: len(sources)}
	}

	// An unresolvable source (an empty pool, a deck drawing more than it
	// holds) yields the empty distribution, the distinct no-data state.
	for _, s := range sources {
		if !s.IsResolvable() {
			return counts.FromPairs[U](nil)
		}
	}

	prefs := []order.Preference{ev.Preference()}
	for _, e := range exprs {
		prefs = append(prefs, e.Preference())
	}
	for _, s := range sources {
		prefs = append(prefs, s.Preference())
	}
	merged, err := order.Merge(prefs...)
	if err != nil {
		return nil, err
	}
	ord := merged.Order
	if ord == order.Any {
		ord = cheaperOrder(sources)
	}

	cache, _ := cfg.cache.(*Cache[U])
	var cacheKey string
	if keyed, ok := ev.(Keyed); ok && cache != nil && keyed.Key() != "" {
		cacheKey = resultKey(keyed.Key(), ord, exprs, sources)
		if res, ok := cache.get(cacheKey); ok {
			return res, nil
		}
	}

	initial := &path[T, S]{
		state:   ev.InitialState(),
		sources: sources,
		weight:  big.NewInt(1),
	}
	off := 0
	sizes := make([]int, len(sources))
	for i, s := range sources {
		sizes[i] = s.Size()
	}
	for _, e := range exprs {
		es, err := expr.InitState(e, sizes[off:off+e.Arity()])
		if err != nil {
			return nil, err
		}
		initial.estates = append(initial.estates, es)
		off += e.Arity()
	}

	domain := unionDomain(sources)
	if ord == order.Descending {
		for i, j := 0, len(domain)-1; i < j; i, j = i+1, j-1 {
			domain[i], domain[j] = domain[j], domain[i]
		}
	}

	live := map[pathKey[S]]*path[T, S]{
		{initial.state, auxKey(initial.estates, initial.sources)}: initial,
	}
	processed := 0
	for _, outcome := range domain {
		next := make(map[pathKey[S]]*path[T, S], len(live))
		for _, p := range live {
			pops := make([][]pool.Popped[T], len(p.sources))
			for i, s := range p.sources {
				pops[i] = s.Pop(ord, outcome)
			}
			combo := make([]pool.Popped[T], len(p.sources))
			var fan func(i int) error
			fan = func(i int) error {
				if i < len(pops) {
					for _, popped := range pops[i] {
						combo[i] = popped
						if err := fan(i + 1); err != nil {
							return err
						}
					}
					return nil
				}
				processed++
				if cfg.budget > 0 && processed > cfg.budget {
					return ErrBudgetExceeded
				}
				weight := new(big.Int).Set(p.weight)
				slot := make([]int, len(combo))
				nextSources := make([]pool.Source[T], len(combo))
				for j, popped := range combo {
					weight.Mul(weight, popped.Weight)
					slot[j] = popped.Count
					nextSources[j] = popped.Source
				}
				netCounts := make([]int, len(exprs))
				estates := make([][]int, len(exprs))
				off := 0
				for j, e := range exprs {
					estates[j] = slices.Clone(p.estates[j])
					c, err := expr.NextCount(e, estates[j], ord, outcome, slot[off:off+e.Arity()])
					if err != nil {
						return err
					}
					netCounts[j] = c
					off += e.Arity()
				}
				state, err := ev.NextState(p.state, outcome, netCounts)
				if err != nil {
					return errors.Wrapf(err, "eval: folding outcome %v", outcome)
				}
				key := pathKey[S]{state, auxKey(estates, nextSources)}
				if existing, ok := next[key]; ok {
					existing.weight.Add(existing.weight, weight)
				} else {
					next[key] = &path[T, S]{
						state:   state,
						estates: estates,
						sources: nextSources,
						weight:  weight,
					}
				}
				return nil
			}
			if err := fan(0); err != nil {
				return nil, err
			}
		}
		live = next
	}

	totals := make(map[U]*big.Int)
	for _, p := range live {
		fin, err := ev.FinalOutcome(p.state)
		if err != nil {
			return nil, err
		}
		if fin.Reroll {
			continue
		}
		if w, ok := totals[fin.Outcome]; ok {
			w.Add(w, p.weight)
		} else {
			totals[fin.Outcome] = new(big.Int).Set(p.weight)
		}
	}
	pairs := make([]counts.Pair[U], 0, len(totals))
	for o, w := range totals {
		pairs = append(pairs, counts.Pair[U]{Outcome: o, Weight: w})
	}
	res, err := counts.FromPairs(pairs)
	if err != nil {
		return nil, err
	}
	if cacheKey != "" {
		cache.put(cacheKey, res)
	}
	return res, nil
}

// Sources that can estimate the enumeration work of a walk direction.
type costEstimator interface {
	EstimateCost(ord order.Order) *big.Int
}

// cheaperOrder breaks a directionless preference merge by summing the
// sources' cost estimates for each direction and walking the cheaper
// one. Ascending wins ties and covers sources with no estimate.
func cheaperOrder[T constraints.Ordered](sources []pool.Source[T]) order.Order {
	asc, desc := new(big.Int), new(big.Int)
	for _, s := range sources {
		est, ok := s.(costEstimator)
		if !ok {
			continue
		}
		asc.Add(asc, est.EstimateCost(order.Ascending))
		desc.Add(desc, est.EstimateCost(order.Descending))
	}
	if desc.Cmp(asc) < 0 {
		return order.Descending
	}
	return order.Ascending
}

// unionDomain is the ascending union of all the sources' outcome
// domains. Sources never grow outcomes as they pop, so the initial union
// covers the whole walk.
func unionDomain[T constraints.Ordered](sources []pool.Source[T]) []T {
	set := make(map[T]struct{})
	for _, s := range sources {
		for _, o := range s.Outcomes() {
			set[o] = struct{}{}
		}
	}
	domain := maps.Keys(set)
	slices.Sort(domain)
	return domain
}

func resultKey[T constraints.Ordered](evKey string, ord order.Order, exprs []expr.Expression[T], sources []pool.Source[T]) string {
	var sb strings.Builder
	sb.WriteString(evKey)
	sb.WriteByte('/')
	sb.WriteString(ord.String())
	for _, e := range exprs {
		sb.WriteByte('/')
		sb.WriteString(e.Key())
	}
	for _, s := range sources {
		sb.WriteByte('/')
		sb.WriteString(s.Key())
	}
	return sb.String()
}

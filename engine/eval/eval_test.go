package eval

import (
	"math/big"
	"testing"

	"github.com/glossopoeia/hazard/dice"
	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/expr"
	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/pool"
	"github.com/pkg/errors"
)

func mustCounts[T int | string](t *testing.T, m map[T]int64) *counts.Counts[T] {
	t.Helper()
	c, err := counts.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return c
}

func checkDist[T int | string](t *testing.T, res *counts.Counts[T], exp map[T]int64) {
	t.Helper()
	expC := mustCounts(t, exp)
	if !res.Equal(expC) {
		t.Errorf("distribution expected %v, got %v instead", expC, res)
	}
}

func TestSumOfTwoDice(t *testing.T) {
	p := dice.D(6).Pool(2)
	res, err := Evaluate(Sum[int](), []expr.Expression[int]{expr.Variable[int](0)}, []pool.Source[int]{p})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	checkDist(t, res, map[int]int64{
		2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 6,
		8: 5, 9: 4, 10: 3, 11: 2, 12: 1,
	})
}

func TestBestOfThreeDice(t *testing.T) {
	p, err := dice.D(6).Pool(3).KeepHighest(1)
	if err != nil {
		t.Fatalf("KeepHighest: %v", err)
	}
	res, err := Evaluate(Sum[int](), []expr.Expression[int]{expr.Variable[int](0)}, []pool.Source[int]{p})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// P(max = k) has weight k^3 - (k-1)^3 over 216.
	checkDist(t, res, map[int]int64{
		1: 1, 2: 7, 3: 19, 4: 37, 5: 61, 6: 91,
	})
}

func TestFourDiceDropLowest(t *testing.T) {
	p, err := dice.D(6).Pool(4).DropLowest(1)
	if err != nil {
		t.Fatalf("DropLowest: %v", err)
	}
	res, err := Evaluate(Sum[int](), []expr.Expression[int]{expr.Variable[int](0)}, []pool.Source[int]{p})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Total().Cmp(big.NewInt(1296)) != 0 {
		t.Errorf("denominator expected 1296, got %v instead", res.Total())
	}
	if res.Get(3).Cmp(big.NewInt(1)) != 0 {
		t.Errorf("weight of 3 expected 1, got %v instead", res.Get(3))
	}
	// Three sixes kept: either exactly three sixes (4 ways times 5 lower
	// faces) or four sixes.
	if res.Get(18).Cmp(big.NewInt(21)) != 0 {
		t.Errorf("weight of 18 expected 21, got %v instead", res.Get(18))
	}
	mean, err := dice.Mean(dice.FromCounts(res))
	if err != nil {
		t.Fatalf("Mean: %v", err)
	}
	if mean.Cmp(big.NewRat(15869, 1296)) != 0 {
		t.Errorf("mean expected 15869/1296, got %v instead", mean)
	}
}

func TestSortedMatchDuel(t *testing.T) {
	// Three attacker d6 against two defender d6, paired highest against
	// highest; attacker hits on a strictly greater die.
	hits := expr.SortMatch(order.Gt, expr.Variable[int](0), expr.Variable[int](1), false)
	res, err := Evaluate(
		Count[int](),
		[]expr.Expression[int]{hits},
		[]pool.Source[int]{dice.D(6).Pool(3), dice.D(6).Pool(2)},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	checkDist(t, res, map[int]int64{0: 2275, 1: 2611, 2: 2890})
}

// forcedCount is the count evaluator with a mandated walk direction.
func forcedCount(ord order.Order) Evaluator[int, int, int] {
	return Func[int, int, int]{
		Next: func(state int, outcome int, netCounts []int) (int, error) {
			for _, c := range netCounts {
				state += c
			}
			return state, nil
		},
		Final: func(state int) (Final[int], error) {
			return Outcome(state), nil
		},
		Pref: order.Preference{Order: ord, Priority: order.Mandatory},
	}
}

func TestSortedMatchAgainstKeptPool(t *testing.T) {
	// The higher of 2d6 duels a single d6. The kept die pairs against the
	// lone defender; the dropped die is not an element at all.
	exp := map[int]int64{0: 91, 1: 125}

	for _, ord := range []order.Order{order.Ascending, order.Descending} {
		t.Run(ord.String(), func(t *testing.T) {
			kept, err := dice.D(6).Pool(2).KeepHighest(1)
			if err != nil {
				t.Fatalf("KeepHighest: %v", err)
			}
			hits := expr.SortMatch(order.Gt, expr.Variable[int](0), expr.Variable[int](1), false)
			res, err := Evaluate(
				forcedCount(ord),
				[]expr.Expression[int]{hits},
				[]pool.Source[int]{kept, dice.D(6).Pool(1)},
			)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			checkDist(t, res, exp)
		})
	}
}

func TestExpandSetOperations(t *testing.T) {
	left := expr.Variable[int](0)
	right := expr.Variable[int](1)

	testCases := []struct {
		name string
		e    expr.Expression[int]
		exp  string
	}{
		{"union", expr.Union(left, right), "(1,2,2,3,4)"},
		{"intersection", expr.Intersection(left, right), "(1,2)"},
		{"difference", expr.Difference(left, right), "(2,3)"},
		{"symmetric difference", expr.SymmetricDifference(left, right), "(2,3,4)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Evaluate(
				Expand[int](),
				[]expr.Expression[int]{tc.e},
				[]pool.Source[int]{pool.FromValues(1, 2, 2, 3), pool.FromValues(1, 2, 4)},
			)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			checkDist(t, res, map[string]int64{tc.exp: 1})
		})
	}
}

func TestDeckStraights(t *testing.T) {
	// Five cards from a 13-rank, 4-copy deck: the chance the hand is five
	// consecutive ranks.
	cards := make(map[int]int64, 13)
	for r := 1; r <= 13; r++ {
		cards[r] = 4
	}
	deck, err := pool.NewDeck(cards, 5)
	if err != nil {
		t.Fatalf("NewDeck: %v", err)
	}
	res, err := Evaluate(
		LargestStraight(),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{deck},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Total().Cmp(big.NewInt(2598960)) != 0 {
		t.Errorf("denominator expected C(52,5), got %v instead", res.Total())
	}
	// Nine runs of five consecutive ranks, four suits per card.
	if res.Get(5).Cmp(big.NewInt(9216)) != 0 {
		t.Errorf("weight of a five-straight expected 9216, got %v instead", res.Get(5))
	}
}

// forcedSum is the sum evaluator with a mandated walk direction, used to
// pin the order an evaluation would otherwise choose freely.
func forcedSum(ord order.Order) Evaluator[int, int, int] {
	return Func[int, int, int]{
		Next: func(state int, outcome int, netCounts []int) (int, error) {
			for _, c := range netCounts {
				state += outcome * c
			}
			return state, nil
		},
		Final: func(state int) (Final[int], error) {
			return Outcome(state), nil
		},
		Pref: order.Preference{Order: ord, Priority: order.Mandatory},
	}
}

func TestWalkDirectionsAgree(t *testing.T) {
	d4 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1})
	d6 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1})
	exprs := []expr.Expression[int]{expr.Variable[int](0)}

	asc, err := Evaluate(forcedSum(order.Ascending), exprs, []pool.Source[int]{pool.New(d4, d6)})
	if err != nil {
		t.Fatalf("Evaluate ascending: %v", err)
	}
	desc, err := Evaluate(forcedSum(order.Descending), exprs, []pool.Source[int]{pool.New(d4, d6)})
	if err != nil {
		t.Fatalf("Evaluate descending: %v", err)
	}
	if !asc.Equal(desc) {
		t.Errorf("directions expected to agree, got %v and %v", asc, desc)
	}

	ref, err := dice.Add(dice.FromCounts(d4), dice.FromCounts(d6))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !asc.Equal(ref.Counts()) {
		t.Errorf("pool sum expected %v, got %v instead", ref.Counts(), asc)
	}
}

func TestDirectionlessMergePicksCheaperWalk(t *testing.T) {
	d4 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1})
	d6 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1})
	shifted := mustCounts(t, map[int]int64{3: 1, 4: 1, 5: 1, 6: 1})

	// The pools' truncation votes cancel out; the head-shared pool is the
	// larger, so walking from the top is cheaper overall.
	headPool := pool.New(d4, d6, d6)
	tailPool := pool.New(shifted, d6)
	if ord := cheaperOrder([]pool.Source[int]{headPool, tailPool}); ord != order.Descending {
		t.Errorf("cheaper order expected descending, got %v instead", ord)
	}
	if ord := cheaperOrder([]pool.Source[int]{pool.AlignRange(1, 3)}); ord != order.Ascending {
		t.Errorf("a source without an estimate expected ascending, got %v instead", ord)
	}

	res, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0), expr.Variable[int](0)},
		[]pool.Source[int]{headPool, tailPool},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	ref := dice.FromCounts(d4)
	for _, c := range []*counts.Counts[int]{d6, d6, shifted, d6} {
		ref, err = dice.Add(ref, dice.FromCounts(c))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if !res.Equal(ref.Counts()) {
		t.Errorf("sum expected %v, got %v instead", ref.Counts(), res)
	}
}

func TestRerollConditionsTheDistribution(t *testing.T) {
	var evenOnly Evaluator[int, int, int] = Func[int, int, int]{
		Next: func(state int, outcome int, netCounts []int) (int, error) {
			for _, c := range netCounts {
				state += outcome * c
			}
			return state, nil
		},
		Final: func(state int) (Final[int], error) {
			if state%2 != 0 {
				return Reroll[int](), nil
			}
			return Outcome(state), nil
		},
		Pref: order.None(),
	}
	res, err := Evaluate(evenOnly, []expr.Expression[int]{expr.Variable[int](0)}, []pool.Source[int]{dice.D(6).Pool(1)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Odd paths lose their weight; nothing is redistributed.
	checkDist(t, res, map[int]int64{2: 1, 4: 1, 6: 1})
}

func TestMandateOverridesPoolShape(t *testing.T) {
	// A d4 is a prefix of a d6, so the pool votes descending, but Expand
	// mandates ascending and wins.
	d4 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1})
	d6 := mustCounts(t, map[int]int64{1: 1, 2: 1, 3: 1, 4: 1, 5: 1, 6: 1})
	res, err := Evaluate(
		Expand[int](),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{pool.New(d4, d6)},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Total().Cmp(big.NewInt(24)) != 0 {
		t.Errorf("denominator expected 24, got %v instead", res.Total())
	}
	// Both dice showing the same face: one way for the pair, listed
	// ascending either way.
	if res.Get("(1,1)").Cmp(big.NewInt(1)) != 0 {
		t.Errorf("weight of (1,1) expected 1, got %v instead", res.Get("(1,1)"))
	}
	if res.Get("(2,5)").Cmp(big.NewInt(1)) != 0 {
		t.Errorf("weight of (2,5) expected 1, got %v instead", res.Get("(2,5)"))
	}
}

func TestArityMismatch(t *testing.T) {
	_, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(6).Pool(1), dice.D(6).Pool(1)},
	)
	var arityErr *expr.ArityError
	if !errors.As(err, &arityErr) {
		t.Fatalf("Evaluate expected an arity error, got %v instead", err)
	}
}

func TestUnresolvableSourceYieldsEmpty(t *testing.T) {
	res, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(6).Pool(0)},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Len() != 0 {
		t.Errorf("an unresolvable source expected the empty distribution, got %v instead", res)
	}
}

func TestBudget(t *testing.T) {
	_, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(6).Pool(3)},
		WithBudget(2),
	)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("Evaluate expected ErrBudgetExceeded, got %v instead", err)
	}

	// A generous budget changes nothing.
	res, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(6).Pool(2)},
		WithBudget(100000),
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Total().Cmp(big.NewInt(36)) != 0 {
		t.Errorf("denominator expected 36, got %v instead", res.Total())
	}
}

func TestCacheReuse(t *testing.T) {
	cache := NewCache[int]()
	exprs := []expr.Expression[int]{expr.Variable[int](0)}
	sources := []pool.Source[int]{dice.D(6).Pool(2)}

	first, err := Evaluate(Sum[int](), exprs, sources, WithCache(cache))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache expected 1 entry, got %v instead", cache.Len())
	}
	second, err := Evaluate(Sum[int](), exprs, sources, WithCache(cache))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cache.Len() != 1 {
		t.Errorf("a repeated evaluation expected to hit the cache")
	}
	if !first.Equal(second) {
		t.Errorf("cached result expected %v, got %v instead", first, second)
	}
}

func TestUnkeyedEvaluatorIsNotCached(t *testing.T) {
	cache := NewCache[int]()
	_, err := Evaluate(
		forcedSum(order.Ascending),
		[]expr.Expression[int]{expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(6).Pool(1)},
		WithCache(cache),
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("an unkeyed evaluator expected to skip the cache, got %v entries", cache.Len())
	}
}

func TestMultipleExpressionsPartitionSlots(t *testing.T) {
	// Two independent sums over two separate pools, folded together.
	res, err := Evaluate(
		Sum[int](),
		[]expr.Expression[int]{expr.Variable[int](0), expr.Variable[int](0)},
		[]pool.Source[int]{dice.D(4).Pool(1), dice.D(4).Pool(1)},
	)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	checkDist(t, res, map[int]int64{2: 1, 3: 2, 4: 3, 5: 4, 6: 3, 7: 2, 8: 1})
}

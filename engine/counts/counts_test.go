package counts

import (
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustFromMap(t *testing.T, m map[int]int64) *Counts[int] {
	t.Helper()
	c, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap(%v): %v", m, err)
	}
	return c
}

func TestFromPairsRejectsBadWeights(t *testing.T) {
	testCases := []struct {
		name  string
		pairs []Pair[int]
	}{
		{"negative weight", []Pair[int]{{1, big.NewInt(-1)}}},
		{"duplicate outcome", []Pair[int]{{1, big.NewInt(1)}, {1, big.NewInt(2)}}},
		{"nil weight", []Pair[int]{{1, nil}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromPairs(tc.pairs); err == nil {
				t.Errorf("FromPairs expected an error, got none")
			}
		})
	}
}

func TestFromPairsFiltersZeroWeights(t *testing.T) {
	c, err := FromPairs([]Pair[int]{
		{2, big.NewInt(3)},
		{1, big.NewInt(0)},
		{3, big.NewInt(1)},
	})
	if err != nil {
		t.Fatalf("FromPairs: %v", err)
	}
	if !cmp.Equal(c.Outcomes(), []int{2, 3}) {
		t.Errorf("Outcomes expected [2 3], got %v instead", c.Outcomes())
	}
}

func TestOutcomesSortedAscending(t *testing.T) {
	c := mustFromMap(t, map[int]int64{5: 1, 1: 2, 3: 4})
	if !cmp.Equal(c.Outcomes(), []int{1, 3, 5}) {
		t.Errorf("Outcomes expected [1 3 5], got %v instead", c.Outcomes())
	}
	if c.Min() != 1 || c.Max() != 5 {
		t.Errorf("Min/Max expected 1/5, got %v/%v instead", c.Min(), c.Max())
	}
}

func TestGetMissingOutcomeIsZero(t *testing.T) {
	c := mustFromMap(t, map[int]int64{1: 2, 3: 4})
	if c.Get(2).Sign() != 0 {
		t.Errorf("Get(2) expected 0, got %v instead", c.Get(2))
	}
	if c.Get(3).Cmp(big.NewInt(4)) != 0 {
		t.Errorf("Get(3) expected 4, got %v instead", c.Get(3))
	}
}

func TestTotal(t *testing.T) {
	c := mustFromMap(t, map[int]int64{1: 2, 3: 4, 5: 6})
	if c.Total().Cmp(big.NewInt(12)) != 0 {
		t.Errorf("Total expected 12, got %v instead", c.Total())
	}
}

func TestPopLeavesOriginalIntact(t *testing.T) {
	c := mustFromMap(t, map[int]int64{1: 2, 3: 4, 5: 6})

	o, w, rest := c.PopMin()
	if o != 1 || w.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("PopMin expected 1:2, got %v:%v instead", o, w)
	}
	if !cmp.Equal(rest.Outcomes(), []int{3, 5}) {
		t.Errorf("PopMin rest expected [3 5], got %v instead", rest.Outcomes())
	}

	o, w, rest = c.PopMax()
	if o != 5 || w.Cmp(big.NewInt(6)) != 0 {
		t.Errorf("PopMax expected 5:6, got %v:%v instead", o, w)
	}
	if !cmp.Equal(rest.Outcomes(), []int{1, 3}) {
		t.Errorf("PopMax rest expected [1 3], got %v instead", rest.Outcomes())
	}

	if c.Len() != 3 {
		t.Errorf("original mapping expected 3 outcomes after pops, got %v instead", c.Len())
	}
}

func TestReduce(t *testing.T) {
	c := mustFromMap(t, map[int]int64{1: 4, 2: 8})
	exp := mustFromMap(t, map[int]int64{1: 1, 2: 2})

	reduced := c.Reduce()
	if !reduced.Equal(exp) {
		t.Errorf("Reduce expected %v, got %v instead", exp, reduced)
	}
	// Reducing twice changes nothing; an already-reduced mapping is
	// returned as-is.
	if reduced.Reduce() != reduced {
		t.Errorf("Reduce on a reduced mapping expected the receiver back")
	}
}

func TestPrefixSuffix(t *testing.T) {
	whole := mustFromMap(t, map[int]int64{1: 1, 2: 2, 3: 3})

	testCases := []struct {
		name   string
		part   *Counts[int]
		prefix bool
		suffix bool
	}{
		{"itself", whole, true, true},
		{"low end", mustFromMap(t, map[int]int64{1: 1, 2: 2}), true, false},
		{"high end", mustFromMap(t, map[int]int64{2: 2, 3: 3}), false, true},
		{"wrong weight", mustFromMap(t, map[int]int64{1: 9}), false, false},
		{"too long", mustFromMap(t, map[int]int64{1: 1, 2: 2, 3: 3, 4: 4}), false, false},
		{"empty", mustFromMap(t, nil), true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if res := tc.part.PrefixOf(whole); res != tc.prefix {
				t.Errorf("PrefixOf expected %v, got %v instead", tc.prefix, res)
			}
			if res := tc.part.SuffixOf(whole); res != tc.suffix {
				t.Errorf("SuffixOf expected %v, got %v instead", tc.suffix, res)
			}
		})
	}
}

func TestKey(t *testing.T) {
	c := mustFromMap(t, map[int]int64{1: 2, 3: 4})
	if c.Key() != "{1:2,3:4}" {
		t.Errorf("Key expected {1:2,3:4}, got %v instead", c.Key())
	}
}

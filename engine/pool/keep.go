package pool

import "fmt"

// A KeepTuple records, for a pool of n dice sorted ascending, how many
// times the die at each sorted rank contributes to the result. Zero drops
// the rank, one keeps it once, and negative entries keep it with the sign
// flipped. The tuple is re-sliced from whichever end the pool pops.
type KeepTuple []int

func keepAllOnes(n int) KeepTuple {
	t := make(KeepTuple, n)
	for i := range t {
		t[i] = 1
	}
	return t
}

// The number of leading ranks with a zero multiplier. Popping ascending
// can discard these dice without their counts ever mattering.
func (t KeepTuple) LoSkip() int {
	for i, k := range t {
		if k != 0 {
			return i
		}
	}
	return len(t)
}

// The number of trailing ranks with a zero multiplier.
func (t KeepTuple) HiSkip() int {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i] != 0 {
			return len(t) - 1 - i
		}
	}
	return len(t)
}

func (t KeepTuple) sum(lo int, hi int) int {
	total := 0
	for _, k := range t[lo:hi] {
		total += k
	}
	return total
}

// Compose applies a further keep spec to the ranks this tuple already
// keeps, the way nested slicing would: the kept ranks (with multiplicity)
// form a smaller sorted pool, the spec selects within that pool, and the
// selection multiplies back through to the original ranks. Tuples with
// negative multipliers cannot be composed, since their expansion has no
// consistent sorted order.
func (t KeepTuple) Compose(spec KeepSpec) (KeepTuple, error) {
	m := 0
	for _, k := range t {
		if k < 0 {
			return nil, fmt.Errorf("pool: cannot compose keep over negative multiplier %d", k)
		}
		m += k
	}
	outer, err := spec.Tuple(m)
	if err != nil {
		return nil, err
	}
	res := make(KeepTuple, len(t))
	pos := 0
	for i, k := range t {
		for j := 0; j < k; j++ {
			res[i] += outer[pos]
			pos++
		}
	}
	return res, nil
}

// A KeepSpec describes which sorted ranks of a pool count, before the
// pool's size is applied to turn it into a concrete KeepTuple.
type KeepSpec interface {
	// Materialize the spec for a pool of n dice.
	Tuple(n int) (KeepTuple, error)
	keepSpec()
}

// A rank request that a pool of the given size can never satisfy.
type RankError struct {
	Index int
	Size  int
}

func (e *RankError) Error() string {
	return fmt.Sprintf("pool: rank %d out of range for pool of %d dice", e.Index, e.Size)
}

// resolveRank maps a possibly-negative rank index onto [0, n).
func resolveRank(i int, n int) (int, error) {
	r := i
	if r < 0 {
		r += n
	}
	if r < 0 || r >= n {
		return 0, &RankError{Index: i, Size: n}
	}
	return r, nil
}

type keepRange struct {
	start    int
	stop     int
	hasStart bool
	hasStop  bool
}

func (keepRange) keepSpec() {}

func (s keepRange) Tuple(n int) (KeepTuple, error) {
	lo, hi := 0, n
	if s.hasStart {
		lo = s.start
		if lo < 0 {
			lo += n
		}
	}
	if s.hasStop {
		hi = s.stop
		if hi < 0 {
			hi += n
		}
	}
	// Slices clamp rather than fail, as slicing conventionally does.
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	t := make(KeepTuple, n)
	for i := lo; i < hi; i++ {
		t[i] = 1
	}
	return t, nil
}

// Keep the ranks in [start, stop). Negative bounds count from the end.
func KeepRange(start int, stop int) KeepSpec {
	return keepRange{start: start, stop: stop, hasStart: true, hasStop: true}
}

// Keep the ranks from start to the highest. Negative counts from the end.
func KeepFrom(start int) KeepSpec {
	return keepRange{start: start, hasStart: true}
}

// Keep the ranks below stop. Negative counts from the end.
func KeepUpTo(stop int) KeepSpec {
	return keepRange{stop: stop, hasStop: true}
}

// Keep every rank once.
func KeepAll() KeepSpec {
	return keepRange{}
}

type keepIndexes []int

func (keepIndexes) keepSpec() {}

func (s keepIndexes) Tuple(n int) (KeepTuple, error) {
	t := make(KeepTuple, n)
	for _, i := range s {
		r, err := resolveRank(i, n)
		if err != nil {
			return nil, err
		}
		t[r]++
	}
	return t, nil
}

// Keep each listed rank once more; a rank listed twice counts twice.
// Negative ranks count from the end. Unlike a range, an index outside the
// pool is an error.
func KeepIndexes(idx ...int) KeepSpec {
	return keepIndexes(idx)
}

type keepEnds struct {
	head []int
	tail []int
}

func (keepEnds) keepSpec() {}

func (s keepEnds) Tuple(n int) (KeepTuple, error) {
	if len(s.head)+len(s.tail) > n {
		return nil, &RankError{Index: len(s.head) + len(s.tail) - 1, Size: n}
	}
	t := make(KeepTuple, n)
	copy(t, s.head)
	copy(t[n-len(s.tail):], s.tail)
	return t, nil
}

// Pin explicit multipliers to the lowest and highest ranks, with an
// implied all-zero middle of whatever length the pool requires. This is
// the ellipsis form: KeepEnds([]int{-1}, []int{1}) negates the lowest die
// and keeps the highest, whatever the pool size.
func KeepEnds(head []int, tail []int) KeepSpec {
	return keepEnds{head: head, tail: tail}
}

// An explicit tuple, which must match the pool size exactly.
type keepLiteral KeepTuple

func (keepLiteral) keepSpec() {}

func (s keepLiteral) Tuple(n int) (KeepTuple, error) {
	if len(s) != n {
		return nil, &RankError{Index: len(s) - 1, Size: n}
	}
	t := make(KeepTuple, n)
	copy(t, s)
	return t, nil
}

// Use the given multipliers directly, one per sorted rank.
func KeepLiteral(multipliers ...int) KeepSpec {
	return keepLiteral(multipliers)
}

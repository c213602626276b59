// Package again resolves deferred "roll again" markers into concrete
// dice. A marked outcome stands for "add this value, then roll once
// more"; resolution substitutes the die into its own markers up to an
// explicit depth bound, so exploding dice never expand eagerly or
// without limit.
package again

import (
	"fmt"
	"math/big"

	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/util"
)

// One face of a die under construction. Add is the face's contribution;
// when Again is set, the face also triggers one more roll whose result
// is added on top.
type Outcome struct {
	Add   int
	Again bool
}

// A face with its weight.
type Pair struct {
	Outcome Outcome
	Weight  int64
}

type limitKind int

const (
	limitFace limitKind = iota + 1
	limitFixed
	limitReroll
)

// What a marker resolves to once the depth bound is reached.
type Limit struct {
	kind  limitKind
	value int
}

// Face resolves an exhausted marker to its own face value: the die
// simply stops exploding. This is the default callers usually want.
func Face() Limit {
	return Limit{kind: limitFace}
}

// Fixed resolves an exhausted marker to the given outcome.
func Fixed(v int) Limit {
	return Limit{kind: limitFixed, value: v}
}

// Reroll discards paths whose marker survives to the depth bound,
// conditioning the distribution on the die not exploding that far.
func Reroll() Limit {
	return Limit{kind: limitReroll}
}

// Resolve substitutes the die into its own markers depth times, then
// applies the limit to whatever markers remain. Weights are scaled so
// that a die with total weight W resolves with denominator W^(depth+1),
// keeping all arithmetic in integers; paths the limit discards simply
// lose their weight.
func Resolve(pairs []Pair, depth int, limit Limit) (*counts.Counts[int], error) {
	if depth < 0 {
		return nil, fmt.Errorf("again: negative depth %d", depth)
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("again: no outcomes to resolve")
	}
	merged := make(map[Outcome]*big.Int)
	total := new(big.Int)
	for _, p := range pairs {
		if p.Weight <= 0 {
			return nil, fmt.Errorf("again: non-positive weight %d for outcome %+v", p.Weight, p.Outcome)
		}
		w := big.NewInt(p.Weight)
		if existing, ok := merged[p.Outcome]; ok {
			existing.Add(existing, w)
		} else {
			merged[p.Outcome] = w
		}
		total.Add(total, w)
	}

	// Depth zero: markers resolve straight to the limit.
	level := make(map[int]*big.Int)
	addWeight := func(m map[int]*big.Int, o int, w *big.Int) {
		if existing, ok := m[o]; ok {
			existing.Add(existing, w)
		} else {
			m[o] = new(big.Int).Set(w)
		}
	}
	for o, w := range merged {
		if !o.Again {
			addWeight(level, o.Add, w)
			continue
		}
		switch limit.kind {
		case limitFace:
			addWeight(level, o.Add, w)
		case limitFixed:
			addWeight(level, limit.value, w)
		case limitReroll:
			// Path discarded.
		default:
			panic("again: invalid limit encountered")
		}
	}

	for d := 1; d <= depth; d++ {
		// Plain faces scale up to the new denominator; marked faces
		// substitute the previous level on top of their own value.
		scale := util.BigPow(total, d)
		plain := make(map[int]*big.Int)
		marked := make(map[int]*big.Int)
		for o, w := range merged {
			if !o.Again {
				addWeight(plain, o.Add, new(big.Int).Mul(w, scale))
				continue
			}
			for prev, pw := range level {
				addWeight(marked, o.Add+prev, new(big.Int).Mul(w, pw))
			}
		}
		level = util.MergeMaps(plain, marked, func(a *big.Int, b *big.Int) *big.Int {
			return a.Add(a, b)
		})
	}

	res := make([]counts.Pair[int], 0, len(level))
	for o, w := range level {
		res = append(res, counts.Pair[int]{Outcome: o, Weight: w})
	}
	return counts.FromPairs(res)
}

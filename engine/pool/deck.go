package pool

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/glossopoeia/hazard/engine/counts"
	"github.com/glossopoeia/hazard/engine/order"
	"github.com/glossopoeia/hazard/engine/util"
	"golang.org/x/exp/constraints"
)

// A Deck draws a fixed number of cards without replacement from a
// multiset of outcomes. Each pop consumes one outcome entirely, deciding
// how many of the remaining draws took a card of that outcome, weighted
// hypergeometrically.
type Deck[T constraints.Ordered] struct {
	cards *counts.Counts[T]
	draws int
}

// Create a deck from outcome multiplicities and a number of draws.
func NewDeck[T constraints.Ordered](cards map[T]int64, draws int) (*Deck[T], error) {
	if draws < 0 {
		return nil, fmt.Errorf("pool: negative draw count %d", draws)
	}
	cs, err := counts.FromMap(cards)
	if err != nil {
		return nil, err
	}
	return &Deck[T]{cards: cs, draws: draws}, nil
}

// deckSize is the number of cards remaining in the deck.
func (d *Deck[T]) deckSize() int {
	return int(d.cards.Total().Int64())
}

func (d *Deck[T]) Outcomes() []T {
	if d.draws == 0 {
		return nil
	}
	return d.cards.Outcomes()
}

func (d *Deck[T]) Size() int {
	return d.draws
}

// The number of distinct hands: C(cards remaining, draws remaining).
func (d *Deck[T]) Denominator() *big.Int {
	return util.Binomial(d.deckSize(), d.draws)
}

func (d *Deck[T]) IsResolvable() bool {
	return d.draws <= d.deckSize()
}

func (d *Deck[T]) Preference() order.Preference {
	return order.None()
}

// Pop consumes the extreme outcome. With c cards of that outcome in a
// deck of s cards and n draws left, the number drawn k ranges over
// [max(0, c+n-s), min(c, n)] with weight C(c, k); the outcome's cards
// leave the deck either way.
func (d *Deck[T]) Pop(ord order.Order, outcome T) []Popped[T] {
	if d.draws == 0 || d.cards.Len() == 0 {
		return noopPop[T](d)
	}
	asc := ord != order.Descending
	var extreme T
	var c *big.Int
	var rest *counts.Counts[T]
	if asc {
		extreme, c, rest = d.cards.PopMin()
	} else {
		extreme, c, rest = d.cards.PopMax()
	}
	if outcome != extreme {
		return noopPop[T](d)
	}
	cc := int(c.Int64())
	lo := util.MaxInt(0, cc+d.draws-d.deckSize())
	hi := util.MinInt(cc, d.draws)
	var results []Popped[T]
	for k := lo; k <= hi; k++ {
		next := &Deck[T]{cards: rest, draws: d.draws - k}
		results = append(results, Popped[T]{
			Source: next,
			Count:  k,
			Weight: util.Binomial(cc, k),
		})
	}
	return results
}

func (d *Deck[T]) Key() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "deck[%d|%s]", d.draws, d.cards.Key())
	return sb.String()
}

func (d *Deck[T]) String() string {
	return d.Key()
}

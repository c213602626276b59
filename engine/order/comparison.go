package order

import "fmt"

// The comparison operators usable by count filters and sorted matching.
type Comparison int

const (
	Lt Comparison = iota + 1
	Le
	Eq
	Ne
	Ge
	Gt
)

func (c Comparison) String() string {
	switch c {
	case Lt:
		return "<"
	case Le:
		return "<="
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Ge:
		return ">="
	case Gt:
		return ">"
	default:
		panic("order: invalid comparison encountered")
	}
}

// Apply the comparison to two integers.
func (c Comparison) Compare(a int, b int) bool {
	switch c {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Eq:
		return a == b
	case Ne:
		return a != b
	case Ge:
		return a >= b
	case Gt:
		return a > b
	default:
		panic("order: invalid comparison encountered")
	}
}

// ParseComparison reads the usual operator spelling of a comparison.
func ParseComparison(s string) (Comparison, error) {
	for c := Lt; c <= Gt; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("order: unknown comparison %q", s)
}

package eval

import (
	"github.com/glossopoeia/hazard/engine/counts"
	"golang.org/x/exp/constraints"
)

// A Cache holds final evaluation results across Evaluate calls, keyed by
// the evaluator's key plus the canonical encodings of the order,
// expressions, and sources. It is deliberately an explicit value owned
// by the caller rather than a shared global: one evaluation run owns it
// at a time, and callers wanting reuse across goroutines must shard.
type Cache[U constraints.Ordered] struct {
	results map[string]*counts.Counts[U]
}

func NewCache[U constraints.Ordered]() *Cache[U] {
	return &Cache[U]{results: make(map[string]*counts.Counts[U])}
}

// The number of stored results.
func (c *Cache[U]) Len() int {
	return len(c.results)
}

func (c *Cache[U]) get(key string) (*counts.Counts[U], bool) {
	res, ok := c.results[key]
	return res, ok
}

func (c *Cache[U]) put(key string, res *counts.Counts[U]) {
	c.results[key] = res
}

package model

import (
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of histories a Cached model remembers.
const DefaultCacheSize = 1024

// Cached remembers the distributions of the most recently seen histories.
// When full, the least recently used history is evicted.
type Cached struct {
	Model
	cache *lru.Cache[string, []float64]
}

func NewCached(m Model, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, fmt.Errorf("could not create distribution cache: %w", err)
	}
	return &Cached{Model: m, cache: c}, nil
}

func (c *Cached) Distribution(history []int) ([]float64, error) {
	k := key(history)
	if dist, ok := c.cache.Get(k); ok {
		return slices.Clone(dist), nil
	}
	dist, err := c.Model.Distribution(history)
	if err != nil {
		return nil, err
	}
	c.cache.Add(k, slices.Clone(dist))
	return dist, nil
}

// Len returns the number of cached histories.
func (c *Cached) Len() int {
	return c.cache.Len()
}

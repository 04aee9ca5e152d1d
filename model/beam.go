package model

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
)

// Beam finds likely continuations of a sequence with beam search. At every
// step each hypothesis is extended by its Width most likely events and the
// Width best resulting hypotheses are kept. Jitter multiplies each
// probability by a random factor in [1, 1+Jitter) so that repeated searches
// vary; with zero jitter and width one the search is greedy.
type Beam struct {
	Model  Model
	Width  int
	Jitter float64
	Rand   *rand.Rand
}

type hypothesis struct {
	events []int
	logLik float64
}

// Sample returns history extended by steps events from the best hypothesis.
func (b *Beam) Sample(history []int, steps int) ([]int, error) {
	if b.Width < 1 {
		return nil, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidBeam, b.Width)
	}
	if b.Jitter > 0 && b.Rand == nil {
		return nil, fmt.Errorf("%w: jitter needs a random source", ErrInvalidBeam)
	}
	alphabet := b.Model.Alphabet()
	beams := []hypothesis{{events: slices.Clone(history)}}
	for step := 0; step < steps; step++ {
		var candidates []hypothesis
		seen := map[string]int{}
		for _, h := range beams {
			dist, err := b.Model.Distribution(h.events)
			if err != nil {
				return nil, err
			}
			if _, err := checkDistribution(dist); err != nil {
				return nil, err
			}
			if len(dist) != len(alphabet) {
				return nil, fmt.Errorf("%w: %d probabilities for %d events", ErrDistribution, len(dist), len(alphabet))
			}
			scores := make([]float64, len(dist))
			for i, p := range dist {
				scores[i] = p
				if b.Jitter > 0 {
					scores[i] *= 1 + b.Jitter*b.Rand.Float64()
				}
			}
			for _, i := range top(scores, b.Width) {
				c := hypothesis{
					events: append(slices.Clone(h.events), alphabet[i]),
					logLik: h.logLik + math.Log(scores[i]),
				}
				k := key(c.events)
				if j, ok := seen[k]; ok {
					if c.logLik > candidates[j].logLik {
						candidates[j] = c
					}
					continue
				}
				seen[k] = len(candidates)
				candidates = append(candidates, c)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].logLik > candidates[j].logLik
		})
		beams = candidates[:min(len(candidates), b.Width)]
	}
	return beams[0].events, nil
}

// top returns the indices of the n largest scores, largest first. Ties go to
// the lower index.
func top(scores []float64, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})
	return idx[:min(n, len(idx))]
}

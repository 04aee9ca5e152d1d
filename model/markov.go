package model

import (
	"slices"
)

// Markov is an n-gram model. Probabilities come from the longest observed
// context that has been followed by the queried event, falling back to
// shorter contexts and finally to smoothed unigram counts.
type Markov struct {
	// Prior is the pseudo-count added to every unigram.
	Prior float64

	alphabet []int
	order    int
	counts   map[string]float64 // n-gram -> occurrences
	contexts map[string]float64 // context -> occurrences followed by anything
	totals   []float64          // n -> number of n-grams seen
}

// NewMarkov returns an untrained model with n-grams up to length order. An
// order below 1 is treated as 1.
func NewMarkov(alphabet []int, order int) *Markov {
	if order < 1 {
		order = 1
	}
	return &Markov{
		Prior:    1,
		alphabet: slices.Clone(alphabet),
		order:    order,
		counts:   map[string]float64{},
		contexts: map[string]float64{},
		totals:   make([]float64, order+1),
	}
}

func (m *Markov) Alphabet() []int { return m.alphabet }

func (m *Markov) Order() int { return m.order }

// Train counts all n-grams of the given sequences. Training is cumulative.
func (m *Markov) Train(sequences ...[]int) {
	for _, seq := range sequences {
		for n := 1; n <= m.order; n++ {
			for i := 0; i+n <= len(seq); i++ {
				gram := seq[i : i+n]
				m.counts[key(gram)]++
				m.totals[n]++
				if n > 1 {
					m.contexts[key(gram[:n-1])]++
				}
			}
		}
	}
}

func (m *Markov) Probability(history []int, event int) (float64, error) {
	if _, err := indexOf(m.alphabet, event); err != nil {
		return 0, err
	}
	gram := make([]int, 0, m.order)
	for k := min(m.order-1, len(history)); k >= 1; k-- {
		ctx := history[len(history)-k:]
		c := m.contexts[key(ctx)]
		if c == 0 {
			continue
		}
		gram = append(append(gram[:0], ctx...), event)
		if n := m.counts[key(gram)]; n > 0 {
			return n / c, nil
		}
	}
	total := m.totals[1] + m.Prior*float64(len(m.alphabet))
	if total == 0 {
		return 1 / float64(len(m.alphabet)), nil
	}
	return (m.counts[key([]int{event})] + m.Prior) / total, nil
}

func (m *Markov) Distribution(history []int) ([]float64, error) {
	dist := make([]float64, len(m.alphabet))
	for i, e := range m.alphabet {
		p, err := m.Probability(history, e)
		if err != nil {
			return nil, err
		}
		dist[i] = p
	}
	if err := normalize(dist); err != nil {
		return nil, err
	}
	return dist, nil
}

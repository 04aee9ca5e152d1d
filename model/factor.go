package model

import (
	"math"
	"slices"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/viterin/vek"
)

type (
	// FactorFunc scores event as a continuation of history. Higher is more
	// likely; scores are treated as unnormalized log probabilities.
	FactorFunc func(history []int, event int) float64

	Factor struct {
		Name   string
		Weight float64
		Func   FactorFunc
	}

	// FactorModel is a log-linear model: the probability of an event is
	// proportional to exp of the weighted sum of its factor scores.
	FactorModel struct {
		alphabet []int
		Factors  []Factor
	}
)

func NewFactorModel(alphabet []int, factors ...Factor) *FactorModel {
	return &FactorModel{alphabet: slices.Clone(alphabet), Factors: factors}
}

func (m *FactorModel) Alphabet() []int { return m.alphabet }

// Score returns the weighted sum of all factor scores.
func (m *FactorModel) Score(history []int, event int) float64 {
	var s float64
	for _, f := range m.Factors {
		s += f.Weight * f.Func(history, event)
	}
	return s
}

func (m *FactorModel) Distribution(history []int) ([]float64, error) {
	logits := make([]float64, len(m.alphabet))
	for i, e := range m.alphabet {
		logits[i] = m.Score(history, e)
	}
	if len(logits) == 0 {
		return nil, normalize(logits)
	}
	// shift by the maximum so that exp never overflows
	vek.SubNumber_Inplace(logits, vek.Max(logits))
	for i, l := range logits {
		logits[i] = math.Exp(l)
	}
	if err := normalize(logits); err != nil {
		return nil, err
	}
	return logits, nil
}

func (m *FactorModel) Probability(history []int, event int) (float64, error) {
	i, err := indexOf(m.alphabet, event)
	if err != nil {
		return 0, err
	}
	dist, err := m.Distribution(history)
	if err != nil {
		return 0, err
	}
	return dist[i], nil
}

// StepFactor penalizes the interval to the previous event, in semitones.
func StepFactor(history []int, event int) float64 {
	if len(history) == 0 {
		return 0
	}
	d := event - history[len(history)-1]
	if d < 0 {
		d = -d
	}
	return -float64(d)
}

// RepeatFactor is -1 when event repeats the previous event.
func RepeatFactor(history []int, event int) float64 {
	if len(history) > 0 && history[len(history)-1] == event {
		return -1
	}
	return 0
}

// ScaleFactor is -1 for pitches outside of s.
func ScaleFactor(s *treequence.TonicScale) FactorFunc {
	return func(history []int, event int) float64 {
		if s.IsInScale(event) {
			return 0
		}
		return -1
	}
}

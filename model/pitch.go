package model

import (
	"fmt"
	"slices"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/viterin/vek"
)

// PitchAlphabet lists all MIDI pitches.
func PitchAlphabet() []int {
	ret := make([]int, treequence.MaxPitch-treequence.MinPitch+1)
	for i := range ret {
		ret[i] = treequence.MinPitch + i
	}
	return ret
}

// PitchDistribution is a history independent distribution over
// PitchAlphabet.
type PitchDistribution struct {
	alphabet []int
	probs    []float64
}

// NewPitchDistribution normalizes weights (one per MIDI pitch) and blends
// them with a uniform distribution: p = (1-epsilon)*w + epsilon/128.
func NewPitchDistribution(weights []float64, epsilon float64) (*PitchDistribution, error) {
	alphabet := PitchAlphabet()
	if len(weights) != len(alphabet) {
		return nil, fmt.Errorf("%w: got %d pitch weights, expected %d", ErrDistribution, len(weights), len(alphabet))
	}
	if epsilon < 0 || epsilon > 1 {
		return nil, fmt.Errorf("%w: epsilon %v outside [0,1]", ErrDistribution, epsilon)
	}
	probs := slices.Clone(weights)
	if err := normalize(probs); err != nil {
		return nil, err
	}
	vek.MulNumber_Inplace(probs, 1-epsilon)
	vek.AddNumber_Inplace(probs, epsilon/float64(len(probs)))
	return &PitchDistribution{alphabet: alphabet, probs: probs}, nil
}

// ScaleDistribution is uniform over the pitches of s.
func ScaleDistribution(s *treequence.TonicScale, epsilon float64) (*PitchDistribution, error) {
	w := vek.Zeros(treequence.MaxPitch + 1)
	for p := range w {
		if s.IsInScale(p) {
			w[p] = 1
		}
	}
	return NewPitchDistribution(w, epsilon)
}

// PitchRange is uniform over the pitches lo..hi inclusive.
func PitchRange(lo, hi int, epsilon float64) (*PitchDistribution, error) {
	w := vek.Zeros(treequence.MaxPitch + 1)
	for p := max(lo, 0); p <= min(hi, treequence.MaxPitch); p++ {
		w[p] = 1
	}
	return NewPitchDistribution(w, epsilon)
}

func (d *PitchDistribution) Alphabet() []int { return d.alphabet }

func (d *PitchDistribution) Probability(history []int, event int) (float64, error) {
	i, err := indexOf(d.alphabet, event)
	if err != nil {
		return 0, err
	}
	return d.probs[i], nil
}

func (d *PitchDistribution) Distribution(history []int) ([]float64, error) {
	return slices.Clone(d.probs), nil
}

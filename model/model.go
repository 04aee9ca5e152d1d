// Package model contains time-series models over a discrete alphabet of
// events (usually MIDI pitches) and procedures that sample sequences from
// them.
package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strconv"
	"strings"

	"github.com/viterin/vek"
)

var (
	ErrAlphabetMismatch = errors.New("models do not share an alphabet")
	ErrDistribution     = errors.New("invalid distribution")
	ErrInvalidBeam      = errors.New("invalid beam search")
	ErrUnknownEvent     = errors.New("event not in alphabet")
)

// Model assigns probabilities to the next event of a sequence given its
// history.
type Model interface {
	// Alphabet lists the possible events. Distributions are indexed in the
	// same order.
	Alphabet() []int
	// Probability of event following history, in [0,1].
	Probability(history []int, event int) (float64, error)
	// Distribution over the alphabet for the event following history.
	Distribution(history []int) ([]float64, error)
}

// Sample extends history by steps events drawn from m.
func Sample(m Model, history []int, steps int, rng *rand.Rand) ([]int, error) {
	ret := slices.Clone(history)
	alphabet := m.Alphabet()
	for i := 0; i < steps; i++ {
		dist, err := m.Distribution(ret)
		if err != nil {
			return nil, err
		}
		total, err := checkDistribution(dist)
		if err != nil {
			return nil, err
		}
		r := rng.Float64() * total
		pick := len(dist) - 1
		for j, p := range dist {
			if r < p {
				pick = j
				break
			}
			r -= p
		}
		ret = append(ret, alphabet[pick])
	}
	return ret, nil
}

// checkDistribution returns the sum of dist, failing if any entry is
// negative or not finite or if the sum is not positive.
func checkDistribution(dist []float64) (float64, error) {
	if len(dist) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrDistribution)
	}
	for _, p := range dist {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return 0, fmt.Errorf("%w: entry %v", ErrDistribution, p)
		}
	}
	total := vek.Sum(dist)
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: probabilities sum to %v", ErrDistribution, total)
	}
	return total, nil
}

// normalize scales dist in place to sum to one.
func normalize(dist []float64) error {
	total, err := checkDistribution(dist)
	if err != nil {
		return err
	}
	vek.DivNumber_Inplace(dist, total)
	return nil
}

func indexOf(alphabet []int, event int) (int, error) {
	if i := slices.Index(alphabet, event); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownEvent, event)
}

// key turns a sequence of events into a map key.
func key(events []int) string {
	var b strings.Builder
	for i, e := range events {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(e))
	}
	return b.String()
}

// Uniform gives every event the same probability.
type Uniform struct {
	alphabet []int
}

func NewUniform(alphabet []int) *Uniform {
	return &Uniform{alphabet: slices.Clone(alphabet)}
}

func (u *Uniform) Alphabet() []int { return u.alphabet }

func (u *Uniform) Probability(history []int, event int) (float64, error) {
	if _, err := indexOf(u.alphabet, event); err != nil {
		return 0, err
	}
	return 1 / float64(len(u.alphabet)), nil
}

func (u *Uniform) Distribution(history []int) ([]float64, error) {
	if len(u.alphabet) == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrDistribution)
	}
	return vek.Repeat(1/float64(len(u.alphabet)), len(u.alphabet)), nil
}

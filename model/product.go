package model

import (
	"fmt"
	"slices"

	"github.com/viterin/vek"
)

// Product combines models over the same alphabet by multiplying their
// distributions elementwise and renormalizing.
type Product struct {
	models []Model
}

func NewProduct(models ...Model) (*Product, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: no models", ErrAlphabetMismatch)
	}
	a := models[0].Alphabet()
	for i, m := range models[1:] {
		if !slices.Equal(a, m.Alphabet()) {
			return nil, fmt.Errorf("%w: model %d differs from model 0", ErrAlphabetMismatch, i+1)
		}
	}
	return &Product{models: models}, nil
}

func (p *Product) Alphabet() []int { return p.models[0].Alphabet() }

func (p *Product) Distribution(history []int) ([]float64, error) {
	var ret []float64
	for i, m := range p.models {
		dist, err := m.Distribution(history)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", i, err)
		}
		if ret == nil {
			ret = slices.Clone(dist)
			continue
		}
		if len(dist) != len(ret) {
			return nil, fmt.Errorf("%w: model %d returned %d probabilities, expected %d", ErrDistribution, i, len(dist), len(ret))
		}
		vek.Mul_Inplace(ret, dist)
	}
	if err := normalize(ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (p *Product) Probability(history []int, event int) (float64, error) {
	i, err := indexOf(p.Alphabet(), event)
	if err != nil {
		return 0, err
	}
	dist, err := p.Distribution(history)
	if err != nil {
		return 0, err
	}
	return dist[i], nil
}

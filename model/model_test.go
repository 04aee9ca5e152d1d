package model_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/model"
)

// fixed returns the same distribution for every history and counts calls.
type fixed struct {
	alphabet []int
	dist     []float64
	calls    int
}

func (f *fixed) Alphabet() []int { return f.alphabet }

func (f *fixed) Probability(history []int, event int) (float64, error) {
	for i, e := range f.alphabet {
		if e == event {
			return f.dist[i], nil
		}
	}
	return 0, model.ErrUnknownEvent
}

func (f *fixed) Distribution(history []int) ([]float64, error) {
	f.calls++
	return append([]float64(nil), f.dist...), nil
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestMarkovBackoff(t *testing.T) {
	m := model.NewMarkov([]int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3)
	m.Train([]int{1, 2, 3})
	seen, err := m.Probability([]int{1, 2}, 3)
	require.NoError(t, err)
	unseen, err := m.Probability([]int{9, 9}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, seen, 1e-12)
	assert.InDelta(t, 2.0/12, unseen, 1e-12)
	assert.Greater(t, seen, unseen)
	_, err = m.Probability([]int{1}, 10)
	assert.ErrorIs(t, err, model.ErrUnknownEvent)
}

func TestMarkovDistribution(t *testing.T) {
	m := model.NewMarkov([]int{1, 2, 3}, 2)
	m.Train([]int{1, 2, 3, 1, 2, 3})
	dist, err := m.Distribution([]int{1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(dist), 1e-12)
	assert.InDeltaSlice(t, []float64{0.2, 0.6, 0.2}, dist, 1e-12)
}

func TestUntrainedMarkovIsUniform(t *testing.T) {
	m := model.NewMarkov([]int{1, 2, 3, 4}, 2)
	m.Prior = 0
	dist, err := m.Distribution(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, dist, 1e-12)
}

func TestGreedyBeam(t *testing.T) {
	m := model.NewMarkov([]int{1, 2, 3}, 2)
	m.Train([]int{1, 2, 3, 1, 2, 3})
	b := &model.Beam{Model: m, Width: 1}
	got, err := b.Sample([]int{1}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 1, 2}, got)
}

func TestJitteredBeam(t *testing.T) {
	m := model.NewMarkov([]int{1, 2, 3}, 2)
	m.Train([]int{1, 2, 3, 1, 3, 2})
	b := &model.Beam{Model: m, Width: 3, Jitter: 0.5, Rand: rand.New(rand.NewSource(1))}
	got, err := b.Sample(nil, 8)
	require.NoError(t, err)
	require.Len(t, got, 8)
	for _, e := range got {
		assert.Contains(t, []int{1, 2, 3}, e)
	}
}

func TestBeamErrors(t *testing.T) {
	_, err := (&model.Beam{Model: model.NewUniform([]int{1}), Width: 0}).Sample(nil, 1)
	assert.ErrorIs(t, err, model.ErrInvalidBeam)
	_, err = (&model.Beam{Model: model.NewUniform([]int{1}), Width: 1, Jitter: 1}).Sample(nil, 1)
	assert.ErrorIs(t, err, model.ErrInvalidBeam)
	zero := &fixed{alphabet: []int{1, 2}, dist: []float64{0, 0}}
	_, err = (&model.Beam{Model: zero, Width: 1}).Sample(nil, 1)
	assert.ErrorIs(t, err, model.ErrDistribution)
}

func TestSample(t *testing.T) {
	d, err := model.PitchRange(60, 60, 0)
	require.NoError(t, err)
	got, err := model.Sample(d, []int{48}, 5, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, []int{48, 60, 60, 60, 60, 60}, got)

	neg := &fixed{alphabet: []int{1, 2}, dist: []float64{-1, 2}}
	_, err = model.Sample(neg, nil, 1, rand.New(rand.NewSource(7)))
	assert.ErrorIs(t, err, model.ErrDistribution)
}

func TestProduct(t *testing.T) {
	a := &fixed{alphabet: []int{1, 2, 3}, dist: []float64{0.5, 0.25, 0.25}}
	b := &fixed{alphabet: []int{1, 2, 3}, dist: []float64{0, 0.5, 0.5}}
	p, err := model.NewProduct(a, b)
	require.NoError(t, err)
	dist, err := p.Distribution(nil)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0.5, 0.5}, dist, 1e-12)
	prob, err := p.Probability(nil, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, prob, 1e-12)

	_, err = model.NewProduct(model.NewUniform([]int{1, 2}), model.NewUniform([]int{1, 3}))
	assert.ErrorIs(t, err, model.ErrAlphabetMismatch)
	_, err = model.NewProduct()
	assert.ErrorIs(t, err, model.ErrAlphabetMismatch)

	disjoint := &fixed{alphabet: []int{1, 2, 3}, dist: []float64{1, 0, 0}}
	p, err = model.NewProduct(b, disjoint)
	require.NoError(t, err)
	_, err = p.Distribution(nil)
	assert.ErrorIs(t, err, model.ErrDistribution)
}

func TestPitchDistributions(t *testing.T) {
	r, err := model.PitchRange(60, 62, 0)
	require.NoError(t, err)
	p, err := r.Probability(nil, 61)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, p, 1e-12)
	p, err = r.Probability(nil, 59)
	require.NoError(t, err)
	assert.Zero(t, p)

	r, err = model.PitchRange(60, 62, 0.5)
	require.NoError(t, err)
	p, err = r.Probability(nil, 59)
	require.NoError(t, err)
	assert.InDelta(t, 0.5/128, p, 1e-12)
	dist, err := r.Distribution(nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum(dist), 1e-12)

	cMajor, err := treequence.NewTonicScale(0, treequence.Major)
	require.NoError(t, err)
	s, err := model.ScaleDistribution(cMajor, 0)
	require.NoError(t, err)
	c, _ := s.Probability(nil, 60)
	g, _ := s.Probability(nil, 67)
	cis, _ := s.Probability(nil, 61)
	assert.Greater(t, c, 0.0)
	assert.InDelta(t, c, g, 1e-12)
	assert.Zero(t, cis)

	_, err = model.NewPitchDistribution(make([]float64, 128), 0.1)
	assert.ErrorIs(t, err, model.ErrDistribution)
	_, err = model.NewPitchDistribution(make([]float64, 12), 0.1)
	assert.ErrorIs(t, err, model.ErrDistribution)
	_, err = model.PitchRange(60, 62, 2)
	assert.ErrorIs(t, err, model.ErrDistribution)
}

func TestFactorModel(t *testing.T) {
	m := model.NewFactorModel([]int{60, 61, 62}, model.Factor{Name: "step", Weight: 1, Func: model.StepFactor})
	dist, err := m.Distribution([]int{60})
	require.NoError(t, err)
	z := 1 + math.Exp(-1) + math.Exp(-2)
	assert.InDeltaSlice(t, []float64{1 / z, math.Exp(-1) / z, math.Exp(-2) / z}, dist, 1e-12)

	cMajor, err := treequence.NewTonicScale(0, treequence.Major)
	require.NoError(t, err)
	m.Factors = append(m.Factors, model.Factor{Name: "scale", Weight: 100, Func: model.ScaleFactor(cMajor)})
	p, err := m.Probability([]int{60}, 61)
	require.NoError(t, err)
	assert.Less(t, p, 1e-40)
	assert.Equal(t, -1.0, model.RepeatFactor([]int{60}, 60))
	assert.Zero(t, model.RepeatFactor(nil, 60))
}

func TestCacheEviction(t *testing.T) {
	f := &fixed{alphabet: []int{1, 2}, dist: []float64{0.5, 0.5}}
	c, err := model.NewCached(f, 2)
	require.NoError(t, err)
	for _, h := range [][]int{{1}, {1}, {2}, {1, 2}} {
		_, err := c.Distribution(h)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, 2, c.Len())
	// {1} was least recently used and has been evicted
	_, err = c.Distribution([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 4, f.calls)

	d, err := c.Distribution([]int{1})
	require.NoError(t, err)
	d[0] = 42
	again, err := c.Distribution([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, again[0])
	assert.Equal(t, 4, f.calls)
}

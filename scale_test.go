package treequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-lieck/MusicTreequence"
)

func TestTonicScaleDegrees(t *testing.T) {
	major, err := treequence.NewTonicScale(60, []int{11, 0, 4, 2, 5, 9, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 5, 7, 9, 11}, major.Intervals())
	assert.Equal(t, 0, major.DegreeOf(60))
	assert.Equal(t, 0, major.DegreeOf(72))
	assert.Equal(t, 2, major.DegreeOf(64))
	assert.Equal(t, 6, major.DegreeOf(59))
	// C# is equally far from C and D; the lower degree wins
	assert.Equal(t, 0, major.DegreeOf(61))
	assert.Equal(t, -1, major.Interval(-1))
	assert.Equal(t, 12, major.Interval(7))
	assert.Equal(t, -12, major.Interval(-7))
}

func TestDegreeOfOffScalePitches(t *testing.T) {
	major, err := treequence.NewTonicScale(60, treequence.Major)
	require.NoError(t, err)
	for _, tc := range []struct{ pitch, degree int }{
		{61, 0}, // C#: C and D are both one semitone away
		{63, 1}, // D#
		{66, 3}, // F#
		{70, 5}, // A#
		{49, 0}, // C# two octaves down
	} {
		assert.Equal(t, tc.degree, major.DegreeOf(tc.pitch), "pitch %d", tc.pitch)
	}
	// off-scale pitches keep their offset from the degree they snap to
	assert.Equal(t, 63, major.Transpose(61, 1))
	assert.Equal(t, 68, major.Transpose(66, 1))
}

func TestTonicScaleMembership(t *testing.T) {
	for _, tonic := range []int{0, 7, 61, 127} {
		s, err := treequence.NewTonicScale(tonic, treequence.NaturalMinor)
		require.NoError(t, err)
		assert.True(t, s.IsInScale(tonic))
		assert.True(t, s.IsInScale(tonic+12))
		assert.False(t, s.IsInScale(tonic+1))
	}
}

func TestTonicScaleTranspose(t *testing.T) {
	major, err := treequence.NewTonicScale(60, treequence.Major)
	require.NoError(t, err)
	assert.Equal(t, 64, major.Transpose(60, 2))
	assert.Equal(t, 72, major.Transpose(71, 1))
	assert.Equal(t, 59, major.Transpose(60, -1))
	assert.Equal(t, 63, major.Transpose(61, 1))
}

func TestInvalidScale(t *testing.T) {
	_, err := treequence.NewTonicScale(60, []int{0, 12})
	assert.ErrorIs(t, err, treequence.ErrInvalidScale)
	_, err = treequence.NewTonicScale(60, nil)
	assert.ErrorIs(t, err, treequence.ErrInvalidScale)
	_, err = treequence.ScaleFromPitches()
	assert.ErrorIs(t, err, treequence.ErrInvalidScale)
}

func TestScaleFromPitches(t *testing.T) {
	s, err := treequence.ScaleFromPitches("c", "d", "eb", "f", "g", "ab", "bb")
	require.NoError(t, err)
	assert.Equal(t, 48, s.Tonic())
	assert.Equal(t, treequence.NaturalMinor, s.Intervals())
}

func TestParseScale(t *testing.T) {
	s, err := treequence.ParseScale("d harmonic_minor")
	require.NoError(t, err)
	assert.Equal(t, 50, s.Tonic())
	assert.Equal(t, treequence.HarmonicMinor, s.Intervals())

	s, err = treequence.ParseScale("c'")
	require.NoError(t, err)
	assert.Equal(t, treequence.Major, s.Intervals())

	for _, text := range []string{"", "c major extra", "c dorian"} {
		_, err := treequence.ParseScale(text)
		assert.ErrorIs(t, err, treequence.ErrInvalidScale, text)
	}
	_, err = treequence.ParseScale("h major")
	assert.ErrorIs(t, err, treequence.ErrUnknownPitchName)
}

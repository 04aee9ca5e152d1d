package treequence_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-lieck/MusicTreequence"
)

func TestNameToMIDI(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"c'", 60},
		{"c1", 60},
		{"60", 60},
		{"c", 48},
		{"C", 36},
		{"C0", 36},
		{",C", 24},
		{"C1", 24},
		{",,,C", 0},
		{"C3", 0},
		{",,,,B#", 0},
		{"B#4", 0},
		{"cb", 47},
		{"B#", 48},
		{"bb", 58},
		{"Bb", 46},
		{"cb'", 59},
		{"e#'", 65},
		{"a'", 69},
		{"g''''''", 127},
		{"g6", 127},
		{"c#''", 73},
		{"c’", 60},
		{"f♯'", 66},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := treequence.NameToMIDI(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNameToMIDIPassthroughIsStable(t *testing.T) {
	for _, name := range []string{"c", "C", ",,,C", "g''''''", "db'", "F#2"} {
		p, err := treequence.NameToMIDI(name)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, treequence.MinPitch)
		assert.LessOrEqual(t, p, treequence.MaxPitch)
		again, err := treequence.NameToMIDI(strconv.Itoa(p))
		require.NoError(t, err)
		assert.Equal(t, p, again)
	}
}

func TestNameToMIDIUnknown(t *testing.T) {
	for _, name := range []string{"h", "", "c,", "C'", ",c", "g#''''''", "c##", "x1"} {
		_, err := treequence.NameToMIDI(name)
		assert.ErrorIs(t, err, treequence.ErrUnknownPitchName, "name %q", name)
	}
}

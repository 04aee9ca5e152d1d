package treequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-lieck/MusicTreequence"
)

func TestClockParse(t *testing.T) {
	c := treequence.NewClock()
	require.NoError(t, c.SetBeat("0.5"))
	tests := []struct {
		in   treequence.Duration
		want float64
	}{
		{"1.5sec", 1.5},
		{"250ms", 0.25},
		{"2b", 1},
		{"1/4", 0.5},
		{"1/8", 0.25},
		{"3/4", 1.5},
		{"0.75", 0.75},
		{treequence.Seconds(0.125), 0.125},
		{treequence.Beats(3), 1.5},
	}
	for _, tt := range tests {
		got, err := c.Parse(tt.in)
		require.NoError(t, err, "duration %q", tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "duration %q", tt.in)
	}
}

func TestClockBPM(t *testing.T) {
	c := treequence.NewClock()
	require.NoError(t, c.SetBeat("120bpm"))
	assert.InDelta(t, 0.5, c.Beat(), 1e-12)
	got, err := c.Parse("1/4")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)
}

func TestClockRejectsBadInput(t *testing.T) {
	c := treequence.NewClock()
	for _, v := range []string{"0bpm", "-1", "fastbpm", "0"} {
		assert.ErrorIs(t, c.SetBeat(v), treequence.ErrInvalidTempo, "beat %q", v)
	}
	assert.InDelta(t, treequence.DefaultBeat, c.Beat(), 1e-12)
	for _, d := range []treequence.Duration{"", "abc", "1/0", "xsec"} {
		_, err := c.Parse(d)
		assert.ErrorIs(t, err, treequence.ErrInvalidDuration, "duration %q", d)
	}
}

package treequence

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Duration is a symbolic length that is only turned into seconds when a
// session renders it, so tempo changes affect everything rendered after them.
// Recognized forms:
//
//	"1.5sec"  seconds
//	"250ms"   milliseconds
//	"2b"      beats
//	"1/8"     fraction of a whole note; "1/4" is one beat
//	"0.5"     seconds
type Duration string

// Seconds returns a Duration of v seconds.
func Seconds(v float64) Duration {
	return Duration(strconv.FormatFloat(v, 'g', -1, 64) + "sec")
}

// Beats returns a Duration of v beats.
func Beats(v float64) Duration {
	return Duration(strconv.FormatFloat(v, 'g', -1, 64) + "b")
}

// DefaultBeat is the beat length, in seconds, of a fresh clock.
const DefaultBeat = 1.0

// Clock holds the current beat length in seconds.
type Clock struct {
	beat float64
}

func NewClock() Clock {
	return Clock{beat: DefaultBeat}
}

// Beat returns the beat length in seconds.
func (c *Clock) Beat() float64 {
	if c.beat == 0 {
		return DefaultBeat
	}
	return c.beat
}

// BPM returns the tempo in beats per minute.
func (c *Clock) BPM() float64 {
	return 60 / c.Beat()
}

// SetBeat accepts "120bpm" or a beat length in seconds.
func (c *Clock) SetBeat(value string) error {
	value = strings.TrimSpace(value)
	var beat float64
	if bpm, ok := strings.CutSuffix(value, "bpm"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(bpm), 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTempo, value)
		}
		beat = 60 / v
	} else {
		v, err := c.Parse(Duration(value))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTempo, value)
		}
		beat = v
	}
	return c.SetBeatSeconds(beat)
}

func (c *Clock) SetBeatSeconds(beat float64) error {
	if !(beat > 0) || math.IsInf(beat, 0) {
		return fmt.Errorf("%w: beat length %v", ErrInvalidTempo, beat)
	}
	c.beat = beat
	return nil
}

// Parse converts d into seconds using the current beat length.
func (c *Clock) Parse(d Duration) (float64, error) {
	text := strings.TrimSpace(string(d))
	num := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, d)
		}
		return v, nil
	}
	switch {
	case text == "":
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	case strings.HasSuffix(text, "sec"):
		return num(text[:len(text)-3])
	case strings.HasSuffix(text, "ms"):
		v, err := num(text[:len(text)-2])
		return v / 1000, err
	case strings.HasSuffix(text, "b"):
		v, err := num(text[:len(text)-1])
		return v * c.Beat(), err
	case strings.Contains(text, "/"):
		n, m, _ := strings.Cut(text, "/")
		nv, err := num(n)
		if err != nil {
			return 0, err
		}
		mv, err := num(m)
		if err != nil {
			return 0, err
		}
		if mv == 0 {
			return 0, fmt.Errorf("%w: zero denominator in %q", ErrInvalidDuration, d)
		}
		return 4 * nv / mv * c.Beat(), nil
	default:
		return num(text)
	}
}

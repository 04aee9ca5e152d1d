package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robert-lieck/MusicTreequence"
)

// Range of pitches tinynotation can spell.
const (
	TinyMinPitch = 24
	TinyMaxPitch = 71
)

var tinyNames = [12]string{"c", "c#", "d", "d#", "e", "f", "f#", "g", "g#", "a", "a#", "b"}

// TinyPitch spells a MIDI pitch: CC..BB, C..B, c..b and cc..bb for the four
// octaves starting at pitch 24.
func TinyPitch(pitch int) (string, error) {
	if pitch < TinyMinPitch || pitch > TinyMaxPitch {
		return "", fmt.Errorf("%w: %d outside tinynotation range %d..%d", treequence.ErrPitchOutOfRange, pitch, TinyMinPitch, TinyMaxPitch)
	}
	name := tinyNames[pitch%12]
	letter, accidental := name[:1], name[1:]
	switch (pitch - TinyMinPitch) / 12 {
	case 0:
		letter = strings.Repeat(strings.ToUpper(letter), 2)
	case 1:
		letter = strings.ToUpper(letter)
	case 3:
		letter = strings.Repeat(letter, 2)
	}
	return letter + accidental, nil
}

// TinyDuration spells a length in seconds as a note type, 4 being one beat.
// Only power-of-two types from 1 to 128, optionally dotted, are accepted.
func TinyDuration(seconds, beat float64) (string, error) {
	if t, ok := powerOfTwo(4 * beat / seconds); ok {
		return strconv.Itoa(t), nil
	}
	if t, ok := powerOfTwo(6 * beat / seconds); ok && t > 1 {
		return strconv.Itoa(t) + ".", nil
	}
	return "", fmt.Errorf("%w: %v sec is no note value at beat %v sec", ErrUnrepresentable, seconds, beat)
}

func powerOfTwo(x float64) (int, bool) {
	r := math.Round(x)
	if math.Abs(x-r) > 1e-6 || r < 1 || r > 128 {
		return 0, false
	}
	n := int(r)
	return n, n&(n-1) == 0
}

// Tiny writes p as a single tinynotation line. Tones starting together form
// a chord that lasts until the next wait has passed; further waits become
// rests. Samples have no spelling and endless loops cannot be written out.
func Tiny(p *treequence.Program) (string, error) {
	events, _, err := schedule(p)
	if err != nil {
		return "", err
	}
	var tokens []string
	var chord []int
	var chordLen float64
	beat := p.Beat
	note := func(seconds float64) error {
		d, err := TinyDuration(seconds, beat)
		if err != nil {
			return err
		}
		if len(chord) == 0 {
			tokens = append(tokens, "r"+d)
			return nil
		}
		names := make([]string, len(chord))
		for i, pitch := range chord {
			n, err := TinyPitch(pitch)
			if err != nil {
				return err
			}
			names[i] = n + d
		}
		if len(names) == 1 {
			tokens = append(tokens, names[0])
		} else {
			tokens = append(tokens, "chord{"+strings.Join(names, " ")+"}")
		}
		chord = chord[:0]
		return nil
	}
	for _, e := range events {
		switch e.Op {
		case treequence.OpSample:
			return "", fmt.Errorf("%w: sample %q", ErrUnrepresentable, e.Sample)
		case treequence.OpTempo:
			if len(chord) > 0 {
				if err := note(chordLen); err != nil {
					return "", err
				}
			}
			beat = e.BeatLength
		case treequence.OpTone:
			if len(chord) == 0 {
				chordLen = 0
			}
			chord = append(chord, e.Pitches...)
			chordLen = max(chordLen, e.Duration)
		case treequence.OpWait:
			if err := note(e.Duration); err != nil {
				return "", err
			}
		}
	}
	if len(chord) > 0 {
		if err := note(chordLen); err != nil {
			return "", err
		}
	}
	return strings.Join(tokens, " "), nil
}

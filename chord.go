package treequence

import (
	"fmt"
	"math"
	"slices"
)

// StaccatoLength is the sounding length, in seconds, of a staccato note.
const StaccatoLength = 0.1

// Chord is a set of pitches sounding together: a root pitch plus sorted
// semitone offsets. A Tone is a Chord with the single offset 0.
type Chord struct {
	Pitch   int
	Offsets []int
	// Duration is how long the chord sounds. Empty means it sounds for the
	// whole Length; longer than Length is cut to Length.
	Duration Duration
	// Length is the extent of the chord on the timeline. Empty means
	// Duration.
	Length    Duration
	Amplitude float64
	// Tie merges the chord with an identical chord directly following it in
	// a sequence.
	Tie      bool
	Staccato bool
	Synth    string
	Shift    Transposition

	held float64 // extent accumulated from tied predecessors
}

// NewChord returns a chord at full amplitude.
func NewChord(pitch int, offsets []int, d Duration) *Chord {
	offsets = slices.Clone(offsets)
	slices.Sort(offsets)
	offsets = slices.Compact(offsets)
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	return &Chord{Pitch: pitch, Offsets: offsets, Duration: d, Amplitude: 1}
}

// NewTone returns a single-pitch chord at full amplitude.
func NewTone(pitch int, d Duration) *Chord {
	return NewChord(pitch, nil, d)
}

// ParseTone is NewTone with a pitch name.
func ParseTone(name string, d Duration) (*Chord, error) {
	p, err := NameToMIDI(name)
	if err != nil {
		return nil, err
	}
	return NewTone(p, d), nil
}

func (c *Chord) length() Duration {
	if c.Length != "" {
		return c.Length
	}
	return c.Duration
}

func (c *Chord) Extent(s *Session) (float64, error) {
	if c.length() == "" {
		return 0, fmt.Errorf("%w: chord without duration", ErrUndefinedExtent)
	}
	v, err := s.Seconds(c.length())
	if err != nil {
		return 0, err
	}
	return v + c.held, nil
}

// Sounding returns the length of the sound itself. It never exceeds the
// extent of the chord.
func (c *Chord) Sounding(s *Session) (float64, error) {
	d := c.Duration
	if d == "" {
		d = c.Length
	}
	if d == "" {
		return 0, fmt.Errorf("%w: chord without duration", ErrUndefinedExtent)
	}
	v, err := s.Seconds(d)
	if err != nil {
		return 0, err
	}
	v += c.held
	extent, err := c.Extent(s)
	if err != nil {
		return 0, err
	}
	v = math.Min(v, extent)
	if c.Staccato {
		v = math.Min(v, StaccatoLength)
	}
	return v, nil
}

// Pitches returns the concrete pitches under the session's current
// transposition stack.
func (c *Chord) Pitches(s *Session) ([]int, error) {
	root := s.concrete(c.Pitch, c.Shift)
	ret := make([]int, len(c.Offsets))
	for i, o := range c.Offsets {
		ret[i] = root + o
		if err := checkPitch(ret[i]); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (c *Chord) Atomic() bool { return true }

func (c *Chord) Transposable() bool { return true }

func (c *Chord) Write(s *Session, out Sink) error {
	pitches, err := c.Pitches(s)
	if err != nil {
		return err
	}
	d, err := c.Sounding(s)
	if err != nil {
		return err
	}
	out.Emit(Instruction{Op: OpTone, Pitches: pitches, Duration: d, Amplitude: c.Amplitude, Synth: c.Synth})
	return nil
}

func (c *Chord) Clone() Event {
	ret := *c
	ret.Offsets = slices.Clone(c.Offsets)
	return &ret
}

func (c *Chord) withSpan(d Duration, weight float64) Event {
	ret := c.Clone().(*Chord)
	ret.Duration, ret.Length = d, d
	ret.Amplitude *= weight
	return ret
}

// mergesWith reports whether c is tied into next, comparing concrete
// pitches so that differently spelled but identical chords merge too.
func (c *Chord) mergesWith(s *Session, next Event) bool {
	if !c.Tie {
		return false
	}
	n, ok := next.(*Chord)
	if !ok {
		return false
	}
	a, err := c.Pitches(s)
	if err != nil {
		return false
	}
	b, err := n.Pitches(s)
	if err != nil {
		return false
	}
	return slices.Equal(a, b)
}

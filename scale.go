package treequence

import (
	"fmt"
	"sort"
	"strings"
)

// TonicScale is a set of semitone intervals within one octave, anchored at a
// tonic pitch. It is immutable once constructed.
type TonicScale struct {
	tonic     int
	intervals []int
}

// Chromatic is the twelve-tone scale. Transposing through it is a plain
// semitone shift.
var Chromatic = &TonicScale{intervals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}}

// Common interval sets.
var (
	Major         = []int{0, 2, 4, 5, 7, 9, 11}
	NaturalMinor  = []int{0, 2, 3, 5, 7, 8, 10}
	HarmonicMinor = []int{0, 2, 3, 5, 7, 8, 11}
	Pentatonic    = []int{0, 2, 4, 7, 9}
)

// ScaleKinds are the interval sets ParseScale knows by name.
var ScaleKinds = map[string][]int{
	"major":          Major,
	"minor":          NaturalMinor,
	"natural_minor":  NaturalMinor,
	"harmonic_minor": HarmonicMinor,
	"pentatonic":     Pentatonic,
	"chromatic":      Chromatic.intervals,
}

// ParseScale reads a tonic pitch name followed by an optional kind from
// ScaleKinds, e.g. "d harmonic_minor". The kind defaults to major.
func ParseScale(text string) (*TonicScale, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("%w: %q is not \"<tonic> [kind]\"", ErrInvalidScale, text)
	}
	tonic, err := NameToMIDI(fields[0])
	if err != nil {
		return nil, err
	}
	kind := "major"
	if len(fields) == 2 {
		kind = strings.ToLower(fields[1])
	}
	intervals, ok := ScaleKinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scale kind %q", ErrInvalidScale, kind)
	}
	return NewTonicScale(tonic, intervals)
}

// NewTonicScale sorts and de-duplicates the intervals. Intervals must lie in
// [0,11] and at least one is required.
func NewTonicScale(tonic int, intervals []int) (*TonicScale, error) {
	seen := [12]bool{}
	for _, i := range intervals {
		if i < 0 || i > 11 {
			return nil, fmt.Errorf("%w: interval %d outside [0,11]", ErrInvalidScale, i)
		}
		seen[i] = true
	}
	ret := &TonicScale{tonic: tonic}
	for i, ok := range seen {
		if ok {
			ret.intervals = append(ret.intervals, i)
		}
	}
	if len(ret.intervals) == 0 {
		return nil, fmt.Errorf("%w: no intervals", ErrInvalidScale)
	}
	return ret, nil
}

// ScaleFromPitches builds a scale from pitch names, using the lowest pitch as
// the tonic and the pitch classes relative to it as intervals.
func ScaleFromPitches(names ...string) (*TonicScale, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no pitches", ErrInvalidScale)
	}
	pitches := make([]int, len(names))
	for i, n := range names {
		p, err := NameToMIDI(n)
		if err != nil {
			return nil, err
		}
		pitches[i] = p
	}
	sort.Ints(pitches)
	intervals := make([]int, len(pitches))
	for i, p := range pitches {
		intervals[i] = mod(p-pitches[0], 12)
	}
	return NewTonicScale(pitches[0], intervals)
}

// WithTonic returns a copy of the scale anchored at another tonic.
func (s *TonicScale) WithTonic(tonic int) *TonicScale {
	return &TonicScale{tonic: tonic, intervals: s.intervals}
}

func (s *TonicScale) Tonic() int { return s.tonic }

func (s *TonicScale) Len() int { return len(s.intervals) }

// Intervals returns a copy of the interval set.
func (s *TonicScale) Intervals() []int {
	return append([]int(nil), s.intervals...)
}

// Interval returns the semitone distance of the given degree from the tonic.
// Degrees outside [0,Len) wrap around with an octave offset, so degree -1 of
// a major scale is -1 and degree 7 is 12.
func (s *TonicScale) Interval(degree int) int {
	n := len(s.intervals)
	octave := degree / n
	if degree%n < 0 {
		octave--
	}
	return s.intervals[mod(degree, n)] + 12*octave
}

// DegreeOf returns the degree whose pitch class is closest to pitch. Ties are
// resolved in favour of the lowest degree. Distance is measured both ways
// round the octave, so an off-scale pitch snaps to the nearest degree below
// or above it rather than always to the next degree up: C# in C major is
// degree 0, not 1.
func (s *TonicScale) DegreeOf(pitch int) int {
	best, bestDist := 0, 13
	for d, i := range s.intervals {
		dist := mod(i+s.tonic-pitch, 12)
		if 12-dist < dist {
			dist = 12 - dist
		}
		if dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// IsInScale reports whether pitch belongs to the scale in any octave.
func (s *TonicScale) IsInScale(pitch int) bool {
	return mod(s.intervals[s.DegreeOf(pitch)]+s.tonic-pitch, 12) == 0
}

// Transpose moves pitch by steps scale degrees. Pitches that are not in the
// scale keep their offset from the nearest degree.
func (s *TonicScale) Transpose(pitch, steps int) int {
	if steps == 0 {
		return pitch
	}
	d := s.DegreeOf(pitch)
	return pitch - s.Interval(d) + s.Interval(d+steps)
}

func mod(a, n int) int {
	return (a%n + n) % n
}

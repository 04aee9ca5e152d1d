package treequence

import (
	"fmt"
	"math"
)

// Division is one node of a measure's rhythmic tree: either a leaf event or
// a list of equally long parts.
type Division struct {
	Event Event
	Parts []Division
}

// On makes a leaf division.
func On(e Event) Division { return Division{Event: e} }

// Split makes a division out of equally long parts.
func Split(parts ...Division) Division { return Division{Parts: parts} }

// DefaultEmphasis weights a position by how deeply it is nested below the
// downbeat: 1 on the downbeat, fading towards 0.05.
func DefaultEmphasis(depth int) float64 {
	return 0.05 + 0.95*math.Exp(-float64(depth)/3)
}

// Measure divides its length evenly among its parts, recursively. Every leaf
// gets its share of the length and an amplitude weight from Emphasis, based
// on the nesting level at which the leaf's onset first appears.
type Measure struct {
	Length   Duration
	Parts    []Division
	Emphasis func(depth int) float64
}

// spanner is implemented by atomic events a measure can place.
type spanner interface {
	withSpan(d Duration, weight float64) Event
}

func NewMeasure(length Duration, parts ...Division) (*Measure, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no parts", ErrInvalidMeasure)
	}
	if err := checkDivisions(parts); err != nil {
		return nil, err
	}
	return &Measure{Length: length, Parts: parts, Emphasis: DefaultEmphasis}, nil
}

func checkDivisions(parts []Division) error {
	for _, p := range parts {
		switch {
		case p.Event != nil && len(p.Parts) > 0:
			return fmt.Errorf("%w: division with both an event and parts", ErrInvalidMeasure)
		case p.Event != nil:
			if _, ok := p.Event.(spanner); !ok {
				return fmt.Errorf("%w: %T cannot be placed in a measure", ErrInvalidMeasure, p.Event)
			}
		case len(p.Parts) == 0:
			return fmt.Errorf("%w: empty division", ErrInvalidMeasure)
		default:
			if err := checkDivisions(p.Parts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Measure) Extent(s *Session) (float64, error) {
	return s.Seconds(m.Length)
}

// Sequence lays the measure out with the session's current clock.
func (m *Measure) Sequence(s *Session) (*Sequence, error) {
	total, err := s.Seconds(m.Length)
	if err != nil {
		return nil, err
	}
	emphasis := m.Emphasis
	if emphasis == nil {
		emphasis = DefaultEmphasis
	}
	var events []Event
	var layout func(parts []Division, span float64, level, depth int)
	layout = func(parts []Division, span float64, level, depth int) {
		share := span / float64(len(parts))
		for i, p := range parts {
			d := depth
			if i > 0 {
				d = level + 1
			}
			if p.Event != nil {
				events = append(events, p.Event.(spanner).withSpan(Seconds(share), emphasis(d)))
			} else {
				layout(p.Parts, share, level+1, d)
			}
		}
	}
	layout(m.Parts, total, 0, 0)
	return &Sequence{Events: events}, nil
}

func (m *Measure) Atomic() bool { return false }

func (m *Measure) Transposable() bool { return divisionsTransposable(m.Parts) }

func divisionsTransposable(parts []Division) bool {
	for _, p := range parts {
		if p.Event != nil && !p.Event.Transposable() {
			return false
		}
		if !divisionsTransposable(p.Parts) {
			return false
		}
	}
	return true
}

func (m *Measure) Write(s *Session, out Sink) error {
	seq, err := m.Sequence(s)
	if err != nil {
		return err
	}
	return seq.Write(s, out)
}

func (m *Measure) Clone() Event {
	return &Measure{Length: m.Length, Parts: cloneDivisions(m.Parts), Emphasis: m.Emphasis}
}

func cloneDivisions(parts []Division) []Division {
	ret := make([]Division, len(parts))
	for i, p := range parts {
		if p.Event != nil {
			ret[i].Event = p.Event.Clone()
		}
		if p.Parts != nil {
			ret[i].Parts = cloneDivisions(p.Parts)
		}
	}
	return ret
}

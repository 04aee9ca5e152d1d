package treequence

import "fmt"

// Transposed shifts every pitch below it by a number of scale degrees.
type Transposed struct {
	Event Event
	Shift Transposition
}

// NewTransposed wraps e, which must be transposable. A nil scale transposes
// chromatically.
func NewTransposed(e Event, steps int, scale *TonicScale) (*Transposed, error) {
	if !e.Transposable() {
		return nil, fmt.Errorf("%w: %T", ErrUnknownTransposeTarget, e)
	}
	return &Transposed{Event: e.Clone(), Shift: Transposition{Steps: steps, Scale: scale}}, nil
}

func (t *Transposed) Extent(s *Session) (float64, error) {
	return t.Event.Extent(s)
}

func (t *Transposed) Atomic() bool { return false }

func (t *Transposed) Transposable() bool { return t.Event.Transposable() }

func (t *Transposed) Write(s *Session, out Sink) error {
	if !t.Event.Transposable() {
		return fmt.Errorf("%w: %T", ErrUnknownTransposeTarget, t.Event)
	}
	return s.within(t.Shift, func() error { return play(s, out, t.Event) })
}

func (t *Transposed) Clone() Event {
	return &Transposed{Event: t.Event.Clone(), Shift: t.Shift}
}

package treequence

import "fmt"

// Event is a node of the event tree.
type Event interface {
	// Extent is the length of the timeline the event occupies, in seconds.
	Extent(s *Session) (float64, error)
	// Atomic events are leaves: they emit at most one sound and leave the
	// timing to their container. Non-atomic events time themselves.
	Atomic() bool
	// Transposable events can be wrapped in Transposed.
	Transposable() bool
	Write(s *Session, out Sink) error
	// Clone returns a deep copy.
	Clone() Event
}

// Transposition shifts pitches by Steps degrees of Scale. A nil Scale means
// Chromatic.
type Transposition struct {
	Steps int
	Scale *TonicScale
}

func (t Transposition) apply(pitch int) int {
	if t.Steps == 0 {
		return pitch
	}
	scale := t.Scale
	if scale == nil {
		scale = Chromatic
	}
	return scale.Transpose(pitch, t.Steps)
}

// play writes e and, for atomic events, the wait that moves the playhead past
// it.
func play(s *Session, out Sink, e Event) error {
	if err := e.Write(s, out); err != nil {
		return err
	}
	if !e.Atomic() {
		return nil
	}
	extent, err := e.Extent(s)
	if err != nil {
		return err
	}
	wait(out, extent)
	return nil
}

// allTransposable reports whether every event can be transposed. A container
// is only transposable if nothing below it replays pre-rendered material.
func allTransposable(events []Event) bool {
	for _, e := range events {
		if !e.Transposable() {
			return false
		}
	}
	return true
}

// extentAlong returns the extent of e with tempo changes inside e applied to
// the session clock in render order. The clock is left as e would leave it.
func extentAlong(s *Session, e Event) (float64, error) {
	switch v := e.(type) {
	case *Tempo:
		return 0, v.apply(s)
	case *Sequence:
		total := 0.0
		for _, child := range v.Events {
			d, err := extentAlong(s, child)
			if err != nil {
				return 0, err
			}
			total += d
		}
		return total, nil
	case *Transposed:
		return extentAlong(s, v.Event)
	}
	return e.Extent(s)
}

// CloneAll deep-copies a list of events.
func CloneAll(events []Event) []Event {
	ret := make([]Event, len(events))
	for i, e := range events {
		ret[i] = e.Clone()
	}
	return ret
}

func checkPitch(p int) error {
	if p < MinPitch || p > MaxPitch {
		return fmt.Errorf("%w: %d", ErrPitchOutOfRange, p)
	}
	return nil
}

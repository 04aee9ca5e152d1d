package treequence

import "fmt"

// Loop repeats an event. The event is memoized as a symbol named after the
// loop, and the loop name is registered with the session. With Repeat == 0
// the loop runs for as long as the target engine keeps it active, and its
// extent is undefined.
type Loop struct {
	Event  Event
	Name   string
	Repeat int
	Shift  Transposition
}

func NewLoop(e Event, name string, repeat int) *Loop {
	return &Loop{Event: e.Clone(), Name: name, Repeat: repeat}
}

func (l *Loop) Extent(s *Session) (float64, error) {
	if l.Repeat <= 0 {
		return 0, fmt.Errorf("%w: loop %q repeats indefinitely", ErrUndefinedExtent, l.Name)
	}
	v, err := l.Event.Extent(s)
	if err != nil {
		return 0, err
	}
	return float64(l.Repeat) * v, nil
}

func (l *Loop) Atomic() bool { return false }

func (l *Loop) Transposable() bool { return false }

func (l *Loop) Write(s *Session, out Sink) error {
	if s.LoopRegistered(l.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateLoopName, l.Name)
	}
	var def *Definition
	err := s.within(l.Shift, func() error {
		var err error
		def, err = s.Define(l.Name, l.Event)
		return err
	})
	if err != nil {
		return err
	}
	s.registerLoop(l.Name)
	out.Emit(Instruction{Op: OpRepeat, Symbol: l.Name, ID: def.ID, Times: max(l.Repeat, 0)})
	return nil
}

func (l *Loop) Clone() Event {
	return &Loop{Event: l.Event.Clone(), Name: l.Name, Repeat: l.Repeat, Shift: l.Shift}
}

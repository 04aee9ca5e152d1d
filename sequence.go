package treequence

// Sequence plays its events one after another.
type Sequence struct {
	Events []Event
}

// NewSequence returns a sequence of deep copies of events, so that a sub-tree
// can be reused in several places without aliasing.
func NewSequence(events ...Event) *Sequence {
	return Compose(events, true)
}

// Compose builds a sequence, copying the events only if deepCopy is set.
func Compose(events []Event, deepCopy bool) *Sequence {
	if deepCopy {
		return &Sequence{Events: CloneAll(events)}
	}
	return &Sequence{Events: append([]Event(nil), events...)}
}

// Concat joins lists of events into one list.
func Concat(groups ...[]Event) []Event {
	var ret []Event
	for _, g := range groups {
		ret = append(ret, g...)
	}
	return ret
}

// Extent sums the extents of the events. Tempo changes inside the sequence
// count for the events after them.
func (q *Sequence) Extent(s *Session) (float64, error) {
	saved := s.clock
	defer func() { s.clock = saved }()
	return extentAlong(s, q)
}

func (q *Sequence) Atomic() bool { return false }

func (q *Sequence) Transposable() bool { return allTransposable(q.Events) }

func (q *Sequence) Write(s *Session, out Sink) error {
	events, err := q.merged(s)
	if err != nil {
		return err
	}
	for _, e := range events {
		if err := play(s, out, e); err != nil {
			return err
		}
	}
	return nil
}

func (q *Sequence) Clone() Event {
	return &Sequence{Events: CloneAll(q.Events)}
}

// merged resolves ties: a tied chord followed by an identical chord is
// dropped and its extent is carried over to the chord it is tied into. The
// sequence itself is left untouched.
func (q *Sequence) merged(s *Session) ([]Event, error) {
	ret := make([]Event, 0, len(q.Events))
	tie := 0.0
	for i, e := range q.Events {
		if c, ok := e.(*Chord); ok && i+1 < len(q.Events) && c.mergesWith(s, q.Events[i+1]) {
			v, err := c.Extent(s)
			if err != nil {
				return nil, err
			}
			tie += v
			continue
		}
		if tie > 0 {
			c := e.(*Chord).Clone().(*Chord)
			c.held += tie
			e = c
			tie = 0
		}
		ret = append(ret, e)
	}
	return ret, nil
}

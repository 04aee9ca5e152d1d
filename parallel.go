package treequence

import (
	"fmt"
	"sort"
)

// Parallel plays its events simultaneously.
type Parallel struct {
	Events []Event
}

// NewParallel returns a parallel block of deep copies of events.
func NewParallel(events ...Event) *Parallel {
	return &Parallel{Events: CloneAll(events)}
}

func (p *Parallel) Extent(s *Session) (float64, error) {
	longest := 0.0
	for _, e := range p.Events {
		v, err := e.Extent(s)
		if err != nil {
			return 0, err
		}
		longest = max(longest, v)
	}
	return longest, nil
}

func (p *Parallel) Atomic() bool { return false }

func (p *Parallel) Transposable() bool { return allTransposable(p.Events) }

// placed is an atomic event with its absolute position in the block and the
// transposition stack that was active above it.
type placed struct {
	event         Event
	onset, offset float64
	stack         []Transposition
}

// Write replays every leaf of the block in onset order, with waits closing
// the gaps between onsets and a final wait up to the latest offset.
func (p *Parallel) Write(s *Session, out Sink) error {
	var leaves []placed
	if err := flatten(s, p, 0, &leaves); err != nil {
		return err
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].onset < leaves[j].onset })
	playhead, end := 0.0, 0.0
	for _, l := range leaves {
		if l.onset > playhead {
			wait(out, l.onset-playhead)
			playhead = l.onset
		}
		end = max(end, l.offset)
		if err := s.withStack(l.stack, func() error { return l.event.Write(s, out) }); err != nil {
			return err
		}
	}
	wait(out, end-playhead)
	return nil
}

func (p *Parallel) Clone() Event {
	return &Parallel{Events: CloneAll(p.Events)}
}

func flatten(s *Session, e Event, onset float64, into *[]placed) error {
	switch v := e.(type) {
	case *Sequence:
		events, err := v.merged(s)
		if err != nil {
			return err
		}
		t := onset
		for _, child := range events {
			if err := flatten(s, child, t, into); err != nil {
				return err
			}
			extent, err := child.Extent(s)
			if err != nil {
				return err
			}
			t += extent
		}
		return nil
	case *Measure:
		seq, err := v.Sequence(s)
		if err != nil {
			return err
		}
		return flatten(s, seq, onset, into)
	case *Parallel:
		for _, child := range v.Events {
			if err := flatten(s, child, onset, into); err != nil {
				return err
			}
		}
		return nil
	case *Transposed:
		return s.within(v.Shift, func() error { return flatten(s, v.Event, onset, into) })
	case *Tempo:
		// voices would disagree on where the change happens
		return fmt.Errorf("%w: tempo change inside a parallel block", ErrNonFlattenable)
	}
	if !e.Atomic() {
		return fmt.Errorf("%w: %T", ErrNonFlattenable, e)
	}
	extent, err := e.Extent(s)
	if err != nil {
		return err
	}
	*into = append(*into, placed{event: e, onset: onset, offset: onset + extent, stack: s.snapshot()})
	return nil
}

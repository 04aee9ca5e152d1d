package treequence

import (
	"fmt"
	"math/rand"
)

// Session carries all state a render needs: the clock, the symbol table, the
// loop registry and the transposition stack of the traversal in progress.
//
// A Session renders one piece at a time and must not be shared between
// goroutines. Call Reset, or use a fresh Session, for an independent render.
type Session struct {
	clock     Clock
	startBeat float64
	symbols   map[string]*Definition
	defined   []*Definition
	loops     map[string]bool
	loopOrder []string
	stack     []Transposition
	main      Buffer
	rand      *rand.Rand
}

// NewSession returns an empty session. The seed drives the generated
// reference ids of symbols.
func NewSession(seed int64) *Session {
	s := &Session{rand: rand.New(rand.NewSource(seed))}
	s.Reset()
	return s
}

// Reset empties the symbol table, loop registry and output, and restores the
// default beat.
func (s *Session) Reset() {
	s.clock = NewClock()
	s.startBeat = s.clock.Beat()
	s.symbols = map[string]*Definition{}
	s.defined = nil
	s.loops = map[string]bool{}
	s.loopOrder = nil
	s.stack = nil
	s.main = nil
}

func (s *Session) Clock() *Clock { return &s.clock }

// SetBeat changes the tempo for everything rendered afterwards. Before
// anything is rendered it also sets the starting beat of the program.
func (s *Session) SetBeat(value string) error {
	if err := s.clock.SetBeat(value); err != nil {
		return err
	}
	if len(s.main) == 0 {
		s.startBeat = s.clock.Beat()
		return nil
	}
	s.main.Emit(Instruction{Op: OpTempo, Beat: s.clock.Beat()})
	return nil
}

// Seconds evaluates d against the session clock.
func (s *Session) Seconds(d Duration) (float64, error) {
	return s.clock.Parse(d)
}

// Render appends e to the main stream, followed by a wait for its extent if
// e does not time itself.
func (s *Session) Render(e Event) error {
	var buf Buffer
	if err := play(s, &buf, e); err != nil {
		return err
	}
	s.main = append(s.main, buf...)
	return nil
}

// Program returns a snapshot of everything rendered so far.
func (s *Session) Program() *Program {
	return &Program{
		Beat:    s.startBeat,
		Main:    append([]Instruction(nil), s.main...),
		Symbols: append([]*Definition(nil), s.defined...),
		Loops:   append([]string(nil), s.loopOrder...),
	}
}

// Define renders e into a callable unit stored under name. Defining a name
// twice fails with ErrDuplicateSymbol; a failing render registers nothing.
// Tempo changes inside e stay inside the definition: the body ends by
// restoring the beat it started with, and so does the session.
func (s *Session) Define(name string, e Event) (*Definition, error) {
	if _, ok := s.symbols[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, name)
	}
	saved := s.clock
	defer func() { s.clock = saved }()
	var body Buffer
	if err := play(s, &body, e); err != nil {
		return nil, fmt.Errorf("could not define symbol %q: %w", name, err)
	}
	if s.clock.Beat() != saved.Beat() {
		body.Emit(Instruction{Op: OpTempo, Beat: saved.Beat()})
	}
	s.clock = saved
	extent, err := extentAlong(s, e)
	if err != nil {
		return nil, fmt.Errorf("could not define symbol %q: %w", name, err)
	}
	if _, ok := s.symbols[name]; ok {
		// e itself defined name while rendering
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, name)
	}
	def := &Definition{Name: name, ID: s.referenceID(), Body: body, Extent: extent}
	s.symbols[name] = def
	s.defined = append(s.defined, def)
	return def, nil
}

// Lookup returns the definition of a symbol.
func (s *Session) Lookup(name string) (*Definition, error) {
	def, ok := s.symbols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSymbol, name)
	}
	return def, nil
}

// LoopRegistered reports whether a loop with the given name was rendered.
func (s *Session) LoopRegistered(name string) bool {
	return s.loops[name]
}

func (s *Session) registerLoop(name string) {
	s.loops[name] = true
	s.loopOrder = append(s.loopOrder, name)
}

// within runs f with t pushed on the transposition stack. The stack is
// restored when f returns, whether or not it failed.
func (s *Session) within(t Transposition, f func() error) error {
	n := len(s.stack)
	s.stack = append(s.stack, t)
	defer func() { s.stack = s.stack[:n] }()
	return f()
}

// withStack temporarily replaces the whole stack, used when replaying leaves
// collected from a parallel block.
func (s *Session) withStack(stack []Transposition, f func() error) error {
	saved := s.stack
	s.stack = stack
	defer func() { s.stack = saved }()
	return f()
}

func (s *Session) snapshot() []Transposition {
	return append([]Transposition(nil), s.stack...)
}

// concrete applies the transposition stack, outermost first, and then the
// event's own transposition.
func (s *Session) concrete(pitch int, own Transposition) int {
	for _, t := range s.stack {
		pitch = t.apply(pitch)
	}
	return own.apply(pitch)
}

const idLetters = "abcdefghijklmnopqrstuvwxyz"

func (s *Session) referenceID() string {
	for {
		b := make([]byte, 10)
		for i := range b {
			b[i] = idLetters[s.rand.Intn(len(idLetters))]
		}
		id := string(b)
		taken := false
		for _, d := range s.defined {
			if d.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
	}
}

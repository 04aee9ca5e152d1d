package treequence

// Symbol refers to a sub-tree previously memoized with Session.Define.
// Rendering it emits a call instead of the sub-tree itself.
type Symbol struct {
	Name string
}

func NewSymbol(name string) *Symbol {
	return &Symbol{Name: name}
}

func (y *Symbol) Extent(s *Session) (float64, error) {
	def, err := s.Lookup(y.Name)
	if err != nil {
		return 0, err
	}
	return def.Extent, nil
}

func (y *Symbol) Atomic() bool { return false }

func (y *Symbol) Transposable() bool { return false }

func (y *Symbol) Write(s *Session, out Sink) error {
	def, err := s.Lookup(y.Name)
	if err != nil {
		return err
	}
	out.Emit(Instruction{Op: OpCall, Symbol: def.Name, ID: def.ID})
	return nil
}

func (y *Symbol) Clone() Event {
	return &Symbol{Name: y.Name}
}

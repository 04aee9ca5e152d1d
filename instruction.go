package treequence

import "fmt"

// Op identifies the kind of an Instruction.
type Op int

const (
	OpTone Op = iota + 1
	OpSample
	OpWait
	OpCall
	OpRepeat
	OpTempo
)

func (o Op) String() string {
	switch o {
	case OpTone:
		return "tone"
	case OpSample:
		return "sample"
	case OpWait:
		return "wait"
	case OpCall:
		return "call"
	case OpRepeat:
		return "repeat"
	case OpTempo:
		return "tempo"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

func (o Op) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

// Instruction is one step of a rendered instruction stream. Which fields are
// meaningful depends on Op:
//
//	OpTone    Pitches, Duration (sounding length), Amplitude, Synth
//	OpSample  Sample, Amplitude
//	OpWait    Duration
//	OpCall    Symbol, ID
//	OpRepeat  Symbol, ID, Times (0 repeats while the loop named Symbol is active)
//	OpTempo   Beat
type Instruction struct {
	Op        Op
	Pitches   []int   `yaml:",flow,omitempty"`
	Duration  float64 `yaml:",omitempty"`
	Amplitude float64 `yaml:",omitempty"`
	Synth     string  `yaml:",omitempty"`
	Sample    string  `yaml:",omitempty"`
	Symbol    string  `yaml:",omitempty"`
	ID        string  `yaml:",omitempty"`
	Times     int     `yaml:",omitempty"`
	Beat      float64 `yaml:",omitempty"`
}

// Sink receives instructions in playback order.
type Sink interface {
	Emit(Instruction)
}

// Buffer is a Sink that keeps everything it is given.
type Buffer []Instruction

func (b *Buffer) Emit(in Instruction) {
	*b = append(*b, in)
}

// Definition is a memoized sub-tree: its rendered body can be replayed by
// calling ID instead of rendering the tree again.
type Definition struct {
	Name   string
	ID     string
	Body   []Instruction
	Extent float64
}

// Program is the complete output of a render session: the main stream plus
// every symbol it refers to, in definition order.
type Program struct {
	Beat    float64 // beat length when the session started
	Main    []Instruction
	Symbols []*Definition
	Loops   []string
}

// Symbol looks up a definition by symbol name.
func (p *Program) Symbol(name string) (*Definition, bool) {
	for _, d := range p.Symbols {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// gaps shorter than this are rounding noise
const epsilon = 1e-9

func wait(out Sink, seconds float64) {
	if seconds > epsilon {
		out.Emit(Instruction{Op: OpWait, Duration: seconds})
	}
}

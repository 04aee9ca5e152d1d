// Package song reads pieces written as YAML (or JSON) documents and renders
// them with a treequence session.
package song

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/robert-lieck/MusicTreequence"
)

var ErrInvalidNode = errors.New("invalid song node")

// Song is a complete document: the beat, named symbols that are defined in
// order before the body, and the body itself.
type Song struct {
	Beat    string   `yaml:"beat,omitempty"`
	Seed    int64    `yaml:"seed,omitempty"`
	Symbols []Symbol `yaml:"symbols,omitempty"`
	Body    *Node    `yaml:"body"`
}

type Symbol struct {
	Name string `yaml:"name"`
	Body *Node  `yaml:"body"`
}

// Node describes one event. Exactly one of the kind fields (Tone, Chord,
// Beat, Sound, Rest, Tempo, Sequence, Parallel, Measure, Transpose, Symbol,
// Loop, Generate) must be set; the remaining fields are attributes.
type Node struct {
	Tone      string              `yaml:"tone,omitempty"`
	Chord     []string            `yaml:"chord,flow,omitempty"`
	Beat      string              `yaml:"beat,omitempty"`
	Sound     string              `yaml:"sound,omitempty"`
	Rest      treequence.Duration `yaml:"rest,omitempty"`
	Tempo     string              `yaml:"tempo,omitempty"`
	Sequence  Items               `yaml:"sequence,omitempty"`
	Parallel  Items               `yaml:"parallel,omitempty"`
	Measure   treequence.Duration `yaml:"measure,omitempty"`
	Transpose *int                `yaml:"transpose,omitempty"`
	Symbol    string              `yaml:"symbol,omitempty"`
	Loop      string              `yaml:"loop,omitempty"`
	Generate  int                 `yaml:"generate,omitempty"`

	// Length of tones, chords and sounds. On sequences and parallels it is
	// the default for their children; on generated nodes the measure length.
	Length   treequence.Duration `yaml:"length,omitempty"`
	Duration treequence.Duration `yaml:"duration,omitempty"`
	Amp      *float64            `yaml:"amp,omitempty"`
	Tie      bool                `yaml:"tie,omitempty"`
	Staccato bool                `yaml:"staccato,omitempty"`
	Synth    string              `yaml:"synth,omitempty"`

	Parts  Items  `yaml:"parts,omitempty"`  // measure
	Scale  string `yaml:"scale,omitempty"`  // transpose, generate
	Body   *Node  `yaml:"body,omitempty"`   // transpose, loop
	Repeat int    `yaml:"repeat,omitempty"` // loop; 0 repeats forever

	Corpus  [][]string `yaml:"corpus,omitempty"`
	Order   int        `yaml:"order,omitempty"`
	Range   []string   `yaml:"range,flow,omitempty"`
	Width   int        `yaml:"width,omitempty"`
	Jitter  float64    `yaml:"jitter,omitempty"`
	Epsilon *float64   `yaml:"epsilon,omitempty"`
}

// Item is an entry of a sequence, parallel or measure list: a node, a bare
// pitch name ("r" for a rest) or a nested list.
type Item struct {
	Node  *Node
	Pitch string
	Group Items
}

type Items []Item

func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		it.Pitch = value.Value
		return nil
	case yaml.SequenceNode:
		it.Group = Items{}
		return value.Decode(&it.Group)
	case yaml.MappingNode:
		it.Node = &Node{}
		return value.Decode(it.Node)
	case yaml.AliasNode:
		return it.UnmarshalYAML(value.Alias)
	}
	return fmt.Errorf("%w: line %d: unexpected yaml node", ErrInvalidNode, value.Line)
}

func (it Item) MarshalYAML() (interface{}, error) {
	switch {
	case it.Node != nil:
		return it.Node, nil
	case it.Group != nil:
		return it.Group, nil
	}
	return it.Pitch, nil
}

// Load decodes a YAML or JSON document.
func Load(data []byte) (*Song, error) {
	var s Song
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("song could not be unmarshaled as .yml or .json: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the document structure. It does not check pitch names or
// durations; those fail when rendering.
func (s *Song) Validate() error {
	if s.Body == nil {
		return fmt.Errorf("%w: song has no body", ErrInvalidNode)
	}
	seen := map[string]bool{}
	for i, sym := range s.Symbols {
		if sym.Name == "" {
			return fmt.Errorf("%w: symbol %d has no name", ErrInvalidNode, i)
		}
		if seen[sym.Name] {
			return fmt.Errorf("%w: %q", treequence.ErrDuplicateSymbol, sym.Name)
		}
		seen[sym.Name] = true
		if sym.Body == nil {
			return fmt.Errorf("%w: symbol %q has no body", ErrInvalidNode, sym.Name)
		}
		if err := sym.Body.validate(); err != nil {
			return fmt.Errorf("symbol %q: %w", sym.Name, err)
		}
	}
	return s.Body.validate()
}

func (n *Node) kinds() []string {
	var ret []string
	add := func(set bool, name string) {
		if set {
			ret = append(ret, name)
		}
	}
	add(n.Tone != "", "tone")
	add(n.Chord != nil, "chord")
	add(n.Beat != "", "beat")
	add(n.Sound != "", "sound")
	add(n.Rest != "", "rest")
	add(n.Tempo != "", "tempo")
	add(n.Sequence != nil, "sequence")
	add(n.Parallel != nil, "parallel")
	add(n.Measure != "", "measure")
	add(n.Transpose != nil, "transpose")
	add(n.Symbol != "", "symbol")
	add(n.Loop != "", "loop")
	add(n.Generate != 0, "generate")
	return ret
}

func (n *Node) kind() (string, error) {
	k := n.kinds()
	if len(k) != 1 {
		return "", fmt.Errorf("%w: node must have exactly one kind, has %v", ErrInvalidNode, k)
	}
	return k[0], nil
}

func (n *Node) validate() error {
	kind, err := n.kind()
	if err != nil {
		return err
	}
	switch kind {
	case "transpose", "loop":
		if n.Body == nil {
			return fmt.Errorf("%w: %s without body", ErrInvalidNode, kind)
		}
		return n.Body.validate()
	case "measure":
		if len(n.Parts) == 0 {
			return fmt.Errorf("%w: measure without parts", ErrInvalidNode)
		}
		return n.Parts.validate()
	case "sequence":
		return n.Sequence.validate()
	case "parallel":
		return n.Parallel.validate()
	case "generate":
		if n.Generate < 0 {
			return fmt.Errorf("%w: cannot generate %d notes", ErrInvalidNode, n.Generate)
		}
		if n.Length == "" {
			return fmt.Errorf("%w: generate needs a length", ErrInvalidNode)
		}
		if len(n.Range) != 0 && len(n.Range) != 2 {
			return fmt.Errorf("%w: range needs a lowest and a highest pitch", ErrInvalidNode)
		}
	}
	return nil
}

func (items Items) validate() error {
	for _, it := range items {
		switch {
		case it.Node != nil:
			if err := it.Node.validate(); err != nil {
				return err
			}
		case it.Group != nil:
			if err := it.Group.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

package song

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/metrics"
	"github.com/robert-lieck/MusicTreequence/model"
)

// Generation defaults.
const (
	DefaultOrder   = 3
	DefaultWidth   = 4
	DefaultEpsilon = 0.01
)

// Renderer turns documents into programs.
type Renderer struct {
	Session *treequence.Session
	Metrics *metrics.SentryMetrics // may be nil
}

// Render resets s and renders doc with it.
func Render(doc *Song, s *treequence.Session) (*treequence.Program, error) {
	return (&Renderer{Session: s}).Render(context.Background(), doc)
}

func (r *Renderer) Render(ctx context.Context, doc *Song) (*treequence.Program, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := r.render(ctx, doc)
	var instructions, symbols int
	if p != nil {
		instructions, symbols = len(p.Main), len(p.Symbols)
	}
	r.Metrics.RecordRender(ctx, time.Since(start), instructions, symbols, err)
	return p, err
}

func (r *Renderer) render(ctx context.Context, doc *Song) (*treequence.Program, error) {
	s := r.Session
	s.Reset()
	if doc.Beat != "" {
		if err := s.SetBeat(doc.Beat); err != nil {
			return nil, err
		}
	}
	b := &builder{ctx: ctx, metrics: r.Metrics, rand: rand.New(rand.NewSource(doc.Seed))}
	for _, sym := range doc.Symbols {
		e, err := b.node(sym.Body, "")
		if err != nil {
			return nil, fmt.Errorf("symbol %q: %w", sym.Name, err)
		}
		if _, err := s.Define(sym.Name, e); err != nil {
			return nil, err
		}
	}
	body, err := b.node(doc.Body, "")
	if err != nil {
		return nil, err
	}
	if err := s.Render(body); err != nil {
		return nil, err
	}
	return s.Program(), nil
}

type builder struct {
	ctx     context.Context
	metrics *metrics.SentryMetrics
	rand    *rand.Rand
}

// node builds the event for n. length is inherited from the enclosing
// container and used when n has no length of its own.
func (b *builder) node(n *Node, length treequence.Duration) (treequence.Event, error) {
	kind, err := n.kind()
	if err != nil {
		return nil, err
	}
	if n.Length != "" {
		length = n.Length
	}
	switch kind {
	case "tone":
		c, err := treequence.ParseTone(n.Tone, length)
		if err != nil {
			return nil, err
		}
		return n.chord(c), nil
	case "chord":
		pitches := make([]int, len(n.Chord))
		for i, name := range n.Chord {
			if pitches[i], err = treequence.NameToMIDI(name); err != nil {
				return nil, err
			}
		}
		if len(pitches) == 0 {
			return nil, fmt.Errorf("%w: empty chord", ErrInvalidNode)
		}
		slices.Sort(pitches)
		offsets := make([]int, len(pitches))
		for i, p := range pitches {
			offsets[i] = p - pitches[0]
		}
		return n.chord(treequence.NewChord(pitches[0], offsets, length)), nil
	case "beat":
		return n.sound(treequence.Beat(n.Beat, length)), nil
	case "sound":
		return n.sound(treequence.NewSound(n.Sound, length)), nil
	case "rest":
		return treequence.NewRest(n.Rest), nil
	case "tempo":
		return &treequence.Tempo{Beat: n.Tempo}, nil
	case "sequence":
		events, err := b.flat(n.Sequence, length)
		if err != nil {
			return nil, err
		}
		return treequence.Compose(events, false), nil
	case "parallel":
		events := make([]treequence.Event, len(n.Parallel))
		for i, it := range n.Parallel {
			if it.Group != nil {
				group, err := b.flat(it.Group, length)
				if err != nil {
					return nil, err
				}
				events[i] = treequence.Compose(group, false)
				continue
			}
			if events[i], err = b.item(it, length); err != nil {
				return nil, err
			}
		}
		return treequence.NewParallel(events...), nil
	case "measure":
		parts, err := b.divisions(n.Parts)
		if err != nil {
			return nil, err
		}
		return treequence.NewMeasure(n.Measure, parts...)
	case "transpose":
		body, err := b.node(n.Body, length)
		if err != nil {
			return nil, err
		}
		var scale *treequence.TonicScale
		if n.Scale != "" {
			if scale, err = treequence.ParseScale(n.Scale); err != nil {
				return nil, err
			}
		}
		return treequence.NewTransposed(body, *n.Transpose, scale)
	case "symbol":
		return treequence.NewSymbol(n.Symbol), nil
	case "loop":
		body, err := b.node(n.Body, length)
		if err != nil {
			return nil, err
		}
		return treequence.NewLoop(body, n.Loop, n.Repeat), nil
	case "generate":
		return b.generate(n, length)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidNode, kind)
}

func (n *Node) chord(c *treequence.Chord) *treequence.Chord {
	if n.Duration != "" {
		c.Length = c.Duration
		c.Duration = n.Duration
	}
	if n.Amp != nil {
		c.Amplitude = *n.Amp
	}
	c.Tie = n.Tie
	c.Staccato = n.Staccato
	c.Synth = n.Synth
	return c
}

func (n *Node) sound(s *treequence.Sound) *treequence.Sound {
	if n.Amp != nil {
		s.Amplitude = *n.Amp
	}
	return s
}

// item builds a single list entry that is not a group.
func (b *builder) item(it Item, length treequence.Duration) (treequence.Event, error) {
	if it.Node != nil {
		return b.node(it.Node, length)
	}
	if it.Pitch == "r" {
		return treequence.NewRest(length), nil
	}
	return treequence.ParseTone(it.Pitch, length)
}

// flat builds the items of a sequence; nested lists are spliced in place.
func (b *builder) flat(items Items, length treequence.Duration) ([]treequence.Event, error) {
	var ret []treequence.Event
	for _, it := range items {
		if it.Group != nil {
			group, err := b.flat(it.Group, length)
			if err != nil {
				return nil, err
			}
			ret = treequence.Concat(ret, group)
			continue
		}
		e, err := b.item(it, length)
		if err != nil {
			return nil, err
		}
		ret = append(ret, e)
	}
	return ret, nil
}

// divisions builds a measure's rhythmic tree: nested lists split their
// share of the measure evenly.
func (b *builder) divisions(items Items) ([]treequence.Division, error) {
	ret := make([]treequence.Division, len(items))
	for i, it := range items {
		if it.Group != nil {
			parts, err := b.divisions(it.Group)
			if err != nil {
				return nil, err
			}
			ret[i] = treequence.Split(parts...)
			continue
		}
		e, err := b.item(it, "")
		if err != nil {
			return nil, err
		}
		ret[i] = treequence.On(e)
	}
	return ret, nil
}

// generate samples n.Generate pitches with a beam search over a Markov model
// trained on the corpus, optionally multiplied with a scale distribution and
// a pitch range, and lays them out evenly in a measure of the given length.
func (b *builder) generate(n *Node, length treequence.Duration) (treequence.Event, error) {
	width := n.Width
	if width <= 0 {
		width = DefaultWidth
	}
	start := time.Now()
	pitches, err := b.sample(n, width)
	b.metrics.RecordGenerate(b.ctx, time.Since(start), n.Generate, width, err)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	parts := make([]treequence.Division, len(pitches))
	for i, p := range pitches {
		parts[i] = treequence.On(n.chord(treequence.NewTone(p, "")))
	}
	return treequence.NewMeasure(length, parts...)
}

func (b *builder) sample(n *Node, width int) ([]int, error) {
	order := n.Order
	if order <= 0 {
		order = DefaultOrder
	}
	epsilon := DefaultEpsilon
	if n.Epsilon != nil {
		epsilon = *n.Epsilon
	}
	alphabet := model.PitchAlphabet()
	markov := model.NewMarkov(alphabet, order)
	for _, names := range n.Corpus {
		seq := make([]int, len(names))
		for i, name := range names {
			p, err := treequence.NameToMIDI(name)
			if err != nil {
				return nil, err
			}
			seq[i] = p
		}
		markov.Train(seq)
	}
	factors := []model.Model{markov}
	if n.Scale != "" {
		scale, err := treequence.ParseScale(n.Scale)
		if err != nil {
			return nil, err
		}
		d, err := model.ScaleDistribution(scale, epsilon)
		if err != nil {
			return nil, err
		}
		factors = append(factors, d)
	}
	if len(n.Range) == 2 {
		lo, err := treequence.NameToMIDI(n.Range[0])
		if err != nil {
			return nil, err
		}
		hi, err := treequence.NameToMIDI(n.Range[1])
		if err != nil {
			return nil, err
		}
		d, err := model.PitchRange(lo, hi, epsilon)
		if err != nil {
			return nil, err
		}
		factors = append(factors, d)
	}
	product, err := model.NewProduct(factors...)
	if err != nil {
		return nil, err
	}
	cached, err := model.NewCached(product, model.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	beam := &model.Beam{Model: cached, Width: width, Jitter: n.Jitter, Rand: b.rand}
	return beam.Sample(nil, n.Generate)
}

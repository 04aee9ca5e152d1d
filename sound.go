package treequence

import "fmt"

// drumSamples maps percussion names to sample ids of the target engine.
var drumSamples = map[string]string{
	"kick":  "bd_haus",
	"snare": "sn_dolf",
	"hh_c":  "drum_cymbal_closed",
	"hh_o":  "drum_cymbal_open",
	"ride":  "drum_cymbal_soft",
	"crash": "drum_splash_hard",
	"tom":   "drum_tom_mid_soft",
	"clap":  "perc_snap",
}

// Sound plays an opaque sample.
type Sound struct {
	Sample    string
	Length    Duration
	Amplitude float64
}

func NewSound(sample string, length Duration) *Sound {
	return &Sound{Sample: sample, Length: length, Amplitude: 1}
}

// Beat returns a Sound for a percussion name such as "kick" or "hh_c". Names
// missing from the drum table are used as sample ids verbatim.
func Beat(name string, length Duration) *Sound {
	if id, ok := drumSamples[name]; ok {
		return NewSound(id, length)
	}
	return NewSound(name, length)
}

func (b *Sound) Extent(s *Session) (float64, error) {
	if b.Length == "" {
		return 0, nil
	}
	return s.Seconds(b.Length)
}

func (b *Sound) Atomic() bool { return true }

func (b *Sound) Transposable() bool { return false }

func (b *Sound) Write(s *Session, out Sink) error {
	out.Emit(Instruction{Op: OpSample, Sample: b.Sample, Amplitude: b.Amplitude})
	return nil
}

func (b *Sound) Clone() Event {
	ret := *b
	return &ret
}

func (b *Sound) withSpan(d Duration, weight float64) Event {
	return &Sound{Sample: b.Sample, Length: d, Amplitude: b.Amplitude * weight}
}

// Rest is silence of a given extent.
type Rest struct {
	Length Duration
}

func NewRest(length Duration) *Rest {
	return &Rest{Length: length}
}

func (r *Rest) Extent(s *Session) (float64, error) {
	if r.Length == "" {
		return 0, nil
	}
	return s.Seconds(r.Length)
}

func (r *Rest) Atomic() bool { return true }

func (r *Rest) Transposable() bool { return true }

// Write emits nothing: the container's wait is the whole rest.
func (r *Rest) Write(s *Session, out Sink) error { return nil }

func (r *Rest) Clone() Event {
	ret := *r
	return &ret
}

func (r *Rest) withSpan(d Duration, weight float64) Event {
	return &Rest{Length: d}
}

// Tempo changes the session's beat length when it is rendered. It takes no
// time itself.
type Tempo struct {
	Beat string // "120bpm" or a beat length in seconds
}

func (t *Tempo) Extent(s *Session) (float64, error) { return 0, nil }

func (t *Tempo) Atomic() bool { return true }

func (t *Tempo) Transposable() bool { return true }

func (t *Tempo) Write(s *Session, out Sink) error {
	if err := t.apply(s); err != nil {
		return err
	}
	out.Emit(Instruction{Op: OpTempo, Beat: s.clock.Beat()})
	return nil
}

func (t *Tempo) apply(s *Session) error {
	if err := s.clock.SetBeat(t.Beat); err != nil {
		return fmt.Errorf("tempo change: %w", err)
	}
	return nil
}

func (t *Tempo) Clone() Event {
	ret := *t
	return &ret
}

package compiler

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robert-lieck/MusicTreequence"
)

const (
	ticksPerBeat = 960
	toneChannel  = 0
	drumChannel  = 9
)

// DrumKeys maps sample names to General MIDI percussion keys. Samples not
// listed here are written as side stick.
var DrumKeys = map[string]uint8{
	"bd_haus":            36,
	"sn_dolf":            38,
	"drum_cymbal_closed": 42,
	"drum_cymbal_open":   46,
	"drum_cymbal_soft":   51,
	"drum_splash_hard":   49,
	"drum_tom_mid_soft":  47,
	"perc_snap":          39,
	"drum_snare_soft":    40,
	"drum_cymbal_pedal":  44,
	"drum_bass_hard":     35,
	"tabla_ghe1":         60,
}

const defaultDrumKey = 37

type midiEvent struct {
	tick uint32
	off  bool // note offs sort before note ons on the same tick
	msg  []byte
}

// MIDI writes p as a single track standard MIDI file. Tones go to channel 1
// and samples to the General MIDI drum channel 10.
func MIDI(p *treequence.Program) ([]byte, error) {
	events, length, err := schedule(p)
	if err != nil {
		return nil, err
	}
	var list []midiEvent
	// ticks are counted in beats, so the time line is converted piecewise
	// between tempo changes
	var segStart, segTick float64
	beat := p.Beat
	tickAt := func(t float64) uint32 {
		return uint32(math.Round(segTick + (t-segStart)/beat*ticksPerBeat))
	}
	list = append(list, midiEvent{0, false, smf.MetaTempo(60 / beat)})
	for _, e := range events {
		if e.Op == treequence.OpWait {
			continue
		}
		on := tickAt(e.Time)
		switch e.Op {
		case treequence.OpTempo:
			segTick = segTick + (e.Time-segStart)/beat*ticksPerBeat
			segStart, beat = e.Time, e.BeatLength
			list = append(list, midiEvent{on, false, smf.MetaTempo(60 / beat)})
		case treequence.OpTone:
			off := tickAt(e.Time + e.Duration)
			for _, pitch := range e.Pitches {
				if pitch < treequence.MinPitch || pitch > treequence.MaxPitch {
					return nil, fmt.Errorf("%w: %d", treequence.ErrPitchOutOfRange, pitch)
				}
				key := uint8(pitch)
				list = append(list,
					midiEvent{on, false, midi.NoteOn(toneChannel, key, velocity(e.Amplitude))},
					midiEvent{max(off, on+1), true, midi.NoteOff(toneChannel, key)})
			}
		case treequence.OpSample:
			key, ok := DrumKeys[e.Sample]
			if !ok {
				key = defaultDrumKey
			}
			list = append(list,
				midiEvent{on, false, midi.NoteOn(drumChannel, key, velocity(e.Amplitude))},
				midiEvent{on + ticksPerBeat/8, true, midi.NoteOff(drumChannel, key)})
		}
	}
	end := tickAt(length)
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].tick != list[j].tick {
			return list[i].tick < list[j].tick
		}
		return list[i].off && !list[j].off
	})
	var tr smf.Track
	var last uint32
	for _, ev := range list {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	tr.Close(max(end, last) - last)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerBeat)
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("could not add track: %w", err)
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("could not write midi file: %w", err)
	}
	return buf.Bytes(), nil
}

func velocity(amp float64) uint8 {
	return uint8(math.Round(math.Max(1, math.Min(127, amp*100))))
}

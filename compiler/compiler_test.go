package compiler_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/compiler"
)

func program(t *testing.T, events ...treequence.Event) *treequence.Program {
	t.Helper()
	s := treequence.NewSession(1)
	require.NoError(t, s.Render(treequence.NewSequence(events...)))
	return s.Program()
}

func TestTinyPitch(t *testing.T) {
	for pitch, want := range map[int]string{24: "CC", 37: "C#", 48: "c", 61: "cc#", 71: "bb"} {
		got, err := compiler.TinyPitch(pitch)
		require.NoError(t, err)
		assert.Equal(t, want, got, "pitch %d", pitch)
	}
	for _, pitch := range []int{23, 72} {
		_, err := compiler.TinyPitch(pitch)
		assert.ErrorIs(t, err, treequence.ErrPitchOutOfRange)
	}
}

func TestTinyDuration(t *testing.T) {
	tests := []struct {
		seconds, beat float64
		want          string
	}{
		{1, 1, "4"},
		{2, 1, "2"},
		{4, 1, "1"},
		{0.125, 1, "32"},
		{1.5, 1, "4."},
		{0.75, 1, "8."},
		{3, 1, "2."},
		{0.5, 0.5, "4"},
	}
	for _, test := range tests {
		got, err := compiler.TinyDuration(test.seconds, test.beat)
		require.NoError(t, err)
		assert.Equal(t, test.want, got, "%v sec at beat %v", test.seconds, test.beat)
	}
	_, err := compiler.TinyDuration(0.3, 1)
	assert.ErrorIs(t, err, compiler.ErrUnrepresentable)
	_, err = compiler.TinyDuration(8, 1)
	assert.ErrorIs(t, err, compiler.ErrUnrepresentable)
}

func TestTiny(t *testing.T) {
	p := program(t,
		treequence.NewTone(60, "1/4"),
		treequence.NewTone(62, "1/8"),
		treequence.NewRest("1/8"),
		treequence.NewChord(48, []int{0, 4, 7}, "3/8"),
	)
	got, err := compiler.Tiny(p)
	require.NoError(t, err)
	assert.Equal(t, "cc4 dd8 r8 chord{c4. e4. g4.}", got)
}

func TestTinyExpandsSymbols(t *testing.T) {
	s := treequence.NewSession(1)
	_, err := s.Define("a", treequence.NewTone(48, "1/4"))
	require.NoError(t, err)
	require.NoError(t, s.Render(treequence.NewSequence(
		treequence.NewSymbol("a"),
		treequence.NewLoop(treequence.NewTone(50, "1/8"), "b", 2),
	)))
	got, err := compiler.Tiny(s.Program())
	require.NoError(t, err)
	assert.Equal(t, "c4 d8 d8", got)
}

func TestTinyErrors(t *testing.T) {
	tests := []struct {
		name  string
		event treequence.Event
		err   error
	}{
		{"high pitch", treequence.NewTone(80, "1/4"), treequence.ErrPitchOutOfRange},
		{"odd length", treequence.NewTone(60, "0.3sec"), compiler.ErrUnrepresentable},
		{"sample", treequence.Beat("kick", "1/4"), compiler.ErrUnrepresentable},
		{"endless loop", treequence.NewLoop(treequence.NewTone(60, "1/4"), "x", 0), compiler.ErrUnrepresentable},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := compiler.Tiny(program(t, test.event))
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestMIDI(t *testing.T) {
	p := program(t,
		treequence.NewTone(60, "1/4"),
		treequence.Beat("kick", "1/4"),
		treequence.NewChord(60, []int{0, 7}, "1/2"),
	)
	b, err := compiler.MIDI(p)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("MThd")))

	f, err := smf.ReadFrom(bytes.NewReader(b))
	require.NoError(t, err)
	require.Len(t, f.Tracks, 1)
	type start struct {
		tick         uint32
		channel, key uint8
	}
	var starts []start
	var tick uint32
	for _, ev := range f.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		if midi.Message(ev.Message).GetNoteStart(&ch, &key, &vel) {
			starts = append(starts, start{tick, ch, key})
		}
	}
	assert.Equal(t, []start{{0, 0, 60}, {960, 9, 36}, {1920, 0, 60}, {1920, 0, 67}}, starts)
}

func TestMIDIRejectsEndlessLoops(t *testing.T) {
	_, err := compiler.MIDI(program(t, treequence.NewLoop(treequence.NewTone(60, "1/4"), "x", 0)))
	assert.ErrorIs(t, err, compiler.ErrUnrepresentable)
}

func TestSonicPi(t *testing.T) {
	s := treequence.NewSession(1)
	def, err := s.Define("riff", treequence.NewSequence(treequence.NewTone(60, "1/4"), treequence.NewTone(64, "1/4")))
	require.NoError(t, err)
	require.NoError(t, s.Render(treequence.NewSequence(
		treequence.NewSymbol("riff"),
		treequence.NewLoop(treequence.NewTone(67, "1/4"), "verse", 3),
		treequence.NewLoop(treequence.Beat("kick", "1/4"), "drums", 0),
	)))
	comp, err := compiler.New()
	require.NoError(t, err)
	files, err := comp.SonicPi(s.Program())
	require.NoError(t, err)
	require.Contains(t, files, ".rb")
	code := files[".rb"]
	for _, want := range []string{
		"# beat duration: 1000ms/60bpm",
		"define :sym_" + def.ID + " do",
		"  tone [60], duration: 1, amp: 1\n  sleep 1\n",
		"define :song do\n  sym_" + def.ID + " # riff\n",
		".times do sym_",
		`while loop_active?("drums")`,
		"play_beat :bd_haus, amp: 1",
		`set :"loop_verse", true`,
	} {
		assert.Contains(t, code, want)
	}
	assert.True(t, strings.HasSuffix(code, "\nsong\n"))
}

func TestCompile(t *testing.T) {
	comp, err := compiler.New()
	require.NoError(t, err)
	p := program(t, treequence.NewTone(60, "1/4"))
	files, err := comp.Compile(p, compiler.Targets...)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.Equal(t, "cc4", string(files[".txt"]))
	_, err = comp.Compile(p, "wav")
	assert.ErrorIs(t, err, compiler.ErrUnknownTarget)
}

func TestNewFromTemplates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.rb"), []byte(`{{len .Main}} instructions at {{.Beat}}`), 0644))
	comp, err := compiler.NewFromTemplates(dir)
	require.NoError(t, err)
	files, err := comp.SonicPi(program(t, treequence.NewTone(60, "1/4")))
	require.NoError(t, err)
	assert.Equal(t, "2 instructions at 1", files[".rb"])
}

// Package compiler turns rendered programs into files for other tools: Sonic
// Pi scripts, tinynotation strings and standard MIDI files.
package compiler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/version"
)

var (
	ErrUnrepresentable = errors.New("program cannot be represented in target format")
	ErrUnknownTarget   = errors.New("unknown target")
)

// Targets lists the supported output formats.
var Targets = []string{"sonicpi", "tiny", "midi"}

type Compiler struct {
	Template *template.Template
}

//go:embed templates/sonicpi/*
var templateFS embed.FS

var funcs = template.FuncMap{
	"ms":  func(beat float64) float64 { return math.Round(beat*1e6) / 1e3 },
	"bpm": func(beat float64) float64 { return math.Round(60/beat*1e3) / 1e3 },
}

// New returns a compiler using the default Sonic Pi templates.
func New() (*Compiler, error) {
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs).ParseFS(templateFS, "templates/sonicpi/*.rb")
	if err != nil {
		return nil, fmt.Errorf(`could not create templates: %v`, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// NewFromTemplates parses all templates in a directory. The directory must
// provide at least song.rb.
func NewFromTemplates(templateDirectory string) (*Compiler, error) {
	globPtrn := filepath.Join(templateDirectory, "*.*")
	tmpl, err := template.New("base").Funcs(sprig.TxtFuncMap()).Funcs(funcs).ParseGlob(globPtrn)
	if err != nil {
		return nil, fmt.Errorf(`could not create template based on directory "%v": %v`, templateDirectory, err)
	}
	return &Compiler{Template: tmpl}, nil
}

// SonicPi executes the song templates for p, keyed by file extension.
func (com *Compiler) SonicPi(p *treequence.Program) (map[string]string, error) {
	data := struct {
		*treequence.Program
		Version string
	}{p, version.VersionOrHash}
	retmap := map[string]string{}
	for _, templateName := range []string{"song.rb"} {
		populatedTemplate, extension, err := com.compile(templateName, &data)
		if err != nil {
			return nil, fmt.Errorf(`could not execute template "%v": %v`, templateName, err)
		}
		retmap[extension] = populatedTemplate
	}
	return retmap, nil
}

// Compile renders p for each of the targets, keyed by file extension.
func (com *Compiler) Compile(p *treequence.Program, targets ...string) (map[string][]byte, error) {
	retmap := map[string][]byte{}
	for _, target := range targets {
		switch target {
		case "sonicpi":
			files, err := com.SonicPi(p)
			if err != nil {
				return nil, err
			}
			for ext, code := range files {
				retmap[ext] = []byte(code)
			}
		case "tiny":
			code, err := Tiny(p)
			if err != nil {
				return nil, fmt.Errorf("tinynotation: %w", err)
			}
			retmap[".txt"] = []byte(code)
		case "midi":
			code, err := MIDI(p)
			if err != nil {
				return nil, fmt.Errorf("midi: %w", err)
			}
			retmap[".mid"] = code
		default:
			return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownTarget, target, Targets)
		}
	}
	return retmap, nil
}

func (com *Compiler) compile(templateName string, data interface{}) (string, string, error) {
	result := bytes.NewBufferString("")
	err := com.Template.ExecuteTemplate(result, templateName, data)
	extension := filepath.Ext(templateName)
	return result.String(), extension, err
}

// timed is an instruction placed at an absolute time.
type timed struct {
	treequence.Instruction
	Time       float64 // seconds since start
	BeatLength float64 // beat in effect at Time
}

// schedule expands calls and finite repeats of p into a flat instruction
// list in playback order, and returns it with the total length in seconds.
// Endless loops cannot be scheduled.
func schedule(p *treequence.Program) ([]timed, float64, error) {
	var ret []timed
	t, beat := 0.0, p.Beat
	var walk func(body []treequence.Instruction, depth int) error
	walk = func(body []treequence.Instruction, depth int) error {
		if depth > len(p.Symbols) {
			return fmt.Errorf("%w: symbols call each other recursively", ErrUnrepresentable)
		}
		for _, in := range body {
			switch in.Op {
			case treequence.OpCall, treequence.OpRepeat:
				def, ok := p.Symbol(in.Symbol)
				if !ok {
					return fmt.Errorf("%w: %q", treequence.ErrUnknownSymbol, in.Symbol)
				}
				n := 1
				if in.Op == treequence.OpRepeat {
					if in.Times <= 0 {
						return fmt.Errorf("%w: endless loop %q", ErrUnrepresentable, in.Symbol)
					}
					n = in.Times
				}
				for i := 0; i < n; i++ {
					if err := walk(def.Body, depth+1); err != nil {
						return err
					}
				}
				continue
			case treequence.OpTempo:
				beat = in.Beat
			}
			ret = append(ret, timed{in, t, beat})
			if in.Op == treequence.OpWait {
				t += in.Duration
			}
		}
		return nil
	}
	if err := walk(p.Main, 0); err != nil {
		return nil, 0, err
	}
	return ret, t, nil
}

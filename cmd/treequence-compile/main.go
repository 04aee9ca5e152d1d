package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/compiler"
	"github.com/robert-lieck/MusicTreequence/metrics"
	"github.com/robert-lieck/MusicTreequence/song"
	"github.com/robert-lieck/MusicTreequence/version"
)

func filterExtensions(input map[string][]byte, extensions []string) map[string][]byte {
	ret := map[string][]byte{}
	for _, ext := range extensions {
		extWithDot := "." + ext
		if inputVal, ok := input[extWithDot]; ok {
			ret[extWithDot] = inputVal
		}
	}
	return ret
}

func main() {
	safe := flag.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flag.Bool("l", false, "Do not write files; just list files that would change instead.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	programOut := flag.Bool("p", false, "Also output the rendered instruction stream as a .yml file.")
	tmplDir := flag.String("tmpl", "", "Use the Sonic Pi templates in this directory instead of the standard templates.")
	outPath := flag.String("o", "", "Directory or filename where to write compiled files. Extension is ignored. Directory and its parents are created if needed. By default, everything is placed in the current working directory.")
	extensionsOut := flag.String("e", "", "Output only the compiled files with these comma separated extensions. For example: rb,mid")
	targets := flag.String("t", "sonicpi", "Comma separated targets. Possible values: "+strings.Join(compiler.Targets, ", "))
	seed := flag.Int64("seed", 0, "Seed for symbol ids and generated notes, overriding the seed of the song.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	var comp *compiler.Compiler
	var err error
	if *tmplDir != "" {
		comp, err = compiler.NewFromTemplates(*tmplDir)
	} else {
		comp, err = compiler.New()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating compiler: %v\n", err)
		os.Exit(1)
	}
	m, err := metrics.Init(version.VersionOrHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "metrics disabled: %v\n", err)
	}
	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			os.Stdout.Write(contents)
			return nil
		}
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten by compiler", f)
			}
		}
		if *list {
			fmt.Println(f)
			return nil
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		doc, err := song.Load(inputBytes)
		if err != nil {
			return err
		}
		if seedSet {
			doc.Seed = *seed
		}
		ctx, finish := m.Start(context.Background(), "compile")
		defer finish()
		renderer := &song.Renderer{Session: treequence.NewSession(doc.Seed), Metrics: m}
		program, err := renderer.Render(ctx, doc)
		if err != nil {
			return fmt.Errorf("rendering failed: %w", err)
		}
		files, err := comp.Compile(program, strings.Split(*targets, ",")...)
		if err != nil {
			return fmt.Errorf("compiling failed: %w", err)
		}
		if *programOut {
			out, err := yaml.Marshal(program)
			if err != nil {
				return fmt.Errorf("could not marshal the program as yaml: %v", err)
			}
			files[".yml"] = out
		}
		if len(*extensionsOut) > 0 {
			files = filterExtensions(files, strings.Split(*extensionsOut, ","))
		}
		for extension, code := range files {
			if err := output(filename, extension, code); err != nil {
				return fmt.Errorf("error outputting %v file: %v", extension, err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range append(ymlfiles, jsonfiles...) {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	m.Flush()
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "treequence compiler. Input .yml or .json songs, outputs Sonic Pi scripts, tinynotation or MIDI files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}

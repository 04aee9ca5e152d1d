package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/robert-lieck/MusicTreequence/compiler"
	"github.com/robert-lieck/MusicTreequence/metrics"
	"github.com/robert-lieck/MusicTreequence/server"
	"github.com/robert-lieck/MusicTreequence/version"
)

func main() {
	addr := flag.String("addr", ":10000", "Address to listen on.")
	tmplDir := flag.String("tmpl", "", "Use the Sonic Pi templates in this directory instead of the standard templates.")
	flag.Parse()

	var comp *compiler.Compiler
	var err error
	if *tmplDir != "" {
		comp, err = compiler.NewFromTemplates(*tmplDir)
	} else {
		comp, err = compiler.New()
	}
	if err != nil {
		log.Fatalf("error creating compiler: %v", err)
	}
	m, err := metrics.Init(version.VersionOrHash)
	if err != nil {
		log.Printf("metrics disabled: %v", err)
	}
	defer m.Flush()

	log.Printf("treequence %s listening on %s", version.VersionOrHash, *addr)
	if err := http.ListenAndServe(*addr, server.NewHandler(comp, m)); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

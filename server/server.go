// Package server exposes song rendering over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/robert-lieck/MusicTreequence"
	"github.com/robert-lieck/MusicTreequence/compiler"
	"github.com/robert-lieck/MusicTreequence/metrics"
	"github.com/robert-lieck/MusicTreequence/song"
)

// MaxSongSize limits request bodies.
const MaxSongSize = 1 << 20

var contentTypes = map[string]string{
	".rb":  "text/plain; charset=utf-8",
	".txt": "text/plain; charset=utf-8",
	".mid": "audio/midi",
}

type handler struct {
	compiler *compiler.Compiler
	metrics  *metrics.SentryMetrics
}

// Err writes err as a plain text response and logs it.
func Err(w http.ResponseWriter, status int, err error) {
	http.Error(w, err.Error(), status)
	log.Printf("%d: %v", status, err)
}

func (h *handler) program(w http.ResponseWriter, r *http.Request) (*treequence.Program, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxSongSize+1))
	if err != nil {
		Err(w, http.StatusBadRequest, err)
		return nil, false
	}
	if len(data) > MaxSongSize {
		Err(w, http.StatusRequestEntityTooLarge, fmt.Errorf("song larger than %d bytes", MaxSongSize))
		return nil, false
	}
	doc, err := song.Load(data)
	if err != nil {
		Err(w, http.StatusBadRequest, err)
		return nil, false
	}
	ctx, finish := h.metrics.Start(r.Context(), "server.render")
	defer finish()
	renderer := &song.Renderer{Session: treequence.NewSession(doc.Seed), Metrics: h.metrics}
	p, err := renderer.Render(ctx, doc)
	if err != nil {
		Err(w, http.StatusUnprocessableEntity, err)
		return nil, false
	}
	return p, true
}

func (h *handler) handleRender(w http.ResponseWriter, r *http.Request) {
	target := mux.Vars(r)["target"]
	p, ok := h.program(w, r)
	if !ok {
		return
	}
	files, err := h.compiler.Compile(p, target)
	if errors.Is(err, compiler.ErrUnknownTarget) {
		Err(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		Err(w, http.StatusUnprocessableEntity, err)
		return
	}
	for ext, code := range files {
		w.Header().Set("Content-Type", contentTypes[ext])
		w.WriteHeader(http.StatusOK)
		w.Write(code)
	}
}

func (h *handler) handleProgram(w http.ResponseWriter, r *http.Request) {
	p, ok := h.program(w, r)
	if !ok {
		return
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		Err(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(out)
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "treequence server. POST a song to /render/{%s} or /program.\n", "sonicpi|tiny|midi")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewHandler routes requests to a fresh session per song. m may be nil.
func NewHandler(comp *compiler.Compiler, m *metrics.SentryMetrics) http.Handler {
	h := &handler{compiler: comp, metrics: m}
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/render/{target}", h.handleRender).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/program", h.handleProgram).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/", handleRoot).Methods(http.MethodGet)
	return r
}

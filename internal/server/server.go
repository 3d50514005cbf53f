// Package server exposes the check runner over HTTP. Check progress is streamed as
// newline-delimited JSON so a browser or script can render it as it arrives.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/pipeline"
	"github.com/ppiankov/originality/internal/worker"
)

// Service is the part of the pipeline the server drives
type Service interface {
	Config() *model.Config
	Start(ctx context.Context, doc string, strategy model.Strategy, sink worker.Sink) (*worker.Run, error)
	SegmentWith(doc string, strategy model.Strategy) ([]model.Unit, error)
	Active() *worker.Run
	SearchURL(text string) string
}

// Server routes HTTP requests to a Service
type Server struct {
	svc    Service
	router *mux.Router
	log    io.Writer
}

// New creates a server and registers its routes
func New(svc Service, log io.Writer) *Server {
	if log == nil {
		log = io.Discard
	}

	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		log:    log,
	}

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/checks", s.handleStartCheck).Methods(http.MethodPost)
	api.HandleFunc("/checks/current", s.handleCurrent).Methods(http.MethodGet)
	api.HandleFunc("/checks/current", s.handleCancel).Methods(http.MethodDelete)
	api.HandleFunc("/segments", s.handleSegments).Methods(http.MethodPost)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		_, _ = fmt.Fprintln(s.log, "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if run := s.svc.Active(); run != nil {
			run.Cancel()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			_, _ = fmt.Fprintf(s.log, "Shutdown error: %v\n", err)
		}
	}()

	_, _ = fmt.Fprintf(s.log, "Originality server listening on %s\n", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// CheckRequest is the body of POST /v1/checks and POST /v1/segments
type CheckRequest struct {
	Text         string `json:"text"`
	Strategy     string `json:"strategy,omitempty"`      // "sentence" or "window"; wins over FullSentence
	FullSentence *bool  `json:"full_sentence,omitempty"` // Defaults to segment.full_sentence
}

type progressMessage struct {
	Type string `json:"type"`
	model.ProgressEvent
	Originality float64 `json:"originality"`
	SearchURL   string  `json:"search_url,omitempty"`
}

type completeMessage struct {
	Type string `json:"type"`
	model.CompletionEvent
	Message string `json:"message"`
}

// CurrentResponse describes the active run
type CurrentResponse struct {
	RunID string               `json:"run_id"`
	Total int                  `json:"total"`
	Last  *model.ProgressEvent `json:"last,omitempty"`
}

// SegmentResponse is the result of POST /v1/segments
type SegmentResponse struct {
	Strategy model.Strategy `json:"strategy"`
	Count    int            `json:"count"`
	Units    []model.Unit   `json:"units"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	strategy, err := s.strategy(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stream := newEventStream(w, s.svc.SearchURL)

	// The request context ends the run at the next unit boundary if the client leaves.
	run, err := s.svc.Start(r.Context(), req.Text, strategy, stream)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRunInProgress):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, model.ErrUnknownStrategy):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("X-Run-ID", run.ID)
	w.WriteHeader(http.StatusOK)
	stream.open()

	<-run.Done()
	_, _ = fmt.Fprintf(s.log, "run %s finished\n", run.ID)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	run := s.svc.Active()
	if run == nil {
		writeError(w, http.StatusNotFound, model.ErrNoActiveRun)
		return
	}

	resp := CurrentResponse{RunID: run.ID, Total: run.Total}
	if last, ok := run.Last(); ok {
		resp.Last = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	run := s.svc.Active()
	if run == nil {
		writeError(w, http.StatusNotFound, model.ErrNoActiveRun)
		return
	}

	run.Cancel()
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": run.ID, "status": "cancelling"})
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	strategy, err := s.strategy(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	units, err := s.svc.SegmentWith(req.Text, strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, SegmentResponse{Strategy: strategy, Count: len(units), Units: units})
}

func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (CheckRequest, bool) {
	var req CheckRequest
	body := http.MaxBytesReader(w, r.Body, s.svc.Config().HTTP.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	return req, true
}

func (s *Server) strategy(req CheckRequest) (model.Strategy, error) {
	switch {
	case req.Strategy != "":
		return model.ParseStrategy(req.Strategy)
	case req.FullSentence != nil:
		return model.StrategyFromFlag(*req.FullSentence), nil
	default:
		return s.svc.Config().Segment.Strategy(), nil
	}
}

// eventStream writes run events as NDJSON. Events wait until the handler has
// written the response headers.
type eventStream struct {
	mu        sync.Mutex
	enc       *json.Encoder
	flusher   http.Flusher
	ready     chan struct{}
	searchURL func(string) string
}

func newEventStream(w http.ResponseWriter, searchURL func(string) string) *eventStream {
	flusher, _ := w.(http.Flusher)
	return &eventStream{
		enc:       json.NewEncoder(w),
		flusher:   flusher,
		ready:     make(chan struct{}),
		searchURL: searchURL,
	}
}

func (e *eventStream) open() {
	close(e.ready)
}

func (e *eventStream) OnProgress(ev model.ProgressEvent) {
	msg := progressMessage{Type: "progress", ProgressEvent: ev, Originality: ev.Originality()}
	if ev.Verdict == model.Plagiarised {
		msg.SearchURL = e.searchURL(ev.Unit.Text)
	}
	e.write(msg)
}

func (e *eventStream) OnComplete(ev model.CompletionEvent) {
	e.write(completeMessage{
		Type:            "complete",
		CompletionEvent: ev,
		Message:         pipeline.CompletionMessage(model.SummaryFromCompletion(ev)),
	})
}

func (e *eventStream) write(v any) {
	<-e.ready

	e.mu.Lock()
	defer e.mu.Unlock()

	// A gone client surfaces as a write error; the request context handles cancellation.
	if err := e.enc.Encode(v); err != nil {
		return
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Package server exposes the relgraph pipeline over HTTP.
//
// Every endpoint takes a JSON body carrying the dataset and pipeline options
// and runs the pipeline statelessly, so any replica can serve any request.
// The cache behind the runner is what makes repeated requests cheap.
//
//	GET  /healthz
//	POST /api/v1/graph            built graph (no positions)
//	POST /api/v1/layout           laid-out graph
//	POST /api/v1/render/{format}  png, svg, dot or json artifact
//	POST /api/v1/hit              hit test a screen point
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/relgraph/pkg/buildinfo"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/records"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	viewport viewport.Config
	logger   *log.Logger
	router   chi.Router
}

// New creates a server backed by runner. viewCfg configures the engine used
// for hit testing.
func New(runner *pipeline.Runner, viewCfg viewport.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, viewport: viewCfg, logger: logger, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestID)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/graph", s.handleGraph)
		r.Post("/layout", s.handleLayout)
		r.Post("/render/{format}", s.handleRender)
		r.Post("/hit", s.handleHit)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// =============================================================================
// Request and Response Types
// =============================================================================

// Request is the body of every pipeline endpoint.
type Request struct {
	Dataset records.Dataset  `json:"dataset"`
	Options pipeline.Options `json:"options"`
}

// HitRequest is the body of /api/v1/hit. Point is in screen space; without
// a transform the view is the centered default.
type HitRequest struct {
	Request
	Point     viewport.Point      `json:"point"`
	Transform *viewport.Transform `json:"transform,omitempty"`
}

// GraphResponse is returned by /graph and /layout.
type GraphResponse struct {
	Graph          *graph.Result `json:"graph"`
	GraphHash      string        `json:"graph_hash,omitempty"`
	LayoutUsed     string        `json:"layout_used,omitempty"`
	LayoutFallback bool          `json:"layout_fallback,omitempty"`
	CacheHit       bool          `json:"cache_hit"`
}

// HitResponse is returned by /hit.
type HitResponse struct {
	Kind      string              `json:"kind"`
	Node      *graph.Node         `json:"node,omitempty"`
	Link      *graph.Link         `json:"link,omitempty"`
	Canvas    viewport.Point      `json:"canvas"`
	Transform viewport.Transform  `json:"transform"`
	Event     *pipeline.EventType `json:"event,omitempty"`
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !s.decode(w, r, &req) {
		return
	}
	s.applyLogger(&req.Options)
	g, hit, err := s.runner.BuildWithCacheInfo(r.Context(), req.Dataset, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, GraphResponse{Graph: g, CacheHit: hit})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !s.decode(w, r, &req) {
		return
	}
	s.applyLogger(&req.Options)
	ctx := r.Context()
	g, err := s.runner.Build(ctx, req.Dataset, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	placed, lr, hit, err := s.runner.LayoutWithCacheInfo(ctx, g, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, GraphResponse{
		Graph:          placed,
		LayoutUsed:     lr.Used,
		LayoutFallback: lr.Fallback,
		CacheHit:       hit,
	})
}

var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	var req Request
	if !s.decode(w, r, &req) {
		return
	}
	s.applyLogger(&req.Options)
	req.Options.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), req.Dataset, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Layout-Used", res.LayoutUsed)
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	var req HitRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.applyLogger(&req.Options)

	// One engine per request: engines are not safe for concurrent use.
	e, err := pipeline.NewEngine(req.Options, s.viewport)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var emitted *pipeline.EventType
	e.Subscribe(func(ev pipeline.Event) {
		t := ev.Type
		emitted = &t
	})
	if err := e.SetData(r.Context(), req.Dataset); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Transform != nil {
		e.SetTransform(*req.Transform)
	}

	hit := e.Tap(req.Point)
	resp := HitResponse{Kind: hit.Kind.String(), Canvas: hit.Canvas, Transform: e.Transform(), Event: emitted}
	switch hit.Kind {
	case render.HitNode:
		resp.Node = &hit.Node
	case render.HitLink:
		resp.Link = &hit.Link
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) applyLogger(opts *pipeline.Options) {
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err, "request_id", RequestID(r.Context()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "error", err, "request_id", RequestID(r.Context()))
	}
	s.writeJSON(w, r, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: RequestID(r.Context()),
	})
}

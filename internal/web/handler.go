// Package web serves a scanned algorithm catalog over HTTP as read-only
// JSON, for notebook front ends that need the metadata without running
// the scanner themselves.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/algodoc/algodoc/internal/catalog/codegen"
	catalogerrors "github.com/algodoc/algodoc/internal/catalog/errors"
	"github.com/algodoc/algodoc/internal/catalog/metadata"
	"github.com/algodoc/algodoc/internal/catalog/scanner"
	"github.com/algodoc/algodoc/internal/web/middleware"
)

// Catalog is the part of the scanner the handler reads from
type Catalog interface {
	Snapshot(ctx context.Context, pkg string) (*scanner.Snapshot, error)
	Labels() metadata.CategoryLabels
}

// Option configures a Handler
type Option func(*Handler)

// WithLogger sets the request and error logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithGenerator sets the generator behind the source endpoint
func WithGenerator(gen *codegen.Generator) Option {
	return func(h *Handler) {
		if gen != nil {
			h.gen = gen
		}
	}
}

// WithEvents mounts a push channel (typically a WebSocket upgrade
// handler) at GET /events
func WithEvents(events http.HandlerFunc) Option {
	return func(h *Handler) {
		h.events = events
	}
}

// Handler routes catalog requests for one package
type Handler struct {
	catalog Catalog
	pkg     string
	logger  *zap.Logger
	gen     *codegen.Generator
	events  http.HandlerFunc
	mux     chi.Router
}

// NewHandler builds the routes:
//
//	GET  /healthz
//	GET  /algorithms[?category=key]
//	GET  /categories
//	GET  /algorithms/{id}
//	GET  /algorithms/{id}/ports
//	GET  /algorithms/{id}/prompt
//	GET  /algorithms/{id}/source
//	POST /algorithms/{id}/call
//	GET  /events                    (with WithEvents)
func NewHandler(catalog Catalog, pkg string, opts ...Option) *Handler {
	h := &Handler{
		catalog: catalog,
		pkg:     pkg,
		logger:  zap.NewNop(),
		gen:     codegen.New(),
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID(), middleware.Recovery(h.logger), middleware.Logging(h.logger))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Method "+r.Method+" is not allowed for this resource")
	})

	r.Get("/healthz", h.health)
	r.Get("/categories", h.categories)
	if h.events != nil {
		r.Get("/events", h.events)
	}
	r.Route("/algorithms", func(r chi.Router) {
		r.Get("/", h.list)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.withAlgorithm(func(w http.ResponseWriter, _ *http.Request, a metadata.Algorithm) {
				writeJSON(w, http.StatusOK, a.ToDict())
			}))
			r.Get("/ports", h.withAlgorithm(func(w http.ResponseWriter, _ *http.Request, a metadata.Algorithm) {
				writeJSON(w, http.StatusOK, a.ToPortDict())
			}))
			r.Get("/prompt", h.withAlgorithm(func(w http.ResponseWriter, _ *http.Request, a metadata.Algorithm) {
				writeJSON(w, http.StatusOK, a.ToPromptDict())
			}))
			r.Get("/source", h.withAlgorithm(h.source))
			r.Post("/call", h.withAlgorithm(h.call))
		})
	})
	h.mux = r

	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type listResponse struct {
	Package    string           `json:"package"`
	Revision   string           `json:"revision"`
	Algorithms []map[string]any `json:"algorithms"`
}

type categoryResponse struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Algorithms []string `json:"algorithms"`
}

type callRequest struct {
	Args   map[string]any `json:"args"`
	Output string         `json:"output"`
}

type callResponse struct {
	Code string `json:"code"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	resp := listResponse{
		Package:    snap.Package,
		Revision:   snap.Revision,
		Algorithms: []map[string]any{},
	}
	for _, a := range snap.Algorithms() {
		if category == "" || a.Category == category {
			resp.Algorithms = append(resp.Algorithms, a.ToDict())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	labels := h.catalog.Labels()
	groups := snap.ByCategory()
	resp := make([]categoryResponse, 0, len(groups))
	for _, key := range snap.Categories() {
		c := categoryResponse{Key: key, Label: labels.Label(key)}
		for _, a := range groups[key] {
			c.Algorithms = append(c.Algorithms, a.ID)
		}
		resp = append(resp, c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) source(w http.ResponseWriter, r *http.Request, a metadata.Algorithm) {
	src, err := h.gen.Generate(a, "")
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/x-go; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(src))
}

func (h *Handler) call(w http.ResponseWriter, r *http.Request, a metadata.Algorithm) {
	req := callRequest{Output: metadata.ResultPort}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body: "+err.Error())
			return
		}
	}

	code, err := codegen.GenerateCall(a, req.Args, req.Output)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, callResponse{Code: code})
}

// withAlgorithm resolves the {id} path parameter before calling next.
func (h *Handler) withAlgorithm(next func(http.ResponseWriter, *http.Request, metadata.Algorithm)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := h.snapshot(w, r)
		if !ok {
			return
		}
		id := chi.URLParam(r, "id")
		a, found := snap.Get(id)
		if !found {
			writeError(w, r, http.StatusNotFound, "NOT_FOUND", "No algorithm with id '"+id+"'")
			return
		}
		next(w, r, a)
	}
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*scanner.Snapshot, bool) {
	snap, err := h.catalog.Snapshot(r.Context(), h.pkg)
	if err != nil {
		h.catalogError(w, r, err)
		return nil, false
	}
	return snap, true
}

// catalogError maps a catalog diagnostic to a response: metadata problems
// are the caller's fault, everything else is a server error.
func (h *Handler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	var diag *catalogerrors.Error
	if !errors.As(err, &diag) {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	status := http.StatusBadRequest
	if diag.Code != catalogerrors.CodeInvalidMetadata {
		status = http.StatusInternalServerError
		h.logger.Error("catalog error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, r, status, string(diag.Code), diag.Message)
}

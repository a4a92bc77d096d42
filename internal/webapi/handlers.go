// Package webapi exposes the evaluation pipeline over HTTP: on-demand
// evaluation of a single suggestion pair, batch runs over the discovered
// dataset, and read access to stored evaluations.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/clausegrade/clausegrade/internal/batch"
	"github.com/clausegrade/clausegrade/internal/statistics"
	"github.com/clausegrade/clausegrade/internal/store"
)

// Version is set at build time or defaults to dev.
var Version = "0.3.0"

// Option configures Handlers.
type Option func(*Handlers)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handlers) { h.logger = logger }
}

// WithModel sets the model name reported by the health endpoint.
func WithModel(name string) Option {
	return func(h *Handlers) { h.model = name }
}

// WithWorkers sets the default batch worker count.
func WithWorkers(n int) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.workers = n
		}
	}
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	evaluator Evaluator
	store     EvaluationStore
	pairs     PairSource
	runBatch  BatchFunc

	model   string
	workers int
	logger  *slog.Logger
}

// NewHandlers creates Handlers over the given pipeline components.
func NewHandlers(evaluator Evaluator, evalStore EvaluationStore, pairs PairSource, runBatch BatchFunc, opts ...Option) *Handlers {
	h := &Handlers{
		evaluator: evaluator,
		store:     evalStore,
		pairs:     pairs,
		runBatch:  runBatch,
		workers:   batch.DefaultWorkers,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
		Model:   h.model,
	})
}

// HandleEvaluate evaluates a single suggestion pair supplied in the
// request body and persists the result under a fresh request id.
func (h *Handlers) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := body.Request.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := body.Response.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid response: "+err.Error())
		return
	}

	requestID := uuid.NewString()
	scores := h.evaluator.Evaluate(r.Context(), body.Request, body.Response)
	_, stored := h.store.Store(r.Context(), requestID, body.Request, body.Response, scores)

	writeJSON(w, http.StatusOK, EvaluateResponse{
		RequestID:  requestID,
		Stored:     stored,
		Evaluation: scores,
	})
}

// HandleBatch discovers the configured dataset and evaluates it in the
// background. The response acknowledges acceptance; results land in the
// store as the batch progresses.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	opts, err := decodeBatchOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pairs, err := h.pairs.Discover()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "discovering pairs: "+err.Error())
		return
	}
	if len(pairs) == 0 {
		writeError(w, http.StatusNotFound, "no suggestion pairs found")
		return
	}

	workers := h.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}

	// Detach from the request context so the batch outlives the response.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		digest := h.runBatch(ctx, pairs, workers)
		h.logger.Info("background batch finished",
			"total", digest.Total, "stored", digest.Stored,
			"skipped", digest.Skipped, "abandoned", digest.Abandoned)
	}()

	writeJSON(w, http.StatusAccepted, BatchAccepted{
		Status: "accepted",
		Total:  len(pairs),
	})
}

// HandleSummary returns aggregate score statistics across all stored
// evaluations.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statistics.Summarize(records))
}

// HandleEvaluations returns all stored evaluations, newest first.
func (h *Handlers) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]EvaluationSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, recordToSummary(rec))
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleEvaluationDetail returns one stored evaluation with its pair.
func (h *Handlers) HandleEvaluationDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "evaluation id must be an integer")
		return
	}

	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "evaluation not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, recordToDetail(*rec))
}

// decodeBatchOptions reads the optional JSON options object from the
// request body. An empty body is valid and yields zero options.
func decodeBatchOptions(r *http.Request) (BatchOptions, error) {
	var opts BatchOptions

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return opts, nil
		}
		return opts, errors.New("invalid JSON body: " + err.Error())
	}
	if err := mapstructure.Decode(raw, &opts); err != nil {
		return opts, errors.New("invalid options: " + err.Error())
	}
	if opts.Workers < 0 {
		return opts, errors.New("workers must be positive")
	}
	return opts, nil
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/evaluate", h.HandleEvaluate)
	mux.HandleFunc("POST /api/evaluate/batch", h.HandleBatch)
	mux.HandleFunc("GET /api/summary", h.HandleSummary)
	mux.HandleFunc("GET /api/evaluations", h.HandleEvaluations)
	mux.HandleFunc("GET /api/evaluations/{id}", h.HandleEvaluationDetail)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}

// Package handler implements the HTTP surface of the warehouse service:
// health, pipeline runs, and read-only table exploration. Handlers are
// methods on Server, split into per-concern files, all sharing the same
// struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/citybike/warehouse/internal/pipeline"
	"github.com/citybike/warehouse/internal/warehouse"
)

// PipelineRunner defines the pipeline operations the handler depends on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a stub without building a full model graph.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.RunReport, error)
}

// Server implements the HTTP handlers for all endpoints.
type Server struct {
	store  warehouse.Store
	runner PipelineRunner

	// runMu serializes pipeline runs: materialization is a single pass and
	// two concurrent full refreshes over the same store would interleave.
	runMu sync.Mutex

	mu     sync.RWMutex
	latest *pipeline.RunReport
}

// NewServer constructs the Server with all its dependencies.
func NewServer(store warehouse.Store, runner PipelineRunner) *Server {
	return &Server{store: store, runner: runner}
}

// SetLatestReport records the most recent run report, e.g. the bootstrap run
// executed before the server starts listening.
func (s *Server) SetLatestReport(report *pipeline.RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = report
}

// Register mounts every route on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Post("/runs", s.PostRun)
	r.Get("/runs/latest", s.GetLatestRun)
	r.Get("/tables", s.ListTables)
	r.Get("/tables/{name}", s.GetTable)
}

// --- response helpers -------------------------------------------------------

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: encode response", "error", err)
	}
}

// queryInt parses an optional integer query parameter, returning nil when
// absent or malformed so pagination falls back to its defaults.
func queryInt(r *http.Request, key string) *int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

package handler

import (
	"log/slog"
	"net/http"
)

// PostRun handles POST /runs: executes a full pipeline run and returns its
// report. Runs are serialized; a second request waits for the first to
// finish rather than interleaving two full refreshes.
func (s *Server) PostRun(w http.ResponseWriter, r *http.Request) {
	s.runMu.Lock()
	report, err := s.runner.Run(r.Context())
	s.runMu.Unlock()
	if err != nil {
		slog.Error("pipeline run failed", "error", err)
		writeServerError(w)
		return
	}

	s.SetLatestReport(report)
	writeJSON(w, http.StatusCreated, report)
}

// GetLatestRun handles GET /runs/latest: returns the report of the most
// recent pipeline run, or 404 when no run has happened yet.
func (s *Server) GetLatestRun(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	report := s.latest
	s.mu.RUnlock()

	if report == nil {
		writeNotFound(w, "no pipeline run yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

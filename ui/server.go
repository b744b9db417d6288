// Package ui serves the latest run's report and insights over HTTP.
package ui

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adpulse/adapters/report"
	"adpulse/ports"
)

// Server exposes run artifacts from the output directory. It reads from
// disk per request so a new run shows up without a restart.
type Server struct {
	outDir string
	rec    ports.Recorder
	router chi.Router
}

// NewServer creates the results server over outDir.
func NewServer(outDir string, rec ports.Recorder) *Server {
	if rec == nil {
		rec = ports.NopRecorder{}
	}
	s := &Server{outDir: outDir, rec: rec}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", s.handleReport)
	r.Get("/api/insights", s.handleInsights)
	r.Get("/healthz", s.handleHealth)

	s.router = r
	return s
}

// Handler returns the underlying HTTP handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.rec.Info("ui: results server listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// handleReport serves the most recent HTML report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path, err := report.LatestReportHTML(s.outDir)
	if err != nil {
		http.Error(w, "no report available yet", http.StatusNotFound)
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		s.rec.Error("ui: failed to read report %s: %v", path, err)
		http.Error(w, "failed to read report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(raw)
}

// handleInsights serves the most recent validation results as JSON.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	results, runID, err := report.LatestInsights(s.outDir)
	if err != nil {
		http.Error(w, `{"error":"no insights available yet"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":   runID,
		"insights": results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

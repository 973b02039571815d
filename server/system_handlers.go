package server

import (
	"net/http"
	"runtime"
	"time"
)

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":    time.Since(s.started).Seconds(),
		"memory": map[string]any{
			"alloc":      mem.Alloc,
			"totalAlloc": mem.TotalAlloc,
			"sys":        mem.Sys,
			"numGC":      mem.NumGC,
		},
	})
}

func (s *server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	counts, err := s.models.Activities.Counts(r.Context())
	if err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to count activities",
			Err:     err,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "running",
		"version":     s.cfg.Version,
		"environment": s.cfg.Environment,
		"activities":  counts,
	})
}

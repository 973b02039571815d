package server

import (
	"net/http"
)

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)

	mux.HandleFunc("/api/activities", s.activityHandler)
	mux.HandleFunc("/api/activities/", s.activityHandler)
	mux.HandleFunc("/api/process", s.processHandler)
	mux.Handle("/metrics", s.metrics.handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
	})

	var handler http.Handler = mux
	if s.cfg.TrackRequests {
		handler = s.trackRequest(handler)
	}
	handler = s.basicAuth(handler)
	handler = s.logRequest(handler)
	handler = s.recoverPanic(handler)

	return handler
}

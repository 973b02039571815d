package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/honganh1206/openclawd/server/data"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Status() int {
	if rec.status == 0 {
		return http.StatusOK
	}
	return rec.status
}

func (s *server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic while serving request", "method", r.Method, "path", r.URL.Path, "panic", rec)
				w.Header().Set("Connection", "close")
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		s.metrics.observeRequest(r.Method, rec.Status(), elapsed)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.Status(),
			"duration", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}

// basicAuth is a no-op unless both server credentials are configured.
func (s *server) basicAuth(next http.Handler) http.Handler {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username)) != 1 ||
			subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) != 1 {
			w.Header().Set("WWW-Authenticate", `Basic realm="openclawd", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// trackRequest records every request as an http_request activity and
// completes it with the response status once the handler returns. A
// panicking handler marks the activity failed before the panic moves on to
// recoverPanic.
func (s *server) trackRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		activity, err := s.logActivity(r.Context(), "http_request", r.Method+" "+r.URL.Path, map[string]any{
			"method":    r.Method,
			"path":      r.URL.Path,
			"ip":        clientIP(r),
			"userAgent": r.UserAgent(),
		})
		if err != nil {
			s.logger.Error("failed to track request", "method", r.Method, "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			status, result := data.StatusCompleted, map[string]any{"statusCode": rec.Status()}
			p := recover()
			if p != nil {
				status = data.StatusFailed
				result = map[string]any{"statusCode": http.StatusInternalServerError, "error": fmt.Sprint(p)}
			}

			ctx := context.WithoutCancel(r.Context())
			_, err := s.models.Activities.Update(ctx, activity.ID, status, result)
			// A DELETE /api/activities removes the tracking row too.
			if err != nil && !errors.Is(err, data.ErrActivityNotFound) {
				s.logger.Warn("failed to complete tracked request", "id", activity.ID, "error", err)
			}

			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/honganh1206/openclawd/server/data"
)

func (s *server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req struct {
		Task string `json:"task"`
		Data any    `json:"data"`
	}

	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Err:     err,
		})
		return
	}

	activity, err := s.logActivity(r.Context(), "process", "Processing task: "+req.Task, map[string]any{
		"task": req.Task,
		"data": req.Data,
	})
	if err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to log task",
			Err:     err,
		})
		return
	}

	result, err := s.process(r.Context(), req.Task)
	if err != nil {
		s.metrics.tasksProcessed.WithLabelValues(data.StatusFailed).Inc()
		// The request context may be gone already.
		if _, updateErr := s.models.Activities.Update(context.WithoutCancel(r.Context()), activity.ID, data.StatusFailed, map[string]any{"error": err.Error()}); updateErr != nil {
			s.logger.Error("failed to mark task as failed", "id", activity.ID, "error", updateErr)
		}
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
			Err:     err,
		})
		return
	}

	if _, err := s.models.Activities.Update(r.Context(), activity.ID, data.StatusCompleted, result); err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to complete task",
			Err:     err,
		})
		return
	}

	s.metrics.tasksProcessed.WithLabelValues(data.StatusCompleted).Inc()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

// process stands in for real task execution: it waits for the configured
// delay and reports the task as done.
func (s *server) process(ctx context.Context, task string) (map[string]any, error) {
	if delay := s.cfg.ProcessDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return map[string]any{
		"taskId":    uuid.NewString(),
		"task":      task,
		"processed": true,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

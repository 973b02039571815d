package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/honganh1206/openclawd/server/data"
)

const defaultListLimit = 50

func (s *server) activityHandler(w http.ResponseWriter, r *http.Request) {
	id, hasID, ok := parseActivityID(r.URL.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Route not found"})
		return
	}

	if hasID {
		switch r.Method {
		case http.MethodGet:
			s.getActivity(w, r, id)
		case http.MethodPatch:
			s.updateActivity(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPatch)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.listActivities(w, r)
	case http.MethodPost:
		s.createActivity(w, r)
	case http.MethodDelete:
		s.clearActivities(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// parseActivityID splits /api/activities[/{id}]. ok is false for deeper
// paths.
func parseActivityID(path string) (id string, hasID bool, ok bool) {
	path = strings.TrimSuffix(path, "/")

	if path == "/api/activities" {
		return "", false, true
	}

	id, found := strings.CutPrefix(path, "/api/activities/")
	if !found || id == "" || strings.Contains(id, "/") {
		return "", false, false
	}

	return id, true, true
}

func (s *server) listActivities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}

	var activities []*data.Activity
	if status := query.Get("status"); status != "" {
		activities, err = s.models.Activities.ByStatus(r.Context(), status)
	} else {
		activities, err = s.models.Activities.Recent(r.Context(), limit)
	}
	if err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list activities",
			Err:     err,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"count":      len(activities),
		"activities": activities,
	})
}

func (s *server) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	activity, err := s.models.Activities.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "activity": activity})
}

func (s *server) createActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        string         `json:"type"`
		Description string         `json:"description"`
		Metadata    map[string]any `json:"metadata"`
	}

	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Err:     err,
		})
		return
	}

	if req.Type == "" || req.Description == "" {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Type and description are required",
		})
		return
	}

	activity, err := s.logActivity(r.Context(), req.Type, req.Description, req.Metadata)
	if err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create activity",
			Err:     err,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "activity": activity})
}

func (s *server) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string         `json:"status"`
		Result map[string]any `json:"result"`
	}

	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Err:     err,
		})
		return
	}

	if req.Status == "" {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Status is required",
		})
		return
	}

	activity, err := s.models.Activities.Update(r.Context(), id, req.Status, req.Result)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "activity": activity})
}

func (s *server) clearActivities(w http.ResponseWriter, r *http.Request) {
	if err := s.models.Activities.Clear(r.Context()); err != nil {
		s.handleError(w, r, &HTTPError{
			Code:    http.StatusInternalServerError,
			Message: "Failed to clear activities",
			Err:     err,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Activities cleared"})
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const DefaultListLimit = 50

// Activity statuses understood by the server.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type ListOptions struct {
	// Limit caps the number of activities returned. Zero means DefaultListLimit.
	Limit int
	// Status filters by activity status when non-empty.
	Status string
}

type CreateActivityRequest struct {
	Type        string         `json:"type" jsonschema:"description=Activity type such as python_test or maintenance"`
	Description string         `json:"description" jsonschema:"description=Human readable description"`
	Metadata    map[string]any `json:"metadata" jsonschema:"description=Free-form metadata stored with the activity"`
}

type UpdateActivityRequest struct {
	Status string         `json:"status" jsonschema:"enum=pending,enum=running,enum=completed,enum=failed"`
	Result map[string]any `json:"result" jsonschema:"description=Outcome of the activity"`
}

func (c *Client) ListActivities(ctx context.Context, opts ListOptions) (Body, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	return c.doRequest(ctx, "list activities", http.MethodGet, "/api/activities", query, nil)
}

func (c *Client) GetActivity(ctx context.Context, id string) (Body, error) {
	return c.doRequest(ctx, "get activity", http.MethodGet, activityPath(id), nil, nil)
}

// CreateActivity registers a new activity. A nil metadata map is sent as {}.
func (c *Client) CreateActivity(ctx context.Context, activityType, description string, metadata map[string]any) (Body, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}

	req := CreateActivityRequest{
		Type:        activityType,
		Description: description,
		Metadata:    metadata,
	}
	return c.doRequest(ctx, "create activity", http.MethodPost, "/api/activities", nil, req)
}

// UpdateActivity sets the status of an activity. A nil result is sent as {}.
func (c *Client) UpdateActivity(ctx context.Context, id, status string, result map[string]any) (Body, error) {
	if result == nil {
		result = map[string]any{}
	}

	req := UpdateActivityRequest{
		Status: status,
		Result: result,
	}
	return c.doRequest(ctx, "update activity", http.MethodPatch, activityPath(id), nil, req)
}

// ClearActivities removes every activity the server tracks.
func (c *Client) ClearActivities(ctx context.Context) (Body, error) {
	return c.doRequest(ctx, "clear activities", http.MethodDelete, "/api/activities", nil, nil)
}

func activityPath(id string) string {
	return "/api/activities/" + url.PathEscape(id)
}

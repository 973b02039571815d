package api

import (
	"context"
	"net/http"
)

type ProcessTaskRequest struct {
	Task string         `json:"task" jsonschema:"description=Name of the task to run"`
	Data map[string]any `json:"data" jsonschema:"description=Input handed to the task"`
}

// ProcessTask asks the server to run a named task. A nil data map is sent as {}.
func (c *Client) ProcessTask(ctx context.Context, task string, data map[string]any) (Body, error) {
	if data == nil {
		data = map[string]any{}
	}

	req := ProcessTaskRequest{
		Task: task,
		Data: data,
	}
	return c.doRequest(ctx, "process task", http.MethodPost, "/api/process", nil, req)
}

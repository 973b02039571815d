package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/honganh1206/openclawd/api"
	"github.com/honganh1206/openclawd/config"
	"github.com/honganh1206/openclawd/server"
	"github.com/honganh1206/openclawd/server/data"
	"github.com/honganh1206/openclawd/server/data/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	models := data.NewModels(testutil.CreateTestDB(t, data.ActivitySchema), 0)
	handler := server.New(server.Config{
		Version:      "test",
		ProcessDelay: func() time.Duration { return 0 },
	}, models, slog.New(slog.DiscardHandler))

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

// executeCLI runs the CLI with a clean environment and returns stdout.
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for _, key := range []string{"OPENCLAWD_SERVER", "OPENCLAWD_USERNAME", "OPENCLAWD_PASSWORD", "OPENCLAWD_TIMEOUT"} {
		t.Setenv(key, "")
	}

	var out bytes.Buffer
	cli := NewCLI()
	cli.SetOut(&out)
	cli.SetErr(io.Discard)
	cli.SetArgs(append(args, "--env", ""))

	err := cli.Execute()
	return out.String(), err
}

func decodeOutput(t *testing.T, out string) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body), out)
	return body
}

func TestDemo(t *testing.T) {
	ts := newTestAPI(t)

	out, err := executeCLI(t, ts.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "Server: "+ts.URL)
	assert.Contains(t, out, "✓ Status: healthy")
	assert.Contains(t, out, "Version: test")
	assert.Contains(t, out, "✓ Activity created!")
	assert.Contains(t, out, "Type: go_test")
	assert.Contains(t, out, "✓ Task processed!")
	assert.Contains(t, out, "Dashboard: "+ts.URL)
	assert.NotContains(t, out, "✗")
}

func TestDemo_ListsPreviousActivities(t *testing.T) {
	ts := newTestAPI(t)

	_, err := executeCLI(t, ts.URL)
	require.NoError(t, err)

	out, err := executeCLI(t, ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "[go_test] Go client demo")
}

func TestDemo_HealthFailureAborts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "down for maintenance")
	}))
	t.Cleanup(ts.Close)

	out, err := executeCLI(t, ts.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrDecode)
	assert.Contains(t, out, "✗ Error")
	assert.NotContains(t, out, "2. System status")
}

func TestDemo_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := executeCLI(t, url, "--timeout", "1s")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrTransport)
}

func TestDemo_StepFailuresContinue(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			io.WriteString(w, `{"status":"healthy"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"error":"boom"}`)
	}))
	t.Cleanup(ts.Close)

	out, err := executeCLI(t, ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "✗ Server reported failure: boom")
	assert.Contains(t, out, "Demo finished!")
}

func TestPartialCredentialsRejected(t *testing.T) {
	ts := newTestAPI(t)

	_, err := executeCLI(t, "health", "--server", ts.URL, "--username", "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrPartialCredentials)
}

func TestHealthAndStatusCommands(t *testing.T) {
	ts := newTestAPI(t)

	out, err := executeCLI(t, "health", "--server", ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "healthy", decodeOutput(t, out)["status"])

	out, err = executeCLI(t, "status", "--server", ts.URL)
	require.NoError(t, err)
	body := decodeOutput(t, out)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestActivitiesCommands(t *testing.T) {
	ts := newTestAPI(t)

	out, err := executeCLI(t, "activities", "create", "--server", ts.URL,
		"--type", "deploy", "--description", "Deploy build 42", "--metadata", `{"build":42}`)
	require.NoError(t, err)
	created := decodeOutput(t, out)
	require.Equal(t, true, created["success"])
	activity := created["activity"].(map[string]any)
	id := activity["id"].(string)
	assert.Equal(t, map[string]any{"build": float64(42)}, activity["metadata"])

	out, err = executeCLI(t, "activities", "get", id, "--server", ts.URL)
	require.NoError(t, err)
	assert.Equal(t, id, decodeOutput(t, out)["activity"].(map[string]any)["id"])

	out, err = executeCLI(t, "activities", "update", id, "--server", ts.URL,
		"--status", "completed", "--result", `{"ok":true}`)
	require.NoError(t, err)
	updated := decodeOutput(t, out)["activity"].(map[string]any)
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, map[string]any{"ok": true}, updated["result"])

	out, err = executeCLI(t, "activities", "list", "--server", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Deploy build 42")
	assert.Contains(t, out, "Total: 1")

	out, err = executeCLI(t, "activities", "list", "--server", ts.URL, "--status", "running", "--json")
	require.NoError(t, err)
	assert.Equal(t, float64(0), decodeOutput(t, out)["count"])

	_, err = executeCLI(t, "activities", "clear", "--server", ts.URL)
	require.NoError(t, err)

	out, err = executeCLI(t, "activities", "list", "--server", ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No activities found.")
}

func TestActivitiesGet_NotFound(t *testing.T) {
	ts := newTestAPI(t)

	out, err := executeCLI(t, "activities", "get", "missing", "--server", ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Activity not found")
	assert.Equal(t, false, decodeOutput(t, out)["success"])
}

func TestActivitiesCreate_InvalidMetadata(t *testing.T) {
	ts := newTestAPI(t)

	_, err := executeCLI(t, "activities", "create", "--server", ts.URL,
		"--type", "t", "--description", "d", "--metadata", "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--metadata must be a JSON object")
}

func TestProcessCommand(t *testing.T) {
	ts := newTestAPI(t)

	out, err := executeCLI(t, "process", "resize", "--server", ts.URL, "--data", `{"width":640}`)
	require.NoError(t, err)

	body := decodeOutput(t, out)
	require.Equal(t, true, body["success"])
	result := body["result"].(map[string]any)
	assert.Equal(t, "resize", result["task"])
	assert.NotEmpty(t, result["taskId"])
}

func TestSchemaCommand(t *testing.T) {
	out, err := executeCLI(t, "schema")
	require.NoError(t, err)

	var payloads []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payloads))
	require.Len(t, payloads, 3)
	assert.Equal(t, "create-activity", payloads[0]["name"])
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "openclawd version "+Version)
}

func TestParseObjectFlag(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", value: "", want: nil},
		{name: "object", value: `{"a":"b"}`, want: map[string]any{"a": "b"}},
		{name: "large integer", value: `{"id":9007199254740993}`, want: map[string]any{"id": json.Number("9007199254740993")}},
		{name: "null", value: `null`, wantErr: true},
		{name: "trailing data", value: `{"a":1} {"b":2}`, wantErr: true},
		{name: "array", value: `[1,2]`, wantErr: true},
		{name: "invalid", value: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseObjectFlag("data", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServeFlagDefaultsMatchConfig(t *testing.T) {
	for _, key := range []string{"PORT", "OPENCLAWD_ADDR", "OPENCLAWD_TRACK_REQUESTS", "OPENCLAWD_SIMULATE_INTERVAL"} {
		t.Setenv(key, "")
	}
	cfg := config.Load()

	serveCmd, _, err := NewCLI().Find([]string{"serve"})
	require.NoError(t, err)

	tests := []struct {
		flag string
		want string
	}{
		{"addr", cfg.Addr},
		{"track-requests", strconv.FormatBool(cfg.TrackRequests)},
		{"simulate", cfg.SimulateInterval.String()},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := serveCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.DefValue)
		})
	}
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/honganh1206/openclawd/api"
	"github.com/honganh1206/openclawd/utils"
	"github.com/spf13/cobra"
)

func (a *app) demoHandler(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		a.cfg.Server = args[0]
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}

	return runDemo(cmd.Context(), cmd.OutOrStdout(), client, a.cfg.Server)
}

// runDemo walks through the API once. Only a failed health check stops
// it; every other failure is reported and the next step runs.
func runDemo(ctx context.Context, w io.Writer, client *api.Client, server string) error {
	rule := strings.Repeat("=", 60)

	fmt.Fprint(w, utils.RenderBox("Openclawd API client", []string{"Server: " + server}))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "1. Health check...")
	health, err := client.HealthCheck(ctx)
	if err != nil {
		fmt.Fprintf(w, "   ✗ Error: %v\n", err)
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Fprintf(w, "   ✓ Status: %s\n\n", health.GetString("status"))

	fmt.Fprintln(w, "2. System status...")
	if status, err := client.GetStatus(ctx); err != nil {
		fmt.Fprintf(w, "   ✗ Error: %v\n", err)
	} else {
		fmt.Fprintf(w, "   Status: %s\n", status.GetString("status"))
		fmt.Fprintf(w, "   Version: %s\n", status.GetString("version"))
		if acts := status.GetObject("activities"); acts != nil {
			fmt.Fprintln(w, "   Activities:")
			fmt.Fprintf(w, "     - Total: %d\n", acts.GetInt("total"))
			fmt.Fprintf(w, "     - Running: %d\n", acts.GetInt("running"))
			fmt.Fprintf(w, "     - Completed: %d\n", acts.GetInt("completed"))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "3. Recent activities...")
	if list, err := client.ListActivities(ctx, api.ListOptions{Limit: 5}); err != nil {
		fmt.Fprintf(w, "   ✗ Error: %v\n", err)
	} else if list.Success() {
		fmt.Fprintf(w, "   Total: %d\n", list.Count())
		activities := list.GetObjects("activities")
		for _, act := range activities[:min(3, len(activities))] {
			fmt.Fprintf(w, "   - [%s] %s\n", act.GetString("type"), act.GetString("description"))
			fmt.Fprintf(w, "     Status: %s | ID: %s\n", act.GetString("status"), utils.Shorten(act.GetString("id"), 8))
		}
	} else {
		reportFailure(w, list)
	}
	fmt.Fprintln(w)

	now := time.Now().Format(time.RFC3339)

	fmt.Fprintln(w, "4. Create activity...")
	created, err := client.CreateActivity(ctx, "go_test", "Go client demo - "+now, map[string]any{
		"language":  "go",
		"client":    "openclawd",
		"timestamp": now,
	})
	if err != nil {
		fmt.Fprintf(w, "   ✗ Error: %v\n", err)
	} else if created.Success() {
		activity := created.GetObject("activity")
		fmt.Fprintln(w, "   ✓ Activity created!")
		fmt.Fprintf(w, "     ID: %s\n", activity.GetString("id"))
		fmt.Fprintf(w, "     Type: %s\n", activity.GetString("type"))
		fmt.Fprintf(w, "     Status: %s\n", activity.GetString("status"))
	} else {
		reportFailure(w, created)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "5. Process task...")
	processed, err := client.ProcessTask(ctx, "go_processing", map[string]any{
		"operation": "test",
		"timestamp": now,
		"values":    []int{1, 2, 3, 4, 5},
	})
	if err != nil {
		fmt.Fprintf(w, "   ✗ Error: %v\n", err)
	} else if processed.Success() {
		fmt.Fprintln(w, "   ✓ Task processed!")
		fmt.Fprintf(w, "     Task ID: %s...\n", utils.Shorten(processed.GetObject("result").GetString("taskId"), 8))
	} else {
		reportFailure(w, processed)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Demo finished!")
	fmt.Fprintf(w, "Dashboard: %s\n", client.BaseURL())
	fmt.Fprintln(w, rule)

	return nil
}

func reportFailure(w io.Writer, body api.Body) {
	msg := body.GetString("error")
	if msg == "" {
		msg = "no success flag in response"
	}
	fmt.Fprintf(w, "   ✗ Server reported failure: %s\n", msg)
}

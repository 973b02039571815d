package cmd

import (
	"fmt"

	"github.com/honganh1206/openclawd/api"
	"github.com/honganh1206/openclawd/utils"
	"github.com/spf13/cobra"
)

func (a *app) newActivitiesCmd() *cobra.Command {
	activitiesCmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"activity"},
		Short:   "Inspect and manage tracked activities",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent activities",
		Args:  cobra.NoArgs,
		RunE:  a.listActivitiesHandler,
	}
	listCmd.Flags().Int("limit", api.DefaultListLimit, "Maximum number of activities")
	listCmd.Flags().String("status", "", "Only show activities with this status")
	listCmd.Flags().Bool("json", false, "Print the raw response")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one activity",
		Args:  cobra.ExactArgs(1),
		RunE:  a.getActivityHandler,
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new activity",
		Args:  cobra.NoArgs,
		RunE:  a.createActivityHandler,
	}
	createCmd.Flags().String("type", "", "Activity type")
	createCmd.Flags().String("description", "", "Activity description")
	createCmd.Flags().String("metadata", "", "Metadata as a JSON object")
	_ = createCmd.MarkFlagRequired("type")
	_ = createCmd.MarkFlagRequired("description")

	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the status of an activity",
		Args:  cobra.ExactArgs(1),
		RunE:  a.updateActivityHandler,
	}
	updateCmd.Flags().String("status", "", "New status (pending, running, completed, failed)")
	updateCmd.Flags().String("result", "", "Result as a JSON object")
	_ = updateCmd.MarkFlagRequired("status")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all activities",
		Args:  cobra.NoArgs,
		RunE:  a.clearActivitiesHandler,
	}

	activitiesCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, clearCmd)

	return activitiesCmd
}

func (a *app) listActivitiesHandler(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	raw, _ := cmd.Flags().GetBool("json")

	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.ListActivities(cmd.Context(), api.ListOptions{Limit: limit, Status: status})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if raw || !body.Success() {
		return reportBody(out, body)
	}

	activities := body.GetObjects("activities")
	if len(activities) == 0 {
		fmt.Fprintln(out, "No activities found.")
		return nil
	}

	rows := make([][]string, 0, len(activities))
	for _, act := range activities {
		rows = append(rows, []string{
			act.GetString("id"),
			act.GetString("type"),
			act.GetString("status"),
			utils.Shorten(act.GetString("description"), 50),
			utils.FormatTimestamp(act.GetString("timestamp")),
		})
	}

	if err := utils.RenderTable(out, []string{"ID", "Type", "Status", "Description", "Timestamp"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %d\n", body.Count())

	return nil
}

func (a *app) getActivityHandler(cmd *cobra.Command, args []string) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.GetActivity(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func (a *app) createActivityHandler(cmd *cobra.Command, args []string) error {
	activityType, _ := cmd.Flags().GetString("type")
	description, _ := cmd.Flags().GetString("description")
	metadataFlag, _ := cmd.Flags().GetString("metadata")

	metadata, err := parseObjectFlag("metadata", metadataFlag)
	if err != nil {
		return err
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.CreateActivity(cmd.Context(), activityType, description, metadata)
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func (a *app) updateActivityHandler(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("status")
	resultFlag, _ := cmd.Flags().GetString("result")

	result, err := parseObjectFlag("result", resultFlag)
	if err != nil {
		return err
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.UpdateActivity(cmd.Context(), args[0], status, result)
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func (a *app) clearActivitiesHandler(cmd *cobra.Command, args []string) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.ClearActivities(cmd.Context())
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

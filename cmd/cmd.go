package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/honganh1206/openclawd/api"
	"github.com/honganh1206/openclawd/config"
	"github.com/honganh1206/openclawd/schema"
	"github.com/spf13/cobra"
)

var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

type flags struct {
	envPath  string
	verbose  bool
	server   string
	username string
	password string
	timeout  time.Duration
}

// app carries the resolved configuration shared by all commands.
type app struct {
	flags  flags
	cfg    config.Config
	logger *slog.Logger
}

// loadConfig layers command line flags over the environment and .env file.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnvFile(a.flags.envPath); err != nil {
		return err
	}

	a.cfg = config.Load()

	fs := cmd.Flags()
	if fs.Changed("server") {
		a.cfg.Server = a.flags.server
	}
	if fs.Changed("username") {
		a.cfg.Username = a.flags.username
	}
	if fs.Changed("password") {
		a.cfg.Password = a.flags.password
	}
	if fs.Changed("timeout") {
		a.cfg.Timeout = a.flags.timeout
	}
	if a.flags.verbose {
		a.cfg.LogLevel = slog.LevelDebug
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.cfg.LogLevel}))
	slog.SetDefault(a.logger)

	return nil
}

// newClient rejects partial credentials instead of silently dropping them.
func (a *app) newClient() (*api.Client, error) {
	creds := api.Credentials{Username: a.cfg.Username, Password: a.cfg.Password}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	return api.NewClient(a.cfg.Server,
		api.WithBasicAuth(creds.Username, creds.Password),
		api.WithTimeout(a.cfg.Timeout),
		api.WithLogger(a.logger),
	)
}

func printJSON(w io.Writer, v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

// reportBody prints body and turns an explicit "success": false into an
// error so the process exits non-zero.
func reportBody(w io.Writer, body api.Body) error {
	if err := printJSON(w, body); err != nil {
		return err
	}
	if ok, present := body["success"].(bool); present && !ok {
		return fmt.Errorf("server reported failure: %s", body.GetString("error"))
	}
	return nil
}

// parseObjectFlag decodes a JSON object given on the command line, keeping
// numbers exact. An empty value yields nil.
func parseObjectFlag(name, value string) (map[string]any, error) {
	if value == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(value))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", name, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("--%s must be a single JSON object", name)
	}
	if obj == nil {
		return nil, fmt.Errorf("--%s must be a JSON object, got null", name)
	}
	return obj, nil
}

func (a *app) healthHandler(cmd *cobra.Command, args []string) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.HealthCheck(cmd.Context())
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func (a *app) statusHandler(cmd *cobra.Command, args []string) error {
	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.GetStatus(cmd.Context())
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func (a *app) processHandler(cmd *cobra.Command, args []string) error {
	dataFlag, err := cmd.Flags().GetString("data")
	if err != nil {
		return err
	}

	data, err := parseObjectFlag("data", dataFlag)
	if err != nil {
		return err
	}

	client, err := a.newClient()
	if err != nil {
		return err
	}

	body, err := client.ProcessTask(cmd.Context(), args[0], data)
	if err != nil {
		return err
	}
	return reportBody(cmd.OutOrStdout(), body)
}

func schemaHandler(cmd *cobra.Command, args []string) error {
	return printJSON(cmd.OutOrStdout(), schema.Payloads())
}

func NewCLI() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "openclawd [server]",
		Short: "Client for the Openclawd activity API",
		Long: `openclawd talks to an Openclawd server over HTTP.

Run without a subcommand to walk through a short demo against the given
server address (default localhost): health check, status, recent
activities, activity creation and task processing.`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: a.loadConfig,
		RunE:              a.demoHandler,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().StringVar(&a.flags.envPath, "env", ".env", "Path to .env file")
	rootCmd.PersistentFlags().BoolVar(&a.flags.verbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&a.flags.server, "server", config.DefaultServer, "Server address, e.g. 192.168.1.100 or http://host:3000 (env OPENCLAWD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&a.flags.username, "username", "", "Basic auth username (env OPENCLAWD_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&a.flags.password, "password", "", "Basic auth password (env OPENCLAWD_PASSWORD)")
	rootCmd.PersistentFlags().DurationVar(&a.flags.timeout, "timeout", config.DefaultTimeout, "Per-request timeout (env OPENCLAWD_TIMEOUT)")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the server is healthy",
		Args:  cobra.NoArgs,
		RunE:  a.healthHandler,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show server status and activity counts",
		Args:  cobra.NoArgs,
		RunE:  a.statusHandler,
	}

	processCmd := &cobra.Command{
		Use:   "process TASK",
		Short: "Ask the server to process a task",
		Args:  cobra.ExactArgs(1),
		RunE:  a.processHandler,
	}
	processCmd.Flags().String("data", "", "Task input as a JSON object")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of every request body",
		Args:  cobra.NoArgs,
		RunE:  schemaHandler,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of openclawd",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "openclawd version %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}

	rootCmd.AddCommand(
		healthCmd,
		statusCmd,
		a.newActivitiesCmd(),
		processCmd,
		a.newServeCmd(),
		schemaCmd,
		versionCmd,
	)

	return rootCmd
}

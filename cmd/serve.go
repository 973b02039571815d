package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/honganh1206/openclawd/config"
	"github.com/honganh1206/openclawd/server"
	"github.com/honganh1206/openclawd/server/db"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an Openclawd API server",
		Args:  cobra.NoArgs,
		RunE:  a.serveHandler,
	}

	serveCmd.Flags().String("addr", config.DefaultAddr, "Listen address (env OPENCLAWD_ADDR or PORT)")
	serveCmd.Flags().String("db", "", "SQLite database path (env OPENCLAWD_DB_PATH, default ~/.openclawd/openclawd.db)")
	serveCmd.Flags().Bool("track-requests", config.DefaultTrackRequests, "Record every HTTP request as an activity (env OPENCLAWD_TRACK_REQUESTS)")
	serveCmd.Flags().Duration("simulate", config.DefaultSimulateInterval, "Interval of simulated background activities, 0 disables them (env OPENCLAWD_SIMULATE_INTERVAL)")
	serveCmd.Flags().String("server-username", "", "Require basic auth with this username")
	serveCmd.Flags().String("server-password", "", "Require basic auth with this password")

	return serveCmd
}

func (a *app) serveHandler(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	if fs.Changed("addr") {
		a.cfg.Addr, _ = fs.GetString("addr")
	}
	if fs.Changed("db") {
		a.cfg.DBPath, _ = fs.GetString("db")
	}
	if fs.Changed("track-requests") {
		a.cfg.TrackRequests, _ = fs.GetBool("track-requests")
	}
	if fs.Changed("simulate") {
		a.cfg.SimulateInterval, _ = fs.GetDuration("simulate")
	}
	if fs.Changed("server-username") {
		a.cfg.ServerUsername, _ = fs.GetString("server-username")
	}
	if fs.Changed("server-password") {
		a.cfg.ServerPassword, _ = fs.GetString("server-password")
	}

	if (a.cfg.ServerUsername == "") != (a.cfg.ServerPassword == "") {
		return fmt.Errorf("--server-username and --server-password must be set together")
	}

	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
	}
	defer ln.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, ln, server.Config{
		Version:          Version,
		Environment:      a.cfg.Environment,
		Username:         a.cfg.ServerUsername,
		Password:         a.cfg.ServerPassword,
		TrackRequests:    a.cfg.TrackRequests,
		SimulateInterval: a.cfg.SimulateInterval,
		DB:               db.DefaultConfig(a.cfg.DBPath),
		MaxActivities:    a.cfg.MaxActivities,
	}, a.logger)
}

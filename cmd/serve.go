package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/dumper/internal/server"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the backend until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config.Server
	if cmd.IsSet("host") {
		config.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Port = cmd.Int("port")
	}
	if cmd.IsSet("output-dir") {
		config.OutputDir = cmd.String("output-dir")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(config, shared.WithLogger(r.logger, "component", "server"))
	return srv.ListenAndServe(ctx)
}

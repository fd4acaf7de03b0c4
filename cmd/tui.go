package main

import (
	"context"
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/dumper/internal/page"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/desertthunder/dumper/internal/ui"
	"github.com/urfave/cli/v3"
)

// Open launches the interactive dump page.
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) error {
	loc, err := r.initialLocation(cmd.String("location"), cmd.String("u"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	client := r.client()
	model := ui.NewModel(ctx, ui.Options{
		Streamer:     client,
		Downloader:   r.downloader(client),
		Theme:        r.themes(db),
		Recorder:     r.recorder(db),
		Timing:       r.config.Timing,
		LocationPath: r.config.Client.LocationPath,
		Location:     loc,
		Logger:       r.logger,
	})
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// initialLocation prefers a full location over a bare target.
func (r *Runner) initialLocation(raw, target string) (*url.URL, error) {
	if raw != "" {
		return page.Parse(raw)
	}
	path := r.config.Client.LocationPath
	if path == "" {
		path = "/dump"
	}
	return page.Location(path, target), nil
}

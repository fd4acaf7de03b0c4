package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/dumper/internal/fragment"
	"github.com/desertthunder/dumper/internal/protocol"
	"github.com/desertthunder/dumper/internal/services"
	"github.com/desertthunder/dumper/internal/session"
	"github.com/urfave/cli/v3"
)

// Stream runs one session headless, printing every panel change.
//
// It returns nil once the session finishes and an error when it fails.
func (r *Runner) Stream(ctx context.Context, cmd *cli.Command) error {
	client := r.client()

	var dl services.Downloader
	if !cmd.Bool("no-download") {
		dl = r.downloader(client)
	}

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("session history disabled", "err", err)
	} else {
		defer db.Close()
	}

	return r.runSession(ctx, client, dl, r.recorder(db), cmd.String("p"), cmd.String("u"))
}

// runSession drives a [session.Controller] from a single goroutine until the stream ends.
func (r *Runner) runSession(ctx context.Context, streamer services.Streamer, dl services.Downloader, rec *session.Recorder, partition, target string) error {
	ctrl := session.New(session.WithLogger(r.logger), session.OnEnd(rec.Ended))
	id, err := ctrl.Start(partition, target)
	if err != nil {
		return err
	}
	rec.Started(id, partition, target)

	out := &panelPrinter{w: r.output}
	out.print(ctrl.Panels())

	stream, err := streamer.Stream(ctx, partition, target)
	if err != nil {
		ctrl.Fail(id, err)
		out.print(ctrl.Panels())
		return err
	}
	if err := ctrl.Attach(id, stream); err != nil {
		return err
	}

	for {
		msg, err := stream.Next()
		if err != nil {
			ctrl.Fail(id, err)
			out.print(ctrl.Panels())
			return err
		}

		eff, _ := ctrl.Handle(id, msg.Data)
		out.print(ctrl.Panels())

		if !eff.Download.IsZero() && dl != nil {
			r.autoDownload(ctx, dl, eff.Download)
		}
		if eff.Closed {
			return nil
		}
	}
}

// autoDownload waits the configured delay and saves ref. Failures are reported, not returned.
func (r *Runner) autoDownload(ctx context.Context, dl services.Downloader, ref protocol.FileRef) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(r.config.Timing.AutoDownloadDelay()):
	}

	dest, err := dl.Download(ctx, ref)
	if err != nil {
		r.logger.Warn("download failed", "file", ref.Name, "err", err)
		if err := r.writePlain("%s download failed: %v\n", session.WarningGlyph, err); err != nil {
			r.logger.Warn("failed to report download", "err", err)
		}
		return
	}
	if err := r.writePlain("saved: %s\n", dest); err != nil {
		r.logger.Warn("failed to report download", "file", dest, "err", err)
	}
}

// panelPrinter writes the parts of the page that changed since the last call.
type panelPrinter struct {
	w    io.Writer
	last session.Panels
}

func (p *panelPrinter) print(next session.Panels) {
	prev := p.last
	p.last = next

	if next.Loading && !prev.Loading {
		fmt.Fprintln(p.w, "working...")
	}
	if next.StatusVisible && next.Status != prev.Status {
		fmt.Fprintf(p.w, "status:\n%s\n", indent(next.Status))
	}
	if next.ErrorVisible && next.Error != prev.Error {
		fmt.Fprintf(p.w, "error:\n%s\n", indent(next.Error))
	}
	if next.FileVisible && next.File != prev.File {
		fmt.Fprintf(p.w, "file: %s\n", next.File.Name)
	}
	if next.ButtonsVisible && next.Buttons != prev.Buttons {
		fmt.Fprintf(p.w, "partitions: %s\n", partitions(next.Buttons))
	}
}

func partitions(raw string) string {
	buttons, err := fragment.Parse(raw)
	if err != nil || len(buttons) == 0 {
		return fragment.Text(raw)
	}

	names := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if b.Partition == "" {
			names = append(names, b.Label)
			continue
		}
		names = append(names, b.Partition)
	}
	return strings.Join(names, ", ")
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

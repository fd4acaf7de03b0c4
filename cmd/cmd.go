// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// openCommand launches the interactive dump page.
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "open",
		Aliases: []string{"tui", "ui"},
		Usage:   "Open the interactive dump page",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "u",
				Usage: "Target URL to load, as if opened from /dump?u=<target>",
			},
			&cli.StringFlag{
				Name:  "location",
				Usage: "Full initial location, e.g. '/dump?u=https%3A%2F%2Fexample.com%2Fota.zip'",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log destination while the page owns the terminal",
				Value: "./tmp/dumper-tui.log",
			},
		},
		Action: r.Open,
	}
}

// streamCommand runs one session without the TUI.
func streamCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "Stream a dump session to stdout and download the produced file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "u",
				Usage:    "Target URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "p",
				Usage: "Partition to extract (empty for the full dump)",
			},
			&cli.BoolFlag{
				Name:  "no-download",
				Usage: "Skip the automatic download of the produced file",
			},
		},
		Action: r.Stream,
	}
}

// serveCommand runs the backend that produces the event stream.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the stream and download backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory served under /download/ (overrides server.output_dir)",
			},
		},
		Action: r.Serve,
	}
}

// themeCommand reads and writes the persisted theme preference.
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the theme preference",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the stored preference and the resolved theme",
				Action: r.ThemeShow,
			},
			{
				Name:   "toggle",
				Usage:  "Advance light → dark → system",
				Action: r.ThemeToggle,
			},
			{
				Name:  "set",
				Usage: "Set the preference to light, dark or system",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "preference",
					},
				},
				Action: r.ThemeSet,
			},
		},
	}
}

// historyCommand lists recorded sessions.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent dump sessions",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of sessions to return",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "outcome",
				Usage: "Only sessions with this outcome (finished, failed, superseded, reset)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, csv or markdown",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

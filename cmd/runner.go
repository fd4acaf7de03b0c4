package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/dumper/internal/repositories"
	"github.com/desertthunder/dumper/internal/services"
	"github.com/desertthunder/dumper/internal/session"
	"github.com/desertthunder/dumper/internal/shared"
	"github.com/desertthunder/dumper/internal/theme"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	detect     theme.Detector
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Detect     theme.Detector
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Detect == nil {
		opts.Detect = theme.DetectDark
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		detect:     opts.Detect,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		openCommand, streamCommand, serveCommand, themeCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure runs before every command: it applies --debug and loads the file named by --config.
//
// A missing file keeps the defaults; a file that exists but fails to load is an error.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	config, err := shared.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}
	if err != nil {
		return ctx, err
	}
	r.config = config
	return ctx, nil
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) client() *services.Client {
	return services.NewClient(r.config.Client, r.httpClient, shared.WithLogger(r.logger, "component", "client"))
}

func (r *Runner) downloader(client *services.Client) services.Downloader {
	return services.NewDownloader(r.config.Client.DownloadMode, client, r.config.Client.DownloadDir)
}

// openDatabase opens the configured database with migrations applied.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, err)
	}
	return db, nil
}

// themes loads the persisted theme preference from db.
func (r *Runner) themes(db *sql.DB) *theme.Controller {
	ctrl := theme.NewController(repositories.NewSettingsRepository(db), r.detect)
	if err := ctrl.Load(); err != nil {
		r.logger.Warn("ignoring stored theme", "err", err)
	}
	return ctrl
}

// recorder returns a session history recorder, or nil when db is nil.
func (r *Runner) recorder(db *sql.DB) *session.Recorder {
	if db == nil {
		return nil
	}
	return session.NewRecorder(repositories.NewSessionRepository(db), shared.WithLogger(r.logger, "component", "history"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

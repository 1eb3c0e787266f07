package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/soundscript/internal/repositories"
	"github.com/desertthunder/soundscript/internal/shared"
	"github.com/desertthunder/soundscript/internal/waveform"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        repositories.ContentAPI
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db    *sql.DB
	store *repositories.TrackStore
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        repositories.ContentAPI
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // Optional open database, used instead of config.Database
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
	if opts.DB != nil {
		r.store = repositories.NewTrackStore(opts.DB)
	}
	return r
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the database opened by [Runner.trackStore].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.store = nil, nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tracksCommand, playCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// trackStore opens the configured database on first use.
func (r *Runner) trackStore() (*repositories.TrackStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open track store: %w", err)
	}
	r.db = db
	r.store = repositories.NewTrackStore(db)
	return r.store, nil
}

// repository returns the cached track repository for status, or the configured status when empty.
func (r *Runner) repository(status string) (*repositories.CachedTrackRepository, error) {
	if r.api == nil {
		return nil, fmt.Errorf("%w: content API not initialized", shared.ErrServiceUnavailable)
	}
	status = r.statusOr(status)

	store, err := r.trackStore()
	if err != nil {
		return nil, err
	}

	upstream := repositories.NewRemoteTrackRepository(r.api, status)
	return repositories.NewCachedTrackRepository(upstream, store, status, shared.WithLogger(r.logger, "component", "cache")), nil
}

// statusOr returns status, or the configured content status when empty.
func (r *Runner) statusOr(status string) string {
	if status == "" {
		return r.config.API.Status
	}
	return status
}

func (r *Runner) waveforms(store *repositories.TrackStore, resolution int) *waveform.Source {
	if resolution <= 0 {
		resolution = r.config.Player.WaveformResolution
	}
	return waveform.NewSource(store, r.httpClient, resolution, shared.WithLogger(r.logger, "component", "waveform"))
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

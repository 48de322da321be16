package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinefav/internal/controller"
	"github.com/desertthunder/cinefav/internal/forms"
	"github.com/desertthunder/cinefav/internal/repositories"
	"github.com/desertthunder/cinefav/internal/services"
	"github.com/desertthunder/cinefav/internal/shared"
	"github.com/urfave/cli/v3"
)

// CredentialStore holds the bearer token and the remembered login address.
type CredentialStore interface {
	services.CredentialProvider
	forms.EmailMemory
	RememberedEmail(ctx context.Context) (string, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	openURL    func(string) error

	db      *sql.DB
	store   CredentialStore
	api     *services.APIService
	catalog *services.CatalogService
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Store, API and Catalog are built from Config on first use when left nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	OpenURL    func(string) error
	Store      CredentialStore
	API        *services.APIService
	Catalog    *services.CatalogService
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		openURL:    opts.OpenURL,
		store:      opts.Store,
		api:        opts.API,
		catalog:    opts.Catalog,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, loginCommand, registerCommand, logoutCommand, authCommand, moviesCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Configure resolves the config file named by --config and applies its log level.
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.ResolveConfig(path, ".env")
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Log.Level))
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}
	r.logger.Debug("configuration loaded", "path", path, "base_url", config.API.BaseURL)
	return ctx, nil
}

// SetLogger replaces the logger, used when the TUI moves logging to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// connect opens the credential database and builds the API clients that were not injected.
func (r *Runner) connect() error {
	if r.store == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open credential database: %w", err)
		}
		r.db = db
		r.store = repositories.NewCredentialRepository(db)
	}

	if r.api == nil {
		r.api = services.NewAPIService(services.APIOpts{
			BaseURL:     r.config.API.BaseURL,
			Transport:   r.httpClient.Transport,
			Timeout:     r.config.API.Timeout(),
			Credentials: r.store,
			RateLimit:   r.config.API.RateLimit,
			Logger:      r.logger,
		})
	}

	if r.catalog == nil {
		r.catalog = services.NewCatalogService(r.api)
	}
	return nil
}

// Close releases the credential database when the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// newController builds a controller over the catalog with the configured table and toast settings.
func (r *Runner) newController() *controller.Controller {
	return controller.New(r.controllerOpts())
}

func (r *Runner) controllerOpts() controller.Options {
	return controller.Options{
		Catalog:           r.catalog,
		Logger:            r.logger,
		ToastLifetime:     r.config.UI.ToastLifetime(),
		PageSize:          r.config.UI.PageSize,
		RefreshAfterWrite: r.config.UI.RefreshAfterWrite,
	}
}

// confirm asks a yes/no question on the runner's input. Anything but y or yes declines.
func (r *Runner) confirm(question string) (bool, error) {
	if err := r.writePlain("%s [y/N]: ", question); err != nil {
		return false, err
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
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

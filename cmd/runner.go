package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/alryaz/go-music-browser/internal/auth"
	"github.com/alryaz/go-music-browser/internal/browser"
	"github.com/alryaz/go-music-browser/internal/catalog"
	"github.com/alryaz/go-music-browser/internal/menu"
	"github.com/alryaz/go-music-browser/internal/resolver"
	"github.com/alryaz/go-music-browser/internal/shared"
	"github.com/alryaz/go-music-browser/internal/store"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	// lazily wired on first command that needs the catalog
	db          *sql.DB
	store       *store.SessionStore
	coordinator *auth.Coordinator
	browser     *browser.Browser
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
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

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, browseCommand, playCommand, exportCommand, authCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// reloadConfig swaps in the config file named by the command's --config flag
// when it exists; a missing file keeps the current config.
func (r *Runner) reloadConfig(cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		return nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return nil
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	r.config = config
	r.browser = nil
	r.coordinator = nil
	return nil
}

// Browser wires the browse engine from the loaded config on first use.
func (r *Runner) Browser(ctx context.Context) (*browser.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}

	config := r.config

	tree := menu.Default()
	if config.Browser.Menu != nil {
		parsed, err := menu.Parse(config.Browser.Menu)
		if err != nil {
			return nil, fmt.Errorf("invalid menu configuration: %w", err)
		}
		tree = parsed
	}

	var tokenStore auth.TokenStore
	if config.Store.Path != "" {
		db, err := shared.NewDatabase(config.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		sessionStore, err := store.NewSessionStore(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		r.db = db
		r.store = sessionStore
		tokenStore = sessionStore
	}

	factory := func(token string) catalog.Client {
		return catalog.NewHTTPClient(config.Catalog.BaseURL, token, r.logger,
			catalog.WithHTTPClient(&http.Client{
				Timeout:   config.TimeoutDuration(),
				Transport: r.httpClient.Transport,
			}),
			catalog.WithLanguage(config.Browser.Language),
		)
	}

	providers := []auth.Provider{}
	if tokenStore != nil {
		providers = append(providers, &auth.StoreProvider{Store: tokenStore})
	}
	if len(config.Credentials) > 0 {
		providers = append(providers, &auth.CredentialsProvider{
			Credentials: config.Credentials,
			Logger:      r.logger,
		})
	}

	userID := func(ctx context.Context, token string) (string, error) {
		return factory(token).FetchUserID(ctx)
	}

	r.coordinator = auth.NewCoordinator(providers, userID, tokenStore, r.logger)
	r.browser = browser.New(config, tree, r.coordinator, factory, &resolver.TokenGuard{}, r.logger)
	return r.browser, nil
}

// Close releases resources held by lazily wired dependencies.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
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

// viewMode maps the --mode flag to a resolver mode; cloud is the default.
func viewMode(cmd *cli.Command) (resolver.ViewMode, error) {
	switch cmd.String("mode") {
	case "", "cloud":
		return resolver.ModeCloud, nil
	case "pull":
		return resolver.ModePull, nil
	default:
		return "", fmt.Errorf("%w: unknown view mode %q", shared.ErrInvalidInput, cmd.String("mode"))
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

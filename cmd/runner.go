package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotify-sync/internal/models"
	"github.com/desertthunder/spotify-sync/internal/repositories"
	"github.com/desertthunder/spotify-sync/internal/services"
	"github.com/desertthunder/spotify-sync/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryFactory builds the [services.Library] used for an account's stored token.
type LibraryFactory func(ctx context.Context, account string, token models.TokenRecord) services.Library

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	browser    shared.BrowserOpener
	httpClient *http.Client
	libraries  LibraryFactory
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Config is nil the config file named by --config is loaded before each command.
type RunnerOpts struct {
	Config     *shared.Config
	Logger     *log.Logger
	Output     io.Writer
	Browser    shared.BrowserOpener
	HTTPClient *http.Client
	Libraries  LibraryFactory
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Browser == nil {
		opts.Browser = shared.OpenBrowser
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Runner{
		config:     opts.Config,
		logger:     opts.Logger,
		output:     opts.Output,
		browser:    opts.Browser,
		httpClient: opts.HTTPClient,
		libraries:  opts.Libraries,
		now:        opts.Now,
	}
	if r.libraries == nil {
		r.libraries = r.spotifyLibrary
	}
	return r
}

// command builds the root CLI command. A fresh command is needed for every Run.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "spotify-sync",
		Usage:   "Copy liked songs and playlists between Spotify accounts",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   shared.DefaultConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		loginCommand, listCommand, previewCommand, transferCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before resolves the config and log level shared by every subcommand.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = shared.ExpandPath(cmd.String("config"))
	if r.config != nil {
		return ctx, nil
	}

	config, err := shared.ResolveConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("config resolved", "path", r.configPath)
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. while a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) tokenStore() *repositories.TokenStore {
	return repositories.NewTokenStore(shared.ExpandPath(r.config.Storage.TokensPath))
}

// library loads the account's stored token and binds a client to it.
func (r *Runner) library(ctx context.Context, account string) (services.Library, error) {
	if account == "" {
		return nil, fmt.Errorf("%w: account name", shared.ErrMissingArgument)
	}

	token, err := r.tokenStore().Load(account)
	if err != nil {
		return nil, err
	}
	if token.Expired(r.now()) {
		r.logger.Warn("stored token has expired, run login again if requests fail", "account", account)
	}
	return r.libraries(ctx, account, token), nil
}

func (r *Runner) spotifyLibrary(ctx context.Context, account string, token models.TokenRecord) services.Library {
	return services.NewSpotifyClient(ctx, token.AccessToken, services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		RateLimit:  r.config.API.RateLimit,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "account", account),
	})
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

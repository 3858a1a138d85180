// Package app provides the application context and dependency management
// for the tablesync CLI: configuration, logging and the lazily created
// client shared by every command.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync"
	"github.com/agentstation/tablesync/internal/appcontext"
	"github.com/agentstation/tablesync/pkg/errors"
)

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// App represents the tablesync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
	out    io.Writer

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client tablesync.Client
	extra  []tablesync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Settings returns the library configuration.
func (a *App) Settings() tablesync.Config {
	return a.config.Library
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the --format value.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the client, creating it lazily if needed.
func (a *App) Client() (tablesync.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	c, err := tablesync.New(tablesync.WithConfig(a.config.Library))
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client with opts applied after the
// configuration. It is closed on Shutdown.
func (a *App) ClientWithOptions(opts ...tablesync.Option) (tablesync.Client, error) {
	all := append([]tablesync.Option{tablesync.WithConfig(a.config.Library)}, opts...)
	c, err := tablesync.New(all...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	a.mu.Lock()
	a.extra = append(a.extra, c)
	a.mu.Unlock()
	return c, nil
}

// Shutdown stops background runs and closes every client.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	clients := append([]tablesync.Client{}, a.extra...)
	if a.client != nil {
		clients = append(clients, a.client)
	}
	a.client, a.extra = nil, nil
	a.mu.Unlock()

	var firstErr error
	for _, c := range clients {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close client during shutdown")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(c tablesync.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}

// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync"
)

// Interface defines what commands need from the application. The App
// struct from cmd/tablesync/app implements it; tests use Mock.
type Interface interface {
	// Client returns the shared client, creating it lazily.
	Client() (tablesync.Client, error)

	// ClientWithOptions creates a separate client with extra options
	// layered over the configured ones. The caller closes it.
	ClientWithOptions(...tablesync.Option) (tablesync.Client, error)

	// Settings returns the resolved library configuration.
	Settings() tablesync.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table).
	OutputFormat() string

	// Version returns the application version string.
	Version() string
}

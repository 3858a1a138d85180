package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync"
	"github.com/agentstation/tablesync/pkg/logging"
)

// Mock provides a mock implementation of Interface for testing.
// A nil function field yields a zero value.
type Mock struct {
	ClientFunc            func() (tablesync.Client, error)
	ClientWithOptionsFunc func(...tablesync.Option) (tablesync.Client, error)
	SettingsFunc          func() tablesync.Config
	LoggerFunc            func() *zerolog.Logger
	Format                string
	VersionString         string
}

// Client returns a client using the mock function or nil.
func (m *Mock) Client() (tablesync.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	return nil, nil
}

// ClientWithOptions returns a client using the mock function or nil.
func (m *Mock) ClientWithOptions(opts ...tablesync.Option) (tablesync.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return nil, nil
}

// Settings returns the mock configuration or the defaults.
func (m *Mock) Settings() tablesync.Config {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	return tablesync.DefaultConfig()
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns Format.
func (m *Mock) OutputFormat() string {
	return m.Format
}

// Version returns VersionString or "test".
func (m *Mock) Version() string {
	if m.VersionString != "" {
		return m.VersionString
	}
	return "test"
}

var _ Interface = (*Mock)(nil)

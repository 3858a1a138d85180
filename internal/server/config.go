package server

import (
	"time"

	"github.com/agentstation/tablesync/pkg/constants"
)

// Config holds server configuration.
type Config struct {
	Host string
	Port int

	PathPrefix string

	// CORS settings
	CORSEnabled bool
	CORSOrigins []string

	CacheTTL      time.Duration
	MaxUploadSize int64

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:          "localhost",
		Port:          8080,
		PathPrefix:    "/api/v1",
		CacheTTL:      constants.CacheTTL,
		MaxUploadSize: constants.MaxUploadSize,
		ReadTimeout:   10 * time.Second,
		WriteTimeout:  constants.SourceFetchTimeout + 10*time.Second,
		IdleTimeout:   120 * time.Second,
	}
}

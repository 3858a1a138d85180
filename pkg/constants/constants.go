// Package constants provides shared constants used throughout the tablesync codebase.
// This includes timeouts, file permissions, file names, and extraction tuning values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to sources
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// SourceFetchTimeout bounds fetching one artifact from one source
	SourceFetchTimeout = 2 * time.Minute

	// IngestContextTimeout is the timeout for each scheduled ingestion run
	IngestContextTimeout = 5 * time.Minute

	// DefaultIngestInterval is the default interval between automatic ingestion runs
	DefaultIngestInterval = 1 * time.Hour

	// WatchDebounce is how long the directory watcher waits for writes to settle
	WatchDebounce = 500 * time.Millisecond

	// ShutdownTimeout bounds graceful HTTP server shutdown
	ShutdownTimeout = 10 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached API responses
	CacheTTL = 1 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Path and file name constants
const (
	// DefaultDataDir is where the ledger, database and processed artifacts live
	DefaultDataDir = "~/.tablesync"

	// DefaultConfigName is the config file base name searched by the CLI
	DefaultConfigName = "tablesync"

	// LedgerFileName is the default ledger file inside the data directory
	LedgerFileName = "ledger.yaml"

	// DatabaseFileName is the default SQLite database inside the data directory
	DatabaseFileName = "tablesync.db"

	// ProcessedPrefix prefixes canonical artifacts written per source
	ProcessedPrefix = "processed_"

	// MaxUploadSize bounds request bodies accepted by the HTTP API (10 MB)
	MaxUploadSize = 10 << 20
)

// Normalization and extraction constants
const (
	// CompositeSeparator splits a description cell into several records
	CompositeSeparator = "/"

	// MinHeaderKeywords is how many header tokens must contain a keyword
	MinHeaderKeywords = 3

	// MinPatternLineLength is the length a line must exceed to be pattern-parsed
	MinPatternLineLength = 10

	// DefaultQuantity is used when a pattern-mode line has no quantity
	DefaultQuantity = "1"
)

// Format constants
const (
	// DateFormat is how date cells are rendered as text
	DateFormat = "2006-01-02"

	// TimeFormatFilename is the format used in generated filenames
	TimeFormatFilename = "20060102-150405"
)

package store

import (
	"strings"

	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/ingest"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Open returns the store for backend at path.
func Open(backend, path string) (ingest.Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendFile, "yaml":
		return OpenFile(path)
	default:
		return nil, errors.NewConfigError("store", "unknown backend "+backend, nil)
	}
}

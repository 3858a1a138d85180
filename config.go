package tablesync

import (
	"context"
	"path/filepath"
	"time"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/internal/workbook"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/sources"
	"github.com/agentstation/tablesync/pkg/template"
)

// Config is the declarative setup of a client, usually decoded from
// tablesync.yaml.
type Config struct {
	// DataDir holds the ledger, the database and processed artifacts
	// unless their paths are set explicitly.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Ledger is the ledger file; ".json" selects JSON, anything else YAML.
	Ledger string `mapstructure:"ledger" yaml:"ledger,omitempty"`

	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// OutputDir receives processed_<source>.xlsx; empty disables it.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir,omitempty"`

	Template TemplateConfig `mapstructure:"template" yaml:"template"`

	// Separator splits composite descriptions.
	Separator string `mapstructure:"separator" yaml:"separator,omitempty"`

	// Interval between automatic runs; zero disables them.
	Interval time.Duration `mapstructure:"interval" yaml:"interval,omitempty"`

	Sources []sources.Source `mapstructure:"sources" yaml:"sources"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// TemplateConfig declares the canonical columns, either inline or as the
// header row of a template workbook.
type TemplateConfig struct {
	Columns []string `mapstructure:"columns" yaml:"columns,omitempty"`
	Path    string   `mapstructure:"path" yaml:"path,omitempty"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		DataDir:   constants.DefaultDataDir,
		Store:     StoreConfig{Backend: "sqlite"},
		Separator: constants.CompositeSeparator,
	}
}

// LedgerPath resolves the ledger file.
func (c Config) LedgerPath() string {
	if c.Ledger != "" {
		return fsutil.ExpandHome(c.Ledger)
	}
	return filepath.Join(fsutil.ExpandHome(c.DataDir), constants.LedgerFileName)
}

// StorePath resolves the store location.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return fsutil.ExpandHome(c.Store.Path)
	}
	if c.Store.Backend == "file" || c.Store.Backend == "yaml" {
		return filepath.Join(fsutil.ExpandHome(c.DataDir), "records.yaml")
	}
	return filepath.Join(fsutil.ExpandHome(c.DataDir), constants.DatabaseFileName)
}

// Validate checks every source declaration.
func (c Config) Validate() error {
	seen := map[sources.ID]bool{}
	for _, src := range c.Sources {
		if err := src.Validate(); err != nil {
			return err
		}
		if seen[src.ID] {
			return errors.NewConfigError("source "+string(src.ID), "declared twice", nil)
		}
		seen[src.ID] = true
	}
	return nil
}

// Load builds the canonical template. A template workbook wins over inline
// columns; with neither the default template is used.
func (t TemplateConfig) Load(ctx context.Context) (*template.Template, error) {
	switch {
	case t.Path != "":
		headers, err := workbook.ReadHeaders(ctx, fsutil.ExpandHome(t.Path))
		if err != nil {
			return nil, errors.NewConfigError("template", "cannot read "+t.Path, err)
		}
		return template.New(headers)
	case len(t.Columns) > 0:
		return template.New(t.Columns)
	default:
		return template.Default(), nil
	}
}

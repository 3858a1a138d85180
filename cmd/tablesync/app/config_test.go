package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/sources"
)

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /srv/tablesync
separator: ";"
interval: 30m
template:
  columns: [REPORT_ID, CUSTOMER_NAME, PRODUCT_DESC]
sources:
  - id: globex
    label: Globex
    kind: http
    location: http://globex.internal:5001
    patterns: [".xlsx"]
    mapping:
      identifier: Ref
      description: Goods
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	lib := cfg.Library
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "/srv/tablesync", lib.DataDir)
	assert.Equal(t, ";", lib.Separator)
	assert.Equal(t, 30*time.Minute, lib.Interval)
	assert.Equal(t, "sqlite", lib.Store.Backend)
	assert.Equal(t, []string{"REPORT_ID", "CUSTOMER_NAME", "PRODUCT_DESC"}, lib.Template.Columns)

	require.Len(t, lib.Sources, 1)
	src := lib.Sources[0]
	assert.Equal(t, sources.ID("globex"), src.ID)
	assert.Equal(t, sources.KindHTTP, src.Kind)
	assert.Equal(t, "Goods", src.Mapping["description"])
	assert.NoError(t, lib.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablesync.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o644))

	t.Setenv("TABLESYNC_DATA_DIR", "/from/env")
	t.Setenv("TABLESYNC_STORE_BACKEND", "file")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Library.DataDir)
	assert.Equal(t, "file", cfg.Library.Store.Backend)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_UpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "yaml", LogLevel: "warn"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg.UpdateFromFlags(false, true, false, "json", "debug")
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
}

// Package fetch implements sources.Fetcher for the supported source kinds.
package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/tablesync/internal/fsutil"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
)

var _ sources.Fetcher = (*Directory)(nil)

// Directory serves the most recently modified accepted file of a local
// directory, the drop folder a source exports into.
type Directory struct{}

// NewDirectory returns a directory fetcher.
func NewDirectory() *Directory {
	return &Directory{}
}

// Fetch implements sources.Fetcher.
func (d *Directory) Fetch(ctx context.Context, src sources.Source) (*sources.Artifact, error) {
	dir := fsutil.ExpandHome(src.Location)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewSourceUnavailableError(string(src.ID), dir, 0, err)
	}

	var (
		latest os.FileInfo
		path   string
	)
	for _, e := range entries {
		if e.IsDir() || !src.Accepts(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if latest == nil || info.ModTime().After(latest.ModTime()) {
			latest, path = info, filepath.Join(dir, e.Name())
		}
	}
	if latest == nil {
		return nil, errors.ErrNoArtifact
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	logging.FromContext(ctx).Debug().
		Str("path", path).
		Time("modified", latest.ModTime()).
		Msg("Latest artifact selected")

	return &sources.Artifact{
		Source:  src.ID,
		Name:    latest.Name(),
		ModTime: latest.ModTime(),
		Data:    data,
	}, nil
}

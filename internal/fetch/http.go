package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/agentstation/tablesync/internal/transport"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/sources"
)

// Endpoints served by an HTTP source.
const (
	FilesPath    = "/api/files"
	DownloadPath = "/api/download/"
)

var _ sources.Fetcher = (*HTTP)(nil)

// HTTP fetches from a source that lists its exports newest-first at
// <location>/api/files and serves each one at <location>/api/download/<name>.
type HTTP struct {
	client *transport.Client
}

// NewHTTP returns an HTTP fetcher. A nil client uses a default with
// constants.DefaultHTTPTimeout.
func NewHTTP(client *http.Client) *HTTP {
	return &HTTP{client: transport.New(client)}
}

// Fetch implements sources.Fetcher.
func (h *HTTP) Fetch(ctx context.Context, src sources.Source) (*sources.Artifact, error) {
	base := strings.TrimRight(src.Location, "/")

	body, err := h.get(ctx, src, base+FilesPath)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, errors.WrapParse("json", base+FilesPath, err)
	}

	name := ""
	for _, n := range names {
		if src.Accepts(n) {
			name = n
			break
		}
	}
	if name == "" {
		return nil, errors.ErrNoArtifact
	}

	data, err := h.get(ctx, src, base+DownloadPath+url.PathEscape(name))
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("artifact", name).
		Int("bytes", len(data)).
		Msg("Artifact downloaded")

	return &sources.Artifact{
		Source:  src.ID,
		Name:    name,
		ModTime: time.Now(),
		Data:    data,
	}, nil
}

func (h *HTTP) get(ctx context.Context, src sources.Source, endpoint string) ([]byte, error) {
	resp, err := h.client.Get(ctx, endpoint, src)
	if err != nil {
		var cfgErr *errors.ConfigError
		var resErr *errors.ResourceError
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.As(err, &cfgErr), errors.As(err, &resErr):
			return nil, err
		}
		return nil, errors.NewSourceUnavailableError(string(src.ID), endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSourceUnavailableError(string(src.ID), endpoint, resp.StatusCode,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewSourceUnavailableError(string(src.ID), endpoint, 0, err)
	}
	return data, nil
}

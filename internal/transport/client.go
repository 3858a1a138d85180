// Package transport sends authenticated HTTP requests to sources.
package transport

import (
	"context"
	"net/http"
	"os"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/sources"
)

// UserAgent identifies requests made to sources.
const UserAgent = "tablesync"

// Client provides HTTP client functionality with per-source authentication.
type Client struct {
	http *http.Client
}

// New creates a transport client. A nil client uses a default with
// constants.DefaultHTTPTimeout.
func New(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}
	return &Client{http: client}
}

// Do sends req with the authentication declared by src applied. A
// declared key whose environment variable is empty fails before any
// network traffic with a ConfigError.
func (c *Client) Do(req *http.Request, src sources.Source) (*http.Response, error) {
	if src.Auth != nil {
		key := os.Getenv(src.Auth.KeyEnv)
		if key == "" {
			return nil, errors.NewConfigError("source "+string(src.ID),
				"environment variable "+src.Auth.KeyEnv+" is empty", nil)
		}
		ForSource(src.Auth).Apply(req, key)
	}
	req.Header.Set("User-Agent", UserAgent)
	return c.http.Do(req)
}

// Get performs an authenticated GET request.
func (c *Client) Get(ctx context.Context, url string, src sources.Source) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("Accept", "application/json, application/octet-stream")
	return c.Do(req, src)
}

package transport

import (
	"net/http"

	"github.com/agentstation/tablesync/pkg/sources"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, key string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, key string) {
	req.Header.Set("Authorization", "Bearer "+key)
}

// BasicAuth sends a pre-encoded credential with the Basic scheme.
type BasicAuth struct{}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request, key string) {
	req.Header.Set("Authorization", "Basic "+key)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, key string) {
	req.Header.Set(a.Header, key)
}

// QueryAuth implements API key as query parameter authentication.
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, key string) {
	if req.URL == nil {
		return
	}
	query := req.URL.Query()
	query.Set(a.Param, key)
	req.URL.RawQuery = query.Encode()
}

// DefaultKeyHeader is used by the header scheme when none is declared.
const DefaultKeyHeader = "X-API-Key"

// ForSource returns the authenticator declared by a source.
func ForSource(auth *sources.Auth) Authenticator {
	if auth == nil {
		return &NoAuth{}
	}
	switch auth.Scheme {
	case sources.AuthBearer:
		return &BearerAuth{}
	case sources.AuthBasic:
		return &BasicAuth{}
	case sources.AuthHeader:
		header := auth.Header
		if header == "" {
			header = DefaultKeyHeader
		}
		return &HeaderAuth{Header: header}
	case sources.AuthQuery:
		return &QueryAuth{Param: auth.Param}
	default:
		return &NoAuth{}
	}
}

// Package sources declares the independent producers of tabular exports that
// tablesync ingests, and the Fetcher contract used to obtain their latest
// artifact.
//
// Sources are declared in static configuration and are read-only at runtime.
// Each one carries a mapping from canonical field to the raw header name its
// exports use, so schema differences are absorbed by data, not adapters.
//
// Example usage:
//
//	src := sources.Source{
//	    ID:       "acme",
//	    Kind:     sources.KindDir,
//	    Location: "/data/acme",
//	    Mapping:  map[string]string{"identifier": "ID", "description": "Product"},
//	}
//	artifact, err := fetcher.Fetch(ctx, src)
package sources

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/template"
)

// ID identifies a source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Kind selects how a source is fetched.
type Kind string

// Source kinds.
const (
	KindDir  Kind = "dir"
	KindHTTP Kind = "http"
)

// DefaultPatterns are the artifact extensions accepted when none are declared.
var DefaultPatterns = []string{".xlsx", ".csv"}

// Source is one producer of periodic tabular exports.
type Source struct {
	ID       ID                `json:"id" yaml:"id" mapstructure:"id"`
	Label    string            `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Kind     Kind              `json:"kind" yaml:"kind" mapstructure:"kind"`
	Location string            `json:"location" yaml:"location" mapstructure:"location"`
	Headers  []string          `json:"headers,omitempty" yaml:"headers,omitempty" mapstructure:"headers"`
	Mapping  map[string]string `json:"mapping" yaml:"mapping" mapstructure:"mapping"`
	Patterns []string          `json:"patterns,omitempty" yaml:"patterns,omitempty" mapstructure:"patterns"`
	Auth     *Auth             `json:"auth,omitempty" yaml:"auth,omitempty" mapstructure:"auth"`
}

// Authentication schemes for HTTP sources.
const (
	AuthBearer = "bearer"
	AuthBasic  = "basic"
	AuthHeader = "header"
	AuthQuery  = "query"
)

// Auth describes how an HTTP source authenticates. The secret itself is
// never stored in configuration; it is read from the KeyEnv environment
// variable on every request.
type Auth struct {
	Scheme string `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	// Header is the header name for the header scheme (default X-API-Key).
	Header string `json:"header,omitempty" yaml:"header,omitempty" mapstructure:"header"`
	// Param is the query parameter for the query scheme.
	Param  string `json:"param,omitempty" yaml:"param,omitempty" mapstructure:"param"`
	KeyEnv string `json:"key_env" yaml:"key_env" mapstructure:"key_env"`
}

func (a *Auth) validate(component string) error {
	switch a.Scheme {
	case AuthBearer, AuthBasic, AuthHeader:
	case AuthQuery:
		if a.Param == "" {
			return errors.NewConfigError(component, "auth param is required for the query scheme", nil)
		}
	default:
		return errors.NewConfigError(component, "unknown auth scheme "+a.Scheme, nil)
	}
	if a.KeyEnv == "" {
		return errors.NewConfigError(component, "auth key_env is required", nil)
	}
	return nil
}

// Owner returns the label written into owner columns.
func (s Source) Owner() string {
	if s.Label != "" {
		return s.Label
	}
	return string(s.ID)
}

// FieldMapping returns the mapping keyed by role. Unknown keys are skipped.
func (s Source) FieldMapping() map[template.Role]string {
	out := make(map[template.Role]string, len(s.Mapping))
	for field, header := range s.Mapping {
		if role, ok := template.ParseRole(field); ok {
			out[role] = header
		}
	}
	return out
}

// Accepts reports whether an artifact name matches one of the source's
// patterns. A pattern starting with "." is an extension, anything else is
// a glob matched against the base name. Matching is case-insensitive.
func (s Source) Accepts(name string) bool {
	patterns := s.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	base := strings.ToLower(filepath.Base(name))
	for _, p := range patterns {
		p = strings.ToLower(p)
		if strings.HasPrefix(p, ".") {
			if filepath.Ext(base) == p {
				return true
			}
			continue
		}
		if ok, err := filepath.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}

// Validate checks the declaration. A source without a usable mapping is a
// hard configuration error.
func (s Source) Validate() error {
	component := "source " + string(s.ID)
	if s.ID == "" {
		return errors.NewConfigError("source", "id is required", nil)
	}
	switch s.Kind {
	case KindDir, KindHTTP:
	case "":
		return errors.NewConfigError(component, "kind is required (dir or http)", nil)
	default:
		return errors.NewConfigError(component, "unknown kind "+string(s.Kind), nil)
	}
	if s.Location == "" {
		return errors.NewConfigError(component, "location is required", nil)
	}
	if len(s.Mapping) == 0 {
		return errors.NewConfigError(component, "mapping is required", nil)
	}
	if s.Auth != nil {
		if s.Kind != KindHTTP {
			return errors.NewConfigError(component, "auth is only supported for http sources", nil)
		}
		if err := s.Auth.validate(component); err != nil {
			return err
		}
	}
	for field, header := range s.Mapping {
		if _, ok := template.ParseRole(field); !ok {
			return errors.NewConfigError(component, "unknown canonical field "+field, nil)
		}
		if len(s.Headers) > 0 && !declared(s.Headers, header) {
			return errors.NewConfigError(component, "mapping for "+field+" names undeclared header "+header, nil)
		}
	}
	return nil
}

func declared(headers []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, h := range headers {
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}

// Artifact is one discrete export retrieved from a source.
type Artifact struct {
	Source  ID
	Name    string
	ModTime time.Time
	Data    []byte
}

// Fetcher retrieves the most recent artifact of a source. It returns an
// error matching errors.ErrNoArtifact when the source has nothing to offer
// and errors.ErrSourceUnavailable on transport failure.
type Fetcher interface {
	Fetch(ctx context.Context, src Source) (*Artifact, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, src Source) (*Artifact, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src Source) (*Artifact, error) {
	return f(ctx, src)
}

// Sources is a thread-safe, insertion-ordered registry of sources.
type Sources struct {
	mu      sync.RWMutex
	order   []ID
	sources map[ID]Source
}

// NewSources creates a registry from declarations, validating each one.
func NewSources(list ...Source) (*Sources, error) {
	s := &Sources{sources: make(map[ID]Source)}
	for _, src := range list {
		if err := src.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.sources[src.ID]; dup {
			return nil, errors.NewConfigError("source "+string(src.ID), "declared more than once", nil)
		}
		s.Set(src)
	}
	return s, nil
}

// Get returns a source by ID.
func (s *Sources) Get(id ID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.sources[id]
	return src, found
}

// Set adds or replaces a source.
func (s *Sources) Set(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sources[src.ID]; !exists {
		s.order = append(s.order, src.ID)
	}
	s.sources[src.ID] = src
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

// List returns all sources in declaration order.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Source, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.sources[id])
	}
	return out
}

// IDs returns all source IDs in declaration order.
func (s *Sources) IDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Select returns the named sources in declaration order. Unknown IDs yield
// a NotFoundError. An empty selection returns every source.
func (s *Sources) Select(ids ...ID) ([]Source, error) {
	if len(ids) == 0 {
		return s.List(), nil
	}
	for _, id := range ids {
		if _, ok := s.Get(id); !ok {
			return nil, errors.NewNotFoundError("source", string(id))
		}
	}
	var out []Source
	for _, src := range s.List() {
		if slices.Contains(ids, src.ID) {
			out = append(out, src)
		}
	}
	return out, nil
}

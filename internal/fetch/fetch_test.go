package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/sources"
)

func dirSource(dir string) sources.Source {
	return sources.Source{ID: "acme", Kind: sources.KindDir, Location: dir, Mapping: map[string]string{"identifier": "ID"}}
}

func TestDirectoryPicksNewest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "sales-01.xlsx")
	latest := filepath.Join(dir, "sales-02.csv")
	ignored := filepath.Join(dir, "notes.txt")

	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(latest, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(ignored, []byte("skip"), 0o644))

	now := time.Now()
	require.NoError(t, os.Chtimes(old, now, now.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(latest, now, now.Add(-time.Minute)))
	require.NoError(t, os.Chtimes(ignored, now, now))

	a, err := NewDirectory().Fetch(context.Background(), dirSource(dir))
	require.NoError(t, err)
	assert.Equal(t, "sales-02.csv", a.Name)
	assert.Equal(t, []byte("new"), a.Data)
	assert.Equal(t, sources.ID("acme"), a.Source)
}

func TestDirectoryEmpty(t *testing.T) {
	_, err := NewDirectory().Fetch(context.Background(), dirSource(t.TempDir()))
	assert.True(t, errors.IsNoArtifact(err))
}

func TestDirectoryMissing(t *testing.T) {
	_, err := NewDirectory().Fetch(context.Background(), dirSource(filepath.Join(t.TempDir(), "gone")))
	assert.True(t, errors.IsSourceUnavailable(err))
}

func newSourceServer(t *testing.T, files []string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(FilesPath, func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(files)
	})
	mux.HandleFunc(DownloadPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes of " + filepath.Base(r.URL.Path)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func httpSource(url string) sources.Source {
	return sources.Source{ID: "remote", Kind: sources.KindHTTP, Location: url + "/", Mapping: map[string]string{"identifier": "ID"}}
}

func TestHTTPFetchesNewest(t *testing.T) {
	srv := newSourceServer(t, []string{"readme.txt", "sales 03.xlsx", "sales-02.xlsx"}, http.StatusOK)

	a, err := NewHTTP(srv.Client()).Fetch(context.Background(), httpSource(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "sales 03.xlsx", a.Name)
	assert.Equal(t, "bytes of sales 03.xlsx", string(a.Data))
}

func TestHTTPNoFiles(t *testing.T) {
	srv := newSourceServer(t, []string{}, http.StatusOK)
	_, err := NewHTTP(srv.Client()).Fetch(context.Background(), httpSource(srv.URL))
	assert.True(t, errors.IsNoArtifact(err))
}

func TestHTTPUnavailable(t *testing.T) {
	srv := newSourceServer(t, nil, http.StatusBadGateway)
	_, err := NewHTTP(srv.Client()).Fetch(context.Background(), httpSource(srv.URL))

	var unavailable *errors.SourceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, http.StatusBadGateway, unavailable.StatusCode)

	srv.Close()
	_, err = NewHTTP(nil).Fetch(context.Background(), httpSource(srv.URL))
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xlsx"), []byte("x"), 0o644))

	r := NewRouter()
	a, err := r.Fetch(context.Background(), dirSource(dir))
	require.NoError(t, err)
	assert.Equal(t, "a.xlsx", a.Name)

	stub := sources.FetcherFunc(func(context.Context, sources.Source) (*sources.Artifact, error) {
		return &sources.Artifact{Name: "stub.xlsx"}, nil
	})
	a, err = r.Handle(sources.KindHTTP, stub).Fetch(context.Background(), httpSource("http://unused"))
	require.NoError(t, err)
	assert.Equal(t, "stub.xlsx", a.Name)

	_, err = r.Fetch(context.Background(), sources.Source{ID: "x", Kind: "ftp"})
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

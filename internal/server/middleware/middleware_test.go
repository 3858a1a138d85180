package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablesync/pkg/logging"
)

func TestChain_ExecutionOrder(t *testing.T) {
	var log []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				log = append(log, "start-"+name)
				next.ServeHTTP(w, r)
				log = append(log, "end-"+name)
			})
		}
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		log = append(log, "handler")
		w.WriteHeader(http.StatusOK)
	})

	Chain(mark("1"), mark("2"))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	expected := []string{"start-1", "start-2", "handler", "end-2", "end-1"}
	if strings.Join(log, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, log)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if seen == "" || w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected generated id echoed, got %q / %q", seen, w.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "abc" || w.Header().Get(RequestIDHeader) != "abc" {
		t.Errorf("expected caller id to be kept, got %q", seen)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Logger(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/extract", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}

	var inner, done map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &inner); err != nil {
		t.Fatal(err)
	}
	if inner["path"] != "/api/v1/extract" {
		t.Errorf("handler logger missing request fields: %v", inner)
	}
	if err := json.Unmarshal([]byte(lines[1]), &done); err != nil {
		t.Fatal(err)
	}
	if done["status"] != float64(http.StatusTeapot) || done["method"] != "POST" {
		t.Errorf("unexpected completion entry: %v", done)
	}
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name        string
		panicValue  any
		shouldPanic bool
		wantStatus  int
	}{
		{name: "no panic", wantStatus: http.StatusOK},
		{name: "string panic", shouldPanic: true, panicValue: "boom", wantStatus: http.StatusInternalServerError},
		{name: "error panic", shouldPanic: true, panicValue: io.ErrUnexpectedEOF, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			handler := Recovery(&logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.shouldPanic {
				if !strings.Contains(buf.String(), "Panic recovered") {
					t.Error("expected panic to be logged")
				}
				if !strings.Contains(w.Body.String(), "INTERNAL_ERROR") {
					t.Errorf("unexpected body %s", w.Body.String())
				}
			}
		})
	}
}

func TestMaxBody(t *testing.T) {
	handler := MaxBody(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("tiny")))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for body within limit, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader("too large")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

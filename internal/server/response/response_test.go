package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentstation/tablesync/pkg/errors"
)

func TestSuccessAndFail(t *testing.T) {
	resp := Success(map[string]string{"message": "ok"})
	if resp.Data == nil || resp.Error != nil {
		t.Errorf("unexpected success response %+v", resp)
	}

	resp = Fail("TEST_ERROR", "Test error message", "details")
	if resp.Data != nil || resp.Error == nil {
		t.Fatalf("unexpected fail response %+v", resp)
	}
	if resp.Error.Code != "TEST_ERROR" || resp.Error.Details != "details" {
		t.Errorf("unexpected error %+v", resp.Error)
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]string{"test": "data"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var body Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != nil {
		t.Errorf("expected no error, got %+v", body.Error)
	}
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no input", errors.ErrNoInput, http.StatusBadRequest, CodeNoInput},
		{"not found", errors.NewNotFoundError("history", "x"), http.StatusNotFound, CodeNotFound},
		{"already exists", errors.NewAlreadyExistsError("history", "acme/jan.xlsx"), http.StatusConflict, CodeConflict},
		{"validation", errors.NewValidationError("limit", -1, "must be positive"), http.StatusBadRequest, CodeBadRequest},
		{"config", errors.NewConfigError("source acme", "no mapping", nil), http.StatusBadRequest, CodeBadRequest},
		{"unavailable", errors.NewSourceUnavailableError("acme", "http://x", 502, nil), http.StatusBadGateway, CodeSourceUnavailable},
		{"timeout", errors.NewIngestError("acme", "", "fetch", errors.NewTimeoutError("fetch", "30s", "deadline exceeded")), http.StatusGatewayTimeout, CodeTimeout},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body Response
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == nil || body.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %+v", tt.wantCode, body.Error)
			}
		})
	}
}

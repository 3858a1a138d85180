package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/tablesync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{Resource: "history entry", ID: "abc"}
		assert.Equal(t, "history entry with ID abc not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("source", "acme")
		wrapped := fmt.Errorf("lookup: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestAlreadyExistsError(t *testing.T) {
	err := pkgerrors.NewAlreadyExistsError("history entry", "acme/report.xlsx")
	assert.Equal(t, "history entry acme/report.xlsx already exists", err.Error())
	assert.True(t, pkgerrors.IsAlreadyExists(err))
	assert.False(t, pkgerrors.IsNotFound(err))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("text", "", "cannot be empty")
		assert.Equal(t, "validation failed for field text: cannot be empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "bad template"}
		assert.Equal(t, "validation failed: bad template", err.Error())
	})
}

func TestSourceUnavailableError(t *testing.T) {
	t.Run("status code", func(t *testing.T) {
		err := pkgerrors.NewSourceUnavailableError("acme", "http://acme.local", 503, nil)
		assert.Contains(t, err.Error(), "status 503")
		assert.True(t, pkgerrors.IsSourceUnavailable(err))
	})

	t.Run("transport error", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.NewSourceUnavailableError("acme", "http://acme.local", 0, base)
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, base)
		assert.ErrorIs(t, err, pkgerrors.ErrSourceUnavailable)
	})
}

func TestSchemaDriftError(t *testing.T) {
	err := &pkgerrors.SchemaDriftError{Source: "acme", Missing: []string{"AMOUNT"}}
	assert.Contains(t, err.Error(), "AMOUNT")
	assert.ErrorIs(t, err, pkgerrors.ErrSchemaDrift)
}

func TestMalformedIdentifierError(t *testing.T) {
	err := &pkgerrors.MalformedIdentifierError{Identifier: "ABC"}
	assert.Equal(t, `identifier "ABC" has no trailing numeral`, err.Error())
	assert.ErrorIs(t, err, pkgerrors.ErrMalformedIdentifier)
}

func TestConfigError(t *testing.T) {
	base := errors.New("empty")
	err := pkgerrors.NewConfigError("source acme", "mapping is required", base)
	assert.Equal(t, "configuration error in source acme: mapping is required", err.Error())
	assert.ErrorIs(t, err, base)

	err = pkgerrors.NewConfigError("", "no sources", nil)
	assert.Equal(t, "configuration error: no sources", err.Error())
}

func TestIngestError(t *testing.T) {
	base := pkgerrors.NewIOError("write", "/tmp/x", errors.New("disk full"))
	err := pkgerrors.NewIngestError("acme", "a.xlsx", "store", base)
	assert.Contains(t, err.Error(), "ingest store failed for source acme (artifact a.xlsx)")

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Operation)

	err = pkgerrors.NewIngestError("acme", "", "fetch", errors.New("boom"))
	assert.Equal(t, "ingest fetch failed for source acme: boom", err.Error())
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.ParseError
		want string
	}{
		{
			name: "with position",
			err:  &pkgerrors.ParseError{Format: "yaml", File: "ledger.yaml", Line: 3, Column: 1, Message: "bad indent"},
			want: "parse error in yaml at ledger.yaml:3:1: bad indent",
		},
		{
			name: "file only",
			err:  &pkgerrors.ParseError{Format: "xlsx", File: "a.xlsx", Message: "zip: not a valid zip file"},
			want: "parse error in xlsx file a.xlsx: zip: not a valid zip file",
		},
		{
			name: "no file",
			err:  &pkgerrors.ParseError{Format: "json", Message: "unexpected EOF"},
			want: "json parse error: unexpected EOF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("fetch", "30s", "source did not respond")
	assert.Equal(t, "operation fetch timed out after 30s: source did not respond", err.Error())
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.True(t, pkgerrors.IsTimeout(pkgerrors.NewIngestError("acme", "", "fetch", err)))
	assert.False(t, pkgerrors.IsTimeout(pkgerrors.ErrCanceled))
}

func TestCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "sentinel", err: pkgerrors.ErrCanceled, want: true},
		{name: "joined with cause", err: fmt.Errorf("%w: %w", pkgerrors.ErrCanceled, context.Canceled), want: true},
		{name: "inside ingest error", err: pkgerrors.NewIngestError("acme", "", "run", fmt.Errorf("%w: %w", pkgerrors.ErrCanceled, context.Canceled)), want: true},
		{name: "bare context error", err: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pkgerrors.IsCanceled(tt.err))
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapIO("read", "x", nil))
		assert.NoError(t, pkgerrors.WrapParse("yaml", "x", nil))
		assert.NoError(t, pkgerrors.WrapResource("save", "ledger", "", nil))
	})

	t.Run("wraps", func(t *testing.T) {
		base := errors.New("boom")

		err := pkgerrors.WrapIO("read", "ledger.yaml", base)
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "ledger.yaml")

		err = pkgerrors.WrapParse("yaml", "ledger.yaml", base)
		assert.ErrorIs(t, err, base)

		err = pkgerrors.WrapResource("save", "ledger", "acme", base)
		assert.Equal(t, "failed to save ledger acme: boom", err.Error())
	})
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		pkgerrors.ErrNotFound,
		pkgerrors.ErrAlreadyExists,
		pkgerrors.ErrInvalidInput,
		pkgerrors.ErrSourceUnavailable,
		pkgerrors.ErrNoArtifact,
		pkgerrors.ErrSchemaDrift,
		pkgerrors.ErrMalformedIdentifier,
		pkgerrors.ErrNoInput,
		pkgerrors.ErrTimeout,
		pkgerrors.ErrCanceled,
		pkgerrors.ErrUnsupportedFormat,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
	assert.True(t, pkgerrors.IsNoArtifact(fmt.Errorf("dir empty: %w", pkgerrors.ErrNoArtifact)))
	assert.True(t, pkgerrors.IsCanceled(pkgerrors.ErrCanceled))
}

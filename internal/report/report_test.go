package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/tablesync/pkg/ingest"
)

func TestString(t *testing.T) {
	summary := &ingest.Summary{
		RunID:     "run-1",
		StartedAt: time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Outcomes: []ingest.Outcome{
			{Source: "acme", Status: ingest.StatusIngested, Artifact: "jan.xlsx", Records: 4, Splits: 1, Drift: []string{"DATE"}},
			{Source: "globex", Status: ingest.StatusNoNewData, Artifact: "jan.csv"},
			{Source: "initech", Status: ingest.StatusError, Error: "source unavailable"},
		},
	}

	out := String(summary)
	assert.Contains(t, out, "# Ingestion Run")
	assert.Contains(t, out, "`run-1`")
	assert.Contains(t, out, "✓ new_data_ingested: 1")
	assert.Contains(t, out, "records stored: 4")
	assert.Contains(t, out, "jan.xlsx")
	assert.Contains(t, out, "Splits")
	assert.Contains(t, out, "source unavailable")
	assert.Contains(t, out, "acme: missing DATE")
}

func TestIcon(t *testing.T) {
	tests := []struct {
		status ingest.Status
		want   string
	}{
		{ingest.StatusIngested, "✓"},
		{ingest.StatusNoNewData, "○"},
		{ingest.StatusNoArtifact, "✗"},
		{ingest.StatusError, "✗"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, Icon(tt.status))
		})
	}
}

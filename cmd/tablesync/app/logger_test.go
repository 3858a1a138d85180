package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"default", Config{}, "info"},
		{"verbose", Config{Verbose: true}, "debug"},
		{"quiet", Config{Quiet: true}, "warn"},
		{"verbose and quiet", Config{Verbose: true, Quiet: true}, "warn"},
		{"explicit wins", Config{Verbose: true, LogLevel: "error"}, "error"},
		{"invalid explicit", Config{LogLevel: "loud"}, "info"},
		{"env", Config{envLogLevel: "trace"}, "trace"},
		{"flag beats env", Config{Quiet: true, envLogLevel: "trace"}, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineLogLevel(&tt.config))
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.Equal(t, level, validateLogLevel(level))
	}
	assert.Equal(t, "info", validateLogLevel("verbose"))
}

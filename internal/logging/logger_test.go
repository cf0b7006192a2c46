package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		"empty":   {in: "", want: slog.LevelInfo},
		"debug":   {in: "DEBUG", want: slog.LevelDebug},
		"warning": {in: " warning ", want: slog.LevelWarn},
		"error":   {in: "error", want: slog.LevelError},
		"unknown": {in: "verbose", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("warn", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "model", "tiny")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "model=tiny")

	_, err = New("loud", &buf)
	assert.Error(t, err)

	Discard().Error("dropped")
}

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{level: "", want: zapcore.WarnLevel},
		{level: "debug", want: zapcore.DebugLevel},
		{level: "INFO", want: zapcore.InfoLevel},
		{level: "error", want: zapcore.ErrorLevel},
		{level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, filepath.Join(t.TempDir(), "out.log"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewWritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rowkit.log")
	log, err := New("info", path)
	require.NoError(t, err)

	log.Info("SQL query execution")
	log.Debug("hidden")
	_ = log.Sync()

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "INFO")
	assert.Contains(t, string(out), "SQL query execution")
	assert.NotContains(t, string(out), "hidden")
}

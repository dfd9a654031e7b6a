package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "verbose", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerFieldsAndLevel(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewFromZap(zap.New(core), LevelInfo)

	logger.Debug("hidden")
	logger.With(String("component", "host")).Info("visible", Int("count", 3), Error(errors.New("boom")))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "visible", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "host", fields["component"])
	assert.EqualValues(t, 3, fields["count"])
	assert.Equal(t, "boom", fields["error"])

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.GetLevel())
	logger.Debug("now visible")
	assert.Equal(t, 2, logs.Len())
}

func TestNilErrorFieldIsSkipped(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewFromZap(zap.New(core), LevelDebug)

	logger.Warn("no error", Error(nil))

	require.Equal(t, 1, logs.Len())
	_, ok := logs.All()[0].ContextMap()["error"]
	assert.False(t, ok)
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Enabled(LevelError))
	logger.Error("discarded")
	assert.NoError(t, logger.Sync())
}

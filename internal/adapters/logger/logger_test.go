package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiloActivator/internal/ports"
)

var _ ports.Logger = (*Logger)(nil)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, NewFormatter(FormatJSON))
	assert.IsType(t, &logrus.TextFormatter{}, NewFormatter("TEXT"))
	assert.NotNil(t, NewFormatter("unknown"))
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, logrus.DebugLevel, FormatJSON)

	log.Error(context.Background(), errors.New("boom"), "fetch failed", map[string]interface{}{"symbol": "BTCUSDT"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetch failed", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "BTCUSDT", entry["symbol"])
}

func TestLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, logrus.WarnLevel, FormatJSON)

	log.Debug(context.Background(), "hidden")
	log.Info(context.Background(), "hidden")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, logrus.InfoLevel, FormatJSON).WithPrefix("cache")

	log.Info(context.Background(), "hit")
	assert.Contains(t, buf.String(), `"prefix":"cache"`)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error(context.Background(), errors.New("x"), "discarded")
	})
}

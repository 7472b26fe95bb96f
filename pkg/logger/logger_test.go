package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaults(t *testing.T) {
	l := newLogger()

	formatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, formatter.TimestampFormat)
	assert.True(t, formatter.FullTimestamp)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField("component", "guard")
	ctx := WithLogger(context.Background(), entry)

	got := G(ctx)
	assert.Equal(t, "guard", got.Data["component"])
}

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	got := G(context.Background())

	require.NotNil(t, got)
	assert.Equal(t, L.Logger, got.Logger)
}

func TestGetLoggerIgnoresForeignValue(t *testing.T) {
	ctx := context.WithValue(context.Background(), loggerKey{}, "not-a-logger")

	got := G(ctx)
	assert.Equal(t, L.Logger, got.Logger)
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("shouting"))

	require.NoError(t, SetLogLevel("info"))
}

func TestJSONFormatFieldNames(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	setFormat(l, "json")

	ctx := WithLogger(context.Background(), logrus.NewEntry(l))
	G(ctx).WithField("tool", "Bash").Info("checked command")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "checked command", record["message"])
	assert.Equal(t, "Bash", record["tool"])
	assert.Contains(t, record, "timestamp")
}

func TestFieldChaining(t *testing.T) {
	base := logrus.NewEntry(logrus.New()).WithField("session", "abc")
	ctx := WithLogger(context.Background(), base)

	ctx = WithLogger(ctx, G(ctx).WithField("rule", "protected-dir"))

	got := G(ctx)
	assert.Equal(t, "abc", got.Data["session"])
	assert.Equal(t, "protected-dir", got.Data["rule"])
}

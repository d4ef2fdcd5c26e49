package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat_ProductionIsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("production", "", &buf)

	log.Debug("hidden")
	log.WithComponent("ledger").Info("visible", "tx_id", 42)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "visible", rec["msg"])
	assert.Equal(t, "ledger", rec["component"])
	assert.EqualValues(t, 42, rec["tx_id"])
	assert.Regexp(t, `^logger_test\.go:\d+$`, rec["source"])
}

func TestNewWithFormat_DevelopmentText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("development", "", &buf)

	log.Debug("debugging")

	assert.Contains(t, buf.String(), "msg=debugging")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithFormat("development", "json", &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	log.WithContext(ctx).Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
}

func TestWithContext_NoRequestIDReturnsSameLogger(t *testing.T) {
	log := Discard()
	assert.Same(t, log, log.WithContext(context.Background()))
}

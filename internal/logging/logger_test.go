package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json", Component: "api"}, &buf)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "u-1")
	l.WithContext(ctx).Info("hello")

	m := decodeLine(t, &buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "api", m["component"])
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "u-1", m["user_id"])
}

func TestHTTPRequestLogLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		l := NewWithWriter(Config{Format: "json"}, &buf)
		l.HTTPRequestLog("GET", "/api/products", tt.status, 3*time.Millisecond, "127.0.0.1")

		m := decodeLine(t, &buf)
		assert.Equal(t, tt.level, m["level"], "status %d", tt.status)
		assert.Equal(t, float64(tt.status), m["status"])
	}
}

func TestDBQueryLogFailure(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Format: "json"}, &buf)
	l.DBQueryLog("find", "carts", time.Millisecond, errors.New("boom"))

	m := decodeLine(t, &buf)
	assert.Equal(t, "ERROR", m["level"])
	assert.Equal(t, "boom", m["error"])
	assert.Equal(t, "carts", m["collection"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)
	l.DBQueryLog("find", "carts", time.Millisecond, nil)
	assert.Zero(t, buf.Len())
}

package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type mockLogger struct{}

func (m *mockLogger) Error(msg string, args ...any) {
}

func Test_ConfigValidation(t *testing.T) {
	_, err := New(context.Background(), Config{}, &mockLogger{})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{Url: "not a url"}, &mockLogger{})
	assert.Error(t, err)

	pusher, err := New(context.Background(), Config{Url: "http://localhost:3100/loki/api/v1/push"}, &mockLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, 500, pusher.config.BatchMaxSize)
	assert.Equal(t, 3*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Stop_FlushesPendingEntries(t *testing.T) {
	var mu sync.Mutex
	var received []pushRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		var req pushRequest
		require.NoError(t, json.NewDecoder(gz).Decode(&req))

		mu.Lock()
		received = append(received, req)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxWait: time.Hour,
		Labels:       map[string]string{"app": "test"},
	}, &mockLogger{})
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "first"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "second"}))
	pusher.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Len(t, received[0].Streams, 1)
	assert.Equal(t, "test", received[0].Streams[0].Stream["app"])
	assert.Equal(t, "error", received[0].Streams[0].Stream["level"])
	assert.Len(t, received[0].Streams[0].Values, 2)
}

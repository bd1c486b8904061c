package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeSlack(t *testing.T, handler http.Handler) *slackClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newSlackClient(srv.URL, "xoxb-test")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestLookupChannelPaginates(t *testing.T) {
	calls := 0
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/conversations.list", r.URL.Path)
		require.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		calls++
		switch r.URL.Query().Get("cursor") {
		case "":
			writeJSON(w, map[string]any{
				"ok":                true,
				"channels":          []map[string]string{{"id": "C001", "name": "dev"}},
				"response_metadata": map[string]string{"next_cursor": "page2"},
			})
		case "page2":
			writeJSON(w, map[string]any{
				"ok":       true,
				"channels": []map[string]string{{"id": "C002", "name": "general"}},
			})
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	id, err := client.lookupChannel(context.Background(), "general")
	require.NoError(t, err)
	assert.Equal(t, "C002", id)
	assert.Equal(t, 2, calls)
}

func TestLookupChannelNotFound(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":       true,
			"channels": []map[string]string{{"id": "C001", "name": "dev"}},
		})
	}))
	_, err := client.lookupChannel(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `channel "ghost" not found`)
}

func TestLookupChannelAPIError(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": false, "error": "invalid_auth"})
	}))
	_, err := client.lookupChannel(context.Background(), "general")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestLookupUser(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users.list", r.URL.Path)
		writeJSON(w, map[string]any{
			"ok": true,
			"members": []map[string]string{
				{"id": "U100", "name": "bob"},
				{"id": "U200", "name": "alice"},
			},
		})
	}))
	id, err := client.lookupUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "U200", id)

	_, err = client.lookupUser(context.Background(), "carol")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `user "carol" not found`)
}

func testArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.png")
	require.NoError(t, os.WriteFile(path, []byte("fake-image"), 0o644))
	return path
}

func TestUploadSuccess(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files.upload", r.URL.Path)
		require.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "C123", r.FormValue("channels"))
		assert.Equal(t, "deploy flow", r.FormValue("initial_comment"))
		assert.Equal(t, "diagram.png", r.FormValue("filename"))
		assert.Empty(t, r.FormValue("thread_ts"))
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-image", string(content))
		writeJSON(w, map[string]any{
			"ok":   true,
			"file": map[string]string{"permalink": "https://ws.slack.com/files/F1"},
		})
	}))
	res, err := client.upload(context.Background(), uploadRequest{
		Channel: "C123",
		Comment: "deploy flow",
		Path:    testArtifact(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ws.slack.com/files/F1", res.Permalink)
}

func TestUploadThreadTS(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "1726000000.000100", r.FormValue("thread_ts"))
		writeJSON(w, map[string]any{"ok": true, "file": map[string]string{"permalink": "https://p"}})
	}))
	_, err := client.upload(context.Background(), uploadRequest{
		Channel:  "C123",
		ThreadTS: "1726000000.000100",
		Path:     testArtifact(t),
	})
	require.NoError(t, err)
}

func TestUploadPlatformError(t *testing.T) {
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": false, "error": "not_in_channel"})
	}))
	_, err := client.upload(context.Background(), uploadRequest{Channel: "C123", Path: testArtifact(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_in_channel")
}

func TestUploadHTTPError(t *testing.T) {
	attempts := 0
	client := newFakeSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	_, err := client.upload(context.Background(), uploadRequest{Channel: "C123", Path: testArtifact(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "files.upload")
	// RetryMax is 0: a 5xx must not trigger a second attempt.
	assert.Equal(t, 1, attempts)
}

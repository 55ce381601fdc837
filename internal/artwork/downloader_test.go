// ABOUTME: Tests for the cover art fetcher
// ABOUTME: Tests HTTP download, memoization, eviction, and error handling
package artwork

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("fake image data"))
	}))
	defer server.Close()

	dl := NewDownloader(server.URL+"/albumart/cover320", "test-agent", time.Second)

	data, err := dl.Fetch(context.Background(), "zelda.jpg")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if string(data) != "fake image data" {
		t.Errorf("expected content 'fake image data', got '%s'", string(data))
	}
	if gotPath != "/albumart/cover320/zelda.jpg" {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if gotAgent != "test-agent" {
		t.Errorf("expected user agent 'test-agent', got %q", gotAgent)
	}
}

func TestFetchMemoizes(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte("image"))
	}))
	defer server.Close()

	dl := NewDownloader(server.URL, "", time.Second)

	for i := 0; i < 3; i++ {
		if _, err := dl.Fetch(context.Background(), "cover.png"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}

	if requests.Load() != 1 {
		t.Errorf("expected 1 request, got %d", requests.Load())
	}
}

func TestFetchEvictsOldest(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write([]byte(r.URL.Path))
	}))
	defer server.Close()

	dl := NewDownloader(server.URL, "", time.Second)

	for i := 0; i <= recentLimit; i++ {
		dl.Fetch(context.Background(), fmt.Sprintf("cover-%d.jpg", i))
	}

	if _, ok := dl.lookup("cover-0.jpg"); ok {
		t.Error("expected oldest cover to be evicted")
	}
	if _, ok := dl.lookup(fmt.Sprintf("cover-%d.jpg", recentLimit)); !ok {
		t.Error("expected newest cover to be memoized")
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dl := NewDownloader(server.URL, "", time.Second)

	_, err := dl.Fetch(context.Background(), "missing.jpg")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected error to mention 404, got: %v", err)
	}

	// Failures are not memoized
	if _, ok := dl.lookup("missing.jpg"); ok {
		t.Error("failed download should not be memoized")
	}
}

func TestFetchEmptyName(t *testing.T) {
	dl := NewDownloader("http://example.invalid", "", time.Second)

	data, err := dl.Fetch(context.Background(), "")
	if err != nil {
		t.Errorf("expected no error for empty name, got: %v", err)
	}
	if data != nil {
		t.Errorf("expected no data for empty name, got %d bytes", len(data))
	}
}

func TestFetchEscapesName(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte("x"))
	}))
	defer server.Close()

	dl := NewDownloader(server.URL+"/", "", time.Second)
	dl.Fetch(context.Background(), "Ocarina of Time.jpg")

	if gotPath != "/Ocarina%20of%20Time.jpg" {
		t.Errorf("expected escaped path, got %q", gotPath)
	}
}

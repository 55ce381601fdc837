// ABOUTME: Cover art fetcher for the now-playing album image
// ABOUTME: Downloads raw image bytes by reference name and memoizes recent covers
package artwork

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// maxArtBytes caps a single cover download
	maxArtBytes = 4 * 1024 * 1024
	// recentLimit is how many covers stay memoized in memory
	recentLimit = 8
)

// Downloader fetches album covers from a fixed base URL
type Downloader struct {
	baseURL   string
	userAgent string
	client    *http.Client

	mu     sync.Mutex
	recent map[string][]byte
	order  []string
}

// NewDownloader creates a downloader for covers under baseURL
func NewDownloader(baseURL, userAgent string, timeout time.Duration) *Downloader {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &Downloader{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		recent:    make(map[string][]byte),
	}
}

// Fetch returns the cover bytes for name. An empty name means no art.
func (d *Downloader) Fetch(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, nil
	}

	if data, ok := d.lookup(name); ok {
		log.Printf("Artwork cache hit: %s", name)
		return data, nil
	}

	artURL := d.baseURL + url.PathEscape(name)
	log.Printf("Downloading artwork: %s", artURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artwork request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}

	d.remember(name, data)
	return data, nil
}

func (d *Downloader) lookup(name string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.recent[name]
	return data, ok
}

// remember stores data, evicting the oldest cover past the limit
func (d *Downloader) remember(name string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.recent[name]; ok {
		return
	}
	d.recent[name] = data
	d.order = append(d.order, name)

	if len(d.order) > recentLimit {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.recent, oldest)
	}
}

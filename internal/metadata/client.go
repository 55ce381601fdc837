// ABOUTME: HTTP client for the now-playing JSON endpoint
// ABOUTME: Fetches and parses snapshots, returning response headers for clock estimation
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes caps the metadata document size
const maxBodyBytes = 64 * 1024

// ClientConfig holds metadata client configuration
type ClientConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches now-playing snapshots
type Client struct {
	config    ClientConfig
	client    *http.Client
	sessionID string
	now       func() time.Time
}

// NewClient creates a metadata client
func NewClient(config ClientConfig) *Client {
	return &Client{
		config:    config,
		client:    &http.Client{Timeout: config.Timeout},
		sessionID: uuid.New().String(),
		now:       time.Now,
	}
}

// SessionID identifies this client in request headers and logs
func (c *Client) SessionID() string {
	return c.sessionID
}

// Fetch retrieves one snapshot. With cacheBust set a "_" query parameter
// carrying the current Unix milliseconds is appended.
func (c *Client) Fetch(ctx context.Context, cacheBust bool) (TrackMetadata, http.Header, error) {
	var meta TrackMetadata

	reqURL, err := c.requestURL(cacheBust)
	if err != nil {
		return meta, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return meta, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Id", c.sessionID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return meta, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, resp.Header, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return meta, resp.Header, fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, &meta); err != nil {
		return meta, resp.Header, fmt.Errorf("parse json: %w", err)
	}

	return meta, resp.Header, nil
}

func (c *Client) requestURL(cacheBust bool) (string, error) {
	if !cacheBust {
		return c.config.URL, nil
	}

	u, err := url.Parse(c.config.URL)
	if err != nil {
		return "", fmt.Errorf("parse metadata url: %w", err)
	}
	q := u.Query()
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

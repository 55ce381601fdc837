// ABOUTME: Clock offset estimation between local and metadata server clocks
// ABOUTME: Derives a whole-second skew from the HTTP Date response header
package sync

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrMalformedDate is returned when the server sent a Date header we cannot parse
var ErrMalformedDate = errors.New("malformed server date")

// EstimateOffset returns local - server in whole seconds.
// The millisecond difference is truncated toward zero.
func EstimateOffset(local, server time.Time) int64 {
	return (local.UnixMilli() - server.UnixMilli()) / 1000
}

// OffsetFromHeader estimates the offset from a response Date header.
// A missing header yields zero; a malformed one is an error.
func OffsetFromHeader(local time.Time, h http.Header) (int64, error) {
	raw := h.Get("Date")
	if raw == "" {
		return 0, nil
	}

	server, err := parseServerDate(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}

	return EstimateOffset(local, server), nil
}

// parseServerDate accepts the HTTP date formats plus numeric-zone RFC 1123
func parseServerDate(raw string) (time.Time, error) {
	if t, err := http.ParseTime(raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC1123Z, raw)
}

// ClockOffset holds the estimated skew (local - server) in seconds
type ClockOffset struct {
	mu     sync.RWMutex
	offset int64
	set    bool
}

// Set stores the offset
func (c *ClockOffset) Set(offset int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = offset
	c.set = true
}

// Get returns the current offset (zero until Set is called)
func (c *ClockOffset) Get() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// IsSet reports whether an estimate has been stored
func (c *ClockOffset) IsSet() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

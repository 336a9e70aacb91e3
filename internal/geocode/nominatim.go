// Package geocode resolves free-form addresses to coordinates through a
// Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"sylmap/internal/config"
)

// lastRequestNano is the unix-nano timestamp of the most recent upstream
// call, shared process-wide so concurrent lookups respect the provider's
// rate policy.
var lastRequestNano atomic.Int64

// Result is one resolved placement.
type Result struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client queries the configured geocoding endpoint.
type Client struct {
	HTTP *http.Client
	Cfg  config.GeocodeConfig
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg config.GeocodeConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// ErrRateLimited is returned when a lookup arrives before the minimum
// interval since the previous upstream call has elapsed.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("geocode rate limited, retry in %s", e.RetryAfter.Round(time.Millisecond))
}

// acquireSlot claims the right to make an upstream call. It fails when the
// previous call was too recent, without blocking.
func (c *Client) acquireSlot(now time.Time) error {
	min := c.Cfg.MinInterval
	if min <= 0 {
		return nil
	}
	for {
		last := lastRequestNano.Load()
		elapsed := now.UnixNano() - last
		if last != 0 && elapsed < min.Nanoseconds() {
			return &ErrRateLimited{RetryAfter: min - time.Duration(elapsed)}
		}
		if lastRequestNano.CompareAndSwap(last, now.UnixNano()) {
			return nil
		}
	}
}

type nominatimHit struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to coordinates. It returns (nil, nil) when the
// address is empty or the provider has no match.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return nil, nil
	}
	if err := c.acquireSlot(time.Now()); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Cfg.Endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode lookup failed: status %d: %s", resp.StatusCode, string(body))
	}

	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("geocode lookup failed: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode lookup failed: bad latitude %q", hits[0].Lat)
	}
	lng, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode lookup failed: bad longitude %q", hits[0].Lon)
	}
	return &Result{Lat: lat, Lng: lng}, nil
}

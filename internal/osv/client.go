// Package osv looks up advisories on the OSV.dev API to backfill severity
// and summary data the CLI scanners leave unspecified.
package osv

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://api.osv.dev/v1"

// Client is an HTTP client for the OSV.dev API.
// OSV is free, unauthenticated, and allows ~100 req/s.
type Client struct {
	http *http.Client
}

// New returns a Client with a 15-second timeout.
func New() *Client {
	return &Client{
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetVuln fetches one advisory by its OSV/GHSA/CVE identifier
// (GET /v1/vulns/{id}).
func (c *Client) GetVuln(ctx context.Context, id string) (*Vuln, error) {
	reqURL := baseURL + "/vulns/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("osv: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osv: get %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("osv: get %s HTTP %d: %s", id, resp.StatusCode, string(b))
	}

	var vuln Vuln
	if err := json.NewDecoder(resp.Body).Decode(&vuln); err != nil {
		return nil, fmt.Errorf("osv: decode %s: %w", id, err)
	}
	return &vuln, nil
}

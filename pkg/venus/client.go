// Package venus provides a client for the Venus link inventory, used to
// determine which routers are served by the Starlink ISP.
package venus

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// ISPStarlink is the link ISP value identifying Starlink-served routers.
const ISPStarlink = "Starlink"

// Client defines the Venus operations used by the reconciler.
type Client interface {
	// Routers fetches all routers with their uplink records.
	Routers(ctx context.Context) ([]Router, error)
}

// Router is one Venus router with its uplinks.
type Router struct {
	Name  string `json:"name"`
	Links []Link `json:"links"`
}

// Link is one uplink on a router.
type Link struct {
	ISP string `json:"isp"`
}

// HasISP reports whether any of the router's links is served by the given ISP.
func (r Router) HasISP(isp string) bool {
	for _, l := range r.Links {
		if l.ISP == isp {
			return true
		}
	}
	return false
}

// Option configures the Venus client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a Venus client.
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Routers(ctx context.Context) ([]Router, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/routers", nil)
	if err != nil {
		return nil, eris.Wrap(err, "venus: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "venus: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "venus: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("venus: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var routers []Router
	if err := json.Unmarshal(body, &routers); err != nil {
		return nil, eris.Wrap(err, "venus: unmarshal routers")
	}
	return routers, nil
}

// Package nox provides a client for the Nox network directory: router
// listings and their independently reported locations.
package nox

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the Nox directory operations used by the reconciler.
type Client interface {
	// Routers fetches the full router listing, keyed by directory id.
	Routers(ctx context.Context) (map[string]Router, error)
	// Locations fetches router locations, keyed by directory id.
	Locations(ctx context.Context) (map[string]Location, error)
}

// Router is one directory entry. The display name embeds the router code
// behind a site-local prefix; the description may embed a site code.
type Router struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Location is a router's reported position. Either coordinate may be null
// when the directory has no fix for the router.
type Location struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Option configures the Nox client.
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

// NewClient creates a Nox directory client.
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

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "nox: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "nox: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "nox: read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("nox: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "nox: unmarshal response")
	}
	return nil
}

func (c *httpClient) Routers(ctx context.Context) (map[string]Router, error) {
	var routers map[string]Router
	if err := c.get(ctx, "/routers", &routers); err != nil {
		return nil, err
	}
	return routers, nil
}

func (c *httpClient) Locations(ctx context.Context) (map[string]Location, error) {
	var locations map[string]Location
	if err := c.get(ctx, "/locations", &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

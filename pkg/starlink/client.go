// Package starlink provides a client for the Starlink enterprise API:
// paginated service line, user terminal, and address listings, plus nickname
// updates.
package starlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Starlink API operations used by the reconciler.
type Client interface {
	// ServiceLines fetches one page of service lines.
	ServiceLines(ctx context.Context, page int) (*ServiceLinesPage, error)
	// UserTerminals fetches one page of user terminals.
	UserTerminals(ctx context.Context, page int) (*UserTerminalsPage, error)
	// Addresses fetches one page of service addresses.
	Addresses(ctx context.Context, page int) (*AddressesPage, error)
	// UpdateNickname writes a new nickname for a service line.
	UpdateNickname(ctx context.Context, sln, nickname string) error
}

// ServiceLine is one account service line.
type ServiceLine struct {
	ServiceLineNumber  string `json:"serviceLineNumber"`
	Nickname           string `json:"nickname"`
	AddressReferenceID string `json:"addressReferenceId"`
	Active             bool   `json:"active"`
}

// UserTerminal pairs a service line with its kit serial number.
type UserTerminal struct {
	ServiceLineNumber string `json:"serviceLineNumber"`
	KitSerialNumber   string `json:"kitSerialNumber"`
}

// Address is one service address with coordinates.
type Address struct {
	AddressReferenceID string   `json:"addressReferenceId"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
}

// page wraps the API's content envelope.
type page[T any] struct {
	Content struct {
		Results    []T  `json:"results"`
		IsLastPage bool `json:"isLastPage"`
	} `json:"content"`
}

// ServiceLinesPage is one page of service line results.
type ServiceLinesPage struct {
	Results    []ServiceLine
	IsLastPage bool
}

// UserTerminalsPage is one page of user terminal results.
type UserTerminalsPage struct {
	Results    []UserTerminal
	IsLastPage bool
}

// AddressesPage is one page of address results.
type AddressesPage struct {
	Results    []Address
	IsLastPage bool
}

// Option configures the Starlink client.
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

// WithRateLimit overrides the default request rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Starlink API client. Requests are rate limited to stay
// inside the enterprise API quota.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://web-api.starlink.com/enterprise/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(4), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 5xx). Returns the response body and status code.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request, body []byte) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		retryReq := req.Clone(ctx)
		if body != nil {
			retryReq.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "starlink: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("starlink: status %d: %s", resp.StatusCode, string(respBody))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return respBody, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "starlink: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req, nil)
	if err != nil {
		return nil, eris.Wrap(err, "starlink: request failed")
	}
	if statusCode != http.StatusOK {
		return nil, eris.Errorf("starlink: unexpected status %d: %s", statusCode, string(body))
	}
	return body, nil
}

func (c *httpClient) ServiceLines(ctx context.Context, pageNum int) (*ServiceLinesPage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/service-lines?page=%d", pageNum))
	if err != nil {
		return nil, err
	}

	var result page[ServiceLine]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "starlink: unmarshal service lines")
	}
	return &ServiceLinesPage{
		Results:    result.Content.Results,
		IsLastPage: result.Content.IsLastPage,
	}, nil
}

func (c *httpClient) UserTerminals(ctx context.Context, pageNum int) (*UserTerminalsPage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/user-terminals?page=%d", pageNum))
	if err != nil {
		return nil, err
	}

	var result page[UserTerminal]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "starlink: unmarshal user terminals")
	}
	return &UserTerminalsPage{
		Results:    result.Content.Results,
		IsLastPage: result.Content.IsLastPage,
	}, nil
}

func (c *httpClient) Addresses(ctx context.Context, pageNum int) (*AddressesPage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/addresses?page=%d", pageNum))
	if err != nil {
		return nil, err
	}

	var result page[Address]
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "starlink: unmarshal addresses")
	}
	return &AddressesPage{
		Results:    result.Content.Results,
		IsLastPage: result.Content.IsLastPage,
	}, nil
}

func (c *httpClient) UpdateNickname(ctx context.Context, sln, nickname string) error {
	payload, err := json.Marshal(map[string]string{"nickname": nickname})
	if err != nil {
		return eris.Wrap(err, "starlink: marshal nickname")
	}

	url := fmt.Sprintf("%s/service-lines/%s/nickname", c.baseURL, sln)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "starlink: create nickname request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	body, statusCode, err := c.retryDo(ctx, req, payload)
	if err != nil {
		return eris.Wrap(err, "starlink: nickname request failed")
	}
	if statusCode != http.StatusOK && statusCode != http.StatusNoContent {
		return eris.Errorf("starlink: nickname update status %d: %s", statusCode, string(body))
	}
	return nil
}

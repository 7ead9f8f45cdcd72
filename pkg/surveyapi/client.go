// Package surveyapi provides a client for the external project-reporting
// survey API: bearer-token auth, offset/limit pagination, rate limiting.
package surveyapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the survey API operations.
type Client interface {
	// FetchPage fetches one page of survey responses.
	FetchPage(ctx context.Context, offset, limit int) (*Page, error)
	// FetchAll fetches every response, walking pagination to the end.
	FetchAll(ctx context.Context) ([]Response, error)
}

// Page is the API's paginated response envelope.
type Page struct {
	Status  bool     `json:"status"`
	Message string   `json:"message"`
	Data    PageData `json:"data"`
}

// PageData holds one page of results plus the next-page cursor.
type PageData struct {
	Results []Response `json:"results"`
	Next    string     `json:"next"`
	Count   int        `json:"count"`
}

// Option configures the survey API client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithPageSize sets the pagination window used by FetchAll.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		c.pageSize = n
	}
}

type httpClient struct {
	baseURL        string
	endpoint       string
	token          string
	organizationID string
	pageSize       int
	http           *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a survey API client for one survey source.
func NewClient(baseURL, endpoint, token, organizationID string, opts ...Option) Client {
	c := &httpClient{
		baseURL:        baseURL,
		endpoint:       endpoint,
		token:          token,
		organizationID: organizationID,
		pageSize:       100,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
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
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		retryReq := req.Clone(ctx)

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

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "surveyapi: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("surveyapi: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) FetchPage(ctx context.Context, offset, limit int) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "surveyapi: rate limiter")
	}

	u, err := url.Parse(c.baseURL + c.endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "surveyapi: parse URL %q", c.baseURL+c.endpoint)
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "surveyapi: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("organization_id", c.organizationID)

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "surveyapi: request failed")
	}

	if statusCode != http.StatusOK {
		return nil, eris.Errorf("surveyapi: unexpected status %d: %s", statusCode, string(body))
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, eris.Wrap(err, "surveyapi: unmarshal page")
	}

	return &page, nil
}

func (c *httpClient) FetchAll(ctx context.Context) ([]Response, error) {
	var all []Response
	offset := 0

	for {
		page, err := c.FetchPage(ctx, offset, c.pageSize)
		if err != nil {
			return nil, err
		}
		if !page.Status {
			return nil, eris.Errorf("surveyapi: API error: %s", page.Message)
		}
		if len(page.Data.Results) == 0 {
			break
		}

		all = append(all, page.Data.Results...)

		if page.Data.Next == "" {
			break
		}
		offset += c.pageSize
	}

	return all, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"cloudctl/internal/gateway"
	"cloudctl/pkg/logging"
	pkgstrings "cloudctl/pkg/strings"
)

// DefaultTimeout is the per-request timeout when Options.Timeout is unset.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. https://api.astra.datastax.com/v2.
	BaseURL string
	// Token is sent as a bearer credential on every request.
	Token string
	// Timeout bounds each request.
	Timeout time.Duration
	// Progress receives a message around each remote call. May be nil.
	Progress gateway.Progress
	// HTTPClient is the base client whose transport carries the requests.
	// Tests point it at an httptest server.
	HTTPClient *http.Client
}

// Client talks to the cloud management REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	progress   gateway.Progress

	// organization id, fetched once on demand
	orgMu    sync.RWMutex
	orgID    string
	orgGroup singleflight.Group
}

// NewClient creates a client authenticating with opts.Token.
func NewClient(opts Options) *Client {
	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: opts.Token,
		TokenType:   "Bearer",
	}))

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient.Timeout = timeout

	progress := opts.Progress
	if progress == nil {
		progress = gateway.NoProgress{}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: httpClient,
		progress:   progress,
	}
}

// Gateways returns every resource gateway backed by c.
func (c *Client) Gateways() gateway.Set {
	return gateway.Set{
		Databases: &Databases{c: c},
		Tenants:   &Tenants{c: c},
		Users:     &Users{c: c},
		Roles:     &Roles{c: c},
		Tokens:    &Tokens{c: c},
	}
}

// do sends a JSON request and decodes a JSON response into out, if out is
// non-nil. It returns the response headers for callers that need them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
		if logging.Enabled(logging.LevelDebug) {
			logging.Debug("api", "%s %s request body: %s", method, path, pkgstrings.TruncateCell(string(data), 200))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logging.Debug("api", "%s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to parse response of %s %s: %w", method, path, err)
		}
	}
	return resp.Header, nil
}

type currentOrg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// organizationID returns the id of the token's organization. Concurrent
// callers share a single request.
func (c *Client) organizationID(ctx context.Context) (string, error) {
	c.orgMu.RLock()
	id := c.orgID
	c.orgMu.RUnlock()
	if id != "" {
		return id, nil
	}

	v, err, _ := c.orgGroup.Do("org", func() (interface{}, error) {
		var org currentOrg
		if _, err := c.do(ctx, http.MethodGet, "/currentOrg", nil, &org); err != nil {
			return "", err
		}
		if org.ID == "" {
			return "", errors.New("the API returned no organization id")
		}
		c.orgMu.Lock()
		c.orgID = org.ID
		c.orgMu.Unlock()
		return org.ID, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

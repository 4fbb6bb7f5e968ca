package watchdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://watch-database1.p.rapidapi.com"
	defaultHost                 = "watch-database1.p.rapidapi.com"
	defaultPageSize             = 20
	errorBodyReadLimit    int64 = 1024
	responseBodyReadLimit int64 = 8 << 20
)

var errAPIKeyRequired = errors.New("rapidapi key is required")

// Client talks to the RapidAPI watch-database catalog.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHost overrides the x-rapidapi-host header value.
func WithHost(host string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(host); trimmed != "" {
			c.host = trimmed
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		host:       defaultHost,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// ListMakes returns every make known to the catalog.
func (c *Client) ListMakes(ctx context.Context) ([]Make, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "watch catalog client not configured")
	}

	var apiResp struct {
		Make []Make `json:"make"`
	}
	if err := c.do(ctx, http.MethodGet, "make", nil, &apiResp); err != nil {
		return nil, err
	}
	return apiResp.Make, nil
}

// ListWatchesByMake fetches one page of watches for a make. Pages start at 1.
func (c *Client) ListWatchesByMake(ctx context.Context, makeID string, page, limit int) (*WatchPage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "watch catalog client not configured")
	}
	makeID = strings.TrimSpace(makeID)
	if makeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "make id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	path := fmt.Sprintf("watches/make/%s/page/%d/limit/%d", url.PathEscape(makeID), page, limit)
	var apiResp struct {
		Watches  []json.RawMessage `json:"watches"`
		AllPages FlexString        `json:"allPages"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &apiResp); err != nil {
		return nil, err
	}

	watches, err := decodeWatches(apiResp.Watches)
	if err != nil {
		return nil, err
	}
	result := &WatchPage{Page: page, Watches: watches}
	if n, err := strconv.Atoi(string(apiResp.AllPages)); err == nil {
		result.TotalPages = n
	}
	return result, nil
}

// Search posts filter criteria to the catalog search endpoint. The catalog
// answers either with a bare array or with a {"watches": [...]} object.
func (c *Client) Search(ctx context.Context, filter map[string]any) ([]Watch, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "watch catalog client not configured")
	}
	payload, err := json.Marshal(filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode catalog search filter")
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "watches/search", payload, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	var items []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog search response")
		}
	} else {
		var wrapped struct {
			Watches []json.RawMessage `json:"watches"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog search response")
		}
		items = wrapped.Watches
	}
	return decodeWatches(items)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build catalog request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute catalog request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		code := pkgerrors.CodeUpstream
		if resp.StatusCode == http.StatusTooManyRequests {
			code = pkgerrors.CodeRateLimit
		}
		return pkgerrors.Wrap(code, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "catalog request failed")
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func decodeWatches(items []json.RawMessage) ([]Watch, error) {
	watches := make([]Watch, 0, len(items))
	for _, item := range items {
		var w Watch
		if err := json.Unmarshal(item, &w); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decode catalog watch")
		}
		w.Raw = append(json.RawMessage(nil), item...)
		watches = append(watches, w)
	}
	return watches, nil
}

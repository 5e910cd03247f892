// Package backend talks to the plans REST backend.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"energy-analyzer/internal/cache"
	errx "energy-analyzer/internal/core/errx"
	logx "energy-analyzer/pkg/logger"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "energy-analyzer/1.0"
	maxBodyBytes     = 16 << 20
)

// Config describes how to reach the backend. BaseURL is explicit; it is
// never derived from the environment at request time.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	ForceHTTPS bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithCache caches successful GET responses for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// Client fetches providers and plans and triggers backend scrapes.
type Client struct {
	baseURL   *url.URL
	userAgent string
	timeout   time.Duration
	client    *http.Client
	cache     cache.Store
	cacheTTL  time.Duration
}

// New validates the configuration and builds a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.ForceHTTPS && strings.HasPrefix(raw, "http://") {
		raw = "https://" + strings.TrimPrefix(raw, "http://")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be an absolute http(s) url", cfg.BaseURL)
	}

	c := &Client{
		baseURL:   base,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the effective backend URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) getClient() *http.Client {
	if c.client == nil {
		c.client = &http.Client{
			Timeout: c.timeout,
		}
	}
	return c.client
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// do performs the request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	endpoint := c.endpoint(path, query)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.getClient().Do(req)
	if err != nil {
		return nil, errx.WrapUpstream(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errx.WrapUpstream(fmt.Errorf("read %s %s: %w", method, path, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(method, path, resp.StatusCode)
	}
	return body, nil
}

func statusError(method, path string, status int) error {
	err := fmt.Errorf("%s %s: status code: %d", method, path, status)
	if status == http.StatusNotFound {
		return errx.New(err, http.StatusNotFound, "not found")
	}
	return errx.WrapUpstream(err)
}

// getJSON decodes a GET response into out, serving from cache when possible.
// out must be a non-nil pointer.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	key := "GET " + path + "?" + query.Encode()

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("cache read failed, fetching from backend")
		} else if ok {
			// Decode into a scratch value so a partial decode never leaks
			// stale fields into out.
			hit := reflect.New(reflect.TypeOf(out).Elem())
			if err := json.Unmarshal(body, hit.Interface()); err == nil {
				reflect.ValueOf(out).Elem().Set(hit.Elem())
				logx.Debug().Str("key", key).Msg("served from cache")
				return nil
			}
			logx.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	body, err := c.do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errx.WrapDecode(fmt.Errorf("decode %s: %w", path, err))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return nil
}

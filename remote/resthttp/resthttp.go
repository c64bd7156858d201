// Package resthttp implements remote.Store against a Redis-compatible REST
// gateway: a single HTTP endpoint accepting POSTed JSON command arrays
// (["GET", key], ["SET", key, value, "EX", seconds], ["INCR", key],
// ["DEL", key]) and answering {"result": <value-or-null>}. This is the shape
// hosted gateways such as Upstash expose; the request and key formats are
// reproduced exactly so independent processes can share one store.
package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/unkn0wn-root/tiercache/remote"
)

const (
	// EnvURL and EnvToken configure the gateway out of band. Both must be
	// present for the remote tier to exist at all.
	EnvURL   = "UPSTASH_REDIS_REST_URL"
	EnvToken = "UPSTASH_REDIS_REST_TOKEN"

	defaultTimeout = 5 * time.Second
)

var ErrMissingConfig = errors.New("resthttp: URL and token are required")

type Config struct {
	URL   string
	Token string

	// HTTPClient overrides the default client (5s timeout). Every command
	// is a single request bounded by the client's timeout; there are no
	// retries.
	HTTPClient *http.Client
}

// Client speaks the REST command protocol. All methods return explicit
// errors; the caller owns the failure policy.
type Client struct {
	url   string
	token string
	hc    *http.Client
}

var _ remote.Store = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Token == "" {
		return nil, ErrMissingConfig
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{url: cfg.URL, token: cfg.Token, hc: hc}, nil
}

// FromEnv builds a Client from the environment, read once. ok=false means
// the configuration is absent and the process runs without a remote tier;
// that is a mode, not an error.
func FromEnv() (*Client, bool) {
	url, token := os.Getenv(EnvURL), os.Getenv(EnvToken)
	if url == "" || token == "" {
		return nil, false
	}
	c, err := New(Config{URL: url, Token: token})
	if err != nil {
		return nil, false
	}
	return c, true
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// command POSTs one JSON command array and returns the raw result value.
func (c *Client) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("resthttp: encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("resthttp: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resthttp: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("resthttp: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("resthttp: status %d: %s", resp.StatusCode, firstLine(b))
	}

	var r response
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("resthttp: parse response: %w", err)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("resthttp: gateway error: %s", r.Error)
	}
	return r.Result, nil
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := c.command(ctx, "GET", key)
	if err != nil {
		return "", false, err
	}
	var v *string
	if err := json.Unmarshal(res, &v); err != nil {
		return "", false, fmt.Errorf("resthttp: parse GET result: %w", err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	var err error
	if ttl > 0 {
		_, err = c.command(ctx, "SET", key, value, "EX", ttlSeconds(ttl))
	} else {
		_, err = c.command(ctx, "SET", key, value)
	}
	return err
}

func (c *Client) Del(ctx context.Context, key string) error {
	_, err := c.command(ctx, "DEL", key)
	return err
}

func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	res, err := c.command(ctx, "INCR", key)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(res, &n); err != nil {
		return 0, fmt.Errorf("resthttp: parse INCR result: %w", err)
	}
	return n, nil
}

func (c *Client) Close(context.Context) error {
	c.hc.CloseIdleConnections()
	return nil
}

// ttlSeconds rounds up so sub-second TTLs still expire instead of living
// forever under the gateway's whole-second resolution.
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func firstLine(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}

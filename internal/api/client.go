// Package api is the HTTP client for the newsdesk backend: session info,
// the story feed and per-article comments.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/colonyops/newsdesk/internal/core/logging"
	"github.com/colonyops/newsdesk/internal/metrics"
)

const maxBodyBytes = 16 << 20

// Endpoint names used for logging and metrics.
const (
	EndpointUserInfo      = "auth.userinfo"
	EndpointLogout        = "auth.logout"
	EndpointStories       = "stories"
	EndpointComments      = "comments.list"
	EndpointDeleteComment = "comments.delete"
	EndpointPostComment   = "comments.post"
)

// StatusError is returned for responses outside the accepted status range.
type StatusError struct {
	Endpoint string
	Method   string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Endpoint, e.Code, http.StatusText(e.Code))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
	SessionCookie     string
	SessionCookieName string

	// HTTPClient replaces the default client. Its Jar and CheckRedirect
	// are left untouched.
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		if opts.SessionCookie != "" {
			name := opts.SessionCookieName
			if name == "" {
				name = "session"
			}
			jar.SetCookies(base, []*http.Cookie{{Name: name, Value: opts.SessionCookie, Path: "/"}})
		}
		hc = &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
			// Auth endpoints redirect to the identity provider; the
			// redirect itself is the answer.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := max(opts.Burst, 1)

	return &Client{
		base:    base,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		metrics: opts.Metrics,
		logger:  opts.Logger,
	}, nil
}

// LoginURL is where a browser starts the login flow.
func (c *Client) LoginURL() string {
	return c.url("api", "auth", "login").String()
}

// url builds an absolute URL from path segments, escaping each one so
// that article URIs containing slashes stay a single segment.
func (c *Client) url(segments ...string) *url.URL {
	u := *c.base
	raw := strings.TrimRight(c.base.EscapedPath(), "/")
	for _, s := range segments {
		raw += "/" + url.PathEscape(s)
	}
	u.RawPath = raw
	u.Path, _ = url.PathUnescape(raw)
	return &u
}

type request struct {
	endpoint string
	method   string
	path     []string
	body     any
	accept   func(code int) bool
}

func is2xx(code int) bool { return code >= 200 && code < 300 }

// do sends req and returns the response when its status is accepted. The
// caller owns the returned body.
func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit: %w", req.endpoint, err)
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)

	var body io.Reader
	if req.body != nil {
		bits, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(bits)
	}

	u := c.url(req.path...)
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(req.endpoint, 0, elapsed)
		c.logger.Debug().Ctx(ctx).Err(err).
			Str("method", req.method).
			Str("path", u.EscapedPath()).
			Msg("request failed")
		return nil, fmt.Errorf("%s: %w", req.endpoint, err)
	}

	c.metrics.ObserveRequest(req.endpoint, resp.StatusCode, elapsed)
	c.logger.Debug().Ctx(ctx).
		Str("method", req.method).
		Str("path", u.EscapedPath()).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("request complete")

	accept := req.accept
	if accept == nil {
		accept = is2xx
	}
	if !accept(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		return nil, &StatusError{Endpoint: u.EscapedPath(), Method: req.method, Code: resp.StatusCode}
	}

	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.endpoint, err)
	}
	return nil
}

func (c *Client) discard(ctx context.Context, req request) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return resp.Body.Close()
}

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/five82/backoffice/internal/metrics"
)

// Doer is the request surface used by the query layer. *Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, dest any) error
}

var _ Doer = (*Client)(nil)

// Client talks to the content API. A cookie jar carries the session
// credential between requests; callers never see it.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	breaker   *gobreaker.CircuitBreaker[struct{}]
	log       zerolog.Logger
}

const (
	defaultBaseURL   = "127.0.0.1:8080"
	defaultUserAgent = "backoffice/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
)

// BreakerConfig enables the circuit breaker. Only transport failures and
// 5xx responses count against it.
type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// Options configures NewClient. Zero values select defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Breaker   *BreakerConfig
	Logger    *zerolog.Logger
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

// NewClient builds a Client with a fresh cookie jar.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		userAgent: userAgent,
		log:       zerolog.Nop(),
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "api").Logger()
	}
	if opts.Breaker != nil {
		c.breaker = newBreaker(base.Host, *opts.Breaker, c.log)
	}
	return c, nil
}

func newBreaker(name string, cfg BreakerConfig, log zerolog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAgainstBreaker(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

func countsAgainstBreaker(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Kind != KindTransport {
		return false
	}
	if errors.Is(apiErr.Err, context.Canceled) {
		return false
	}
	return apiErr.Status == 0 || apiErr.Status >= 500
}

// BaseURL returns the normalized API origin.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// Do issues one request. body, when non-nil, is sent as JSON; dest, when
// non-nil, receives the decoded response. Requests are never retried.
func (c *Client) Do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	start := time.Now()
	err := c.execute(method, path, func() error {
		return c.do(ctx, method, path, body, dest)
	})

	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	metrics.APIRequests.WithLabelValues(method, outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Info().Err(err)
	}
	ev.Str("method", method).Str("path", path).Dur("elapsed", time.Since(start)).Msg("api request")
	return err
}

func (c *Client) execute(method, path string, fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &Error{Kind: KindTransport, Method: method, Path: path, Message: "circuit breaker open", Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return statusError(method, path, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}
	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func statusError(method, path string, resp *http.Response) *Error {
	e := &Error{
		Kind:   kindForStatus(resp.StatusCode),
		Status: resp.StatusCode,
		Method: method,
		Path:   path,
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorBody
	if len(data) > 0 && json.Unmarshal(data, &payload) == nil {
		e.Message = payload.Error
		if len(payload.Fields) > 0 {
			e.Fields = payload.Fields
		}
	}
	return e
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

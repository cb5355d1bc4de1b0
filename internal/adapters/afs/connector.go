// Package afs sends queries to the remote search engine over HTTP and binds
// its replies to the queries that produced them
package afs

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	perr "afsearch/internal/platform/errors"
	"afsearch/internal/platform/logger"
	pstrings "afsearch/internal/platform/strings"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "afsearch"
	defaultRetryBase = 200 * time.Millisecond
	maxBackoff       = 5 * time.Second
	errorTail        = 2048
)

// Status is the publication status of a service
type Status string

const (
	StatusStable  Status = "stable"
	StatusRC      Status = "rc"
	StatusAlpha   Status = "alpha"
	StatusBeta    Status = "beta"
	StatusSandbox Status = "sandbox"
	StatusArchive Status = "archive"
)

// ParseStatus accepts the lower case status names; empty means stable
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusStable, nil
	}
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusStable, StatusRC, StatusAlpha, StatusBeta, StatusSandbox, StatusArchive:
		return st, nil
	}
	return "", perr.WithField(perr.Validationf("invalid service status %q", s), "status")
}

// Service identifies the search service queried on the host
type Service struct {
	ID     int
	Status Status
}

// NewService validates id and status
func NewService(id int, status Status) (Service, error) {
	if id <= 0 {
		return Service{}, perr.WithField(perr.Validationf("service id must be positive, got %d", id), "service")
	}
	st, err := ParseStatus(string(status))
	if err != nil {
		return Service{}, err
	}
	return Service{ID: id, Status: st}, nil
}

// Endpoint selects the web service a Client talks to
type Endpoint string

const (
	EndpointSearch Endpoint = "search"
	EndpointACP    Endpoint = "acp"
)

func (e Endpoint) path() string {
	if e == EndpointACP {
		return "/acp"
	}
	return "/search"
}

func (e Endpoint) output() string {
	if e == EndpointACP {
		return "json,1"
	}
	return "json,2"
}

// Connector sends transport parameters and returns the raw reply body
type Connector interface {
	Send(ctx context.Context, params url.Values) ([]byte, error)
	// GeneratedURL is the last URL sent, for diagnostics
	GeneratedURL() string
}

// Options configures the Client
type Options struct {
	Host      string `json:"host" validate:"required"`
	Scheme    string `json:"scheme" validate:"omitempty,oneof=http https"`
	Service   Service
	Endpoint  Endpoint `json:"endpoint" validate:"omitempty,oneof=search acp"`
	Timeout   time.Duration
	UserAgent string `json:"user_agent"`

	// Retries of transport failures and transient statuses; 0 disables retrying
	MaxRetries int `json:"max_retries" validate:"min=0"`
	RetryBase  time.Duration
}

// Client is the HTTP Connector
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)

	mu      sync.Mutex
	lastURL string
	header  http.Header
}

// NewClient validates o and fills defaults
func NewClient(o Options) (*Client, error) {
	if o.Scheme == "" {
		o.Scheme = "http"
	}
	if o.Endpoint == "" {
		o.Endpoint = EndpointSearch
	}
	if err := Validate(o); err != nil {
		return nil, err
	}
	svc, err := NewService(o.Service.ID, o.Service.Status)
	if err != nil {
		return nil, err
	}
	o.Service = svc
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	o.UserAgent = pstrings.FirstNonBlank(o.UserAgent, defaultUA)
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("afs"),
		now:   time.Now,
		sleep: time.Sleep,
	}, nil
}

// URL renders scheme://host/<endpoint>?params followed by the service parameters
func (c *Client) URL(params url.Values) string {
	svc := url.Values{}
	svc.Set("afs:service", strconv.Itoa(c.opts.Service.ID))
	svc.Set("afs:status", string(c.opts.Service.Status))
	svc.Set("afs:output", c.opts.Endpoint.output())

	u := url.URL{Scheme: c.opts.Scheme, Host: c.opts.Host, Path: c.opts.Endpoint.path()}
	if enc := params.Encode(); enc != "" {
		u.RawQuery = enc + "&" + svc.Encode()
	} else {
		u.RawQuery = svc.Encode()
	}
	return u.String()
}

// Send issues a GET and returns the body of a successful reply.
// Transport failures and error statuses are unavailable errors
func (c *Client) Send(ctx context.Context, params url.Values) ([]byte, error) {
	target := c.URL(params)
	c.mu.Lock()
	c.lastURL = target
	c.mu.Unlock()

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "search canceled")
		}
		body, status, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		transient := perr.IsRetryable(err)
		if status != 0 {
			transient = status == http.StatusBadGateway ||
				status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout
		}
		if !transient || attempts >= c.opts.MaxRetries {
			return nil, err
		}
		back := c.backoff(attempts)
		c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("afs transient error retrying")
		c.sleep(back)
		attempts++
	}
}

func (c *Client) do(ctx context.Context, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "afs new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, 0, perr.FromTransport(err, "afs send failed")
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("host", c.opts.Host).
		Int("service", c.opts.Service.ID).
		Str("endpoint", string(c.opts.Endpoint)).
		Str("status", string(c.opts.Service.Status)).
		Int("http_status", resp.StatusCode).
		Dur("latency", lat).
		Msg("afs http response")

	c.mu.Lock()
	c.header = resp.Header.Clone()
	c.mu.Unlock()

	if resp.StatusCode >= http.StatusBadRequest {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, errorTail))
		return nil, resp.StatusCode, perr.Unavailablef("afs unexpected status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, perr.FromTransport(err, "afs read body failed")
	}
	return body, resp.StatusCode, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// GeneratedURL is the last URL built by Send
func (c *Client) GeneratedURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastURL
}

// Header returns a header of the last reply received
func (c *Client) Header(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.header == nil {
		return ""
	}
	return c.header.Get(name)
}

// Options returns the effective options
func (c *Client) Options() Options { return c.opts }

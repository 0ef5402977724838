// Package apiclient is the HTTP adapter every backend call goes through. It
// attaches the bearer token, classifies failures and notifies the user once
// per failed call.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-petr/convergex-pay/internal/domain"
	"github.com/go-petr/convergex-pay/internal/notify"
	"github.com/go-petr/convergex-pay/pkg/web"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// User facing messages.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgNetwork        = "Network error. Please check your connection."
	MsgGeneric        = "Something went wrong"
	MsgServer         = "Server error. Please try again later."
)

// Outcome labels of the requests counter.
const (
	outcomeOK          = "ok"
	outcomeAuthExpired = "auth_expired"
	outcomeNetwork     = "network"
	outcomeClientError = "client_error"
	outcomeServerError = "server_error"
)

const defaultTimeout = 10 * time.Second

// Authenticator provides the bearer token and reacts to its rejection.
//
//go:generate mockgen -source client.go -destination client_mock.go -package apiclient
type Authenticator interface {
	Token() string
	HandleAuthFailure()
}

// Config holds the transport settings.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Error is a classified failure. errors.Is matches its Kind.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

// Unwrap returns the kind of the failure.
func (e *Error) Unwrap() error {
	return e.Kind
}

// StatusOf returns the HTTP status of err, 0 when there was no response.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

// MessageOf returns the user facing message of err.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}

	return err.Error()
}

// Option configures a Client.
type Option func(*Client)

// WithNotifier sets the user facing notification surface.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRegisterer registers the client metrics.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = r
	}
}

// Client executes backend calls.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	limiter    *rate.Limiter
	notifier   notify.Notifier
	logger     zerolog.Logger
	registerer prometheus.Registerer
	requests   *prometheus.CounterVec

	mu   sync.RWMutex
	auth Authenticator
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	burst := 1

	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		if int(cfg.RequestsPerSecond) > burst {
			burst = int(cfg.RequestsPerSecond)
		}
	}

	c := &Client{
		http: &fasthttp.Client{
			Name:            "convergex-pay",
			MaxConnsPerHost: 16,
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		timeout:  timeout,
		limiter:  rate.NewLimiter(limit, burst),
		notifier: notify.NewLog(zerolog.Nop()),
		logger:   zerolog.Nop(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "convergex_client_requests_total",
			Help: "Backend calls by outcome.",
		}, []string{"outcome"}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registerer != nil {
		if err := c.registerer.Register(c.requests); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					c.requests = existing
				}
			}
		}
	}

	return c
}

// SetAuth installs the token source. Calls made before it omit the header.
func (c *Client) SetAuth(a Authenticator) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auth = a
}

func (c *Client) authenticator() Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.auth
}

type silentKey struct{}

// Silent marks calls made with the returned context as background calls:
// failures are logged instead of shown to the user.
func Silent(ctx context.Context) context.Context {
	return context.WithValue(ctx, silentKey{}, true)
}

func isSilent(ctx context.Context) bool {
	silent, _ := ctx.Value(silentKey{}).(bool)
	return silent
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, fasthttp.MethodGet, path, query, nil, out)
}

// Post performs a POST request with in as JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, fasthttp.MethodPost, path, nil, in, out)
}

// Do performs a request. Every returned error is an *Error.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	l := c.loggerFrom(ctx).With().Str("method", method).Str("path", path).Logger()

	if err := c.limiter.Wait(ctx); err != nil {
		return c.fail(ctx, l, outcomeNetwork, &Error{Kind: domain.ErrNetworkUnavailable, Message: MsgNetwork, Err: err})
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	bearer := false

	if a := c.authenticator(); a != nil {
		if token := a.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)

			bearer = true
		}
	}

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return c.fail(ctx, l, outcomeClientError, &Error{Kind: domain.ErrClientRequest, Message: MsgGeneric, Err: err})
		}

		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}

	if err != nil {
		return c.fail(ctx, l, outcomeNetwork, &Error{Kind: domain.ErrNetworkUnavailable, Message: MsgNetwork, Err: err})
	}

	status := resp.StatusCode()
	body := resp.Body()

	switch {
	case status == fasthttp.StatusUnauthorized && bearer:
		if a := c.authenticator(); a != nil {
			a.HandleAuthFailure()
		}

		return c.fail(ctx, l, outcomeAuthExpired, &Error{Kind: domain.ErrAuthExpired, Status: status, Message: MsgSessionExpired})
	case status >= 500:
		return c.fail(ctx, l, outcomeServerError, &Error{Kind: domain.ErrServer, Status: status, Message: MsgServer})
	case status >= 300:
		return c.fail(ctx, l, outcomeClientError, &Error{Kind: domain.ErrClientRequest, Status: status, Message: backendMessage(body)})
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return c.fail(ctx, l, outcomeServerError, &Error{Kind: domain.ErrServer, Status: status, Message: MsgServer, Err: err})
		}
	}

	c.requests.WithLabelValues(outcomeOK).Inc()
	l.Debug().Int("status", status).Msg("backend call")

	return nil
}

func (c *Client) fail(ctx context.Context, l zerolog.Logger, outcome string, apiErr *Error) error {
	c.requests.WithLabelValues(outcome).Inc()

	if isSilent(ctx) {
		l.Warn().Err(apiErr).Int("status", apiErr.Status).Msg("background call failed")
		return apiErr
	}

	l.Info().Err(apiErr).Int("status", apiErr.Status).Send()
	c.notifier.Error(apiErr.Message)

	return apiErr
}

func (c *Client) loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}

	return c.logger
}

func backendMessage(body []byte) string {
	var res web.ErrorResponse
	if err := json.Unmarshal(body, &res); err != nil || strings.TrimSpace(res.Message) == "" {
		return MsgGeneric
	}

	return res.Message
}

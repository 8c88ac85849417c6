package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"trisetra/internal/config"
	"trisetra/internal/logging"
	"trisetra/internal/services"
)

const (
	// DefaultToken is sent when no token is configured.
	DefaultToken = "trisetra_test"

	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 250 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
	requestIDHeader       = "X-Request-ID"
)

// Config captures the runtime settings required to talk to the service.
type Config struct {
	Endpoint          string
	Token             string
	Timeout           time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryMaxDelay     time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Request describes one call. Method defaults to PUT.
type Request struct {
	Method  string
	Query   map[string]string
	Body    any
	Headers map[string]string
}

// Client sends authenticated requests to the reconstruction service.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
	newRequestID     func() string
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetryMaxAttempts overrides the read retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the read retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithRequestIDs overrides correlation id generation.
func WithRequestIDs(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		cfg.Token = DefaultToken
	}

	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		newRequestID:     uuid.NewString,
	}
	if cfg.RetryAttempts > 0 {
		client.retryMaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBaseDelay > 0 {
		client.retryBaseDelay = cfg.RetryBaseDelay
	}
	if cfg.RetryMaxDelay > 0 {
		client.retryMaxDelay = cfg.RetryMaxDelay
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "remote")
	return client
}

// NewFromConfig builds a client from the [remote] configuration section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg == nil {
		return NewClient(Config{}, append([]Option{WithLogger(logger)}, opts...)...)
	}
	base, maxDelay := cfg.RetryBackoff()
	remoteCfg := Config{
		Endpoint:          cfg.Remote.Endpoint,
		Token:             cfg.Remote.Token,
		Timeout:           cfg.RemoteTimeout(),
		RetryAttempts:     cfg.Remote.RetryAttempts,
		RetryBaseDelay:    base,
		RetryMaxDelay:     maxDelay,
		RequestsPerSecond: cfg.Remote.RequestsPerSecond,
		Burst:             cfg.Remote.Burst,
	}
	return NewClient(remoteCfg, append([]Option{WithLogger(logger)}, opts...)...)
}

// Endpoint returns the service base URL without a trailing slash.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

// Token returns the token sent with every request.
func (c *Client) Token() string {
	return c.cfg.Token
}

// Get performs an idempotent read, retrying transient failures.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Envelope, error) {
	return c.do(ctx, path, Request{Method: http.MethodGet, Query: query}, c.retryAttempts())
}

// Put performs a single-attempt write.
func (c *Client) Put(ctx context.Context, path string, query map[string]string) (Envelope, error) {
	return c.do(ctx, path, Request{Method: http.MethodPut, Query: query}, 1)
}

// Post performs a single-attempt write with a JSON body.
func (c *Client) Post(ctx context.Context, path string, query map[string]string, body any) (Envelope, error) {
	return c.do(ctx, path, Request{Method: http.MethodPost, Query: query, Body: body}, 1)
}

// Send issues one request as described. It never retries.
func (c *Client) Send(ctx context.Context, path string, req Request) (Envelope, error) {
	return c.do(ctx, path, req, 1)
}

// URL builds the full request URL for path, adding the token when absent.
func (c *Client) URL(path string, query map[string]string) string {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	// A blank caller token counts as absent.
	if strings.TrimSpace(query["token"]) == "" {
		values.Set("token", c.cfg.Token)
	}
	return c.cfg.Endpoint + "/" + strings.TrimLeft(path, "/") + "?" + values.Encode()
}

func (c *Client) do(ctx context.Context, path string, req Request, attempts int) (Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodPut
	}
	op := method + " " + strings.TrimLeft(path, "/")

	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = c.newRequestID()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger)

	var lastErr *Error
	for attempt := 1; attempt <= attempts; attempt++ {
		env, err := c.sendOnce(ctx, op, method, path, req, requestID)
		if err == nil {
			logger.Debug("remote request completed",
				logging.String("op", op),
				logging.Int("attempt", attempt),
			)
			return env, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		logger.Debug("remote request retrying",
			logging.String("op", op),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			lastErr = transportError(op, sleepErr)
			break
		}
	}

	logging.ErrorWithContext(logger, "remote request failed", "remote_request_failed",
		logging.String("op", op),
		logging.String("kind", lastErr.Kind),
		logging.Int("status_code", lastErr.StatusCode),
		logging.String(logging.FieldErrorHint, errorHint(lastErr)),
		logging.Error(lastErr),
	)
	return nil, lastErr
}

func (c *Client) sendOnce(ctx context.Context, op, method, path string, req Request, requestID string) (Envelope, *Error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(op, fmt.Errorf("rate limit: %w", err))
		}
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, transportError(op, fmt.Errorf("encode body: %w", err))
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.URL(path, req.Query), body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("new request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(requestIDHeader, requestID)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("read body: %w", err))
	}

	env, decodeErr := decodeEnvelope(raw)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var message string
		if decodeErr == nil {
			message = env.Message()
		}
		remoteErr := remoteError(op, resp.StatusCode, message)
		remoteErr.retryAfter, _ = parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, remoteErr
	}
	if decodeErr != nil {
		return nil, parseError(op, resp.StatusCode, decodeErr)
	}
	return env, nil
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Envelope{}, nil
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, errors.New("envelope is not an object")
	}
	return env, nil
}

func errorHint(err *Error) string {
	switch err.Kind {
	case KindTransport:
		return "check remote.endpoint and network connectivity"
	case KindParse:
		return "the service returned a malformed response"
	default:
		if err.StatusCode == http.StatusUnauthorized || err.StatusCode == http.StatusForbidden {
			return "check remote.token"
		}
		return "see the service message"
	}
}

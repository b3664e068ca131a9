package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expense-tracker/internal/logger"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
	bearerPrefix    = "Bearer "
)

type tokenStore interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type config interface {
	BaseURL() string
	Timeout() time.Duration
}

// Client talks JSON to the expense tracker REST API on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenStore
	onExpired  func(ctx context.Context)

	expireMu sync.Mutex
}

type Option func(c *Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithExpiredHandler registers the hook run after a 401 cleared the stored
// credentials.
func WithExpiredHandler(fn func(ctx context.Context)) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

func New(cfg config, tokens tokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL(), "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request sends body (if any) as JSON and returns the raw response body.
// Failures are *NetworkError or *HTTPError.
func (c *Client) Request(ctx context.Context, method, path string, body any) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "apiRequest")
	defer span.Finish()
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, path)

	start := time.Now()
	status, raw, err := c.do(ctx, span, method, path, body)
	elapsed := time.Since(start)

	observeRequest(method, status, elapsed)
	if status != 0 {
		ext.HTTPStatusCode.Set(span, uint16(status))
	}
	if err != nil {
		ext.Error.Set(span, true)
		logger.Error("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	logger.Info("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed))
	return raw, nil
}

func (c *Client) do(ctx context.Context, span opentracing.Span, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, errors.Wrap(err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set(requestIDHeader, uuid.NewString())

	token, err := c.tokens.Token(ctx)
	if err != nil {
		logger.Warn("cannot read stored token, sending anonymous request", zap.Error(err))
		token = ""
	}
	if token != "" {
		req.Header.Set("Authorization", bearerPrefix+token)
	}

	err = opentracing.GlobalTracer().Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))
	if err != nil {
		logger.Warn("cannot inject span context", zap.Error(err))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			logger.Warn("error closing response body", zap.Error(closeErr))
		}
	}()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	if res.StatusCode == http.StatusUnauthorized {
		c.expire(ctx, token)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return res.StatusCode, nil, &HTTPError{Method: method, Path: path, Status: res.StatusCode, Payload: raw}
	}
	return res.StatusCode, raw, nil
}

// expire clears the credentials the rejected request was sent with. A token
// replaced in the meantime (fresh login) is left alone, and concurrent 401s
// for the same token clear and notify once.
func (c *Client) expire(ctx context.Context, used string) {
	if used == "" {
		return
	}

	c.expireMu.Lock()
	defer c.expireMu.Unlock()

	current, err := c.tokens.Token(ctx)
	if err != nil || current != used {
		return
	}
	if err = c.tokens.Clear(ctx); err != nil {
		logger.Error("cannot clear expired credentials", zap.Error(err))
	}
	logger.Info("session expired, credentials cleared")

	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}

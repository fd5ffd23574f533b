// Package transport performs signed requests against the media service.
//
// Every request that is not explicitly marked Unsigned carries the configured
// credential. The client never retries; retry policy belongs to callers.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"momentflow/internal/auth"
	"momentflow/internal/metrics"
)

const userAgent = "momentflow/1.0"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Request describes one outbound call. Body is JSON encoded; RawBody is sent
// as-is and takes precedence when both are set.
type Request struct {
	Method   string
	URL      string
	Body     any
	RawBody  []byte
	Headers  map[string]string
	Unsigned bool
}

type Client struct {
	http    *resty.Client
	baseURL string
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{logger}).
		OnBeforeRequest(auth.RequestMiddleware(&auth.Config{APIKey: cfg.APIKey})).
		OnBeforeRequest(requestIDMiddleware)

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger.With().Str("component", "transport").Logger(),
	}
}

// Do executes req and returns the raw response body on any 2xx status.
// Non-2xx responses and network failures are returned as *Error.
func (c *Client) Do(ctx context.Context, req *Request) ([]byte, error) {
	target := c.resolve(req.URL)

	r := c.http.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	switch {
	case req.RawBody != nil:
		r.SetBody(req.RawBody)
	case req.Body != nil:
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	if req.Unsigned {
		auth.MarkUnsigned(r)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, target)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(req.Method, metrics.StatusClass(0)).Inc()
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("path", redact(req.URL)).
			Dur("elapsed", time.Since(start)).
			Msg("request failed")
		return nil, &Error{Method: req.Method, URL: redact(target), Err: err}
	}

	metrics.RequestsTotal.WithLabelValues(req.Method, metrics.StatusClass(resp.StatusCode())).Inc()
	c.logger.Debug().
		Str("method", req.Method).
		Str("path", redact(req.URL)).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, &Error{
			Method: req.Method,
			URL:    redact(target),
			Status: resp.StatusCode(),
			Body:   resp.Body(),
		}
	}
	return resp.Body(), nil
}

// restyLogger routes resty's own diagnostics through zerolog.
type restyLogger struct {
	zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.Logger.Error().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.Logger.Warn().Msgf(strings.TrimSpace(format), v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.Logger.Debug().Msgf(strings.TrimSpace(format), v...)
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

// redact drops the query string, which for presigned URLs holds the signature.
func redact(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}

// Error is returned for any failed exchange with the remote side.
type Error struct {
	Method string
	URL    string
	Status int // 0 when no response was received
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, strings.TrimSpace(string(e.Body)))
}

func (e *Error) Unwrap() error {
	return e.Err
}

package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rbacctl/rbacctl/internal/log"
)

const (
	logTypeRequest  = "http_request"
	logTypeResponse = "http_response"
	logTypeError    = "http_error"
	redactedValue   = "[REDACTED]"
	maxBodyLogBytes = 4096

	// RequestIDHeader carries the per request correlation id.
	RequestIDHeader = "X-Request-ID"
)

var sensitiveKeys = []string{
	"authorization", "cookie", "password", "secret", "token", "api_key", "apikey", "x-api-key",
}

// Doer is satisfied by *http.Client and LoggingHTTPClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LoggingHTTPClient wraps an HTTP client to add debug and trace logging.
// Debug logs request metadata, trace additionally logs redacted bodies.
type LoggingHTTPClient struct {
	wrapped *http.Client
	logger  *slog.Logger
}

// NewLoggingHTTPClient creates a new logging HTTP client
func NewLoggingHTTPClient(logger *slog.Logger, timeout time.Duration) *LoggingHTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LoggingHTTPClient{
		wrapped: &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// NewLoggingHTTPClientWithClient wraps an existing HTTP client
func NewLoggingHTTPClientWithClient(client *http.Client, logger *slog.Logger) *LoggingHTTPClient {
	return &LoggingHTTPClient{
		wrapped: client,
		logger:  logger,
	}
}

func (c *LoggingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)
	}

	if c.logger == nil || !c.logger.Enabled(req.Context(), slog.LevelDebug) {
		return c.wrapped.Do(req)
	}

	trace := c.logger.Enabled(req.Context(), log.LevelTrace)
	start := time.Now()
	c.logRequest(req, requestID, trace)

	resp, err := c.wrapped.Do(req)
	duration := time.Since(start)
	if err != nil {
		attrs := append(log.HTTPLogContextAttrs(req.Context()),
			slog.String("log_type", logTypeError),
			slog.String("request_id", requestID),
			slog.String("method", req.Method),
			slog.String("route", req.URL.Path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		c.logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP request failed", attrs...)
		return nil, err
	}

	c.logResponse(req, resp, requestID, duration, trace)
	return resp, nil
}

func (c *LoggingHTTPClient) logRequest(req *http.Request, requestID string, trace bool) {
	attrs := append(log.HTTPLogContextAttrs(req.Context()),
		slog.String("log_type", logTypeRequest),
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("host", req.URL.Host),
		slog.String("route", req.URL.Path),
	)

	if query := req.URL.Query(); len(query) > 0 {
		params := make(map[string]string, len(query))
		for k, v := range query {
			if isSensitive(k) {
				params[k] = redactedValue
				continue
			}
			params[k] = strings.Join(v, ",")
		}
		attrs = append(attrs, slog.Any("query_params", params))
	}

	if trace {
		attrs = append(attrs, slog.Any("request_headers", redactHeaders(req.Header)))
		if body, ok := peekRequestBody(req); ok && body != "" {
			attrs = append(attrs, slog.String("request_body", redactBody(body)))
		}
	}

	c.logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP request", attrs...)
}

func (c *LoggingHTTPClient) logResponse(
	req *http.Request, resp *http.Response, requestID string, duration time.Duration, trace bool,
) {
	attrs := append(log.HTTPLogContextAttrs(req.Context()),
		slog.String("log_type", logTypeResponse),
		slog.String("request_id", requestID),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	if trace {
		attrs = append(attrs, slog.Any("response_headers", redactHeaders(resp.Header)))
		if body, err := peekResponseBody(resp); err == nil && body != "" {
			attrs = append(attrs, slog.String("response_body", redactBody(body)))
		}
	}

	c.logger.LogAttrs(req.Context(), slog.LevelDebug, "HTTP response", attrs...)
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if isSensitive(k) || strings.EqualFold(k, "set-cookie") {
			out[k] = redactedValue
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

// redactBody masks sensitive keys of a JSON body. Non JSON bodies are only
// truncated.
func redactBody(body string) string {
	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return truncate(body)
	}
	redactValue(decoded)
	b, err := json.Marshal(decoded)
	if err != nil {
		return truncate(body)
	}
	return truncate(string(b))
}

func redactValue(v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, inner := range val {
			if isSensitive(k) {
				val[k] = redactedValue
				continue
			}
			redactValue(inner)
		}
	case []any:
		for _, inner := range val {
			redactValue(inner)
		}
	}
}

func truncate(s string) string {
	if len(s) <= maxBodyLogBytes {
		return s
	}
	return fmt.Sprintf("%s... [truncated, total %d bytes]", s[:maxBodyLogBytes], len(s))
}

// peekRequestBody reads the request body and restores it for the transport.
func peekRequestBody(req *http.Request) (string, bool) {
	if req.Body == nil || req.Body == http.NoBody {
		return "", false
	}
	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// peekResponseBody reads the response body without consuming it
func peekResponseBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}
	b, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rbacctl/rbacctl/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return fn(req)
}

func TestLoggingHTTPClient_DebugLogsRequestAndResponseWithoutBodies(t *testing.T) {
	var logOutput bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logOutput, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Status:     "200 OK",
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`[]`)),
				Request:    req,
			}, nil
		}),
	}

	loggingClient := NewLoggingHTTPClientWithClient(client, logger)
	req, err := http.NewRequest(http.MethodGet, "https://rbac.example.com/api/Application?page=2&token=secret", nil)
	require.NoError(t, err)

	resp, err := loggingClient.Do(req)
	require.NoError(t, err)
	require.NotNil(t, resp)

	logs := parseJSONLogs(t, logOutput.String())
	require.Len(t, logs, 2)

	requestLog := mustFindLogByType(t, logs, logTypeRequest)
	responseLog := mustFindLogByType(t, logs, logTypeResponse)

	assert.Equal(t, "GET", requestLog["method"])
	assert.Equal(t, "/api/Application", requestLog["route"])

	queryValues, ok := requestLog["query_params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", queryValues["page"])
	assert.Equal(t, redactedValue, queryValues["token"])

	assert.NotContains(t, requestLog, "request_body")
	assert.NotContains(t, responseLog, "response_body")
	assert.NotEmpty(t, requestLog["request_id"])
	assert.Equal(t, requestLog["request_id"], responseLog["request_id"])
	assert.EqualValues(t, 200, int(responseLog["status_code"].(float64)))
}

func TestLoggingHTTPClient_TraceLogsBodiesAndRedactsSensitiveFields(t *testing.T) {
	var logOutput bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logOutput, &slog.HandlerOptions{
		Level: log.LevelTrace,
	}))

	requestBody := `{"useR_ID":"u1","password":"super-secret","nested":{"api_key":"key-value"}}`
	responseBody := `{"autH_CODE":"123","token":"response-secret"}`

	var requestBodySeenByTransport string
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			bodyBytes, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			requestBodySeenByTransport = string(bodyBytes)

			return &http.Response{
				StatusCode: http.StatusCreated,
				Status:     "201 Created",
				Header: http.Header{
					"Content-Type": []string{"application/json"},
					"Set-Cookie":   []string{"session=abc123"},
				},
				Body:    io.NopCloser(strings.NewReader(responseBody)),
				Request: req,
			}, nil
		}),
	}

	loggingClient := NewLoggingHTTPClientWithClient(client, logger)
	req, err := http.NewRequest(http.MethodPost, "https://rbac.example.com/api/User", strings.NewReader(requestBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer definitely-secret")

	resp, err := loggingClient.Do(req)
	require.NoError(t, err)

	assert.Equal(t, requestBody, requestBodySeenByTransport)
	responseBodyRead, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, responseBody, string(responseBodyRead))

	logs := parseJSONLogs(t, logOutput.String())
	requestLog := mustFindLogByType(t, logs, logTypeRequest)
	responseLog := mustFindLogByType(t, logs, logTypeResponse)

	requestLoggedBody, ok := requestLog["request_body"].(string)
	require.True(t, ok)
	assert.Contains(t, requestLoggedBody, `"password":"`+redactedValue+`"`)
	assert.Contains(t, requestLoggedBody, `"api_key":"`+redactedValue+`"`)
	assert.NotContains(t, requestLoggedBody, "super-secret")

	requestHeaders, ok := requestLog["request_headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redactedValue, requestHeaders["Authorization"])

	responseLoggedBody, ok := responseLog["response_body"].(string)
	require.True(t, ok)
	assert.Contains(t, responseLoggedBody, `"token":"`+redactedValue+`"`)
	assert.NotContains(t, responseLoggedBody, "response-secret")

	responseHeaders, ok := responseLog["response_headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, redactedValue, responseHeaders["Set-Cookie"])
}

func TestLoggingHTTPClient_NoLogsBelowDebug(t *testing.T) {
	var logOutput bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logOutput, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var seenID string
	client := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seenID = req.Header.Get(RequestIDHeader)
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Request:    req,
			}, nil
		}),
	}

	req, err := http.NewRequest(http.MethodDelete, "https://rbac.example.com/api/AppsRoles/R1", nil)
	require.NoError(t, err)
	_, err = NewLoggingHTTPClientWithClient(client, logger).Do(req)
	require.NoError(t, err)

	assert.Empty(t, strings.TrimSpace(logOutput.String()))
	assert.NotEmpty(t, seenID, "request id is always set")
}

func TestNewHTTPClientSetsHeaders(t *testing.T) {
	var seen http.Header
	client := NewHTTPClient(Options{
		Token:     "tok",
		UserAgent: "rbacctl/test",
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
		}),
	})

	req, err := http.NewRequest(http.MethodGet, "https://rbac.example.com/api/Rbac", nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", seen.Get("Authorization"))
	assert.Equal(t, "rbacctl/test", seen.Get("User-Agent"))
	assert.Equal(t, "application/json", seen.Get("Accept"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller request is not mutated")
}

func TestRateLimitedTransportHonoursContext(t *testing.T) {
	client := NewHTTPClient(Options{
		RequestsPerSecond: 0.001,
		Burst:             1,
		Base: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
		}),
	})

	req, err := http.NewRequest(http.MethodGet, "https://rbac.example.com/api/Rbac", nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "https://rbac.example.com/api/Rbac", nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	assert.Error(t, err)
}

func parseJSONLogs(t *testing.T, raw string) []map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	results := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &payload))
		results = append(results, payload)
	}
	return results
}

func mustFindLogByType(t *testing.T, logs []map[string]any, logType string) map[string]any {
	t.Helper()
	for _, entry := range logs {
		if entry["log_type"] == logType {
			return entry
		}
	}
	t.Fatalf("log type %q not found", logType)
	return nil
}

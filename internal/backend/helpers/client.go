package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ajg/form"
	"github.com/rbacctl/rbacctl/internal/backend/httpclient"
	"github.com/rbacctl/rbacctl/internal/record"
)

// envelopeKeys are checked in order when a collection response is an object.
var envelopeKeys = []string{"data", "items", "result", "records"}

// APIError is returned for any non 2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// IsNotFound reports whether err is, or wraps, a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a small JSON REST client shared by every service.
type Client struct {
	BaseURL string
	Doer    httpclient.Doer
}

func NewClient(baseURL string, doer httpclient.Doer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{BaseURL: baseURL, Doer: doer}
}

// Do sends body as JSON and returns the raw response body of a 2xx response.
// query may be url.Values or a struct with form tags.
func (c *Client) Do(ctx context.Context, method, path string, query any, body any) ([]byte, error) {
	endpoint, err := resolveEndpoint(c.BaseURL, path)
	if err != nil {
		return nil, err
	}
	if query != nil {
		values, err := encodeQuery(query)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query: %w", err)
		}
		if len(values) > 0 {
			endpoint += "?" + values.Encode()
		}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Body:       string(data),
		}
	}
	return data, nil
}

func (c *Client) list(ctx context.Context, path string, query any) ([]record.Record, error) {
	data, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return DecodeCollection(data)
}

func (c *Client) one(ctx context.Context, method, path string, query any, body any) (record.Record, error) {
	data, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(data)
}

// DecodeCollection accepts a bare array, or an object carrying the array under
// data, items, result or records. Empty bodies and null decode to nil.
func DecodeCollection(data []byte) ([]record.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	if data[0] == '[' {
		var out []record.Record
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to decode collection: %w", err)
		}
		return out, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	for _, key := range envelopeKeys {
		if raw, ok := envelope[key]; ok {
			return DecodeCollection(raw)
		}
	}
	return nil, fmt.Errorf("response has no collection under %s", strings.Join(envelopeKeys, ", "))
}

// DecodeRecord accepts a bare object or an envelope with the object under one
// of the envelope keys. A single element array yields that element.
func DecodeRecord(data []byte) (record.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		list, err := DecodeCollection(data)
		if err != nil || len(list) == 0 {
			return nil, err
		}
		return list[0], nil
	}

	var out record.Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	for _, key := range envelopeKeys {
		if inner, ok := out[key].(map[string]any); ok {
			return inner, nil
		}
	}
	return out, nil
}

// decodeStrings reports whether data is a plain array of strings, bare or in an
// envelope.
func decodeStrings(data []byte) ([]string, bool) {
	var out []string
	if err := json.Unmarshal(data, &out); err == nil {
		return out, true
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false
	}
	for _, key := range envelopeKeys {
		if raw, ok := envelope[key]; ok {
			return decodeStrings(raw)
		}
	}
	return nil, false
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

func encodeQuery(query any) (url.Values, error) {
	if values, ok := query.(url.Values); ok {
		return values, nil
	}
	return form.EncodeToValues(query)
}

func errorMessage(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := record.String(body, []string{"message", "Message", "error", "title", "detail"}, ""); msg != "" {
			return msg
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func resolveEndpoint(baseURL, path string) (string, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return "", fmt.Errorf("endpoint path cannot be empty")
	}

	if strings.HasPrefix(trimmedPath, "http://") || strings.HasPrefix(trimmedPath, "https://") {
		return trimmedPath, nil
	}

	if baseURL == "" {
		return "", fmt.Errorf("base URL cannot be empty")
	}

	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(trimmedPath, "/"), nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}

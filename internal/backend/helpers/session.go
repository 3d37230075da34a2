package helpers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rbacctl/rbacctl/internal/record"
)

const (
	sessionPath = "/api/Session/current"
	// AnonymousDisplayName is shown when no session is available.
	AnonymousDisplayName = "User"
)

type SessionAPI interface {
	// CurrentUser returns the display name of the logged in principal, or
	// AnonymousDisplayName when there is no session.
	CurrentUser(ctx context.Context) (string, error)
}

type SessionService struct {
	client *Client
	// Fallback resolves a name offline when the endpoint has no session.
	Fallback func() string
}

func NewSessionService(c *Client, fallback func() string) *SessionService {
	return &SessionService{client: c, Fallback: fallback}
}

// CurrentUser treats 401, 403 and 404 as "no session" rather than as errors.
func (s *SessionService) CurrentUser(ctx context.Context) (string, error) {
	data, err := s.client.Do(ctx, http.MethodGet, sessionPath, nil, nil)
	if err != nil {
		if isNoSession(err) {
			return s.fallback(), nil
		}
		return "", err
	}

	var name string
	if json.Unmarshal(data, &name) == nil && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name), nil
	}
	r, err := DecodeRecord(data)
	if err != nil {
		return "", err
	}
	if name := record.DisplayName.String(r); name != "" {
		return name, nil
	}
	return s.fallback(), nil
}

func (s *SessionService) fallback() string {
	if s.Fallback != nil {
		if name := strings.TrimSpace(s.Fallback()); name != "" {
			return name
		}
	}
	return AnonymousDisplayName
}

func isNoSession(err error) bool {
	var apiErr *APIError
	if !asAPIError(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
)

const appAuthPath = "/api/AppAuth"

// AppAuthAPI reads the flattened user authorization report.
type AppAuthAPI interface {
	List(ctx context.Context) ([]record.Record, error)
}

type AppAuthService struct {
	client *Client
}

func NewAppAuthService(c *Client) *AppAuthService {
	return &AppAuthService{client: c}
}

func (s *AppAuthService) List(ctx context.Context) ([]record.Record, error) {
	return s.client.list(ctx, appAuthPath, nil)
}

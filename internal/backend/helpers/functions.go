package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
)

const functionsPath = "/api/AppsFunctions"

type AppsFunctionsAPI interface {
	List(ctx context.Context) ([]record.Record, error)
	ListByApplication(ctx context.Context, appCode string) ([]record.Record, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, funcCode string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, funcCode string) error
}

type AppsFunctionsService struct {
	resource
}

func NewAppsFunctionsService(c *Client) *AppsFunctionsService {
	return &AppsFunctionsService{resource{client: c, path: functionsPath}}
}

func (s *AppsFunctionsService) ListByApplication(ctx context.Context, appCode string) ([]record.Record, error) {
	return s.client.list(ctx, s.path+"/byApp/"+escape(appCode), nil)
}

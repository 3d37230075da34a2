package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
)

const applicationsPath = "/api/Application"

type ApplicationAPI interface {
	List(ctx context.Context) ([]record.Record, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, appCode string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, appCode string) error
}

type ApplicationService struct {
	resource
}

func NewApplicationService(c *Client) *ApplicationService {
	return &ApplicationService{resource{client: c, path: applicationsPath}}
}

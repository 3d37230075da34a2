package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
)

const rolesPath = "/api/AppsRoles"

type AppsRolesAPI interface {
	List(ctx context.Context) ([]record.Record, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, roleCode string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, roleCode string) error
}

type AppsRolesService struct {
	resource
}

func NewAppsRolesService(c *Client) *AppsRolesService {
	return &AppsRolesService{resource{client: c, path: rolesPath}}
}

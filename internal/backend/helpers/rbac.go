package helpers

import (
	"context"

	"github.com/rbacctl/rbacctl/internal/record"
)

const rbacPath = "/api/Rbac"

// AssignmentQuery selects one application and role pair.
type AssignmentQuery struct {
	AppCode  string `form:"appCode"`
	RoleCode string `form:"roleCode"`
}

type RbacAPI interface {
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, code string) (record.Record, error)
	// AssignedFunctionCodes returns the function codes granted to the role
	// within the application.
	AssignedFunctionCodes(ctx context.Context, appCode, roleCode string) ([]string, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, code string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, code string) error
}

type RbacService struct {
	resource
}

func NewRbacService(c *Client) *RbacService {
	return &RbacService{resource{client: c, path: rbacPath}}
}

// AssignedFunctionCodes accepts either a list of strings or a list of
// function records from the backend.
func (s *RbacService) AssignedFunctionCodes(ctx context.Context, appCode, roleCode string) ([]string, error) {
	data, err := s.client.Do(ctx, "GET", s.path+"/assigned", AssignmentQuery{AppCode: appCode, RoleCode: roleCode}, nil)
	if err != nil {
		return nil, err
	}
	if codes, ok := decodeStrings(data); ok {
		return codes, nil
	}
	list, err := DecodeCollection(data)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(list))
	for _, r := range list {
		if code := record.FuncCode.String(r); code != "" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}

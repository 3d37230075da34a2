package helpers

import (
	"context"
	"net/http"

	"github.com/rbacctl/rbacctl/internal/record"
)

const usersPath = "/api/User"

// UserGrantQuery identifies one user, application and role grant.
type UserGrantQuery struct {
	UserID   string `form:"userId"`
	AppCode  string `form:"appCode,omitempty"`
	RoleCode string `form:"roleCode,omitempty"`
}

type UserAPI interface {
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, authCode string) (record.Record, error)
	GetByUserID(ctx context.Context, userID string) ([]record.Record, error)
	AvailableFacilities(ctx context.Context) ([]record.Record, error)
	UserFacilities(ctx context.Context, userID, appCode, roleCode string) ([]string, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, authCode string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, userID, appCode, roleCode string) error
}

type UserService struct {
	resource
}

func NewUserService(c *Client) *UserService {
	return &UserService{resource{client: c, path: usersPath}}
}

func (s *UserService) GetByUserID(ctx context.Context, userID string) ([]record.Record, error) {
	return s.client.list(ctx, s.path+"/byUserId/"+escape(userID), nil)
}

func (s *UserService) AvailableFacilities(ctx context.Context) ([]record.Record, error) {
	return s.client.list(ctx, s.path+"/facilities", nil)
}

// UserFacilities returns the facility codes of a grant. The backend answers
// either with plain strings or with facility records.
func (s *UserService) UserFacilities(ctx context.Context, userID, appCode, roleCode string) ([]string, error) {
	data, err := s.client.Do(ctx, http.MethodGet, s.path+"/userFacilities",
		UserGrantQuery{UserID: userID, AppCode: appCode, RoleCode: roleCode}, nil)
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
	out := make([]string, 0, len(list))
	for _, r := range list {
		if f := record.Facility.String(r); f != "" {
			out = append(out, f)
		}
	}
	return out, nil
}

// Delete removes a grant. Grants are addressed by user, application and role
// rather than by auth code.
func (s *UserService) Delete(ctx context.Context, userID, appCode, roleCode string) error {
	_, err := s.client.Do(ctx, http.MethodDelete, s.path,
		UserGrantQuery{UserID: userID, AppCode: appCode, RoleCode: roleCode}, nil)
	return err
}

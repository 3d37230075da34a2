package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rbacctl/rbacctl/internal/backend/helpers"
	"github.com/rbacctl/rbacctl/internal/listing"
	"github.com/rbacctl/rbacctl/internal/mutation"
	"github.com/rbacctl/rbacctl/internal/record"
)

// ErrReadOnly is returned by the write operations of read only definitions.
var ErrReadOnly = errors.New("resource is read only")

// Ops are the backend calls of one definition.
type Ops struct {
	List   listing.FetchFunc
	Get    func(ctx context.Context, key string) (record.Record, error)
	Create mutation.CreateCall
	Update mutation.UpdateCall
	Delete mutation.DeleteCall

	// Related looks up codes tied to one record, shown in its detail view.
	Related *Related
}

// Related is a per-record lookup such as the functions granted to a role.
type Related struct {
	Title string
	Fetch func(ctx context.Context, r record.Record) ([]string, error)
}

func assignedFunctions(rbac helpers.RbacAPI) *Related {
	return &Related{
		Title: "Assigned functions",
		Fetch: func(ctx context.Context, r record.Record) ([]string, error) {
			return rbac.AssignedFunctionCodes(ctx, record.AppCode.String(r), record.RoleCode.String(r))
		},
	}
}

func grantFacilities(users helpers.UserAPI) *Related {
	return &Related{
		Title: "Facilities",
		Fetch: func(ctx context.Context, r record.Record) ([]string, error) {
			return users.UserFacilities(ctx, record.UserID.String(r), record.AppCode.String(r), record.RoleCode.String(r))
		},
	}
}

// crud is the shape shared by the collection services.
type crud interface {
	List(ctx context.Context) ([]record.Record, error)
	Create(ctx context.Context, payload record.Record) (record.Record, error)
	Update(ctx context.Context, key string, payload record.Record) (record.Record, error)
	Delete(ctx context.Context, key string) error
}

func crudOps(d *Definition, svc crud) Ops {
	ops := Ops{
		List:   svc.List,
		Create: svc.Create,
		Update: svc.Update,
		Delete: svc.Delete,
	}
	ops.Get = getByListing(d, svc.List)
	return ops
}

// getByListing finds key in the full collection for services without a
// single record endpoint.
func getByListing(d *Definition, list listing.FetchFunc) func(context.Context, string) (record.Record, error) {
	return func(ctx context.Context, key string) (record.Record, error) {
		all, err := list(ctx)
		if err != nil {
			return nil, err
		}
		if r, ok := d.Find(all, key); ok {
			return r, nil
		}
		return nil, &helpers.APIError{StatusCode: 404, Message: fmt.Sprintf("%s %q not found", d.Name, key)}
	}
}

func readOnlyOps(list listing.FetchFunc) Ops {
	return Ops{
		List: list,
		Get: func(context.Context, string) (record.Record, error) {
			return nil, ErrReadOnly
		},
		Create: func(context.Context, record.Record) (record.Record, error) {
			return nil, ErrReadOnly
		},
		Update: func(context.Context, string, record.Record) (record.Record, error) {
			return nil, ErrReadOnly
		},
		Delete: func(context.Context, string) error {
			return ErrReadOnly
		},
	}
}

// GrantKey joins the user, application and role of a grant. It is accepted
// wherever a user auth code is.
func GrantKey(userID, appCode, roleCode string) string {
	return strings.Join([]string{userID, appCode, roleCode}, "/")
}

func splitGrantKey(key string) (string, string, string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func userOps(users helpers.UserAPI) Ops {
	get := func(ctx context.Context, key string) (record.Record, error) {
		if userID, app, role, ok := splitGrantKey(key); ok {
			grants, err := users.GetByUserID(ctx, userID)
			if err != nil {
				return nil, err
			}
			for _, g := range grants {
				if record.AppCode.String(g) == app && record.RoleCode.String(g) == role {
					return g, nil
				}
			}
			return nil, &helpers.APIError{StatusCode: 404, Message: fmt.Sprintf("user grant %q not found", key)}
		}
		return users.Get(ctx, key)
	}

	return Ops{
		List:   users.List,
		Get:    get,
		Create: users.Create,
		Update: func(ctx context.Context, key string, payload record.Record) (record.Record, error) {
			if _, _, _, ok := splitGrantKey(key); ok {
				current, err := get(ctx, key)
				if err != nil {
					return nil, err
				}
				key = record.AuthCode.String(current)
			}
			return users.Update(ctx, key, payload)
		},
		// Grants are deleted by user, application and role; an auth code is
		// resolved to those first.
		Delete: func(ctx context.Context, key string) error {
			userID, app, role, ok := splitGrantKey(key)
			if !ok {
				current, err := get(ctx, key)
				if err != nil {
					return err
				}
				userID, app, role = record.UserID.String(current), record.AppCode.String(current), record.RoleCode.String(current)
			}
			return users.Delete(ctx, userID, app, role)
		},
		Related: grantFacilities(users),
	}
}

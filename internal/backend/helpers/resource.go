package helpers

import (
	"context"
	"net/http"

	"github.com/rbacctl/rbacctl/internal/record"
)

// resource implements the list, create, update and delete calls shared by the
// collection endpoints. Updates and deletes address /path/{key}.
type resource struct {
	client *Client
	path   string
}

func (r resource) List(ctx context.Context) ([]record.Record, error) {
	return r.client.list(ctx, r.path, nil)
}

func (r resource) Get(ctx context.Context, key string) (record.Record, error) {
	return r.client.one(ctx, http.MethodGet, r.path+"/"+escape(key), nil, nil)
}

func (r resource) Create(ctx context.Context, payload record.Record) (record.Record, error) {
	return r.client.one(ctx, http.MethodPost, r.path, nil, payload)
}

func (r resource) Update(ctx context.Context, key string, payload record.Record) (record.Record, error) {
	return r.client.one(ctx, http.MethodPut, r.path+"/"+escape(key), nil, payload)
}

func (r resource) Delete(ctx context.Context, key string) error {
	_, err := r.client.Do(ctx, http.MethodDelete, r.path+"/"+escape(key), nil, nil)
	return err
}

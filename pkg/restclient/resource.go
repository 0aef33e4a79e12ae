package restclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nna-wms/wmsconsole/pkg/crud"
)

// Resource is the REST service for one entity endpoint, e.g. "/master-uom".
//
//	GET    {endpoint}       list
//	GET    {endpoint}/{id}  detail
//	POST   {endpoint}       create
//	PUT    {endpoint}/{id}  update
//	DELETE {endpoint}/{id}  delete
type Resource[TData, TCreate, TUpdate any] struct {
	client   *Client
	endpoint string
}

// NewResource binds an endpoint on client.
func NewResource[TData, TCreate, TUpdate any](client *Client, endpoint string) *Resource[TData, TCreate, TUpdate] {
	return &Resource[TData, TCreate, TUpdate]{client: client, endpoint: endpoint}
}

// Endpoint returns the bound endpoint path.
func (r *Resource[TData, TCreate, TUpdate]) Endpoint() string {
	return r.endpoint
}

// FetchAll lists every entity.
func (r *Resource[TData, TCreate, TUpdate]) FetchAll(ctx context.Context) ([]TData, error) {
	var out []TData
	if err := r.client.Do(ctx, http.MethodGet, r.endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchByID returns one entity.
func (r *Resource[TData, TCreate, TUpdate]) FetchByID(ctx context.Context, id int64) (TData, error) {
	var out TData
	err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, &out)
	return out, err
}

// Create posts a new entity and returns the stored version.
func (r *Resource[TData, TCreate, TUpdate]) Create(ctx context.Context, payload TCreate) (TData, error) {
	var out TData
	err := r.client.Do(ctx, http.MethodPost, r.endpoint, payload, &out)
	return out, err
}

// Update replaces the entity identified by id.
func (r *Resource[TData, TCreate, TUpdate]) Update(ctx context.Context, id int64, payload TUpdate) (TData, error) {
	var out TData
	err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), payload, &out)
	return out, err
}

// Delete removes the entity identified by id.
func (r *Resource[TData, TCreate, TUpdate]) Delete(ctx context.Context, id int64) (bool, error) {
	if err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Resource[TData, TCreate, TUpdate]) itemPath(id int64) string {
	return r.endpoint + "/" + strconv.FormatInt(id, 10)
}

// Ensure Resource implements crud.Service.
var _ crud.Service[struct{}, struct{}, struct{}] = (*Resource[struct{}, struct{}, struct{}])(nil)

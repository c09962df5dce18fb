package departments

import (
	"context"
	"fmt"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// Client calls the department endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// List fetches departments. The backend answers with a bare array today;
// an envelope is accepted as well.
func (c *Client) List(ctx context.Context, q listview.Query) (listview.Page[Department], error) {
	raw, err := c.api.GetRaw(ctx, "/departments", nil)
	if err != nil {
		return listview.Page[Department]{}, fmt.Errorf("departments: list: %w", err)
	}
	return listview.Normalize[Department](raw)
}

// Get fetches one department.
func (c *Client) Get(ctx context.Context, id int64) (Department, error) {
	var d Department
	if err := c.api.Get(ctx, fmt.Sprintf("/departments/%d", id), nil, &d); err != nil {
		return Department{}, fmt.Errorf("departments: get %d: %w", id, err)
	}
	return d, nil
}

// Create adds a department.
func (c *Client) Create(ctx context.Context, in Input) (Department, error) {
	var d Department
	if err := c.api.Post(ctx, "/departments", in, &d); err != nil {
		return Department{}, fmt.Errorf("departments: create: %w", err)
	}
	return d, nil
}

// Update replaces a department.
func (c *Client) Update(ctx context.Context, id int64, in Input) (Department, error) {
	var d Department
	if err := c.api.Put(ctx, fmt.Sprintf("/departments/%d", id), nil, in, &d); err != nil {
		return Department{}, fmt.Errorf("departments: update %d: %w", id, err)
	}
	return d, nil
}

// Delete removes a department.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/departments/%d", id)); err != nil {
		return fmt.Errorf("departments: delete %d: %w", id, err)
	}
	return nil
}

// Count returns the number of departments.
func (c *Client) Count(ctx context.Context) (int, error) {
	page, err := c.List(ctx, listview.Query{})
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

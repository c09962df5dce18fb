package employees

import (
	"context"
	"fmt"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// Client calls the employee endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// List fetches one page of employees.
func (c *Client) List(ctx context.Context, q listview.Query) (listview.Page[Employee], error) {
	raw, err := c.api.GetRaw(ctx, "/employees", q.Backend())
	if err != nil {
		return listview.Page[Employee]{}, fmt.Errorf("employees: list: %w", err)
	}
	return listview.Normalize[Employee](raw)
}

// Get fetches one employee.
func (c *Client) Get(ctx context.Context, id int64) (Employee, error) {
	var e Employee
	if err := c.api.Get(ctx, fmt.Sprintf("/employees/%d", id), nil, &e); err != nil {
		return Employee{}, fmt.Errorf("employees: get %d: %w", id, err)
	}
	return e, nil
}

// Create adds an employee.
func (c *Client) Create(ctx context.Context, in Input) (Employee, error) {
	var e Employee
	if err := c.api.Post(ctx, "/employees", in, &e); err != nil {
		return Employee{}, fmt.Errorf("employees: create: %w", err)
	}
	return e, nil
}

// Update replaces an employee.
func (c *Client) Update(ctx context.Context, id int64, in Input) (Employee, error) {
	var e Employee
	if err := c.api.Put(ctx, fmt.Sprintf("/employees/%d", id), nil, in, &e); err != nil {
		return Employee{}, fmt.Errorf("employees: update %d: %w", id, err)
	}
	return e, nil
}

// Delete removes an employee.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, fmt.Sprintf("/employees/%d", id)); err != nil {
		return fmt.Errorf("employees: delete %d: %w", id, err)
	}
	return nil
}

// Count returns the total number of employees.
func (c *Client) Count(ctx context.Context) (int, error) {
	page, err := c.List(ctx, listview.Query{Page: 0, Size: 1})
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

package payroll

import (
	"context"
	"fmt"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// Client calls the payroll endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// List fetches one page of payroll records.
func (c *Client) List(ctx context.Context, q listview.Query) (listview.Page[Payroll], error) {
	raw, err := c.api.GetRaw(ctx, "/payroll", q.Backend())
	if err != nil {
		return listview.Page[Payroll]{}, fmt.Errorf("payroll: list: %w", err)
	}
	return listview.Normalize[Payroll](raw)
}

// Get fetches one payroll record.
func (c *Client) Get(ctx context.Context, id int64) (Payroll, error) {
	var p Payroll
	if err := c.api.Get(ctx, fmt.Sprintf("/payroll/%d", id), nil, &p); err != nil {
		return Payroll{}, fmt.Errorf("payroll: get %d: %w", id, err)
	}
	return p, nil
}

// Generate asks the backend to compute a payroll record.
func (c *Client) Generate(ctx context.Context, g Generation) (Payroll, error) {
	var p Payroll
	if err := c.api.Post(ctx, "/payroll/generate", g, &p); err != nil {
		return Payroll{}, fmt.Errorf("payroll: generate: %w", err)
	}
	return p, nil
}

// Payslip downloads the payslip PDF of id into saver.
func (c *Client) Payslip(ctx context.Context, id int64, saver gateway.Saver) error {
	name := Payroll{ID: id}.PayslipName()
	if err := c.api.Download(ctx, fmt.Sprintf("/payroll/%d/pdf", id), name, saver); err != nil {
		return fmt.Errorf("payroll: payslip %d: %w", id, err)
	}
	return nil
}

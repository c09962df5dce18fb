package attendance

import (
	"context"
	"fmt"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// Client calls the attendance endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// CheckIn opens today's attendance record.
func (c *Client) CheckIn(ctx context.Context) (Record, error) {
	var rec Record
	if err := c.api.Post(ctx, "/attendance/check-in", nil, &rec); err != nil {
		return Record{}, fmt.Errorf("attendance: check-in: %w", err)
	}
	return rec, nil
}

// CheckOut closes today's attendance record.
func (c *Client) CheckOut(ctx context.Context) (Record, error) {
	var rec Record
	if err := c.api.Post(ctx, "/attendance/check-out", nil, &rec); err != nil {
		return Record{}, fmt.Errorf("attendance: check-out: %w", err)
	}
	return rec, nil
}

// Mine fetches the signed-in employee's history.
func (c *Client) Mine(ctx context.Context, q listview.Query) (listview.Page[Record], error) {
	raw, err := c.api.GetRaw(ctx, "/attendance/my", q.Backend())
	if err != nil {
		return listview.Page[Record]{}, fmt.Errorf("attendance: mine: %w", err)
	}
	return listview.Normalize[Record](raw)
}

// All fetches every employee's attendance.
func (c *Client) All(ctx context.Context, q listview.Query) (listview.Page[Record], error) {
	raw, err := c.api.GetRaw(ctx, "/attendance", q.Backend())
	if err != nil {
		return listview.Page[Record]{}, fmt.Errorf("attendance: list: %w", err)
	}
	return listview.Normalize[Record](raw)
}

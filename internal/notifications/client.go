package notifications

import (
	"context"
	"fmt"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// Client calls the notification endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// List fetches the user's notifications.
func (c *Client) List(ctx context.Context, q listview.Query) (listview.Page[Notification], error) {
	raw, err := c.api.GetRaw(ctx, "/notifications", q.Backend())
	if err != nil {
		return listview.Page[Notification]{}, fmt.Errorf("notifications: list: %w", err)
	}
	return listview.Normalize[Notification](raw)
}

// MarkRead marks one notification read.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	if err := c.api.Put(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil, nil); err != nil {
		return fmt.Errorf("notifications: read %d: %w", id, err)
	}
	return nil
}

// UnreadCount counts unread notifications on the first page.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	page, err := c.List(ctx, listview.Query{Size: 100})
	if err != nil {
		return 0, err
	}
	return Unread(page.Rows), nil
}

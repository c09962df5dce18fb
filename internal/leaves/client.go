package leaves

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/listview"
)

// ErrInvalidDecision is returned for statuses other than APPROVED or REJECTED.
var ErrInvalidDecision = errors.New("leaves: decision must be APPROVED or REJECTED")

// Client calls the leave endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// List fetches leave requests filtered by q.Status.
func (c *Client) List(ctx context.Context, q listview.Query) (listview.Page[Leave], error) {
	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	raw, err := c.api.GetRaw(ctx, "/leaves", params)
	if err != nil {
		return listview.Page[Leave]{}, fmt.Errorf("leaves: list: %w", err)
	}
	return listview.Normalize[Leave](raw)
}

// Pending fetches the approval queue.
func (c *Client) Pending(ctx context.Context, q listview.Query) (listview.Page[Leave], error) {
	q.Status = StatusPending
	return c.List(ctx, q)
}

// Mine fetches the signed-in employee's requests.
func (c *Client) Mine(ctx context.Context, q listview.Query) (listview.Page[Leave], error) {
	raw, err := c.api.GetRaw(ctx, "/leaves/my", nil)
	if err != nil {
		return listview.Page[Leave]{}, fmt.Errorf("leaves: mine: %w", err)
	}
	return listview.Normalize[Leave](raw)
}

// Apply submits a leave request.
func (c *Client) Apply(ctx context.Context, a Application) (Leave, error) {
	var l Leave
	if err := c.api.Post(ctx, "/leaves", a, &l); err != nil {
		return Leave{}, fmt.Errorf("leaves: apply: %w", err)
	}
	return l, nil
}

// Decide approves or rejects a request.
func (c *Client) Decide(ctx context.Context, id int64, status string) error {
	if !Decidable(status) {
		return ErrInvalidDecision
	}
	q := url.Values{"status": {status}}
	if err := c.api.Put(ctx, fmt.Sprintf("/leaves/%d/status", id), q, nil, nil); err != nil {
		return fmt.Errorf("leaves: decide %d: %w", id, err)
	}
	return nil
}

// CountPending returns the size of the approval queue.
func (c *Client) CountPending(ctx context.Context) (int, error) {
	page, err := c.Pending(ctx, listview.Query{})
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/notifications"
	"github.com/hcms-console/hcms-console/internal/view"
)

func notificationColumns() []listview.Column[notifications.Notification] {
	return []listview.Column[notifications.Notification]{
		{Key: "id", Label: "ID"},
		{Key: "createdAt", Label: "Date", Render: func(n notifications.Notification) listview.Cell {
			return listview.Cell{Text: view.FormatDate(n.CreatedAt)}
		}},
		{Key: "subject", Label: "Subject"},
		{Key: "message", Label: "Message"},
		{Key: "read", Label: "Status", Render: func(n notifications.Notification) listview.Cell {
			if n.Read {
				return listview.Cell{Text: "read"}
			}
			return listview.Cell{Text: "unread"}
		}},
	}
}

func notificationsCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Read notifications",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notifications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/notifications"); err != nil {
				return err
			}
			q := lf.query()
			page, err := notifications.NewClient(c.api).List(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load notifications")
			}
			if err := renderList(c, "Notifications", notificationColumns(), page, q, "No notifications."); err != nil {
				return err
			}
			if n := notifications.Unread(page.Rows); n > 0 {
				c.board.Info(fmt.Sprintf("%d unread on this page", n))
			}
			return nil
		},
	}
	lf.register(list, false)

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.authorize(fmt.Sprintf("/notifications/%d/read", id)); err != nil {
				return err
			}
			if err := notifications.NewClient(c.api).MarkRead(cmd.Context(), id); err != nil {
				return c.failure(err, "Could not update notification")
			}
			c.board.Success("Notification marked as read")
			return nil
		},
	}

	unread := &cobra.Command{
		Use:   "unread",
		Short: "Print the number of unread notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/notifications/unread.json"); err != nil {
				return err
			}
			n, err := notifications.NewClient(c.api).UnreadCount(cmd.Context())
			if err != nil {
				return c.failure(err, "Could not load notifications")
			}
			c.printer.Print("%d", n)
			return nil
		},
	}

	cmd.AddCommand(list, read, unread)
	return cmd
}

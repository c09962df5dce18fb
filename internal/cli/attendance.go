package cli

import (
	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/attendance"
)

func attendanceCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attendance",
		Aliases: []string{"att"},
		Short:   "Check in, check out and review attendance",
	}

	checkIn := &cobra.Command{
		Use:   "check-in",
		Short: "Start today's attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/attendance/check-in"); err != nil {
				return err
			}
			rec, err := attendance.NewClient(c.api).CheckIn(cmd.Context())
			if err != nil {
				return c.failure(err, "Check-in failed")
			}
			c.board.Success(attendance.Stamped("Checked in", rec.CheckInTime))
			return nil
		},
	}

	checkOut := &cobra.Command{
		Use:   "check-out",
		Short: "Close today's attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/attendance/check-out"); err != nil {
				return err
			}
			rec, err := attendance.NewClient(c.api).CheckOut(cmd.Context())
			if err != nil {
				return c.failure(err, "Check-out failed")
			}
			c.board.Success(attendance.Stamped("Checked out", rec.CheckOutTime))
			return nil
		},
	}

	var lf listFlags
	history := &cobra.Command{
		Use:   "history",
		Short: "List your attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/attendance/history"); err != nil {
				return err
			}
			q := lf.query()
			page, err := attendance.NewClient(c.api).Mine(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load attendance")
			}
			if err := renderList(c, "Attendance History", attendance.Columns(), page, q, "No attendance recorded yet."); err != nil {
				return err
			}
			if rec := attendance.Today(page.Rows, c.now()); rec != nil && !rec.CheckedOut() {
				c.board.Info("Checked in today, not yet checked out")
			}
			return nil
		},
	}
	lf.register(history, false)

	cmd.AddCommand(checkIn, checkOut, history)
	return cmd
}

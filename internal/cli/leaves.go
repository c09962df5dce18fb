package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/leaves"
	"github.com/hcms-console/hcms-console/internal/screen"
)

type applyFlags struct {
	LeaveType string `form:"type" validate:"required,oneof=ANNUAL SICK CASUAL"`
	Start     string `form:"start" validate:"required,datetime=2006-01-02"`
	End       string `form:"end" validate:"required,datetime=2006-01-02"`
	Reason    string `form:"reason" validate:"omitempty,max=500"`
}

func leavesCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaves",
		Short: "Apply for and approve leave",
	}

	var mineFlags listFlags
	mine := &cobra.Command{
		Use:   "mine",
		Short: "List your leave requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/leaves"); err != nil {
				return err
			}
			q := mineFlags.query()
			page, err := leaves.NewClient(c.api).Mine(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load leave requests")
			}
			return renderList(c, "My Leaves", leaves.MineColumns(), page, q, "You have not applied for leave yet.")
		},
	}
	mineFlags.register(mine, false)

	var pendingFlags listFlags
	pending := &cobra.Command{
		Use:   "pending",
		Short: "List leave requests awaiting a decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/leaves/approval"); err != nil {
				return err
			}
			q := pendingFlags.query()
			page, err := leaves.NewClient(c.api).Pending(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load leave requests")
			}
			return renderList(c, "Leave Approval", leaves.ApprovalColumns(), page, q, "No pending leave requests.")
		},
	}
	pendingFlags.register(pending, false)

	var f applyFlags
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Submit a leave request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/leaves/apply"); err != nil {
				return err
			}
			f.LeaveType = strings.ToUpper(strings.TrimSpace(f.LeaveType))
			errs := map[string]string{}
			if err := screen.NewValidator().Struct(f); err != nil {
				errs = screen.FormErrors(err)
			}
			if _, bad := errs["end"]; !bad && f.Start != "" && f.End != "" {
				start, err1 := time.Parse("2006-01-02", f.Start)
				end, err2 := time.Parse("2006-01-02", f.End)
				if err1 == nil && err2 == nil && end.Before(start) {
					errs["end"] = "End date must not be before start date."
				}
			}
			if len(errs) > 0 {
				return fieldErrors(errs)
			}
			l, err := leaves.NewClient(c.api).Apply(cmd.Context(), leaves.Application{
				LeaveType: f.LeaveType,
				StartDate: f.Start,
				EndDate:   f.End,
				Reason:    strings.TrimSpace(f.Reason),
			})
			if err != nil {
				if fields := gateway.FieldErrors(err); len(fields) > 0 {
					return fieldErrors(fields)
				}
				return c.failure(err, "Could not submit leave request")
			}
			c.board.Success(fmt.Sprintf("Leave request #%d submitted", l.ID))
			return nil
		},
	}
	apply.Flags().StringVar(&f.LeaveType, "type", "", "ANNUAL, SICK or CASUAL")
	apply.Flags().StringVar(&f.Start, "start", "", "first day, YYYY-MM-DD")
	apply.Flags().StringVar(&f.End, "end", "", "last day, YYYY-MM-DD")
	apply.Flags().StringVar(&f.Reason, "reason", "", "optional reason")

	cmd.AddCommand(mine, pending, apply,
		decideCommand(c, "approve", leaves.StatusApproved, "Leave approved"),
		decideCommand(c, "reject", leaves.StatusRejected, "Leave rejected"),
	)
	return cmd
}

func decideCommand(c *client, use, status, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a pending leave request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.authorize(fmt.Sprintf("/leaves/%d/status", id)); err != nil {
				return err
			}
			if err := leaves.NewClient(c.api).Decide(cmd.Context(), id, status); err != nil {
				if errors.Is(err, leaves.ErrInvalidDecision) {
					return err
				}
				return c.failure(err, "Could not update leave request")
			}
			c.board.Success(done)
			return nil
		},
	}
}

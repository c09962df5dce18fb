package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/payroll"
	"github.com/hcms-console/hcms-console/internal/screen"
)

type generateFlags struct {
	EmployeeID      int64   `form:"employee" validate:"required,gt=0"`
	Month           int     `form:"month" validate:"required,min=1,max=12"`
	Year            int     `form:"year" validate:"required,min=2000,max=2100"`
	BaseSalary      float64 `form:"base-salary" validate:"gt=0"`
	Allowances      float64 `form:"allowances" validate:"gte=0"`
	Bonus           float64 `form:"bonus" validate:"gte=0"`
	Overtime        float64 `form:"overtime" validate:"gte=0"`
	ProvidentFund   float64 `form:"provident-fund" validate:"gte=0"`
	OtherDeductions float64 `form:"other-deductions" validate:"gte=0"`
	PaymentDate     string  `form:"payment-date" validate:"omitempty,datetime=2006-01-02"`
}

func payrollCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Payroll records and payslips",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List payroll records",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/payroll"); err != nil {
				return err
			}
			q := lf.query()
			page, err := payroll.NewClient(c.api).List(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load payroll")
			}
			return renderList(c, "Payroll", payroll.Columns(c.money.Format), page, q, "No payroll records.")
		},
	}
	lf.register(list, true)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one payroll record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.authorize(fmt.Sprintf("/payroll/%d", id)); err != nil {
				return err
			}
			p, err := payroll.NewClient(c.api).Get(cmd.Context(), id)
			if err != nil {
				return c.failure(err, "Could not load payroll")
			}
			c.printPayroll(p)
			return nil
		},
	}

	var dir string
	payslip := &cobra.Command{
		Use:   "payslip <id>",
		Short: "Download a payslip PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.authorize(fmt.Sprintf("/payroll/%d/pdf", id)); err != nil {
				return err
			}
			var saved string
			saver := gateway.DirSaver{Dir: dir, Written: func(path string) { saved = path }}
			if err := payroll.NewClient(c.api).Payslip(cmd.Context(), id, saver); err != nil {
				return c.failure(err, "Payslip download failed")
			}
			c.board.Success("Payslip saved to " + saved)
			return nil
		},
	}
	payslip.Flags().StringVar(&dir, "dir", ".", "directory to save into")

	var f generateFlags
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a payroll record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/payroll/generate"); err != nil {
				return err
			}
			if err := screen.NewValidator().Struct(f); err != nil {
				return fieldErrors(screen.FormErrors(err))
			}
			p, err := payroll.NewClient(c.api).Generate(cmd.Context(), payroll.Generation{
				EmployeeID:      f.EmployeeID,
				Month:           f.Month,
				Year:            f.Year,
				BaseSalary:      f.BaseSalary,
				Allowances:      f.Allowances,
				Bonus:           f.Bonus,
				Overtime:        f.Overtime,
				ProvidentFund:   f.ProvidentFund,
				OtherDeductions: f.OtherDeductions,
				PaymentDate:     f.PaymentDate,
			})
			if err != nil {
				if fields := gateway.FieldErrors(err); len(fields) > 0 {
					return fieldErrors(fields)
				}
				return c.failure(err, "Could not generate payroll")
			}
			c.printPayroll(p)
			c.board.Success("Payroll generated")
			return nil
		},
	}
	generate.Flags().Int64Var(&f.EmployeeID, "employee", 0, "employee id")
	generate.Flags().IntVar(&f.Month, "month", 0, "pay period month, 1-12")
	generate.Flags().IntVar(&f.Year, "year", 0, "pay period year")
	generate.Flags().Float64Var(&f.BaseSalary, "base-salary", 0, "base salary")
	generate.Flags().Float64Var(&f.Allowances, "allowances", 0, "allowances")
	generate.Flags().Float64Var(&f.Bonus, "bonus", 0, "bonus")
	generate.Flags().Float64Var(&f.Overtime, "overtime", 0, "overtime pay")
	generate.Flags().Float64Var(&f.ProvidentFund, "provident-fund", 0, "provident fund deduction")
	generate.Flags().Float64Var(&f.OtherDeductions, "other-deductions", 0, "other deductions")
	generate.Flags().StringVar(&f.PaymentDate, "payment-date", "", "payment date, YYYY-MM-DD")

	cmd.AddCommand(list, show, payslip, generate)
	return cmd
}

func (c *client) printPayroll(p payroll.Payroll) {
	c.printer.Header(fmt.Sprintf("Payroll #%d", p.ID))
	c.printer.Field("Employee", strconv.FormatInt(p.EmployeeID, 10))
	c.printer.Field("Period", p.Period())
	c.printer.Field("Base Salary", c.money.Format(p.BaseSalary))
	c.printer.Field("Allowances", c.money.Format(p.Allowances))
	c.printer.Field("Bonus", c.money.Format(p.Bonus))
	c.printer.Field("Overtime", c.money.Format(p.Overtime))
	c.printer.Field("Gross Salary", c.money.Format(p.GrossSalary))
	c.printer.Field("Deductions", c.money.Format(p.TotalDeductions))
	c.printer.Field("Net Salary", c.money.Format(p.NetSalary))
	if p.PaymentDate != "" {
		c.printer.Field("Payment Date", p.PaymentDate)
	}
	c.printer.Field("Status", c.printer.Status(p.Status))
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/departments"
	"github.com/hcms-console/hcms-console/internal/employees"
)

func employeesCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"emp"},
		Short:   "Browse employees",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List employees",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/employees"); err != nil {
				return err
			}
			q := lf.query()
			page, err := employees.NewClient(c.api).List(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load employees")
			}
			return renderList(c, "Employees", employees.Columns(false), page, q, "No employees found.")
		},
	}
	lf.register(list, true)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.authorize(fmt.Sprintf("/employees/%d", id)); err != nil {
				return err
			}
			e, err := employees.NewClient(c.api).Get(cmd.Context(), id)
			if err != nil {
				return c.failure(err, "Could not load employee")
			}
			c.printer.Header(e.FirstName + " " + e.LastName)
			c.printer.Field("ID", strconv.FormatInt(e.ID, 10))
			if e.EmployeeID != "" {
				c.printer.Field("Employee ID", e.EmployeeID)
			}
			c.printer.Field("Email", e.Email)
			c.printer.Field("Phone", e.PhoneNumber)
			c.printer.Field("Designation", e.Designation)
			if e.DepartmentID != nil {
				c.printer.Field("Department", strconv.FormatInt(*e.DepartmentID, 10))
			}
			c.printer.Field("Hire Date", e.HireDate)
			c.printer.Field("Status", c.printer.Status(e.Status))
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func departmentsCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "departments",
		Aliases: []string{"dept"},
		Short:   "Browse departments",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List departments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authorize("/departments"); err != nil {
				return err
			}
			q := lf.query()
			page, err := departments.NewClient(c.api).List(cmd.Context(), q)
			if err != nil {
				return c.failure(err, "Could not load departments")
			}
			return renderList(c, "Departments", departments.Columns(), page, q, "No departments found.")
		},
	}
	lf.register(list, false)

	cmd.AddCommand(list)
	return cmd
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/output"
)

func routesCommand(c *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect the console's route table",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List protected routes and the roles allowed on each",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.store.Snapshot()
			t := output.NewTable(c.printer.Out(), []string{"Path", "Roles", "You"})
			for _, rule := range c.routes.Rules() {
				roles := "any signed-in user"
				if len(rule.Roles) > 0 {
					labels := make([]string, 0, len(rule.Roles))
					for _, r := range rule.Roles {
						labels = append(labels, r.Label())
					}
					roles = strings.Join(labels, ", ")
				}
				you := "no"
				if rule.Guard()(snap).Allow {
					you = "yes"
				}
				t.AddRow([]string{rule.Pattern, roles, you})
			}
			return t.Render()
		},
	}

	check := &cobra.Command{
		Use:   "check <path>",
		Short: "Show where the console would send you for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			d := c.routes.Evaluate(path, c.store.Snapshot())
			if d.Allow {
				c.printer.Print("%s: allowed", path)
				return nil
			}
			c.printer.Print("%s: redirect to %s", path, d.Redirect)
			return nil
		},
	}

	cmd.AddCommand(list, check)
	return cmd
}


package view

import (
	"strings"

	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/identity"
)

// NavItem is one sidebar link.
type NavItem struct {
	Label  string
	Href   string
	Active bool
}

var sidebar = []NavItem{
	{Label: "Dashboard", Href: "/dashboard"},
	{Label: "Employees", Href: "/employees"},
	{Label: "Departments", Href: "/departments"},
	{Label: "Leaves", Href: "/leaves"},
	{Label: "Attendance", Href: "/attendance"},
	{Label: "Payroll", Href: "/payroll"},
	{Label: "Notifications", Href: "/notifications"},
}

// Navigation returns the sidebar links id may follow, using the same allow
// lists the route guards enforce.
func Navigation(table *guard.Table, id *identity.Identity, current string) []NavItem {
	if id == nil || table == nil {
		return nil
	}
	items := make([]NavItem, 0, len(sidebar))
	for _, item := range sidebar {
		if !identity.Permits(id, table.Roles(item.Href)) {
			continue
		}
		item.Active = current == item.Href || strings.HasPrefix(current, item.Href+"/")
		items = append(items, item)
	}
	return items
}

package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/session"
)

// ErrInvalidRule is returned for rules with an empty or unknown allow-list.
var ErrInvalidRule = errors.New("guard: invalid rule")

// Rule maps a path pattern to an optional role allow-list. Patterns use chi
// syntax: literal segments and {param} placeholders.
type Rule struct {
	Pattern string
	Roles   []identity.Role
}

// NewRule validates roles. A nil roles slice means any authenticated identity.
func NewRule(pattern string, roles ...identity.Role) (Rule, error) {
	if !strings.HasPrefix(pattern, "/") {
		return Rule{}, fmt.Errorf("%w: pattern %q must start with /", ErrInvalidRule, pattern)
	}
	if roles != nil && len(roles) == 0 {
		return Rule{}, fmt.Errorf("%w: %s has an empty allow-list", ErrInvalidRule, pattern)
	}
	for _, r := range roles {
		if !r.Valid() {
			return Rule{}, fmt.Errorf("%w: %s allows unknown role %q", ErrInvalidRule, pattern, r)
		}
	}
	return Rule{Pattern: pattern, Roles: roles}, nil
}

// Match reports whether path satisfies the rule pattern.
func (r Rule) Match(path string) bool {
	want := splitPath(r.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// Guard returns the chain protecting the rule's path: session first, then role.
func (r Rule) Guard() Guard {
	return Chain(RequireSession(), RequireRole(r.Roles))
}

// Table is an ordered list of protected routes.
type Table struct {
	rules []Rule
}

// NewTable builds a table, failing on the first invalid rule.
func NewTable(rules ...Rule) (*Table, error) {
	for _, r := range rules {
		if _, err := NewRule(r.Pattern, r.Roles...); err != nil {
			return nil, err
		}
	}
	return &Table{rules: append([]Rule(nil), rules...)}, nil
}

// MustTable is NewTable that panics on invalid rules.
func MustTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the first rule matching path.
func (t *Table) Lookup(path string) (Rule, bool) {
	for _, r := range t.rules {
		if r.Match(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Roles returns the allow-list for pattern, or nil when the pattern is open
// to any identity or unknown.
func (t *Table) Roles(pattern string) []identity.Role {
	for _, r := range t.rules {
		if r.Pattern == pattern {
			return r.Roles
		}
	}
	return nil
}

// Evaluate decides a navigation to path. Unknown paths are sent to the
// dashboard, which itself requires a session.
func (t *Table) Evaluate(path string, snap session.Snapshot) Decision {
	rule, ok := t.Lookup(path)
	if !ok {
		if d := RequireSession()(snap); !d.Allow {
			return d
		}
		return RedirectTo(DashboardPath)
	}
	return rule.Guard()(snap)
}

// Rules returns a copy of the table's rules.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return []string{""}
	}
	return strings.Split(p, "/")
}

var (
	staff  = []identity.Role{identity.RoleSuperAdmin, identity.RoleAdmin, identity.RoleManager}
	admins = []identity.Role{identity.RoleSuperAdmin, identity.RoleAdmin}
)

// StaffRoles returns the roles allowed on people-management screens.
func StaffRoles() []identity.Role { return append([]identity.Role(nil), staff...) }

// AdminRoles returns the roles allowed on administration screens.
func AdminRoles() []identity.Role { return append([]identity.Role(nil), admins...) }

// DefaultRules is the console's protected route table. Literal routes precede
// parameterised siblings so /employees/new never matches /employees/{id}.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/dashboard"},
		{Pattern: "/employees", Roles: staff},
		{Pattern: "/employees/new", Roles: admins},
		{Pattern: "/employees/{id}/edit", Roles: admins},
		{Pattern: "/employees/{id}/delete", Roles: admins},
		{Pattern: "/employees/{id}"},
		{Pattern: "/departments", Roles: admins},
		{Pattern: "/departments/new", Roles: admins},
		{Pattern: "/departments/{id}/edit", Roles: admins},
		{Pattern: "/departments/{id}/delete", Roles: admins},
		{Pattern: "/leaves"},
		{Pattern: "/leaves/apply"},
		{Pattern: "/leaves/approval", Roles: staff},
		{Pattern: "/leaves/{id}/status", Roles: staff},
		{Pattern: "/attendance"},
		{Pattern: "/attendance/check-in"},
		{Pattern: "/attendance/check-out"},
		{Pattern: "/attendance/history"},
		{Pattern: "/attendance/history/export"},
		{Pattern: "/payroll", Roles: admins},
		{Pattern: "/payroll/generate", Roles: admins},
		{Pattern: "/payroll/{id}"},
		{Pattern: "/payroll/{id}/pdf"},
		{Pattern: "/notifications"},
		{Pattern: "/notifications/unread.json"},
		{Pattern: "/notifications/{id}/read"},
	}
}

// DefaultTable builds the table from DefaultRules.
func DefaultTable() *Table {
	return MustTable(DefaultRules()...)
}

// Package guard decides, per navigation, whether the current session may see a
// path or must be redirected. Guards form an ordered chain; the first denial
// wins.
package guard

import (
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/session"
)

// Redirect targets.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Decision is the outcome of evaluating a guard.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allowed is the permitting decision.
var Allowed = Decision{Allow: true}

// RedirectTo denies with a redirect to path.
func RedirectTo(path string) Decision {
	return Decision{Redirect: path}
}

// Guard evaluates a session snapshot.
type Guard func(snap session.Snapshot) Decision

// RequireSession admits any snapshot carrying a credential and sends the rest
// to the login screen.
func RequireSession() Guard {
	return func(snap session.Snapshot) Decision {
		if !snap.Authenticated() {
			return RedirectTo(LoginPath)
		}
		return Allowed
	}
}

// RequireRole admits identities whose role is in roles and sends the rest to
// the dashboard. A nil roles list admits any identity.
func RequireRole(roles []identity.Role) Guard {
	return func(snap session.Snapshot) Decision {
		if identity.Permits(snap.Identity, roles) {
			return Allowed
		}
		return RedirectTo(DashboardPath)
	}
}

// Chain runs guards in order and returns the first denial.
func Chain(guards ...Guard) Guard {
	return func(snap session.Snapshot) Decision {
		for _, g := range guards {
			if d := g(snap); !d.Allow {
				return d
			}
		}
		return Allowed
	}
}

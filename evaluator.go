package session

// AccessRequirement is the declarative statement of which roles and approval
// states may view a route. The zero value is a public route. Variants are
// data, not per-role wrapper types.
type AccessRequirement struct {
	// RequiredRoles restricts access to a set of roles. Empty with
	// RequireAuthenticated set means "any authenticated".
	RequiredRoles []UserRole
	// RequireAuthenticated demands a confirmed session without restricting roles.
	RequireAuthenticated bool
	// RequireApproval additionally demands an approved, active business entity.
	RequireApproval bool
	// GuestOnly marks routes like the login page that authenticated users are
	// steered away from.
	GuestOnly bool
}

// Public is the zero requirement: always allowed.
func Public() AccessRequirement {
	return AccessRequirement{}
}

// RequireAuthentication accepts any confirmed session.
func RequireAuthentication() AccessRequirement {
	return AccessRequirement{RequireAuthenticated: true}
}

// RequireRoles restricts a route to the given roles.
func RequireRoles(roles ...UserRole) AccessRequirement {
	return AccessRequirement{RequiredRoles: roles, RequireAuthenticated: true}
}

// RequireApprovedRoles restricts a route to the given business roles and
// additionally demands verification approval and an active account.
func RequireApprovedRoles(roles ...UserRole) AccessRequirement {
	return AccessRequirement{
		RequiredRoles:        roles,
		RequireAuthenticated: true,
		RequireApproval:      true,
	}
}

// GuestOnlyRequirement marks a route for unauthenticated visitors only.
func GuestOnlyRequirement() AccessRequirement {
	return AccessRequirement{GuestOnly: true}
}

func (r AccessRequirement) restricted() bool {
	return r.RequireAuthenticated || r.RequireApproval || r.GuestOnly || len(r.RequiredRoles) > 0
}

func (r AccessRequirement) allowsRole(role UserRole) bool {
	if len(r.RequiredRoles) == 0 {
		return true
	}
	for _, allowed := range r.RequiredRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Decision is the access evaluation outcome.
type Decision string

const (
	// Allow renders the protected content.
	Allow Decision = "allow"
	// DenyUnauthenticated sends the visitor to login.
	DenyUnauthenticated Decision = "deny_unauthenticated"
	// DenyWrongRole sends the user to their role-appropriate dashboard or
	// home; it also covers authenticated users hitting guest-only routes.
	DenyWrongRole Decision = "deny_wrong_role"
	// DenyPendingApproval sends an unverified business user to the pending
	// approval page.
	DenyPendingApproval Decision = "deny_pending_approval"
	// DenyInactive sends a suspended account to the disabled page.
	DenyInactive Decision = "deny_inactive"
)

// Evaluate is the pure access decision: no side effects, fully deterministic
// given a snapshot and a requirement. It never panics on unrecognized roles;
// unknown input degrades to the least-privileged outcome.
func Evaluate(snap Snapshot, req AccessRequirement) Decision {
	if !req.restricted() {
		return Allow
	}

	authenticated := snap.IsAuthenticated()

	if req.GuestOnly {
		if authenticated {
			return DenyWrongRole
		}
		return Allow
	}

	if !authenticated {
		return DenyUnauthenticated
	}

	if !req.allowsRole(snap.User.Role) {
		return DenyWrongRole
	}

	if req.RequireApproval {
		if !snap.User.Active() {
			return DenyInactive
		}
		if !snap.User.Approved() {
			return DenyPendingApproval
		}
	}

	return Allow
}

// RedirectTarget maps a deny decision to its destination. Allow yields an
// empty string.
func RedirectTarget(snap Snapshot, decision Decision) string {
	switch decision {
	case DenyUnauthenticated:
		return PathLogin
	case DenyWrongRole:
		return DashboardFor(snap.Role())
	case DenyPendingApproval:
		return PathPendingApproval
	case DenyInactive:
		return PathSuspended
	default:
		return ""
	}
}

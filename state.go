package session

// Phase is the session lifecycle phase. Exactly one phase holds at any time.
type Phase string

const (
	// PhaseUnauthenticated means no token and no user.
	PhaseUnauthenticated Phase = "unauthenticated"
	// PhaseAuthenticating means a login or hydration identity check is in flight.
	PhaseAuthenticating Phase = "authenticating"
	// PhaseAuthenticated means both a token and a backend-confirmed user exist.
	PhaseAuthenticated Phase = "authenticated"
	// PhaseError means the last attempt failed; token and user are cleared.
	PhaseError Phase = "auth-error"
)

// phaseTransitions encodes the legal phase graph. Logout is handled outside
// the table: it is unconditional and reachable from every phase.
var phaseTransitions = map[Phase]map[Phase]struct{}{
	PhaseUnauthenticated: {
		PhaseAuthenticating: {},
	},
	PhaseAuthenticating: {
		PhaseAuthenticated:   {},
		PhaseUnauthenticated: {},
		PhaseError:           {},
	},
	PhaseAuthenticated: {
		// refreshIdentity keeps the session authenticated while re-validating;
		// a confirmed profile merge re-enters the same phase.
		PhaseAuthenticated:   {},
		PhaseUnauthenticated: {},
	},
	PhaseError: {
		PhaseAuthenticating: {},
	},
}

func canTransition(from, to Phase) bool {
	if to == PhaseUnauthenticated {
		return true
	}
	if allowed, ok := phaseTransitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// Snapshot is a read-only view of the session state.
type Snapshot struct {
	Phase Phase
	Token string
	User  *User
	Error string
}

// IsAuthenticated is true only when both the token and a successfully fetched
// user exist; token presence alone never grants authenticated state.
func (s Snapshot) IsAuthenticated() bool {
	return s.Phase == PhaseAuthenticated && s.Token != "" && s.User != nil
}

// Loading reports whether a login or identity check is in flight.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseAuthenticating
}

// Role returns the confirmed user role, degrading to guest.
func (s Snapshot) Role() UserRole {
	if !s.IsAuthenticated() {
		return RoleGuest
	}
	return s.User.Role
}

// Package session implements the client-side authentication lifecycle and
// role-based access gate for the Aaroth Fresh marketplace front end.
//
// Session store:
//   - Store is the single observable source of truth for auth state. It only
//     mutates through named transitions (login success/failure, logout,
//     current-user outcomes) so the phase invariants stay enforceable. The
//     token write-through goes to a pluggable TokenStorage; user, loading and
//     error live in memory only, so every process start re-validates identity
//     instead of trusting a cached profile.
//
// Auth gateway:
//   - Gateway orchestrates the backend REST calls (login, register, logout,
//     current user) and translates their outcomes into Store transitions. It
//     owns hydration with a fail-closed timeout, the stale identity-response
//     guard, and the once-per-expiry "session expired" notice.
//
// Access gate:
//   - Evaluate is a pure decision function over a Snapshot and an
//     AccessRequirement; RouteGuard wires it into go-router middleware,
//     rendering a neutral placeholder while hydration settles and redirecting
//     denied requests to a role-appropriate destination while preserving the
//     originally requested path.
package session

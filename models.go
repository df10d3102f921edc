package session

// UserRole is the user's marketplace role
type UserRole string

const (
	// RoleGuest is an unauthenticated visitor
	RoleGuest UserRole = "guest"
	// RoleAdmin is a platform administrator
	RoleAdmin UserRole = "admin"
	// RoleVendor is a vegetable vendor (sell side)
	RoleVendor UserRole = "vendor"
	// RoleRestaurantOwner owns a restaurant account (buy side)
	RoleRestaurantOwner UserRole = "restaurantOwner"
	// RoleRestaurantManager manages orders for a restaurant account
	RoleRestaurantManager UserRole = "restaurantManager"
)

// VerificationStatus is the business-entity approval state, distinct from
// authentication. Only business roles carry it.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// User is the validated profile returned by the backend. It is never
// persisted client-side; a reload always re-fetches it.
type User struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Phone              string             `json:"phone,omitempty"`
	Email              string             `json:"email,omitempty"`
	Role               UserRole           `json:"role"`
	VerificationStatus VerificationStatus `json:"verificationStatus,omitempty"`
	IsActive           *bool              `json:"isActive,omitempty"`
}

// Active treats a missing isActive flag as active; the backend only sends it
// for accounts that can be suspended.
func (u *User) Active() bool {
	return u == nil || u.IsActive == nil || *u.IsActive
}

// Approved reports whether the business entity passed verification.
func (u *User) Approved() bool {
	return u != nil && u.VerificationStatus == VerificationApproved
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleGuest, RoleAdmin, RoleVendor, RoleRestaurantOwner, RoleRestaurantManager:
		return true
	default:
		return false
	}
}

// RequiresApproval reports whether the role is a business role subject to the
// verification workflow.
func (r UserRole) RequiresApproval() bool {
	switch r {
	case RoleVendor, RoleRestaurantOwner, RoleRestaurantManager:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleGuest,
		RoleAdmin,
		RoleVendor,
		RoleRestaurantOwner,
		RoleRestaurantManager,
	}
}

// Landing routes used for redirect targets and post-login navigation.
const (
	PathHome                = "/"
	PathLogin               = "/login"
	PathPendingApproval     = "/account/pending"
	PathSuspended           = "/account/suspended"
	PathAdminDashboard      = "/admin/dashboard"
	PathVendorDashboard     = "/vendor/dashboard"
	PathRestaurantDashboard = "/restaurant/dashboard"
)

// DashboardFor computes the role-appropriate landing route. Unrecognized
// roles degrade to the public home route, never an error.
func DashboardFor(role UserRole) string {
	switch role {
	case RoleAdmin:
		return PathAdminDashboard
	case RoleVendor:
		return PathVendorDashboard
	case RoleRestaurantOwner, RoleRestaurantManager:
		return PathRestaurantDashboard
	default:
		return PathHome
	}
}

package approval

import "expense-approval/internal/domain/role"

// Actor is the user attempting a decision.
type Actor struct {
	UserID    string
	CompanyID string
	// Role is the user's current role; ClaimRole is whatever role the caller's
	// token carried and is accepted as a fallback for older tokens.
	Role      string
	ClaimRole string
}

// Holds reports whether the actor's current or claimed role is name.
func (a Actor) Holds(name string) bool {
	n := role.Normalize(name)
	if n == "" {
		return false
	}
	return role.Normalize(a.Role) == n || role.Normalize(a.ClaimRole) == n
}

// ManagerPolicy selects who may satisfy the manager pre-step.
type ManagerPolicy string

const (
	// PolicyDirectManager: only the submitter's own manager.
	PolicyDirectManager ManagerPolicy = "direct"
	// PolicyAnyManager: any approver-capable holder of the manager role in the company.
	PolicyAnyManager ManagerPolicy = "global"
)

func (p ManagerPolicy) Valid() bool { return p == PolicyDirectManager || p == PolicyAnyManager }

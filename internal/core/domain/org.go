package domain

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// CanMutate reports whether the role may execute inventory-changing commands.
func (r Role) CanMutate() bool {
	return r == RoleOwner || r == RoleAdmin
}

// TierResource identifies a plan-limited resource.
type TierResource string

const (
	TierCommands TierResource = "commands"
	TierItems    TierResource = "items"
)

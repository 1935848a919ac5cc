package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleManager UserRole = "MANAGER"
	UserRolePlanner UserRole = "PLANNER"
	UserRoleDriver  UserRole = "DRIVER"
)

type Principal struct {
	UserID   uuid.UUID
	FullName string
	Role     UserRole
}

// IsManager gates capacity overrides, closures, cancellations and approval
// decisions.
func (p Principal) IsManager() bool {
	return p.Role == UserRoleManager
}

func (p Principal) IsPlanner() bool {
	return p.Role == UserRolePlanner
}

func (p Principal) IsDriver() bool {
	return p.Role == UserRoleDriver
}

package utils

import (
	"fmt"

	"github.com/google/uuid"

	"bookline-backend/models"
)

type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// RoleRank gives the total ordering staff < admin < super_admin.
// Unknown roles rank below staff.
func RoleRank(r models.Role) int {
	switch r {
	case models.RoleStaff:
		return 1
	case models.RoleAdmin:
		return 2
	case models.RoleSuperAdmin:
		return 3
	}
	return 0
}

// CheckPermission gates every access to tenant-scoped data. super_admin
// passes unconditionally; everyone else must match the resource's tenant,
// and deletes additionally require admin.
func CheckPermission(actor *models.User, resourceTenantID uuid.UUID, action Action) error {
	if actor == nil {
		return ErrPermissionDenied
	}
	if actor.Role == models.RoleSuperAdmin {
		return nil
	}
	if actor.TenantID != resourceTenantID {
		return fmt.Errorf("%w: cross-tenant", ErrPermissionDenied)
	}
	if action == ActionDelete && RoleRank(actor.Role) < RoleRank(models.RoleAdmin) {
		return fmt.Errorf("%w: role %q cannot delete", ErrPermissionDenied, actor.Role)
	}
	return nil
}

// CanEditUser applies the user-record rules: anyone may edit themselves,
// super_admin may edit anyone, admin may edit staff (not other admins)
// within its own tenant.
func CanEditUser(actor, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	if actor.ID == target.ID {
		return true
	}
	if actor.Role == models.RoleAdmin && actor.TenantID == target.TenantID {
		return target.Role != models.RoleAdmin && target.Role != models.RoleSuperAdmin
	}
	return false
}

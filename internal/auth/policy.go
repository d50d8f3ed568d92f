package auth

import (
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
)

// RequireRole is the single role check shared by admin routes and services.
// The comparison is exact: "Admin" or "admin " do not qualify.
func RequireRole(role, required string) error {
	if role != required {
		return common.NewError(common.ErrForbidden, "Access denied. Admin only.")
	}
	return nil
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin(role string) error {
	return RequireRole(role, models.RoleAdmin)
}

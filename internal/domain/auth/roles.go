package auth

import "strings"

// Role names are stored uppercase by convention. Compare through Normalize
// so inconsistent casing in old rows never locks anyone out.
const (
	RoleSuperAdmin   = "SUPER_ADMIN"
	RoleAdmin        = "ADMIN"
	RoleManager      = "MANAGER"
	RoleHRSpecialist = "HR_SPECIALIST"
	RoleForeman      = "FOREMAN"
	RoleIncharge     = "INCHARGE"
	RoleChecking     = "CHECKING"
	RoleEmployee     = "EMPLOYEE"
)

func NormalizeRole(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

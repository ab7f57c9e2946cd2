package rbac

import "time"

type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guardName"`
	CreatedAt time.Time `json:"createdAt"`
}

type Permission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guardName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Decision is the outcome of a permission check. Reason is set on denial.
type Decision struct {
	Allowed bool   `json:"hasPermission"`
	Reason  string `json:"reason,omitempty"`
	Role    string `json:"userRole,omitempty"`
}

// UserPermissions is the resolved view of a user's effective grants.
type UserPermissions struct {
	UserID      string   `json:"userId"`
	Roles       []string `json:"roles"`
	Direct      []string `json:"directPermissions"`
	Inherited   []string `json:"inheritedPermissions"`
	Permissions []string `json:"permissions"`
}

type PermissionList struct {
	Permissions []Permission `json:"permissions"`
	Total       int          `json:"total"`
}

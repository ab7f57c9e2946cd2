package rbac

import "context"

type StoreAPI interface {
	UserActive(ctx context.Context, userID string) (bool, error)
	// RolesForUser unions the legacy users.role_id column with the
	// model_has_roles join rows, primary role first, de-duplicated.
	RolesForUser(ctx context.Context, userID string) ([]Role, error)
	DirectPermissions(ctx context.Context, userID string) ([]string, error)
	PermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error)

	ListRoles(ctx context.Context) ([]Role, error)
	RoleByName(ctx context.Context, name string) (Role, error)
	CreatePermission(ctx context.Context, name, guardName string) (Permission, error)
	ListPermissions(ctx context.Context, search string, limit, offset int) (PermissionList, error)
	ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error
	ReplaceUserPermissions(ctx context.Context, userID string, permissionIDs []string) error
}

package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

var ErrUserNotFound = errors.New("user not found")

func (s *Store) UserActive(ctx context.Context, userID string) (bool, error) {
	var active bool
	err := s.DB.QueryRow(ctx, "SELECT is_active FROM users WHERE id = $1", userID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, err
	}
	return active, nil
}

func (s *Store) RolesForUser(ctx context.Context, userID string) ([]Role, error) {
	var roles []Role
	seen := map[string]bool{}

	var primary Role
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.name, r.guard_name
    FROM users u
    JOIN roles r ON u.role_id = r.id
    WHERE u.id = $1
  `, userID).Scan(&primary.ID, &primary.Name, &primary.GuardName)
	if err == nil {
		roles = append(roles, primary)
		seen[primary.ID] = true
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.name, r.guard_name
    FROM model_has_roles mr
    JOIN roles r ON mr.role_id = r.id
    WHERE mr.user_id = $1
    ORDER BY r.name
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.GuardName); err != nil {
			return nil, err
		}
		if seen[role.ID] {
			continue
		}
		roles = append(roles, role)
		seen[role.ID] = true
	}
	return roles, rows.Err()
}

func (s *Store) DirectPermissions(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.name
    FROM model_has_permissions mp
    JOIN permissions p ON mp.permission_id = p.id
    WHERE mp.user_id = $1
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNames(rows)
}

func (s *Store) PermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT p.name
    FROM role_has_permissions rp
    JOIN permissions p ON rp.permission_id = p.id
    WHERE rp.role_id = ANY($1)
  `, roleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNames(rows)
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, "SELECT id, name, guard_name, created_at FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) RoleByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, guard_name, created_at
    FROM roles
    WHERE UPPER(name) = UPPER($1)
  `, name).Scan(&role.ID, &role.Name, &role.GuardName, &role.CreatedAt)
	return role, err
}

func (s *Store) CreatePermission(ctx context.Context, name, guardName string) (Permission, error) {
	var perm Permission
	err := s.DB.QueryRow(ctx, `
    INSERT INTO permissions (name, guard_name)
    VALUES ($1, $2)
    ON CONFLICT (name) DO UPDATE SET updated_at = now()
    RETURNING id, name, guard_name, created_at
  `, name, guardName).Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt)
	return perm, err
}

func (s *Store) ListPermissions(ctx context.Context, search string, limit, offset int) (PermissionList, error) {
	var out PermissionList
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM permissions WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  `, search).Scan(&out.Total); err != nil {
		return out, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, name, guard_name, created_at
    FROM permissions
    WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
    ORDER BY name
    LIMIT $2 OFFSET $3
  `, search, limit, offset)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var perm Permission
		if err := rows.Scan(&perm.ID, &perm.Name, &perm.GuardName, &perm.CreatedAt); err != nil {
			return out, err
		}
		out.Permissions = append(out.Permissions, perm)
	}
	return out, rows.Err()
}

func (s *Store) ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM role_has_permissions WHERE role_id = $1", roleID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO role_has_permissions (role_id, permission_id)
      VALUES ($1, $2)
      ON CONFLICT DO NOTHING
    `, roleID, permID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ReplaceUserPermissions(ctx context.Context, userID string, permissionIDs []string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM model_has_permissions WHERE user_id = $1", userID); err != nil {
		return err
	}
	for _, permID := range permissionIDs {
		if _, err := tx.Exec(ctx, `
      INSERT INTO model_has_permissions (user_id, permission_id)
      VALUES ($1, $2)
      ON CONFLICT DO NOTHING
    `, userID, permID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanNames(rows pgx.Rows) ([]string, error) {
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

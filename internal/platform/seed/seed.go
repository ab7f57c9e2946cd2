package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"snd/internal/domain/auth"
	"snd/internal/domain/rbac"
	"snd/internal/platform/config"
)

// Seed installs the permission catalog, the default roles with their grants,
// and an initial admin account. It is idempotent and safe to run on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, roleIDs[auth.RoleSuperAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range rbac.DefaultPermissions {
		_, err := pool.Exec(ctx,
			"INSERT INTO permissions (name, guard_name) VALUES ($1, 'web') ON CONFLICT (name) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range rbac.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE name = $1", roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx,
			"INSERT INTO roles (name, guard_name) VALUES ($1, 'web') RETURNING id", roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permIDs := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, name FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		permIDs[name] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for roleName, perms := range rbac.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permName := range perms {
			permID, ok := permIDs[permName]
			if !ok {
				return errors.New("permission not found: " + permName)
			}
			_, err := pool.Exec(ctx,
				"INSERT INTO role_has_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
				roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE lower(email) = lower($1)", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx,
		"INSERT INTO users (email, name, password_hash, role_id, is_active) VALUES ($1, 'Administrator', $2, $3, TRUE) RETURNING id",
		email, hash, roleID).Scan(&id)
}

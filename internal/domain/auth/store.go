package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"snd/internal/platform/db"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

type User struct {
	ID           string
	Email        string
	Name         string
	RoleID       string
	RoleName     string
	PasswordHash string
	Active       bool
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (User, error) {
	query := `
		SELECT u.id, u.email, u.name, u.role_id, r.name, u.password_hash, u.is_active
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE lower(u.email) = lower($1)`

	var u User
	err := s.DB.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.RoleID, &u.RoleName, &u.PasswordHash, &u.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user by email: %w", err)
	}

	return u, nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	if _, err := s.DB.Exec(ctx, `UPDATE users SET last_login = now() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

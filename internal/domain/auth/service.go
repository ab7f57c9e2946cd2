package auth

import (
	"context"
	"errors"
	"time"

	"snd/internal/apperr"
)

type StoreAPI interface {
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Service struct {
	Store     StoreAPI
	JWTSecret string
	TokenTTL  time.Duration
}

func NewService(store StoreAPI, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{Store: store, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

type LoginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login verifies the credentials and issues a signed token. All credential
// failures collapse into the same message so the endpoint never reveals
// whether an email exists.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, apperr.New(apperr.Validation, "email and password are required")
	}

	user, err := s.Store.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, apperr.New(apperr.PermissionDenied, "invalid credentials")
	}
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "look up user", err)
	}
	if !user.Active {
		return LoginResult{}, apperr.New(apperr.PermissionDenied, "invalid credentials")
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, apperr.New(apperr.PermissionDenied, "invalid credentials")
	}

	token, err := GenerateToken(s.JWTSecret, Claims{
		UserID:   user.ID,
		RoleID:   user.RoleID,
		RoleName: NormalizeRole(user.RoleName),
	}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.Internal, "sign token", err)
	}

	// Last-login is best effort; a failed stamp must not block the login.
	_ = s.Store.UpdateLastLogin(ctx, user.ID)

	return LoginResult{
		Token: token,
		User: LoginUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  NormalizeRole(user.RoleName),
		},
	}, nil
}

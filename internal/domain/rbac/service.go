package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"snd/internal/apperr"
)

// DecisionCache stores permission check results. Implementations must be
// nil-safe from the service's point of view: a nil cache disables caching.
type DecisionCache interface {
	Get(ctx context.Context, userID, permission string) (Decision, bool)
	Set(ctx context.Context, userID, permission string, decision Decision)
	InvalidateUser(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context)
}

type Service struct {
	Store    StoreAPI
	Cache    DecisionCache
	Sections []Section
}

func NewService(store StoreAPI, cache DecisionCache, sections []Section) *Service {
	return &Service{Store: store, Cache: cache, Sections: sections}
}

// CheckUserPermission decides whether userID may perform action on subject.
// Storage failures are returned as an error AND a denying decision: callers
// that ignore the error still fail closed.
func (s *Service) CheckUserPermission(ctx context.Context, userID, action, subject string) (Decision, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(action) == "" || strings.TrimSpace(subject) == "" {
		return Decision{Reason: "user, action and subject are required"},
			apperr.New(apperr.Validation, "user, action and subject are required")
	}

	permission := Name(action, subject)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, userID, permission); ok {
			return cached, nil
		}
	}

	decision, err := s.resolve(ctx, userID, action, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Decision{Reason: "user not found"}, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		slog.Error("permission resolution failed", "user", userID, "permission", permission, "err", err)
		return Decision{Reason: "permission resolution failed"},
			apperr.Wrap(apperr.Internal, "permission resolution failed", err)
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, userID, permission, decision)
	}
	return decision, nil
}

// CheckNamed checks a full permission name such as "approve.timesheet.foreman".
// The name splits on the first dot into action and subject.
func (s *Service) CheckNamed(ctx context.Context, userID, permission string) (Decision, error) {
	action, subject := Split(permission)
	return s.CheckUserPermission(ctx, userID, action, subject)
}

func (s *Service) resolve(ctx context.Context, userID, action, subject string) (Decision, error) {
	active, err := s.Store.UserActive(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if !active {
		return Decision{Reason: "user account is inactive"}, nil
	}

	roles, err := s.Store.RolesForUser(ctx, userID)
	if err != nil {
		return Decision{}, err
	}

	roleNames := make([]string, 0, len(roles))
	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, strings.ToUpper(role.Name))
		roleIDs = append(roleIDs, role.ID)
	}
	roleLabel := strings.Join(roleNames, ",")

	direct, err := s.Store.DirectPermissions(ctx, userID)
	if err != nil {
		return Decision{}, err
	}
	if matches(direct, action, subject) {
		return Decision{Allowed: true, Role: roleLabel}, nil
	}

	if len(roles) == 0 {
		return Decision{Reason: "user has no assigned role"}, nil
	}

	rolePerms, err := s.Store.PermissionsForRoles(ctx, roleIDs)
	if err != nil {
		return Decision{}, err
	}
	if matches(rolePerms, action, subject) {
		return Decision{Allowed: true, Role: roleLabel}, nil
	}

	return Decision{
		Reason: fmt.Sprintf("role %s lacks permission %s", roleLabel, Name(action, subject)),
		Role:   roleLabel,
	}, nil
}

// matches applies the grant rules: exact name, "*", "manage.all", and
// "manage.<Subject>" covering every action on that subject.
func matches(perms []string, action, subject string) bool {
	exact := Name(action, subject)
	managed := Name(ActionManage, subject)
	for _, perm := range perms {
		switch perm {
		case PermWildcard, PermManageAll, exact, managed:
			return true
		}
	}
	return false
}

// HasSectionPermission reports whether userID may see the named dashboard
// section. Unknown sections and any resolution error deny: fail closed.
func (s *Service) HasSectionPermission(ctx context.Context, userID, sectionName string) bool {
	section, ok := s.section(sectionName)
	if !ok {
		return false
	}

	decision, err := s.CheckUserPermission(ctx, userID, section.Primary.Action, section.Primary.Subject)
	if err != nil || !decision.Allowed {
		return false
	}
	for _, extra := range section.Additional {
		decision, err := s.CheckUserPermission(ctx, userID, extra.Action, extra.Subject)
		if err != nil || !decision.Allowed {
			return false
		}
	}
	return true
}

// AccessibleSections scans the section table in declared order. A section
// whose check errors is logged and skipped; the scan always completes.
func (s *Service) AccessibleSections(ctx context.Context, userID string) []string {
	sections := make([]string, 0, len(s.Sections))
	for _, section := range s.Sections {
		if s.HasSectionPermission(ctx, userID, section.Name) {
			sections = append(sections, section.Name)
		}
	}
	return sections
}

func (s *Service) section(name string) (Section, bool) {
	for _, section := range s.Sections {
		if section.Name == name {
			return section, true
		}
	}
	return Section{}, false
}

// UserPermissions returns the full resolved grant view for admin screens.
func (s *Service) UserPermissions(ctx context.Context, userID string) (UserPermissions, error) {
	roles, err := s.Store.RolesForUser(ctx, userID)
	if err != nil {
		return UserPermissions{}, apperr.Wrap(apperr.Internal, "failed to resolve roles", err)
	}
	roleNames := make([]string, 0, len(roles))
	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
		roleIDs = append(roleIDs, role.ID)
	}

	direct, err := s.Store.DirectPermissions(ctx, userID)
	if err != nil {
		return UserPermissions{}, apperr.Wrap(apperr.Internal, "failed to resolve direct permissions", err)
	}
	inherited, err := s.Store.PermissionsForRoles(ctx, roleIDs)
	if err != nil {
		return UserPermissions{}, apperr.Wrap(apperr.Internal, "failed to resolve role permissions", err)
	}

	seen := map[string]bool{}
	var all []string
	for _, perm := range append(append([]string{}, direct...), inherited...) {
		if !seen[perm] {
			seen[perm] = true
			all = append(all, perm)
		}
	}

	return UserPermissions{
		UserID:      userID,
		Roles:       roleNames,
		Direct:      direct,
		Inherited:   inherited,
		Permissions: all,
	}, nil
}

func (s *Service) CreatePermission(ctx context.Context, name, guardName string) (Permission, error) {
	action, subject := Split(strings.TrimSpace(name))
	if action == "" || subject == "" {
		return Permission{}, apperr.New(apperr.Validation, "permission name must be of the form <action>.<Subject>")
	}
	if guardName == "" {
		guardName = "web"
	}
	perm, err := s.Store.CreatePermission(ctx, name, guardName)
	if err != nil {
		return Permission{}, apperr.Wrap(apperr.Internal, "failed to create permission", err)
	}
	if s.Cache != nil {
		s.Cache.InvalidateAll(ctx)
	}
	return perm, nil
}

func (s *Service) ListPermissions(ctx context.Context, search string, limit, offset int) (PermissionList, error) {
	list, err := s.Store.ListPermissions(ctx, search, limit, offset)
	if err != nil {
		return PermissionList{}, apperr.Wrap(apperr.Internal, "failed to list permissions", err)
	}
	return list, nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.Store.ListRoles(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) AssignRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	if strings.TrimSpace(roleID) == "" {
		return apperr.New(apperr.Validation, "role id is required")
	}
	if err := s.Store.ReplaceRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to assign role permissions", err)
	}
	if s.Cache != nil {
		s.Cache.InvalidateAll(ctx)
	}
	return nil
}

func (s *Service) AssignUserPermissions(ctx context.Context, userID string, permissionIDs []string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.New(apperr.Validation, "user id is required")
	}
	if err := s.Store.ReplaceUserPermissions(ctx, userID, permissionIDs); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to assign user permissions", err)
	}
	if s.Cache != nil {
		s.Cache.InvalidateUser(ctx, userID)
	}
	return nil
}

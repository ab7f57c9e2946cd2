package rbac

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	active      bool
	activeErr   error
	roles       []Role
	rolesErr    error
	direct      []string
	directErr   error
	rolePerms   map[string][]string
	rolePermErr error
}

func (f *fakeStore) UserActive(ctx context.Context, userID string) (bool, error) {
	return f.active, f.activeErr
}

func (f *fakeStore) RolesForUser(ctx context.Context, userID string) ([]Role, error) {
	return f.roles, f.rolesErr
}

func (f *fakeStore) DirectPermissions(ctx context.Context, userID string) ([]string, error) {
	return f.direct, f.directErr
}

func (f *fakeStore) PermissionsForRoles(ctx context.Context, roleIDs []string) ([]string, error) {
	if f.rolePermErr != nil {
		return nil, f.rolePermErr
	}
	var perms []string
	for _, id := range roleIDs {
		perms = append(perms, f.rolePerms[id]...)
	}
	return perms, nil
}

func (f *fakeStore) ListRoles(ctx context.Context) ([]Role, error) { return f.roles, nil }
func (f *fakeStore) RoleByName(ctx context.Context, name string) (Role, error) {
	return Role{}, errors.New("not implemented")
}
func (f *fakeStore) CreatePermission(ctx context.Context, name, guardName string) (Permission, error) {
	return Permission{Name: name, GuardName: guardName}, nil
}
func (f *fakeStore) ListPermissions(ctx context.Context, search string, limit, offset int) (PermissionList, error) {
	return PermissionList{}, nil
}
func (f *fakeStore) ReplaceRolePermissions(ctx context.Context, roleID string, permissionIDs []string) error {
	return nil
}
func (f *fakeStore) ReplaceUserPermissions(ctx context.Context, userID string, permissionIDs []string) error {
	return nil
}

func hrStore(perms ...string) *fakeStore {
	return &fakeStore{
		active:    true,
		roles:     []Role{{ID: "r1", Name: "HR_SPECIALIST"}},
		rolePerms: map[string][]string{"r1": perms},
	}
}

func TestCheckUserPermissionGranted(t *testing.T) {
	svc := NewService(hrStore("read.Employee"), nil, DefaultSections())

	decision, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected allow, got %+v", decision)
	}
}

func TestCheckUserPermissionDeniedWithReason(t *testing.T) {
	svc := NewService(hrStore("read.Employee"), nil, DefaultSections())

	decision, err := svc.CheckUserPermission(context.Background(), "u1", "delete", "Employee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected deny")
	}
	if decision.Reason != "role HR_SPECIALIST lacks permission delete.Employee" {
		t.Fatalf("unexpected reason: %q", decision.Reason)
	}
}

func TestCheckUserPermissionInactiveUser(t *testing.T) {
	store := hrStore("read.Employee")
	store.active = false
	svc := NewService(store, nil, DefaultSections())

	decision, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Allowed || decision.Reason != "user account is inactive" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestCheckUserPermissionStorageFailureDenies(t *testing.T) {
	store := hrStore("read.Employee")
	store.rolesErr = errors.New("connection reset")
	svc := NewService(store, nil, DefaultSections())

	decision, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee")
	if err == nil {
		t.Fatal("expected error from storage failure")
	}
	if decision.Allowed {
		t.Fatal("storage failure must deny")
	}
}

func TestCheckUserPermissionUnionsRoles(t *testing.T) {
	store := &fakeStore{
		active: true,
		roles:  []Role{{ID: "r1", Name: "EMPLOYEE"}, {ID: "r2", Name: "FOREMAN"}},
		rolePerms: map[string][]string{
			"r1": {"read.own-profile"},
			"r2": {"approve.timesheet.foreman"},
		},
	}
	svc := NewService(store, nil, DefaultSections())

	decision, err := svc.CheckNamed(context.Background(), "u1", "approve.timesheet.foreman")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected union of role permissions to allow, got %+v", decision)
	}
}

func TestCheckUserPermissionDirectGrant(t *testing.T) {
	store := hrStore()
	store.direct = []string{"apply.SalaryIncrement"}
	svc := NewService(store, nil, DefaultSections())

	decision, err := svc.CheckNamed(context.Background(), "u1", "apply.SalaryIncrement")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected direct grant to allow, got %+v", decision)
	}
}

func TestWildcardAndManageGrants(t *testing.T) {
	cases := []struct {
		name  string
		perms []string
	}{
		{"wildcard", []string{"*"}},
		{"manage all", []string{"manage.all"}},
		{"manage subject", []string{"manage.Employee"}},
	}
	for _, tc := range cases {
		svc := NewService(hrStore(tc.perms...), nil, DefaultSections())
		decision, err := svc.CheckUserPermission(context.Background(), "u1", "delete", "Employee")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !decision.Allowed {
			t.Fatalf("%s: expected allow", tc.name)
		}
	}
}

func TestSectionRequiresAllPermissions(t *testing.T) {
	// manualAssignments needs read.Employee AND read.Assignment.
	onlyEmployee := NewService(hrStore("read.Employee"), nil, DefaultSections())
	if onlyEmployee.HasSectionPermission(context.Background(), "u1", "manualAssignments") {
		t.Fatal("expected deny with only the primary permission")
	}

	both := NewService(hrStore("read.Employee", "read.Assignment"), nil, DefaultSections())
	if !both.HasSectionPermission(context.Background(), "u1", "manualAssignments") {
		t.Fatal("expected grant with primary and additional permissions")
	}
}

func TestSectionFailsClosedOnError(t *testing.T) {
	store := hrStore("read.Employee", "read.Assignment")
	store.rolePermErr = errors.New("db down")
	svc := NewService(store, nil, DefaultSections())

	if svc.HasSectionPermission(context.Background(), "u1", "manualAssignments") {
		t.Fatal("lookup error must deny section access")
	}
}

func TestUnknownSectionDenied(t *testing.T) {
	svc := NewService(hrStore("manage.all"), nil, DefaultSections())
	if svc.HasSectionPermission(context.Background(), "u1", "noSuchSection") {
		t.Fatal("unknown section must be denied")
	}
}

func TestAccessibleSectionsOrderAndIsolation(t *testing.T) {
	sections := []Section{
		{Name: "first", Primary: PermissionRef{"read", "Employee"}},
		{Name: "second", Primary: PermissionRef{"read", "Equipment"}},
		{Name: "third", Primary: PermissionRef{"read", "Dashboard"}},
	}
	svc := NewService(hrStore("read.Employee", "read.Dashboard"), nil, sections)

	got := svc.AccessibleSections(context.Background(), "u1")
	if len(got) != 2 || got[0] != "first" || got[1] != "third" {
		t.Fatalf("unexpected sections: %v", got)
	}
}

type memoryCache struct {
	entries map[string]Decision
	sets    int
}

func (m *memoryCache) Get(ctx context.Context, userID, permission string) (Decision, bool) {
	d, ok := m.entries[userID+":"+permission]
	return d, ok
}

func (m *memoryCache) Set(ctx context.Context, userID, permission string, decision Decision) {
	m.sets++
	m.entries[userID+":"+permission] = decision
}

func (m *memoryCache) InvalidateUser(ctx context.Context, userID string) {
	m.entries = map[string]Decision{}
}

func (m *memoryCache) InvalidateAll(ctx context.Context) {
	m.entries = map[string]Decision{}
}

func TestDecisionCacheUsedAndErrorsNotCached(t *testing.T) {
	cache := &memoryCache{entries: map[string]Decision{}}
	store := hrStore("read.Employee")
	svc := NewService(store, cache, DefaultSections())

	if _, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cache.sets)
	}

	// Second check must come from the cache even if the store now errors.
	store.rolesErr = errors.New("db down")
	decision, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee")
	if err != nil || !decision.Allowed {
		t.Fatalf("expected cached allow, got %+v err=%v", decision, err)
	}

	// An erroring resolution is never cached.
	if _, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Payroll"); err == nil {
		t.Fatal("expected storage error")
	}
	if cache.sets != 1 {
		t.Fatalf("error result must not be cached, got %d writes", cache.sets)
	}
}

func TestAssignUserPermissionsInvalidatesCache(t *testing.T) {
	cache := &memoryCache{entries: map[string]Decision{}}
	svc := NewService(hrStore("read.Employee"), cache, DefaultSections())

	if _, err := svc.CheckUserPermission(context.Background(), "u1", "read", "Employee"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("expected cache entry, got %d", len(cache.entries))
	}

	if err := svc.AssignUserPermissions(context.Background(), "u1", []string{"p1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cache.entries) != 0 {
		t.Fatal("expected cache invalidation after permission mutation")
	}
}

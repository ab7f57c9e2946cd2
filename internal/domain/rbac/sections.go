package rbac

// PermissionRef is one (action, subject) requirement.
type PermissionRef struct {
	Action  string
	Subject string
}

func (p PermissionRef) Name() string {
	return Name(p.Action, p.Subject)
}

// Section gates one named dashboard region. The primary permission must hold;
// every entry in Additional must ALSO hold (logical AND).
type Section struct {
	Name       string
	Primary    PermissionRef
	Additional []PermissionRef
}

// DefaultSections returns the static section table in display order.
// The slice is built fresh on each call; Service takes it by value.
func DefaultSections() []Section {
	return []Section{
		{Name: "manualAssignments", Primary: PermissionRef{ActionRead, "Employee"}, Additional: []PermissionRef{{ActionRead, "Assignment"}}},
		{Name: "iqama", Primary: PermissionRef{ActionRead, "Employee"}, Additional: []PermissionRef{{ActionRead, "Iqama"}}},
		{Name: "equipment", Primary: PermissionRef{ActionRead, "Equipment"}},
		{Name: "financial", Primary: PermissionRef{ActionRead, "Payroll"}},
		{Name: "timesheets", Primary: PermissionRef{ActionRead, "Timesheet"}},
		{Name: "projectOverview", Primary: PermissionRef{ActionRead, "Project"}},
		{Name: "quickActions", Primary: PermissionRef{ActionRead, "Dashboard"}},
		{Name: "recentActivity", Primary: PermissionRef{ActionRead, "Dashboard"}},
		{Name: "myTeam", Primary: PermissionRef{ActionRead, "Employee"}, Additional: []PermissionRef{{ActionRead, "Timesheet"}, {ActionRead, "Leave"}}},
	}
}

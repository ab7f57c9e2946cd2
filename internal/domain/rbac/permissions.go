package rbac

import (
	"strings"

	"snd/internal/domain/auth"
)

// Permission names follow "<action>.<Subject>": lowercase action, capitalized
// subject, kebab-case for compound subjects. Timesheet stage approvals carry
// the stage as a suffix.
const (
	ActionCreate   = "create"
	ActionRead     = "read"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionManage   = "manage"
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionExport   = "export"
	ActionSync     = "sync"
	ActionApply    = "apply"
	ActionUpload   = "upload"
	ActionDownload = "download"
)

const (
	PermWildcard  = "*"
	PermManageAll = "manage.all"

	PermReadEmployee   = "read.Employee"
	PermCreateEmployee = "create.Employee"
	PermUpdateEmployee = "update.Employee"
	PermManageEmployee = "manage.Employee"

	PermReadTimesheet   = "read.Timesheet"
	PermCreateTimesheet = "create.Timesheet"
	PermUpdateTimesheet = "update.Timesheet"
	PermRejectTimesheet = "reject.Timesheet"

	PermApproveTimesheetForeman  = "approve.timesheet.foreman"
	PermApproveTimesheetIncharge = "approve.timesheet.incharge"
	PermApproveTimesheetChecking = "approve.timesheet.checking"
	PermApproveTimesheetManager  = "approve.timesheet.manager"

	PermReadSalaryIncrement    = "read.SalaryIncrement"
	PermCreateSalaryIncrement  = "create.SalaryIncrement"
	PermApproveSalaryIncrement = "approve.SalaryIncrement"
	PermRejectSalaryIncrement  = "reject.SalaryIncrement"
	PermApplySalaryIncrement   = "apply.SalaryIncrement"

	PermReadLeave    = "read.Leave"
	PermCreateLeave  = "create.Leave"
	PermApproveLeave = "approve.Leave"
	PermRejectLeave  = "reject.Leave"
	PermExportLeave  = "export.Leave"

	PermReadAssignment = "read.Assignment"
	PermReadIqama      = "read.Iqama"
	PermApproveIqama   = "approve.Iqama"
	PermReadEquipment  = "read.Equipment"
	PermReadPayroll    = "read.Payroll"
	PermReadProject    = "read.Project"
	PermReadDashboard  = "read.Dashboard"

	PermReadOwnProfile           = "read.own-profile"
	PermReadEmployeeDocument     = "read.employee-document"
	PermUploadEmployeeDocument   = "upload.employee-document"
	PermDownloadEmployeeDocument = "download.employee-document"

	PermReadUser   = "read.User"
	PermManageUser = "manage.User"
	PermReadRole   = "read.Role"
	PermManageRole = "manage.Role"
)

// Name builds a permission name from its action and subject.
func Name(action, subject string) string {
	return action + "." + subject
}

// Split separates a permission name into action and subject on the first dot.
func Split(name string) (action, subject string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return name, ""
	}
	return parts[0], parts[1]
}

var DefaultPermissions = []string{
	PermWildcard,
	PermManageAll,
	PermReadEmployee,
	PermCreateEmployee,
	PermUpdateEmployee,
	PermManageEmployee,
	PermReadTimesheet,
	PermCreateTimesheet,
	PermUpdateTimesheet,
	PermRejectTimesheet,
	PermApproveTimesheetForeman,
	PermApproveTimesheetIncharge,
	PermApproveTimesheetChecking,
	PermApproveTimesheetManager,
	PermReadSalaryIncrement,
	PermCreateSalaryIncrement,
	PermApproveSalaryIncrement,
	PermRejectSalaryIncrement,
	PermApplySalaryIncrement,
	PermReadLeave,
	PermCreateLeave,
	PermApproveLeave,
	PermRejectLeave,
	PermExportLeave,
	PermReadAssignment,
	PermReadIqama,
	PermApproveIqama,
	PermReadEquipment,
	PermReadPayroll,
	PermReadProject,
	PermReadDashboard,
	PermReadOwnProfile,
	PermReadEmployeeDocument,
	PermUploadEmployeeDocument,
	PermDownloadEmployeeDocument,
	PermReadUser,
	PermManageUser,
	PermReadRole,
	PermManageRole,
}

// RolePermissions is the default seed mapping. Roles themselves are dynamic
// rows; only the well-known names get a default permission set.
var RolePermissions = map[string][]string{
	auth.RoleSuperAdmin: {
		PermWildcard,
	},
	auth.RoleAdmin: {
		PermManageAll,
	},
	auth.RoleManager: {
		PermReadEmployee,
		PermReadAssignment,
		PermReadTimesheet,
		PermApproveTimesheetManager,
		PermRejectTimesheet,
		PermReadSalaryIncrement,
		PermApproveSalaryIncrement,
		PermRejectSalaryIncrement,
		PermApplySalaryIncrement,
		PermReadLeave,
		PermApproveLeave,
		PermRejectLeave,
		PermExportLeave,
		PermReadPayroll,
		PermReadProject,
		PermReadEquipment,
		PermReadDashboard,
	},
	auth.RoleHRSpecialist: {
		PermManageEmployee,
		PermReadEmployee,
		PermReadLeave,
		PermApproveLeave,
		PermRejectLeave,
		PermExportLeave,
		PermReadSalaryIncrement,
		PermCreateSalaryIncrement,
		PermReadIqama,
		PermApproveIqama,
		PermReadEmployeeDocument,
		PermUploadEmployeeDocument,
		PermDownloadEmployeeDocument,
		PermReadDashboard,
	},
	auth.RoleForeman: {
		PermReadTimesheet,
		PermCreateTimesheet,
		PermUpdateTimesheet,
		PermApproveTimesheetForeman,
		PermRejectTimesheet,
		PermReadDashboard,
	},
	auth.RoleIncharge: {
		PermReadTimesheet,
		PermApproveTimesheetIncharge,
		PermRejectTimesheet,
		PermReadDashboard,
	},
	auth.RoleChecking: {
		PermReadTimesheet,
		PermApproveTimesheetChecking,
		PermRejectTimesheet,
		PermReadDashboard,
	},
	auth.RoleEmployee: {
		PermReadOwnProfile,
		PermReadTimesheet,
		PermReadLeave,
		PermCreateLeave,
		PermReadDashboard,
	},
}

package timesheet

import "time"

type Timesheet struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employeeId"`
	AssignmentID  string  `json:"assignmentId,omitempty"`
	Date          time.Time `json:"date"`
	HoursWorked   float64 `json:"hoursWorked"`
	OvertimeHours float64 `json:"overtimeHours"`
	Status        Status  `json:"status"`
	Notes         string  `json:"notes,omitempty"`

	SubmittedAt *time.Time `json:"submittedAt,omitempty"`

	ForemanApprovalBy     *string    `json:"foremanApprovalBy,omitempty"`
	ForemanApprovalAt     *time.Time `json:"foremanApprovalAt,omitempty"`
	ForemanApprovalNotes  *string    `json:"foremanApprovalNotes,omitempty"`
	InchargeApprovalBy    *string    `json:"inchargeApprovalBy,omitempty"`
	InchargeApprovalAt    *time.Time `json:"inchargeApprovalAt,omitempty"`
	InchargeApprovalNotes *string    `json:"inchargeApprovalNotes,omitempty"`
	CheckingApprovalBy    *string    `json:"checkingApprovalBy,omitempty"`
	CheckingApprovalAt    *time.Time `json:"checkingApprovalAt,omitempty"`
	CheckingApprovalNotes *string    `json:"checkingApprovalNotes,omitempty"`
	ManagerApprovalBy     *string    `json:"managerApprovalBy,omitempty"`
	ManagerApprovalAt     *time.Time `json:"managerApprovalAt,omitempty"`
	ManagerApprovalNotes  *string    `json:"managerApprovalNotes,omitempty"`

	RejectedBy      *string    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	RejectionStage  *string    `json:"rejectionStage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	EmployeeID    string
	AssignmentID  string
	Date          time.Time
	HoursWorked   float64
	OvertimeHours float64
	Notes         string
}

type ListFilter struct {
	EmployeeID string
	Status     Status
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type ListResult struct {
	Timesheets []Timesheet `json:"timesheets"`
	Total      int         `json:"total"`
}

// BulkItemResult reports the outcome of one timesheet in a bulk approval.
type BulkItemResult struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Status Status `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

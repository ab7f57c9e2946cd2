package leave

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

// Leave is an employee leave request. RequestedEndDate and RequestedDays are
// stamped at creation and never change; EndDate and Days start equal to them
// and are overwritten when the employee returns.
type Leave struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	LeaveType  string `json:"leaveType"`

	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
	Days             int       `json:"days"`
	RequestedEndDate time.Time `json:"requestedEndDate"`
	RequestedDays    int       `json:"requestedDays"`

	Reason string `json:"reason,omitempty"`
	Status Status `json:"status"`

	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      *string    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`

	ReturnDate   *time.Time `json:"returnDate,omitempty"`
	ReturnedBy   *string    `json:"returnedBy,omitempty"`
	ReturnReason *string    `json:"returnReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	EmployeeID string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
}

// ReturnInput records an employee coming back from approved leave, possibly
// on a different date than requested.
type ReturnInput struct {
	LeaveID    string
	ReturnDate time.Time
	ReturnedBy string
	Reason     string
}

type ListFilter struct {
	EmployeeID string
	Status     Status
	Limit      int
	Offset     int
}

type ListResult struct {
	Leaves []Leave `json:"leaves"`
	Total  int     `json:"total"`
}

package increment

import "time"

// Status is the increment's position in the approve/apply pipeline.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusApplied  Status = "applied"
)

// Increment is a proposed salary change. The current_* columns snapshot the
// employee's compensation at proposal time; the new_* columns are what Apply
// copies onto the employee record.
type Increment struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`

	CurrentBaseSalary         float64 `json:"currentBaseSalary"`
	CurrentFoodAllowance      float64 `json:"currentFoodAllowance"`
	CurrentHousingAllowance   float64 `json:"currentHousingAllowance"`
	CurrentTransportAllowance float64 `json:"currentTransportAllowance"`

	NewBaseSalary         float64 `json:"newBaseSalary"`
	NewFoodAllowance      float64 `json:"newFoodAllowance"`
	NewHousingAllowance   float64 `json:"newHousingAllowance"`
	NewTransportAllowance float64 `json:"newTransportAllowance"`

	Reason        string    `json:"reason"`
	EffectiveDate time.Time `json:"effectiveDate"`
	Status        Status    `json:"status"`

	RequestedBy     string     `json:"requestedBy"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedBy      *string    `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	AppliedBy       *string    `json:"appliedBy,omitempty"`
	AppliedAt       *time.Time `json:"appliedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// TotalCurrent is the employee's compensation before the increment.
func (i Increment) TotalCurrent() float64 {
	return i.CurrentBaseSalary + i.CurrentFoodAllowance + i.CurrentHousingAllowance + i.CurrentTransportAllowance
}

// TotalNew is the employee's compensation after the increment.
func (i Increment) TotalNew() float64 {
	return i.NewBaseSalary + i.NewFoodAllowance + i.NewHousingAllowance + i.NewTransportAllowance
}

// IncreasePercent is the total compensation change in percent, 0 when the
// current total is zero.
func (i Increment) IncreasePercent() float64 {
	current := i.TotalCurrent()
	if current == 0 {
		return 0
	}
	return (i.TotalNew() - current) / current * 100
}

type CreateInput struct {
	EmployeeID            string
	NewBaseSalary         float64
	NewFoodAllowance      float64
	NewHousingAllowance   float64
	NewTransportAllowance float64
	Reason                string
	EffectiveDate         time.Time
	RequestedBy           string
}

type ListFilter struct {
	EmployeeID string
	Status     Status
	Limit      int
	Offset     int
}

type ListResult struct {
	Increments []Increment `json:"increments"`
	Total      int         `json:"total"`
}

package employee

import "time"

type Employee struct {
	ID         string  `json:"id"`
	FileNumber string  `json:"fileNumber"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email,omitempty"`
	UserID     *string `json:"userId,omitempty"`

	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`

	BasicSalary        float64 `json:"basicSalary"`
	FoodAllowance      float64 `json:"foodAllowance"`
	HousingAllowance   float64 `json:"housingAllowance"`
	TransportAllowance float64 `json:"transportAllowance"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// TotalCompensation is the monthly total the payroll reads.
func (e Employee) TotalCompensation() float64 {
	return e.BasicSalary + e.FoodAllowance + e.HousingAllowance + e.TransportAllowance
}

type CreateInput struct {
	FileNumber  string
	FirstName   string
	LastName    string
	Email       string
	Designation string
	Department  string

	BasicSalary        float64
	FoodAllowance      float64
	HousingAllowance   float64
	TransportAllowance float64
}

type ListFilter struct {
	Department string
	Active     *bool
	Search     string
	Limit      int
	Offset     int
}

type ListResult struct {
	Employees []Employee `json:"employees"`
	Total     int        `json:"total"`
}

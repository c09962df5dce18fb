package employees

import "strings"

// Employee is a row of GET /employees.
type Employee struct {
	ID           int64  `json:"id"`
	EmployeeID   string `json:"employeeId,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Designation  string `json:"designation,omitempty"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
	ManagerID    *int64 `json:"managerId,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country,omitempty"`
	HireDate     string `json:"hireDate,omitempty"`
	Status       string `json:"status,omitempty"`
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Input is the body of POST and PUT /employees.
type Input struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Designation  string `json:"designation,omitempty"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Address      string `json:"address,omitempty"`
	HireDate     string `json:"hireDate,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Genders accepted by the backend.
var Genders = []string{"MALE", "FEMALE", "OTHER"}

// Statuses accepted by the backend.
var Statuses = []string{"ACTIVE", "INACTIVE", "TERMINATED", "ON_LEAVE"}

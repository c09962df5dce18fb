package departments

// Department is a row of GET /departments.
type Department struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Code               string `json:"code,omitempty"`
	ParentDepartmentID *int64 `json:"parentDepartmentId,omitempty"`
	ManagerID          *int64 `json:"managerId,omitempty"`
	Active             *bool  `json:"active,omitempty"`
}

// Input is the body of POST and PUT /departments.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code,omitempty"`
	Active      bool   `json:"active"`
}

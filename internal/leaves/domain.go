package leaves

// Leave types accepted by the backend.
const (
	TypeAnnual = "ANNUAL"
	TypeSick   = "SICK"
	TypeCasual = "CASUAL"
)

// Leave statuses.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// Types lists the leave types offered on the apply form.
var Types = []string{TypeAnnual, TypeSick, TypeCasual}

// Leave is one leave request.
type Leave struct {
	ID              int64  `json:"id"`
	EmployeeID      int64  `json:"employeeId"`
	LeaveType       string `json:"leaveType"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	NumberOfDays    int    `json:"numberOfDays,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Status          string `json:"status"`
	ApprovedBy      *int64 `json:"approvedBy,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// Application is the body of POST /leaves.
type Application struct {
	LeaveType string `json:"leaveType"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason,omitempty"`
}

// Decidable reports whether status is a valid approval decision.
func Decidable(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

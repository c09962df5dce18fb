package attendance

import (
	"encoding/json"
	"time"
)

// Record is one attendance day. The backend has shipped two field naming
// schemes; both decode into the same fields.
type Record struct {
	ID           int64   `json:"id"`
	EmployeeID   int64   `json:"employeeId"`
	Date         string  `json:"date"`
	CheckInTime  string  `json:"checkInTime"`
	CheckOutTime string  `json:"checkOutTime"`
	TotalHours   float64 `json:"totalHours"`
	Status       string  `json:"status"`
	Remarks      string  `json:"remarks,omitempty"`
}

type wireRecord struct {
	ID             int64    `json:"id"`
	EmployeeID     int64    `json:"employeeId"`
	Date           string   `json:"date"`
	AttendanceDate string   `json:"attendanceDate"`
	CheckInTime    string   `json:"checkInTime"`
	ClockInTime    string   `json:"clockInTime"`
	CheckOutTime   string   `json:"checkOutTime"`
	ClockOutTime   string   `json:"clockOutTime"`
	TotalHours     *float64 `json:"totalHours"`
	Status         string   `json:"status"`
	IsLate         bool     `json:"isLate"`
	IsEarly        bool     `json:"isEarlyDeparture"`
	Remarks        string   `json:"remarks"`
}

// UnmarshalJSON accepts date/attendanceDate, checkInTime/clockInTime and
// checkOutTime/clockOutTime.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:           w.ID,
		EmployeeID:   w.EmployeeID,
		Date:         first(w.Date, w.AttendanceDate),
		CheckInTime:  first(w.CheckInTime, w.ClockInTime),
		CheckOutTime: first(w.CheckOutTime, w.ClockOutTime),
		Status:       w.Status,
		Remarks:      w.Remarks,
	}
	if w.TotalHours != nil {
		r.TotalHours = *w.TotalHours
	}
	if r.Status == "" {
		r.Status = derivedStatus(w)
	}
	return nil
}

func derivedStatus(w wireRecord) string {
	switch {
	case w.IsLate:
		return "LATE"
	case w.IsEarly:
		return "EARLY_DEPARTURE"
	case first(w.CheckInTime, w.ClockInTime) != "":
		return "PRESENT"
	}
	return ""
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// CheckedOut reports whether the day is closed.
func (r Record) CheckedOut() bool {
	return r.CheckOutTime != ""
}

// Today returns the record dated on now's calendar day, or nil.
func Today(rows []Record, now time.Time) *Record {
	date := now.Format(time.DateOnly)
	for i := range rows {
		if rows[i].Date == date {
			return &rows[i]
		}
	}
	return nil
}

package payroll

import (
	"encoding/json"
	"fmt"
)

// Payroll is one monthly pay record. Month and year arrive either as
// month/year or payPeriodMonth/payPeriodYear.
type Payroll struct {
	ID              int64   `json:"id"`
	EmployeeID      int64   `json:"employeeId"`
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	BaseSalary      float64 `json:"baseSalary"`
	Allowances      float64 `json:"allowances"`
	Bonus           float64 `json:"bonus"`
	Overtime        float64 `json:"overtime"`
	GrossSalary     float64 `json:"grossSalary"`
	TaxDeduction    float64 `json:"taxDeduction"`
	ProvidentFund   float64 `json:"providentFund"`
	OtherDeductions float64 `json:"otherDeductions"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetSalary       float64 `json:"netSalary"`
	PaymentDate     string  `json:"paymentDate,omitempty"`
	Status          string  `json:"status"`
}

type wirePayroll struct {
	ID              int64    `json:"id"`
	EmployeeID      int64    `json:"employeeId"`
	Month           int      `json:"month"`
	PayPeriodMonth  int      `json:"payPeriodMonth"`
	Year            int      `json:"year"`
	PayPeriodYear   int      `json:"payPeriodYear"`
	BaseSalary      *float64 `json:"baseSalary"`
	BasicSalary     *float64 `json:"basicSalary"`
	Allowances      float64  `json:"allowances"`
	Bonus           float64  `json:"bonus"`
	Overtime        float64  `json:"overtime"`
	GrossSalary     float64  `json:"grossSalary"`
	TaxDeduction    float64  `json:"taxDeduction"`
	ProvidentFund   float64  `json:"providentFund"`
	OtherDeductions float64  `json:"otherDeductions"`
	TotalDeductions *float64 `json:"totalDeductions"`
	Deductions      *float64 `json:"deductions"`
	NetSalary       float64  `json:"netSalary"`
	PaymentDate     string   `json:"paymentDate"`
	Status          string   `json:"status"`
}

// UnmarshalJSON accepts both naming schemes of the period and salary fields.
func (p *Payroll) UnmarshalJSON(data []byte) error {
	var w wirePayroll
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = Payroll{
		ID:              w.ID,
		EmployeeID:      w.EmployeeID,
		Month:           firstInt(w.Month, w.PayPeriodMonth),
		Year:            firstInt(w.Year, w.PayPeriodYear),
		BaseSalary:      firstFloat(w.BaseSalary, w.BasicSalary),
		Allowances:      w.Allowances,
		Bonus:           w.Bonus,
		Overtime:        w.Overtime,
		GrossSalary:     w.GrossSalary,
		TaxDeduction:    w.TaxDeduction,
		ProvidentFund:   w.ProvidentFund,
		OtherDeductions: w.OtherDeductions,
		TotalDeductions: firstFloat(w.TotalDeductions, w.Deductions),
		NetSalary:       w.NetSalary,
		PaymentDate:     w.PaymentDate,
		Status:          w.Status,
	}
	return nil
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// Period renders the pay period as MM/YYYY.
func (p Payroll) Period() string {
	if p.Month == 0 || p.Year == 0 {
		return ""
	}
	return fmt.Sprintf("%02d/%d", p.Month, p.Year)
}

// PayslipName is the download file name of the payslip.
func (p Payroll) PayslipName() string {
	return fmt.Sprintf("payslip-%d.pdf", p.ID)
}

// Generation is the body of POST /payroll/generate.
type Generation struct {
	EmployeeID      int64   `json:"employeeId"`
	Month           int     `json:"month"`
	Year            int     `json:"year"`
	BaseSalary      float64 `json:"baseSalary"`
	Allowances      float64 `json:"allowances,omitempty"`
	Bonus           float64 `json:"bonus,omitempty"`
	Overtime        float64 `json:"overtime,omitempty"`
	ProvidentFund   float64 `json:"providentFund,omitempty"`
	OtherDeductions float64 `json:"otherDeductions,omitempty"`
	PaymentDate     string  `json:"paymentDate,omitempty"`
}

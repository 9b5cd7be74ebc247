package models

import "time"

// InternStatus captures the lifecycle state of an internship.
type InternStatus string

const (
	InternStatusActive     InternStatus = "ACTIVE"
	InternStatusCompleted  InternStatus = "COMPLETED"
	InternStatusTerminated InternStatus = "TERMINATED"
)

// InternStatuses lists every valid status in display order.
var InternStatuses = []InternStatus{InternStatusActive, InternStatusCompleted, InternStatusTerminated}

// Valid reports whether s is a known status.
func (s InternStatus) Valid() bool {
	for _, known := range InternStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Intern represents a tracked internship participant stored in the interns table.
type Intern struct {
	ID            string       `db:"id" json:"id"`
	FirstName     string       `db:"first_name" json:"first_name"`
	LastName      string       `db:"last_name" json:"last_name"`
	Email         string       `db:"email" json:"email"`
	Phone         string       `db:"phone" json:"phone"`
	University    string       `db:"university" json:"university"`
	Major         string       `db:"major" json:"major"`
	StartDate     time.Time    `db:"start_date" json:"start_date"`
	EndDate       time.Time    `db:"end_date" json:"end_date"`
	Supervisor    string       `db:"supervisor" json:"supervisor"`
	Department    string       `db:"department" json:"department"`
	Status        InternStatus `db:"status" json:"status"`
	HRUserID      *string      `db:"hr_user_id" json:"hr_user_id,omitempty"`
	UserID        *string      `db:"user_id" json:"user_id,omitempty"`
	WelcomeSentAt *time.Time   `db:"welcome_sent_at" json:"welcome_sent_at,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (i *Intern) FullName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// InternFilterOptions lists the distinct values available for search dropdowns.
type InternFilterOptions struct {
	Departments  []string       `json:"departments"`
	Universities []string       `json:"universities"`
	Majors       []string       `json:"majors"`
	Supervisors  []string       `json:"supervisors"`
	Statuses     []InternStatus `json:"statuses"`
}

// LabelCount is a grouped count row.
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// InternStatistics aggregates intern counts for the HR dashboard.
type InternStatistics struct {
	Total           int            `json:"total"`
	ByStatus        map[string]int `json:"by_status"`
	CurrentlyActive int            `json:"currently_active"`
	ByDepartment    []LabelCount   `json:"by_department"`
	ByUniversity    []LabelCount   `json:"by_university"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

package dto

import (
	"time"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
)

// InternRecord is one candidate intern, either posted as JSON or read from a spreadsheet row.
// Dates are kept as text so that every input channel is validated the same way.
type InternRecord struct {
	Row        int    `json:"-"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	University string `json:"university"`
	Major      string `json:"major"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Supervisor string `json:"supervisor"`
	Department string `json:"department"`
}

// CreateBatchRequest carries an ordered list of candidate interns.
type CreateBatchRequest struct {
	Interns []InternRecord `json:"interns"`
}

// UpdateInternRequest patches an intern; nil fields are left untouched.
type UpdateInternRequest struct {
	FirstName  *string `json:"first_name" validate:"omitempty,max=100"`
	LastName   *string `json:"last_name" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	University *string `json:"university" validate:"omitempty,max=150"`
	Major      *string `json:"major" validate:"omitempty,max=150"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Supervisor *string `json:"supervisor" validate:"omitempty,max=150"`
	Department *string `json:"department" validate:"omitempty,max=150"`
}

// UpdateInternStatusRequest moves an intern to another lifecycle state.
type UpdateInternStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE COMPLETED TERMINATED active completed terminated"`
}

// Notification outcome statuses.
const (
	OutcomeSent   = "SENT"
	OutcomeFailed = "FAILED"
)

// NotificationOutcome reports whether the welcome pair reached one provisioned intern.
type NotificationOutcome struct {
	Row      int    `json:"row,omitempty"`
	InternID string `json:"intern_id"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// BatchResult summarises a committed batch.
type BatchResult struct {
	Persisted     int                   `json:"persisted"`
	Sent          int                   `json:"sent"`
	Failed        int                   `json:"failed"`
	Notifications []NotificationOutcome `json:"notifications"`
}

// CreateInternResult is the single-record counterpart of BatchResult.
type CreateInternResult struct {
	Intern       InternSummary       `json:"intern"`
	Notification NotificationOutcome `json:"notification"`
}

// InternSummary is the listing projection of an intern.
type InternSummary struct {
	ID         string              `json:"id"`
	FirstName  string              `json:"first_name"`
	LastName   string              `json:"last_name"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone,omitempty"`
	University string              `json:"university"`
	Major      string              `json:"major"`
	Department string              `json:"department"`
	Supervisor string              `json:"supervisor"`
	Status     models.InternStatus `json:"status"`
	StartDate  string              `json:"start_date"`
	EndDate    string              `json:"end_date"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewInternSummary projects a stored intern.
func NewInternSummary(in models.Intern) InternSummary {
	return InternSummary{
		ID:         in.ID,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Phone:      in.Phone,
		University: in.University,
		Major:      in.Major,
		Department: in.Department,
		Supervisor: in.Supervisor,
		Status:     in.Status,
		StartDate:  in.StartDate.Format(DateLayout),
		EndDate:    in.EndDate.Format(DateLayout),
		CreatedAt:  in.CreatedAt,
	}
}

// NewInternSummaries projects a slice, never returning nil.
func NewInternSummaries(interns []models.Intern) []InternSummary {
	out := make([]InternSummary, 0, len(interns))
	for _, in := range interns {
		out = append(out, NewInternSummary(in))
	}
	return out
}

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

package search

import (
	"strings"
	"time"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

// Criteria carries the optional intern search inputs of one request.
type Criteria struct {
	Keyword       string     `json:"keyword,omitempty"`
	Department    string     `json:"department,omitempty"`
	University    string     `json:"university,omitempty"`
	Major         string     `json:"major,omitempty"`
	Supervisor    string     `json:"supervisor,omitempty"`
	Status        string     `json:"status,omitempty"`
	StartDateFrom *time.Time `json:"start_date_from,omitempty"`
	StartDateTo   *time.Time `json:"start_date_to,omitempty"`
	EndDateFrom   *time.Time `json:"end_date_from,omitempty"`
	EndDateTo     *time.Time `json:"end_date_to,omitempty"`
}

// FromCriteria composes a Spec from the non-blank criteria fields.
func FromCriteria(c Criteria) (Spec, error) {
	b := NewBuilder().
		Keyword(c.Keyword).
		Field(FieldDepartment, c.Department).
		Field(FieldUniversity, c.University).
		Field(FieldMajor, c.Major).
		Field(FieldSupervisor, c.Supervisor).
		DateRange(FieldStartDate, c.StartDateFrom, c.StartDateTo).
		DateRange(FieldEndDate, c.EndDateFrom, c.EndDateTo)

	if status := strings.ToUpper(strings.TrimSpace(c.Status)); status != "" {
		st := models.InternStatus(status)
		if !st.Valid() {
			return Spec{}, appErrors.Clone(appErrors.ErrInvalidQuery, "unknown status "+c.Status)
		}
		b.Status(st)
	}
	return b.Build(), nil
}
